package entities

import (
	"fmt"
	"time"
)

// EntryKind identifies what a clipping block describes.
type EntryKind string

const (
	EntryKindHighlight EntryKind = "highlight"
	EntryKindNote      EntryKind = "note"
	EntryKindBookmark  EntryKind = "bookmark"
)

// ClippingEntry is a single parsed block from My Clippings.txt.
//
// Location holds the Kindle location range when the metadata line carries
// one and falls back to the page range otherwise. Page is kept separately
// for display.
type ClippingEntry struct {
	Kind     EntryKind
	Title    string
	Author   string
	Authors  []string
	Location Location
	Page     int
	PageEnd  int
	AddedAt  *time.Time
	Text     string
	RawHash  string
}

func (e ClippingEntry) ToHighlight() Highlight {
	return Highlight{
		Text:     e.Text,
		Location: e.Location,
		Page:     e.Page,
		AddedAt:  e.AddedAt,
		Hash:     e.RawHash,
	}
}

func (e ClippingEntry) ToNote() Note {
	return Note{
		Text:     e.Text,
		Location: e.Location,
		Page:     e.Page,
		AddedAt:  e.AddedAt,
		Hash:     e.RawHash,
	}
}

func (e ClippingEntry) ToBookmark() Bookmark {
	return Bookmark{
		Location: e.Location,
		Page:     e.Page,
		AddedAt:  e.AddedAt,
		Hash:     e.RawHash,
	}
}

func (e ClippingEntry) String() string {
	return fmt.Sprintf("%s %q %s %d-%d", e.Kind, e.Title, e.Location.Type, e.Location.Start, e.Location.End)
}
