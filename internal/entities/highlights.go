package entities

import "time"

type LocationType string

const (
	LocationTypeLocation LocationType = "location" // Kindle-style location
	LocationTypePage     LocationType = "page"
)

// Location is an inclusive position range. A single position has Start == End.
type Location struct {
	Type  LocationType `json:"type"`
	Start int          `json:"start"`
	End   int          `json:"end"`
}

// Overlaps reports whether both ranges share at least one position.
func (l Location) Overlaps(other Location) bool {
	return l.Start <= other.End && other.Start <= l.End
}

type Highlight struct {
	Text     string   `json:"text"`
	Note     string   `json:"note,omitempty"`
	Location Location `json:"location"`
	Page     int      `json:"page,omitempty"`

	AddedAt *time.Time `json:"added_at,omitempty"`

	// Hash of the raw clipping block the highlight was parsed from
	Hash       string   `json:"hash"`
	NoteHashes []string `json:"note_hashes,omitempty"`
}

// AttachNote appends the note's text after any notes attached earlier.
func (h *Highlight) AttachNote(note Note) {
	if h.Note == "" {
		h.Note = note.Text
	} else {
		h.Note = h.Note + "\n\n" + note.Text
	}
	if note.Hash != "" {
		h.NoteHashes = append(h.NoteHashes, note.Hash)
	}
}

type Note struct {
	Text     string     `json:"text"`
	Location Location   `json:"location"`
	Page     int        `json:"page,omitempty"`
	AddedAt  *time.Time `json:"added_at,omitempty"`
	Hash     string     `json:"hash"`
}

type Bookmark struct {
	Location Location   `json:"location"`
	Page     int        `json:"page,omitempty"`
	AddedAt  *time.Time `json:"added_at,omitempty"`
	Hash     string     `json:"hash"`
}

type Book struct {
	Title          string      `json:"title"`
	Author         string      `json:"author,omitempty"`
	Authors        []string    `json:"authors,omitempty"`
	Highlights     []Highlight `json:"highlights"`
	UnmatchedNotes []Note      `json:"unmatched_notes"`
	Bookmarks      []Bookmark  `json:"bookmarks,omitempty"`
}

// NewBook creates an empty book so that JSON output always carries
// arrays rather than nulls.
func NewBook(title, author string, authors []string) *Book {
	return &Book{
		Title:          title,
		Author:         author,
		Authors:        authors,
		Highlights:     []Highlight{},
		UnmatchedNotes: []Note{},
	}
}
