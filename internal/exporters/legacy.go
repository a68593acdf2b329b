package exporters

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mrlokans/clippings/internal/entities"
)

// The older output layout: books keyed by title, one optional note per
// highlight, positions as {start, end} with end possibly null, and naive
// ISO timestamps.
type (
	legacyLocation struct {
		Start int  `json:"start"`
		End   *int `json:"end"`
	}
	legacyNote struct {
		Content   string          `json:"content"`
		DateAdded *string         `json:"date_added"`
		Page      *int            `json:"page"`
		Location  *legacyLocation `json:"location"`
	}
	legacyHighlight struct {
		Content   string          `json:"content"`
		DateAdded *string         `json:"date_added"`
		Page      *int            `json:"page"`
		Note      *legacyNote     `json:"note"`
		Location  *legacyLocation `json:"location"`
	}
	legacyBookmark struct {
		Location  *legacyLocation `json:"location"`
		DateAdded *string         `json:"date_added"`
		Page      *int            `json:"page"`
	}
	legacyBook struct {
		Title      string            `json:"title"`
		Authors    []string          `json:"authors"`
		Highlights []legacyHighlight `json:"highlights"`
		Notes      []legacyNote      `json:"notes"`
		Bookmarks  []legacyBookmark  `json:"bookmarks"`
	}
)

var legacyTimeLayouts = []string{
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	time.RFC3339Nano,
}

// decodeLegacyBooks converts the title-keyed object, keeping the order the
// books appear in the file.
func decodeLegacyBooks(data []byte) ([]entities.Book, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	if _, err := dec.Token(); err != nil {
		return nil, err
	}

	books := []entities.Book{}
	for dec.More() {
		key, err := dec.Token()
		if err != nil {
			return nil, err
		}
		var lb legacyBook
		if err := dec.Decode(&lb); err != nil {
			return nil, fmt.Errorf("book %v: %w", key, err)
		}
		if lb.Title == "" {
			lb.Title, _ = key.(string)
		}
		books = append(books, lb.convert())
	}
	return books, nil
}

func (lb legacyBook) convert() entities.Book {
	var authors []string
	for _, a := range lb.Authors {
		if a = strings.TrimSpace(a); a != "" {
			authors = append(authors, a)
		}
	}
	book := entities.NewBook(lb.Title, strings.Join(authors, ", "), authors)

	for _, lh := range lb.Highlights {
		h := entities.Highlight{
			Text:     lh.Content,
			Location: legacyPosition(lh.Location, lh.Page),
			Page:     deref(lh.Page),
			AddedAt:  parseLegacyTime(lh.DateAdded),
		}
		if lh.Note != nil {
			h.Note = lh.Note.Content
		}
		book.Highlights = append(book.Highlights, h)
	}
	for _, ln := range lb.Notes {
		book.UnmatchedNotes = append(book.UnmatchedNotes, entities.Note{
			Text:     ln.Content,
			Location: legacyPosition(ln.Location, ln.Page),
			Page:     deref(ln.Page),
			AddedAt:  parseLegacyTime(ln.DateAdded),
		})
	}
	for _, lbm := range lb.Bookmarks {
		book.Bookmarks = append(book.Bookmarks, entities.Bookmark{
			Location: legacyPosition(lbm.Location, lbm.Page),
			Page:     deref(lbm.Page),
			AddedAt:  parseLegacyTime(lbm.DateAdded),
		})
	}
	return *book
}

// legacyPosition mirrors the parser: the Kindle location wins, the page is
// the fallback.
func legacyPosition(loc *legacyLocation, page *int) entities.Location {
	if loc != nil {
		end := loc.Start
		if loc.End != nil && *loc.End >= loc.Start {
			end = *loc.End
		}
		return entities.Location{Type: entities.LocationTypeLocation, Start: loc.Start, End: end}
	}
	p := deref(page)
	return entities.Location{Type: entities.LocationTypePage, Start: p, End: p}
}

func parseLegacyTime(value *string) *time.Time {
	if value == nil || *value == "" {
		return nil
	}
	for _, layout := range legacyTimeLayouts {
		if t, err := time.Parse(layout, *value); err == nil {
			return &t
		}
	}
	return nil
}

func deref(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}
