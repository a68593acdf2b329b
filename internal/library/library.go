// Package library groups parsed clippings into books and resolves which
// highlight each note belongs to.
package library

import (
	"strings"
	"unicode"

	"github.com/mrlokans/clippings/internal/entities"
	"github.com/mrlokans/clippings/internal/kindle"
	"github.com/mrlokans/clippings/internal/matcher"
)

// Library holds the books of a single run, keyed by normalized title.
type Library struct {
	books   map[string]*entities.Book
	order   []string
	pending map[string][]entities.Note
}

func New() *Library {
	return &Library{
		books:   make(map[string]*entities.Book),
		pending: make(map[string][]entities.Note),
	}
}

// Seed loads books written by an earlier run. Books sharing a normalized
// title are merged. Notes that were unmatched go back to pending, so the
// next Resolve can attach them to highlights that arrived since.
func (l *Library) Seed(books []entities.Book) {
	for _, b := range books {
		book := l.getOrCreate(b.Title, b.Author, b.Authors)
		book.Highlights = append(book.Highlights, b.Highlights...)
		book.Bookmarks = append(book.Bookmarks, b.Bookmarks...)

		key := kindle.NormalizeTitle(b.Title)
		l.pending[key] = append(l.pending[key], b.UnmatchedNotes...)
	}
}

// Add places an entry in its book and reports whether it added anything.
// Notes are held back until Resolve.
//
// Records imported from the older output layout carry no hash. An entry
// with the same kind, position and text adopts such a record instead of
// duplicating it, and Add returns false.
func (l *Library) Add(entry entities.ClippingEntry) bool {
	book := l.getOrCreate(entry.Title, entry.Author, entry.Authors)
	key := kindle.NormalizeTitle(entry.Title)

	switch entry.Kind {
	case entities.EntryKindHighlight:
		for i := range book.Highlights {
			h := &book.Highlights[i]
			if h.Hash == "" && samePosition(h.Location, entry.Location) && sameText(h.Text, entry.Text) {
				h.Hash = entry.RawHash
				return false
			}
		}
		book.Highlights = append(book.Highlights, entry.ToHighlight())
	case entities.EntryKindNote:
		for i := range l.pending[key] {
			n := &l.pending[key][i]
			if n.Hash == "" && samePosition(n.Location, entry.Location) && sameText(n.Text, entry.Text) {
				n.Hash = entry.RawHash
				return false
			}
		}
		for i := range book.Highlights {
			h := &book.Highlights[i]
			if h.Note != "" && len(h.NoteHashes) == 0 && sameText(h.Note, entry.Text) {
				h.NoteHashes = append(h.NoteHashes, entry.RawHash)
				return false
			}
		}
		l.pending[key] = append(l.pending[key], entry.ToNote())
	case entities.EntryKindBookmark:
		for i := range book.Bookmarks {
			b := &book.Bookmarks[i]
			if b.Hash == "" && samePosition(b.Location, entry.Location) {
				b.Hash = entry.RawHash
				return false
			}
		}
		book.Bookmarks = append(book.Bookmarks, entry.ToBookmark())
	}
	return true
}

func samePosition(a, b entities.Location) bool {
	return a.Type == b.Type && a.Start == b.Start
}

// sameText compares texts the way the older layout stored them: non-ASCII
// runes were replaced by spaces.
func sameText(a, b string) bool {
	return asciiFields(a) == asciiFields(b)
}

func asciiFields(s string) string {
	s = strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return ' '
		}
		return r
	}, s)
	return strings.Join(strings.Fields(s), " ")
}

// ResolveStats counts what Resolve did with the pending notes, including
// unmatched notes carried over by Seed.
type ResolveStats struct {
	Attached  int
	Unmatched int
}

// Resolve matches every book's pending notes against that book's highlights
// only. Pending notes are cleared afterwards.
func (l *Library) Resolve(m matcher.Matcher) ResolveStats {
	var stats ResolveStats
	for _, key := range l.order {
		notes := l.pending[key]
		if len(notes) == 0 {
			continue
		}
		attached := matcher.Attach(l.books[key], notes, m)
		stats.Attached += attached
		stats.Unmatched += len(notes) - attached
	}
	l.pending = make(map[string][]entities.Note)
	return stats
}

// Books returns the books in the order they were first seen.
func (l *Library) Books() []entities.Book {
	books := make([]entities.Book, 0, len(l.order))
	for _, key := range l.order {
		books = append(books, *l.books[key])
	}
	return books
}

// book looks a book up by title, normalizing it first.
func (l *Library) book(title string) (*entities.Book, bool) {
	book, ok := l.books[kindle.NormalizeTitle(title)]
	return book, ok
}

func (l *Library) getOrCreate(title, author string, authors []string) *entities.Book {
	key := kindle.NormalizeTitle(title)
	if book, ok := l.books[key]; ok {
		if book.Author == "" && author != "" {
			book.Author = author
			book.Authors = authors
		}
		return book
	}
	book := entities.NewBook(title, author, authors)
	l.books[key] = book
	l.order = append(l.order, key)
	return book
}
