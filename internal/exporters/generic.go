// Package exporters writes aggregated books to their output formats.
package exporters

import "github.com/mrlokans/clippings/internal/entities"

// BookExporter writes the complete set of books, replacing what an earlier
// run wrote.
type BookExporter interface {
	Name() string
	Export(books []entities.Book) (ExportResult, error)
}

type ExportResult struct {
	BooksProcessed      int `json:"books_processed"`
	HighlightsProcessed int `json:"highlights_processed"`
	NotesProcessed      int `json:"notes_processed"`
	BooksFailed         int `json:"books_failed"`
}

func (r *ExportResult) add(book entities.Book) {
	r.BooksProcessed++
	r.HighlightsProcessed += len(book.Highlights)
	r.NotesProcessed += len(book.UnmatchedNotes)
	for _, h := range book.Highlights {
		r.NotesProcessed += len(h.NoteHashes)
	}
}
