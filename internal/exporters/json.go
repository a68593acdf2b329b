package exporters

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/mrlokans/clippings/internal/entities"
	"github.com/mrlokans/clippings/internal/utils"
)

var (
	ErrInvalidJSON        = errors.New("not valid JSON")
	ErrUnrecognisedLayout = errors.New("unrecognised output layout")
)

// Document is the layout of output.json.
type Document struct {
	Books  []entities.Book       `json:"books"`
	Errors []entities.EntryError `json:"errors"`
	// LastProcessedAt is when a run last added an entry.
	LastProcessedAt *time.Time `json:"last_processed_at,omitempty"`

	// ProcessedEntries holds the hashes the older single-file layout kept
	// inline. It is only filled when loading that layout.
	ProcessedEntries []string `json:"-"`
}

// JSONExporter writes the aggregated books, together with the blocks that
// could not be parsed in the current run, to a single JSON file.
type JSONExporter struct {
	Path            string
	Errors          []entities.EntryError
	LastProcessedAt *time.Time
}

func NewJSONExporter(path string) *JSONExporter {
	return &JSONExporter{Path: path}
}

func (exporter *JSONExporter) Name() string { return "json" }

func (exporter *JSONExporter) Export(books []entities.Book) (ExportResult, error) {
	doc := Document{Books: books, Errors: exporter.Errors, LastProcessedAt: exporter.LastProcessedAt}
	if doc.Books == nil {
		doc.Books = []entities.Book{}
	}
	if doc.Errors == nil {
		doc.Errors = []entities.EntryError{}
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return ExportResult{}, fmt.Errorf("failed to marshal books: %w", err)
	}
	data = append(data, '\n')

	if err := utils.WriteFileAtomic(exporter.Path, data); err != nil {
		return ExportResult{}, fmt.Errorf("failed to write %s: %w", exporter.Path, err)
	}

	var result ExportResult
	for _, book := range books {
		result.add(book)
	}
	return result, nil
}

// LoadJSON reads a document written by an earlier run. A missing file
// yields an empty document. The older layout, with books keyed by title and
// processed hashes inline, is converted on the fly.
func LoadJSON(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Document{}, nil
	}
	if err != nil {
		return Document{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if !json.Valid(data) {
		return Document{}, fmt.Errorf("%s: %w", path, ErrInvalidJSON)
	}

	var raw struct {
		Books                  json.RawMessage `json:"books"`
		LastProcessedAt        *time.Time      `json:"last_processed_at"`
		ProcessedEntries       []string        `json:"processedEntries"`
		LastProcessedTimestamp *string         `json:"lastProcessedTimestamp"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return Document{}, fmt.Errorf("%s: %w: %v", path, ErrUnrecognisedLayout, err)
	}

	books := bytes.TrimSpace(raw.Books)
	switch {
	case len(books) == 0 || bytes.Equal(books, []byte("null")) || books[0] == '[':
		var doc Document
		if err := json.Unmarshal(data, &doc); err != nil {
			return Document{}, fmt.Errorf("%s: %w: %v", path, ErrUnrecognisedLayout, err)
		}
		return doc, nil
	case books[0] == '{':
		converted, err := decodeLegacyBooks(books)
		if err != nil {
			return Document{}, fmt.Errorf("%s: %w: %v", path, ErrUnrecognisedLayout, err)
		}
		return Document{
			Books:            converted,
			LastProcessedAt:  parseLegacyTime(raw.LastProcessedTimestamp),
			ProcessedEntries: raw.ProcessedEntries,
		}, nil
	default:
		return Document{}, fmt.Errorf("%s: %w: books is neither a list nor an object", path, ErrUnrecognisedLayout)
	}
}
