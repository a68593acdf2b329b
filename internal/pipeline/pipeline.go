// Package pipeline runs one pass over a clippings export: parse every
// block, skip what earlier runs already emitted, group the rest into books,
// attach notes and write the results.
package pipeline

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/mrlokans/clippings/internal/audit"
	"github.com/mrlokans/clippings/internal/config"
	"github.com/mrlokans/clippings/internal/entities"
	"github.com/mrlokans/clippings/internal/exporters"
	"github.com/mrlokans/clippings/internal/kindle"
	"github.com/mrlokans/clippings/internal/library"
	"github.com/mrlokans/clippings/internal/matcher"
	"github.com/mrlokans/clippings/internal/progress"
)

var (
	ErrMissingInput  = errors.New("clippings file not found")
	ErrCorruptOutput = errors.New("existing output file cannot be loaded")
)

type Pipeline struct {
	cfg     *config.Config
	parser  *kindle.Parser
	matcher matcher.Matcher
	tracker *progress.Tracker
}

func New(cfg *config.Config) (*Pipeline, error) {
	m, err := matcher.New(cfg.Policy, cfg.MaxDistance)
	if err != nil {
		return nil, err
	}

	parser := kindle.NewParser()
	parser.StripNonASCII = cfg.StripNonASCII

	return &Pipeline{
		cfg:     cfg,
		parser:  parser,
		matcher: m,
		tracker: progress.NewTracker(cfg.ProgressPath),
	}, nil
}

// Result is what a run produced: the report plus every book now in the
// output, including books carried over from earlier runs.
type Result struct {
	Report *entities.RunReport
	Books  []entities.Book
}

// Run processes the configured clippings file. Blocks that fail to parse
// are collected in the report; only I/O failures are returned as errors.
func (p *Pipeline) Run() (*Result, error) {
	report := &entities.RunReport{
		ID:        audit.NewRunID(),
		InputPath: p.cfg.ClippingsPath,
		StartedAt: time.Now(),
		DryRun:    p.cfg.DryRun,
		Errors:    []entities.EntryError{},
	}

	books, err := p.run(report)
	report.CompletedAt = time.Now()
	if err != nil {
		report.Status = entities.RunStatusFailed
		report.Failed = err.Error()
	} else {
		report.Status = entities.RunStatusSuccess
	}
	p.saveReport(report)

	if err != nil {
		return nil, err
	}
	return &Result{Report: report, Books: books}, nil
}

func (p *Pipeline) run(report *entities.RunReport) ([]entities.Book, error) {
	file, err := os.Open(p.cfg.ClippingsPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrMissingInput, p.cfg.ClippingsPath)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open clippings file: %w", err)
	}
	defer file.Close()

	if !p.cfg.DryRun {
		if err := p.tracker.Lock(); err != nil {
			return nil, err
		}
		defer p.tracker.Unlock()
	}
	p.tracker.Load()

	previous, err := exporters.LoadJSON(p.cfg.OutputPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w; move it aside to start over", ErrCorruptOutput, err)
	}

	lib := library.New()
	lib.Seed(previous.Books)
	// Entries already in the output count as processed even if the
	// progress file was lost; the older layout also lists hashes inline.
	for _, hash := range append(hashesOf(previous.Books), previous.ProcessedEntries...) {
		if hash != "" {
			p.tracker.Mark(hash)
		}
	}

	content, err := kindle.ReadClippings(file)
	if err != nil {
		return nil, err
	}

	for block := range kindle.Split(content) {
		report.Blocks++

		entry, perr := p.parser.ParseBlock(block)
		if perr != nil {
			report.Errors = append(report.Errors, entities.EntryError{
				Block:   perr.Block,
				Line:    perr.Line,
				Message: perr.Reason,
				Excerpt: perr.Excerpt,
			})
			if p.cfg.Verbose {
				log.Printf("[PARSE] Skipping %v", perr)
			}
			continue
		}
		report.Parsed++

		// Also drops exact duplicates within the same file
		if !p.tracker.Mark(entry.RawHash) {
			report.Skipped++
			continue
		}

		if !lib.Add(entry) {
			report.Skipped++
			continue
		}
		switch entry.Kind {
		case entities.EntryKindHighlight:
			report.NewHighlights++
		case entities.EntryKindNote:
			report.NewNotes++
		case entities.EntryKindBookmark:
			report.NewBookmarks++
		}
	}

	stats := lib.Resolve(p.matcher)
	report.AttachedNotes = stats.Attached
	report.UnmatchedNotes = stats.Unmatched

	books := lib.Books()
	report.KnownEntries = p.tracker.Len()

	lastProcessedAt := previous.LastProcessedAt
	if report.NewHighlights+report.NewNotes+report.NewBookmarks > 0 {
		now := report.StartedAt.UTC().Truncate(time.Second)
		lastProcessedAt = &now
	}

	if p.cfg.DryRun {
		return books, nil
	}

	for _, exporter := range p.outputs(report, lastProcessedAt) {
		result, err := exporter.Export(books)
		if err != nil {
			return nil, fmt.Errorf("failed to export to %s: %w", exporter.Name(), err)
		}
		log.Printf("[EXPORT] %s: %d books, %d highlights, %d notes (%d failed)",
			exporter.Name(), result.BooksProcessed, result.HighlightsProcessed, result.NotesProcessed, result.BooksFailed)
	}

	// Saved only once every output holds the new entries
	if err := p.tracker.Save(); err != nil {
		return nil, err
	}

	return books, nil
}

// outputs lists the configured exporters. JSON always comes first.
func (p *Pipeline) outputs(report *entities.RunReport, lastProcessedAt *time.Time) []exporters.BookExporter {
	jsonExporter := exporters.NewJSONExporter(p.cfg.OutputPath)
	jsonExporter.Errors = report.Errors
	jsonExporter.LastProcessedAt = lastProcessedAt

	outputs := []exporters.BookExporter{jsonExporter}
	if p.cfg.MarkdownDir != "" {
		outputs = append(outputs, exporters.NewMarkdownExporter(p.cfg.MarkdownDir))
	}
	return outputs
}

func hashesOf(books []entities.Book) []string {
	var hashes []string
	for _, book := range books {
		for _, h := range book.Highlights {
			hashes = append(hashes, h.Hash)
			hashes = append(hashes, h.NoteHashes...)
		}
		for _, n := range book.UnmatchedNotes {
			hashes = append(hashes, n.Hash)
		}
		for _, b := range book.Bookmarks {
			hashes = append(hashes, b.Hash)
		}
	}
	return hashes
}

func (p *Pipeline) saveReport(report *entities.RunReport) {
	if p.cfg.AuditDir == "" {
		return
	}
	if _, err := audit.NewAuditor(p.cfg.AuditDir).SaveReport(report); err != nil {
		log.Printf("[AUDIT] Failed to save run report: %v", err)
	}
}
