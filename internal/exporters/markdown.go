package exporters

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mrlokans/clippings/internal/entities"
	"github.com/mrlokans/clippings/internal/utils"
)

// MarkdownExporter writes one Obsidian-compatible note per book.
type MarkdownExporter struct {
	ExportDir string
	Result    ExportResult
}

func NewMarkdownExporter(exportDir string) *MarkdownExporter {
	return &MarkdownExporter{
		ExportDir: exportDir,
		Result:    ExportResult{},
	}
}

func (exporter *MarkdownExporter) ensureDir() error {
	if err := os.MkdirAll(exporter.ExportDir, 0755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}
	return nil
}

func (exporter *MarkdownExporter) exportBook(book entities.Book) (string, error) {
	outputPath := filepath.Join(exporter.ExportDir, utils.SanitizeFilename(book.Title)+".md")

	if err := os.WriteFile(outputPath, []byte(GenerateMarkdown(&book)), 0644); err != nil {
		return "", err
	}
	return outputPath, nil
}

func yamlQuote(s string) string {
	return "\"" + strings.ReplaceAll(s, "\"", "\\\"") + "\""
}

func quote(text string) string {
	return "> " + strings.ReplaceAll(text, "\n", "\n> ")
}

func locationLabel(l entities.Location) string {
	if l.Type == entities.LocationTypePage && l.End == 0 {
		return "front matter"
	}
	if l.Start == l.End {
		return fmt.Sprintf("%s %d", l.Type, l.Start)
	}
	return fmt.Sprintf("%s %d-%d", l.Type, l.Start, l.End)
}

func GenerateMarkdown(book *entities.Book) string {
	var builder strings.Builder

	currentDateTime := time.Now().Format("2006-01-02")
	fmt.Fprintf(&builder, "---\n")
	fmt.Fprintf(&builder, "content_source: kindle\n")
	fmt.Fprintf(&builder, "content_type: book_highlights\n")
	fmt.Fprintf(&builder, "created_at: %s\n", currentDateTime)
	fmt.Fprintf(&builder, "title: %s\n", yamlQuote(book.Title))
	fmt.Fprintf(&builder, "author: %s\n", yamlQuote(book.Author))
	fmt.Fprintf(&builder, "tags: [highlights, books]\n")
	fmt.Fprintf(&builder, "---\n\n")
	fmt.Fprintf(&builder, "## Highlights\n\n")

	for _, highlight := range book.Highlights {
		header := locationLabel(highlight.Location)
		if highlight.AddedAt != nil {
			header = highlight.AddedAt.Format("2006-01-02 15:04") + " · " + header
		}
		fmt.Fprintf(&builder, "> [!quote] %s\n", header)
		fmt.Fprintf(&builder, "%s\n\n", quote(highlight.Text))
		if highlight.Note != "" {
			fmt.Fprintf(&builder, "**Note:** %s\n\n", highlight.Note)
		}
	}

	if len(book.UnmatchedNotes) > 0 {
		fmt.Fprintf(&builder, "## Notes\n\n")
		for _, note := range book.UnmatchedNotes {
			fmt.Fprintf(&builder, "- (%s) %s\n", locationLabel(note.Location), note.Text)
		}
		fmt.Fprintf(&builder, "\n")
	}

	return builder.String()
}

func (exporter *MarkdownExporter) Name() string { return "markdown" }

func (exporter *MarkdownExporter) Export(books []entities.Book) (ExportResult, error) {
	// Reset result state for each export
	exporter.Result = ExportResult{}

	if err := exporter.ensureDir(); err != nil {
		return ExportResult{}, err
	}

	for _, book := range books {
		if len(book.Highlights) == 0 && len(book.UnmatchedNotes) == 0 {
			continue
		}
		if _, err := exporter.exportBook(book); err != nil {
			log.Printf("[EXPORT] Failed to export '%s': %v", book.Title, err)
			exporter.Result.BooksFailed++
			continue
		}
		exporter.Result.add(book)
	}

	return exporter.Result, nil
}
