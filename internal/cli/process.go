package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/mrlokans/clippings/internal/config"
	"github.com/mrlokans/clippings/internal/entities"
	"github.com/mrlokans/clippings/internal/pipeline"
	"github.com/spf13/cobra"
)

func runProcess(cmd *cobra.Command, cfg *config.Config) error {
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)

	fmt.Fprintln(out, "Kindle Clippings")
	fmt.Fprintln(out, "================")
	if cfg.DryRun {
		fmt.Fprintln(out, "DRY RUN MODE - No changes will be made")
	}
	fmt.Fprintf(out, "File: %s\n\n", cfg.ClippingsPath)

	p, err := pipeline.New(cfg)
	if err != nil {
		return err
	}
	result, err := p.Run()
	if err != nil {
		return err
	}

	printSummary(out, result.Report, colorize)

	if len(result.Report.Errors) > 0 {
		fmt.Fprintf(out, "\n%s\n", paint(fmt.Sprintf("%d entries could not be parsed:", len(result.Report.Errors)), colorWarn, colorize))
		fmt.Fprintln(out, renderErrors(result.Report.Errors))
	}

	if cfg.Verbose {
		fmt.Fprintln(out, "\n=== Books ===")
		fmt.Fprintln(out, renderBooks(result.Books))
	}

	if cfg.DryRun {
		fmt.Fprintln(out, "\nDry run complete. Use without --dry-run to write output.")
		return nil
	}
	fmt.Fprintf(out, "\n%s\n", paint("Wrote "+cfg.OutputPath, colorOK, colorize))
	return nil
}

func printSummary(out io.Writer, report *entities.RunReport, colorize bool) {
	rows := [][]string{
		{"Blocks", strconv.Itoa(report.Blocks)},
		{"Parsed", strconv.Itoa(report.Parsed)},
		{"Already processed", strconv.Itoa(report.Skipped)},
		{"New highlights", strconv.Itoa(report.NewHighlights)},
		{"New notes", strconv.Itoa(report.NewNotes)},
		{"Attached notes", strconv.Itoa(report.AttachedNotes)},
		{"Unmatched notes", strconv.Itoa(report.UnmatchedNotes)},
		{"New bookmarks", strconv.Itoa(report.NewBookmarks)},
		{"Known entries", strconv.Itoa(report.KnownEntries)},
		{"Errors", strconv.Itoa(len(report.Errors))},
	}
	if colorize && len(report.Errors) > 0 {
		rows[len(rows)-1][1] = paint(rows[len(rows)-1][1], colorWarn, true)
	}
	fmt.Fprintln(out, renderTable([]string{"Summary", "Count"}, rows, []columnAlignment{alignLeft, alignRight}))
}

func renderErrors(errs []entities.EntryError) string {
	rows := make([][]string, 0, len(errs))
	for _, e := range errs {
		rows = append(rows, []string{
			strconv.Itoa(e.Block + 1),
			strconv.Itoa(e.Line),
			e.Message,
			truncate(e.Excerpt, 50),
		})
	}
	return renderTable([]string{"Block", "Line", "Reason", "Excerpt"}, rows, []columnAlignment{alignRight, alignRight})
}

func renderBooks(books []entities.Book) string {
	rows := make([][]string, 0, len(books))
	for _, book := range books {
		author := book.Author
		if author == "" {
			author = "(no author)"
		}
		rows = append(rows, []string{
			truncate(book.Title, 50),
			author,
			strconv.Itoa(len(book.Highlights)),
			strconv.Itoa(len(book.UnmatchedNotes)),
		})
	}
	return renderTable([]string{"Title", "Author", "Highlights", "Unmatched notes"}, rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight})
}
