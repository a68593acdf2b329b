package cli

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/mrlokans/clippings/internal/config"
	"github.com/mrlokans/clippings/internal/entities"
	"github.com/mrlokans/clippings/internal/kindle"
	"github.com/mrlokans/clippings/internal/pipeline"
	"github.com/spf13/cobra"
)

func newParseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "parse",
		Short: "Print the entries of a clippings file without writing anything",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.NewConfigWithFlags(cmd.Flags())
			if err != nil {
				return err
			}
			return runParse(cmd, cfg)
		},
	}
}

func runParse(cmd *cobra.Command, cfg *config.Config) error {
	file, err := os.Open(cfg.ClippingsPath)
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %s", pipeline.ErrMissingInput, cfg.ClippingsPath)
	}
	if err != nil {
		return fmt.Errorf("failed to open clippings file: %w", err)
	}
	defer file.Close()

	content, err := kindle.ReadClippings(file)
	if err != nil {
		return err
	}

	parser := kindle.NewParser()
	parser.StripNonASCII = cfg.StripNonASCII
	entries, failures := parser.ParseAll(content)

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, renderEntries(entries))
	fmt.Fprintf(out, "%d entries, %d failed\n", len(entries), len(failures))

	if cfg.Verbose {
		for _, f := range failures {
			fmt.Fprintf(out, "  [ERROR] %v\n", f)
		}
	}
	return nil
}

func renderEntries(entries []entities.ClippingEntry) string {
	rows := make([][]string, 0, len(entries))
	for i, e := range entries {
		added := ""
		if e.AddedAt != nil {
			added = e.AddedAt.Format("2006-01-02 15:04")
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			string(e.Kind),
			truncate(e.Title, 40),
			positionLabel(e.Location),
			added,
			truncate(e.Text, 60),
		})
	}
	return renderTable([]string{"#", "Kind", "Title", "Position", "Added", "Text"}, rows,
		[]columnAlignment{alignRight})
}

func positionLabel(l entities.Location) string {
	if l.Start == l.End {
		return fmt.Sprintf("%s %d", l.Type, l.Start)
	}
	return fmt.Sprintf("%s %d-%d", l.Type, l.Start, l.End)
}
