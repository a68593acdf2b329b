package cli

import (
	"github.com/mrlokans/clippings/internal/config"
	"github.com/spf13/cobra"
)

// NewRootCommand builds the clippings command tree. Running the root command
// without a subcommand processes the clippings file.
func NewRootCommand(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "clippings",
		Short: "Turn a Kindle 'My Clippings.txt' export into per-book JSON",
		Long: `Parse a Kindle 'My Clippings.txt' export, group highlights by book,
attach notes to the highlights they annotate and write the result to JSON.

Entries processed by earlier runs are remembered in a progress file, so the
same export can be processed again after new highlights were added.

The clippings file is typically found at:
  /Volumes/Kindle/documents/My Clippings.txt`,
		Version:       version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.NewConfigWithFlags(cmd.Flags())
			if err != nil {
				return err
			}
			return runProcess(cmd, cfg)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.String("file", config.DefaultClippingsPath, "Path to Kindle 'My Clippings.txt' file")
	flags.Bool("strip-non-ascii", false, "Replace non-ASCII characters with spaces before parsing")
	flags.Bool("verbose", false, "Enable verbose logging")

	local := rootCmd.Flags()
	local.String("output", config.DefaultOutputPath, "Path to the JSON output file")
	local.String("progress", config.DefaultProgressPath, "Path to the processed entries file")
	local.String("markdown-dir", "", "Also export Obsidian-compatible markdown files to this directory")
	local.String("audit-dir", "", "Save a JSON report of every run to this directory")
	local.String("match-policy", "closest", "How notes are matched to highlights: closest or exact")
	local.Int("match-max-distance", -1, "Largest gap between a highlight and its note; negative means unbounded")
	local.Bool("dry-run", false, "Show what would be processed without writing anything")

	rootCmd.AddCommand(newParseCommand())

	return rootCmd
}
