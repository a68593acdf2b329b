package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type (
	Config struct {
		Files
		Matching
		Parsing
		Output
	}

	Files struct {
		ClippingsPath string
		OutputPath    string
		ProgressPath  string
	}
	Matching struct {
		Policy      string // "closest" or "exact"
		MaxDistance int    // Negative means unbounded
	}
	Parsing struct {
		StripNonASCII bool
	}
	Output struct {
		MarkdownDir string // Markdown export is skipped when empty
		AuditDir    string // Run reports are skipped when empty
		DryRun      bool
		Verbose     bool
	}
)

// flagKeys maps command-line flags to configuration keys.
var flagKeys = map[string]string{
	"file":               "clippings_path",
	"output":             "output_path",
	"progress":           "progress_path",
	"match-policy":       "match_policy",
	"match-max-distance": "match_max_distance",
	"strip-non-ascii":    "strip_non_ascii",
	"markdown-dir":       "markdown_dir",
	"audit-dir":          "audit_dir",
	"dry-run":            "dry_run",
	"verbose":            "verbose",
}

func newViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("clippings_path", DefaultClippingsPath)
	v.SetDefault("output_path", DefaultOutputPath)
	v.SetDefault("progress_path", DefaultProgressPath)
	v.SetDefault("match_policy", "closest")
	v.SetDefault("match_max_distance", -1)
	v.SetDefault("strip_non_ascii", false)
	v.SetDefault("markdown_dir", "")
	v.SetDefault("audit_dir", "")
	v.SetDefault("dry_run", false)
	v.SetDefault("verbose", false)
	return v
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		Files: Files{
			ClippingsPath: v.GetString("CLIPPINGS_PATH"),
			OutputPath:    v.GetString("OUTPUT_PATH"),
			ProgressPath:  v.GetString("PROGRESS_PATH"),
		},
		Matching: Matching{
			Policy:      v.GetString("MATCH_POLICY"),
			MaxDistance: v.GetInt("MATCH_MAX_DISTANCE"),
		},
		Parsing: Parsing{
			StripNonASCII: v.GetBool("STRIP_NON_ASCII"),
		},
		Output: Output{
			MarkdownDir: v.GetString("MARKDOWN_DIR"),
			AuditDir:    v.GetString("AUDIT_DIR"),
			DryRun:      v.GetBool("DRY_RUN"),
			Verbose:     v.GetBool("VERBOSE"),
		},
	}
}

// NewConfigWithFlags reads configuration from the environment, falling back
// to defaults. Explicitly set flags take precedence over the environment; a
// nil flag set reads the environment only. A .env file in the working
// directory is loaded first if present.
func NewConfigWithFlags(flags *pflag.FlagSet) (*Config, error) {
	_ = godotenv.Load()
	v := newViper()
	if flags == nil {
		return fromViper(v), nil
	}
	for flag, key := range flagKeys {
		f := flags.Lookup(flag)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return nil, fmt.Errorf("failed to bind flag %s: %w", flag, err)
		}
	}
	return fromViper(v), nil
}
