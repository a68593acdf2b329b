package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mrlokans/clippings/internal/exporters"
	"github.com/mrlokans/clippings/internal/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const clippings = "Book A (Author X)\nYour Highlight on page 12-12 | Added on Monday, 1 January 2024\n\nGreat line here.\n==========\n" +
	"Book A (Author X)\nYour Note on page 12-12 | Added on Monday, 1 January 2024\n\nMy thought.\n==========\n" +
	"Broken\n==========\n"

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand("test")
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), err
}

// withWorkdir runs the test from an empty directory holding the default
// clippings file.
func withWorkdir(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	if content != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "My Clippings.txt"), []byte(content), 0644))
	}
	return dir
}

func TestRootCommand_DefaultPaths(t *testing.T) {
	dir := withWorkdir(t, clippings)

	out, err := runCLI(t)
	require.NoError(t, err)

	assert.Contains(t, out, "New highlights")
	assert.Contains(t, out, "Known entries")
	assert.Contains(t, out, "1 entries could not be parsed")
	assert.Contains(t, out, "Wrote output.json")

	doc, err := exporters.LoadJSON(filepath.Join(dir, "output.json"))
	require.NoError(t, err)
	require.Len(t, doc.Books, 1)
	assert.Equal(t, "My thought.", doc.Books[0].Highlights[0].Note)
	assert.FileExists(t, filepath.Join(dir, "processed_entries.json"))
}

func TestRootCommand_Flags(t *testing.T) {
	withWorkdir(t, "")
	src := t.TempDir()
	input := filepath.Join(src, "clips.txt")
	require.NoError(t, os.WriteFile(input, []byte(clippings), 0644))
	output := filepath.Join(src, "books.json")
	progress := filepath.Join(src, "seen.json")
	mdDir := filepath.Join(src, "md")

	_, err := runCLI(t, "--file", input, "--output", output, "--progress", progress, "--markdown-dir", mdDir)
	require.NoError(t, err)

	assert.FileExists(t, output)
	assert.FileExists(t, progress)
	assert.FileExists(t, filepath.Join(mdDir, "Book A.md"))
}

func TestRootCommand_EnvironmentOverridesDefaults(t *testing.T) {
	withWorkdir(t, "")
	src := t.TempDir()
	input := filepath.Join(src, "clips.txt")
	require.NoError(t, os.WriteFile(input, []byte(clippings), 0644))
	t.Setenv("CLIPPINGS_PATH", input)
	t.Setenv("OUTPUT_PATH", filepath.Join(src, "env.json"))

	_, err := runCLI(t)
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(src, "env.json"))
}

func TestRootCommand_MissingInput(t *testing.T) {
	dir := withWorkdir(t, "")

	_, err := runCLI(t)

	require.Error(t, err)
	assert.True(t, errors.Is(err, pipeline.ErrMissingInput))
	assert.NoFileExists(t, filepath.Join(dir, "output.json"))
}

func TestRootCommand_DryRun(t *testing.T) {
	dir := withWorkdir(t, clippings)

	out, err := runCLI(t, "--dry-run", "--verbose")
	require.NoError(t, err)

	assert.Contains(t, out, "DRY RUN MODE")
	assert.Contains(t, out, "Book A")
	assert.NoFileExists(t, filepath.Join(dir, "output.json"))
}

func TestRootCommand_UnknownPolicy(t *testing.T) {
	withWorkdir(t, clippings)

	_, err := runCLI(t, "--match-policy", "fuzzy")

	assert.Error(t, err)
}

func TestRootCommand_RejectsArguments(t *testing.T) {
	withWorkdir(t, clippings)

	_, err := runCLI(t, "extra")

	assert.Error(t, err)
}

func TestParseCommand(t *testing.T) {
	dir := withWorkdir(t, clippings)

	out, err := runCLI(t, "parse")
	require.NoError(t, err)

	assert.Contains(t, out, "Great line here.")
	assert.Contains(t, out, "page 12")
	assert.Contains(t, out, "2 entries, 1 failed")
	assert.NoFileExists(t, filepath.Join(dir, "output.json"))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "a b", truncate("a\n  b", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
}

func TestShouldColorize(t *testing.T) {
	assert.False(t, shouldColorize(&bytes.Buffer{}))
}
