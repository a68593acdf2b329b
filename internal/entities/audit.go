package entities

import "time"

type RunStatus string

const (
	RunStatusSuccess RunStatus = "success"
	RunStatusFailed  RunStatus = "failed"
)

// EntryError is a clipping block that was left out of the output.
type EntryError struct {
	Block   int    `json:"block"`
	Line    int    `json:"line"`
	Message string `json:"message"`
	Excerpt string `json:"excerpt,omitempty"`
}

// RunReport summarizes one pass over a clippings file.
type RunReport struct {
	ID          string    `json:"id"`
	Status      RunStatus `json:"status"`
	InputPath   string    `json:"input_path"`
	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`
	DryRun      bool      `json:"dry_run,omitempty"`

	Blocks  int `json:"blocks"`  // Non-empty blocks in the input
	Parsed  int `json:"parsed"`  // Blocks parsed into entries
	Skipped int `json:"skipped"` // Entries already processed by an earlier run

	NewHighlights  int `json:"new_highlights"`
	NewNotes       int `json:"new_notes"`
	NewBookmarks   int `json:"new_bookmarks"`

	// Unmatched notes from earlier runs are matched again, so these cover
	// every note resolved in the run
	AttachedNotes  int `json:"attached_notes"`
	UnmatchedNotes int `json:"unmatched_notes"`

	KnownEntries int `json:"known_entries"` // Hashes in the progress file after the run

	Errors []EntryError `json:"errors"`
	Failed string       `json:"failed,omitempty"`
}
