package kindle

import (
	"errors"
	"fmt"
)

var (
	ErrMalformedEntry = errors.New("malformed clipping entry")
	ErrEmptyContent   = errors.New("clipping has no text")
)

// ParseError describes a block that could not be turned into an entry.
// It never aborts a run; callers collect it into the run report.
type ParseError struct {
	Block   int
	Line    int
	Reason  string
	Excerpt string
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("block %d (line %d): %s: %v", e.Block+1, e.Line, e.Reason, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func newParseError(block Block, err error, reason string) *ParseError {
	return &ParseError{
		Block:   block.Index,
		Line:    block.Line,
		Reason:  reason,
		Excerpt: excerpt(block.Raw, 80),
		Err:     err,
	}
}

func excerpt(raw string, limit int) string {
	runes := []rune(normalizeBlock(raw))
	if len(runes) <= limit {
		return string(runes)
	}
	return string(runes[:limit]) + "…"
}
