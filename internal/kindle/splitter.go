package kindle

import (
	"iter"
	"strings"
)

// EntrySeparator is the line the Kindle writes between clippings.
const EntrySeparator = "=========="

const byteOrderMark = "\uFEFF"

// Block is one raw clipping as it appears in the export.
type Block struct {
	// Index counts non-empty blocks from zero.
	Index int
	// Line is the 1-based line number of the block's first non-blank line.
	Line int
	Raw  string
}

// Split lazily yields the raw clipping blocks of content. Blank blocks,
// including the one after the trailing separator, are dropped. Malformed
// separators are not detected here; they surface as malformed blocks.
func Split(content string) iter.Seq[Block] {
	return func(yield func(Block) bool) {
		var current strings.Builder
		index, lineNo, startLine := 0, 0, 0

		flush := func() bool {
			raw := current.String()
			current.Reset()
			start := startLine
			startLine = 0
			if strings.TrimSpace(strings.ReplaceAll(raw, byteOrderMark, "")) == "" {
				return true
			}
			block := Block{Index: index, Line: start, Raw: raw}
			index++
			return yield(block)
		}

		for line := range strings.Lines(content) {
			lineNo++
			if strings.TrimSpace(line) == EntrySeparator {
				if !flush() {
					return
				}
				continue
			}
			if startLine == 0 && strings.TrimSpace(strings.ReplaceAll(line, byteOrderMark, "")) != "" {
				startLine = lineNo
			}
			current.WriteString(line)
		}

		// The last clipping may not be followed by a separator
		flush()
	}
}
