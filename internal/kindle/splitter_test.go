package kindle

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(content string) []Block {
	var blocks []Block
	for b := range Split(content) {
		blocks = append(blocks, b)
	}
	return blocks
}

func TestSplit(t *testing.T) {
	t.Run("splits on separator lines and drops empty blocks", func(t *testing.T) {
		content := "A\nmeta\n\ntext\n==========\n\n==========\nB\nmeta\n\nmore\n==========\n"

		blocks := collect(content)

		require.Len(t, blocks, 2)
		assert.Equal(t, 0, blocks[0].Index)
		assert.Equal(t, 1, blocks[0].Line)
		assert.Equal(t, "A\nmeta\n\ntext\n", blocks[0].Raw)
		assert.Equal(t, 1, blocks[1].Index)
		assert.Equal(t, 8, blocks[1].Line)
	})

	t.Run("keeps last block without trailing separator", func(t *testing.T) {
		blocks := collect("A\nmeta\n\ntext\n==========\nB\nmeta\n\ntail")

		require.Len(t, blocks, 2)
		assert.True(t, strings.HasSuffix(blocks[1].Raw, "tail"))
	})

	t.Run("tolerates CRLF separators", func(t *testing.T) {
		blocks := collect("A\r\nmeta\r\n\r\ntext\r\n==========\r\nB\r\nmeta\r\n\r\nx\r\n")

		require.Len(t, blocks, 2)
	})

	t.Run("separator-like text inside a line is not a separator", func(t *testing.T) {
		blocks := collect("A\nmeta\n\nfoo ========== bar\n==========\n")

		require.Len(t, blocks, 1)
		assert.Contains(t, blocks[0].Raw, "foo ========== bar")
	})

	t.Run("empty input yields nothing", func(t *testing.T) {
		assert.Empty(t, collect(""))
		assert.Empty(t, collect("==========\n==========\n"))
	})

	t.Run("stops when consumer breaks", func(t *testing.T) {
		count := 0
		for range Split("A\n==========\nB\n==========\nC\n") {
			count++
			break
		}
		assert.Equal(t, 1, count)
	})
}
