package kindle

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var titleFolder = cases.Fold()

// NormalizeTitle returns the key under which a book is grouped. Titles that
// differ only in case, Unicode composition or spacing land on the same book.
func NormalizeTitle(title string) string {
	title = strings.ReplaceAll(title, byteOrderMark, "")
	title = norm.NFKC.String(title)
	title = titleFolder.String(title)
	return strings.Join(strings.Fields(title), " ")
}

// HashBlock returns the identifier used to recognise a block across runs.
func HashBlock(raw string) string {
	sum := sha256.Sum256([]byte(normalizeBlock(raw)))
	return hex.EncodeToString(sum[:])
}

func normalizeBlock(raw string) string {
	raw = strings.ReplaceAll(raw, byteOrderMark, "")
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	raw = norm.NFC.String(raw)
	return strings.TrimSpace(raw)
}

// ReadClippings decodes an export into a string. Kindle writes UTF-8 with a
// byte order mark; older firmware and some desktop tools write UTF-16, which
// the BOM override also handles.
func ReadClippings(r io.Reader) (string, error) {
	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	data, err := io.ReadAll(transform.NewReader(r, decoder))
	if err != nil {
		return "", fmt.Errorf("failed to decode clippings: %w", err)
	}
	return string(data), nil
}

func stripNonASCII(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\r' {
			return r
		}
		if r > 127 {
			return ' '
		}
		return r
	}, s)
}
