package utils

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	// Characters invalid in filenames on most filesystems
	invalidFilenameChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)
	multipleSpaces       = regexp.MustCompile(`\s+`)
)

const maxFilenameBytes = 200

// SanitizeFilename turns a book title into a name usable as a markdown file
// in an Obsidian vault.
func SanitizeFilename(filename string) string {
	filename = strings.NewReplacer("\n", " ", "\r", " ", "\t", " ").Replace(filename)
	filename = invalidFilenameChars.ReplaceAllString(filename, "")
	filename = multipleSpaces.ReplaceAllString(filename, " ")

	// Obsidian treats these as link and tag syntax
	filename = strings.NewReplacer("#", "", "^", "", "[", "(", "]", ")").Replace(filename)
	filename = strings.Trim(filename, " .")

	// Most filesystems allow 255 bytes; leave room for the extension
	if len(filename) > maxFilenameBytes {
		cut := maxFilenameBytes
		for cut > 0 && !utf8.RuneStart(filename[cut]) {
			cut--
		}
		filename = strings.TrimSpace(filename[:cut])
	}

	if filename == "" {
		filename = "Untitled"
	}
	return filename
}
