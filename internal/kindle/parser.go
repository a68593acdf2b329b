package kindle

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/mrlokans/clippings/internal/entities"
)

// Parser parses Kindle My Clippings.txt blocks
type Parser struct {
	// StripNonASCII replaces every non-ASCII rune with a space before parsing.
	StripNonASCII bool
}

func NewParser() *Parser {
	return &Parser{}
}

// Regex patterns for parsing metadata lines
var (
	// Matches: "- Your Highlight on page 8 | Location 64-64 | Added on Tuesday, April 15, 2025 10:16:21 PM"
	// or: "- Your Note on page 31 | Location 307 | Added on Tuesday, April 15, 2025 11:33:26 PM"
	// or: "- Your Highlight at location 784-785 | Added on Saturday, 26 March 2016 18:37:26"
	// or: "Your Highlight on page 12-12 | Added on Monday, 1 January 2024"
	metadataPattern = regexp.MustCompile(`(?i)^(?:-\s*)?Your\s+(Highlight|Note|Bookmark)\b`)

	pagePattern     = regexp.MustCompile(`(?i)\bpage\s+(\d+)(?:\s*-\s*(\d+))?`)
	locationPattern = regexp.MustCompile(`(?i)\blocation\s+(\d+)(?:\s*-\s*(\d+))?`)
	addedOnPattern  = regexp.MustCompile(`(?i)added on\s+(.+)$`)

	// Front matter is numbered in roman numerals: "Your Highlight on page xii"
	romanPagePattern = regexp.MustCompile(`(?i)\bpage\s+[ivxlcdm]+\b`)

	// Date layouts observed in the wild, most specific first
	dateLayouts = []string{
		"Monday, January 2, 2006 3:04:05 PM",
		"Monday, January 2, 2006 15:04:05",
		"Monday, 2 January 2006 3:04:05 PM",
		"Monday, 2 January 2006 15:04:05",
		"Monday, January 2, 2006",
		"Monday, 2 January 2006",
	}

	// Title with author: "Book Title (Author Name)"
	titleAuthorPattern = regexp.MustCompile(`^(.+?)\s*\(([^()]+)\)\s*$`)
)

// ParseAll parses every block of content. Blocks that fail to parse are
// returned alongside the entries and never stop the remaining blocks.
func (p *Parser) ParseAll(content string) ([]entities.ClippingEntry, []*ParseError) {
	var entries []entities.ClippingEntry
	var failures []*ParseError
	for block := range Split(content) {
		entry, err := p.ParseBlock(block)
		if err != nil {
			failures = append(failures, err)
			continue
		}
		entries = append(entries, entry)
	}
	return entries, failures
}

// ParseBlock turns a raw block into an entry.
func (p *Parser) ParseBlock(block Block) (entities.ClippingEntry, *ParseError) {
	raw := block.Raw
	if p.StripNonASCII {
		raw = stripNonASCII(raw)
	}
	raw = strings.ReplaceAll(raw, byteOrderMark, "")
	raw = strings.ReplaceAll(raw, "\r\n", "\n")

	lines := strings.Split(raw, "\n")
	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	if len(lines) < 2 {
		return entities.ClippingEntry{}, newParseError(block, ErrMalformedEntry, "missing metadata line")
	}

	titleLine := strings.TrimSpace(lines[0])
	title, author := parseTitleAuthor(titleLine)

	metadataLine := strings.TrimSpace(lines[1])
	kind, ok := parseEntryKind(metadataLine)
	if !ok {
		return entities.ClippingEntry{}, newParseError(block, ErrMalformedEntry, "unrecognised metadata line")
	}

	location, page, pageEnd, ok := parsePosition(metadataLine)
	if !ok {
		return entities.ClippingEntry{}, newParseError(block, ErrMalformedEntry, "no page or location")
	}

	text := parseText(lines[2:])
	if text == "" && kind != entities.EntryKindBookmark {
		return entities.ClippingEntry{}, newParseError(block, ErrEmptyContent, fmt.Sprintf("empty %s", kind))
	}

	return entities.ClippingEntry{
		Kind:     kind,
		Title:    title,
		Author:   author,
		Authors:  splitAuthors(author),
		Location: location,
		Page:     page,
		PageEnd:  pageEnd,
		AddedAt:  parseDate(metadataLine),
		Text:     text,
		RawHash:  HashBlock(block.Raw),
	}, nil
}

func parseTitleAuthor(line string) (title, author string) {
	matches := titleAuthorPattern.FindStringSubmatch(line)
	if len(matches) == 3 {
		return strings.TrimSpace(matches[1]), strings.TrimSpace(matches[2])
	}
	// No author in parentheses, use whole line as title
	return line, ""
}

// Kindle separates multiple authors with semicolons; a comma usually
// belongs to a "Last, First" name.
func splitAuthors(author string) []string {
	if author == "" {
		return nil
	}
	var authors []string
	for _, a := range strings.Split(author, ";") {
		if a = strings.TrimSpace(a); a != "" {
			authors = append(authors, a)
		}
	}
	return authors
}

func parseEntryKind(line string) (entities.EntryKind, bool) {
	matches := metadataPattern.FindStringSubmatch(line)
	if len(matches) != 2 {
		return "", false
	}
	switch strings.ToLower(matches[1]) {
	case "highlight":
		return entities.EntryKindHighlight, true
	case "note":
		return entities.EntryKindNote, true
	case "bookmark":
		return entities.EntryKindBookmark, true
	}
	return "", false
}

// parsePosition prefers the Kindle location over the page number. Front
// matter pages carry no usable number and map to page 0.
func parsePosition(line string) (location entities.Location, page, pageEnd int, ok bool) {
	// The date part may contain digits that look like ranges
	if idx := addedOnPattern.FindStringIndex(line); idx != nil {
		line = line[:idx[0]]
	}

	page, pageEnd, hasPage := parseRange(pagePattern, line)
	start, end, hasLocation := parseRange(locationPattern, line)

	switch {
	case hasLocation:
		location = entities.Location{Type: entities.LocationTypeLocation, Start: start, End: end}
	case hasPage:
		location = entities.Location{Type: entities.LocationTypePage, Start: page, End: pageEnd}
	case romanPagePattern.MatchString(line):
		location = entities.Location{Type: entities.LocationTypePage}
	default:
		return entities.Location{}, 0, 0, false
	}
	return location, page, pageEnd, true
}

func parseRange(pattern *regexp.Regexp, line string) (start, end int, ok bool) {
	matches := pattern.FindStringSubmatch(line)
	if len(matches) < 2 {
		return 0, 0, false
	}
	start, err := strconv.Atoi(matches[1])
	if err != nil {
		return 0, 0, false
	}
	end = start
	if len(matches) >= 3 && matches[2] != "" {
		if parsed, err := strconv.Atoi(matches[2]); err == nil && parsed >= start {
			end = parsed
		}
	}
	return start, end, true
}

func parseDate(line string) *time.Time {
	matches := addedOnPattern.FindStringSubmatch(line)
	if len(matches) != 2 {
		return nil
	}
	dateStr := strings.TrimSpace(matches[1])

	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, dateStr)
		if err == nil {
			return &t
		}
	}
	return nil
}

// Format is: title, metadata, blank line, content. Older exports sometimes
// omit the blank line, so it is skipped only when present.
func parseText(lines []string) string {
	if len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
