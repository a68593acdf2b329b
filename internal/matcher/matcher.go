// Package matcher decides which highlight a free-form note annotates.
//
// Kindle stores notes as separate clippings that only share a position with
// the passage they annotate, so any association is a heuristic. Policies are
// kept behind the Matcher interface so the rule can be tightened without
// touching the aggregation code.
package matcher

import (
	"errors"
	"fmt"

	"github.com/mrlokans/clippings/internal/entities"
)

const (
	PolicyClosest    = "closest"
	PolicyExactStart = "exact"
)

var ErrUnknownPolicy = errors.New("unknown match policy")

// Result maps highlight indexes to the indexes of the notes attached to
// them, in note arrival order. Unmatched lists notes with no qualifying
// highlight.
type Result struct {
	Attached  map[int][]int
	Unmatched []int
}

type Matcher interface {
	Match(highlights []entities.Highlight, notes []entities.Note) Result
}

// New returns the matcher for a configured policy name.
func New(policy string, maxDistance int) (Matcher, error) {
	switch policy {
	case PolicyClosest, "":
		return Closest{MaxDistance: maxDistance}, nil
	case PolicyExactStart:
		return ExactStart{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownPolicy, policy)
	}
}

// Closest attaches a note to the highlight that overlaps it or ends nearest
// before it. Ties go to the highlight whose start is nearest the note's
// start, then to the later highlight. A negative MaxDistance means no limit.
type Closest struct {
	MaxDistance int
}

func (c Closest) Match(highlights []entities.Highlight, notes []entities.Note) Result {
	result := Result{Attached: make(map[int][]int)}

	for ni, note := range notes {
		best := -1
		var bestDistance, bestStartGap int

		for hi, h := range highlights {
			distance, ok := distanceTo(h.Location, note.Location)
			if !ok {
				continue
			}
			if c.MaxDistance >= 0 && distance > c.MaxDistance {
				continue
			}
			startGap := abs(note.Location.Start - h.Location.Start)
			if best == -1 || distance < bestDistance ||
				(distance == bestDistance && startGap <= bestStartGap) {
				best, bestDistance, bestStartGap = hi, distance, startGap
			}
		}

		if best == -1 {
			result.Unmatched = append(result.Unmatched, ni)
			continue
		}
		result.Attached[best] = append(result.Attached[best], ni)
	}

	return result
}

// distanceTo is zero for overlapping ranges and the gap for a highlight that
// ends before the note. Highlights after the note never qualify.
func distanceTo(highlight, note entities.Location) (int, bool) {
	if highlight.Type != note.Type {
		return 0, false
	}
	if highlight.Overlaps(note) {
		return 0, true
	}
	if highlight.End < note.Start {
		return note.Start - highlight.End, true
	}
	return 0, false
}

// ExactStart only attaches a note to the most recent highlight that starts
// at the same position.
type ExactStart struct{}

func (ExactStart) Match(highlights []entities.Highlight, notes []entities.Note) Result {
	result := Result{Attached: make(map[int][]int)}

	for ni, note := range notes {
		matched := false
		for hi := len(highlights) - 1; hi >= 0; hi-- {
			h := highlights[hi]
			if h.Location.Type == note.Location.Type && h.Location.Start == note.Location.Start {
				result.Attached[hi] = append(result.Attached[hi], ni)
				matched = true
				break
			}
		}
		if !matched {
			result.Unmatched = append(result.Unmatched, ni)
		}
	}

	return result
}

// Attach applies m to the book's highlights and notes. Matched note text is
// appended to its highlight; the rest goes to UnmatchedNotes. It returns the
// number of attached notes.
func Attach(book *entities.Book, notes []entities.Note, m Matcher) int {
	if len(notes) == 0 {
		return 0
	}

	result := m.Match(book.Highlights, notes)

	// Collect per note so text lands in arrival order regardless of map order
	target := make(map[int]int, len(notes))
	for hi, noteIdxs := range result.Attached {
		for _, ni := range noteIdxs {
			target[ni] = hi
		}
	}

	attached := 0
	for ni, note := range notes {
		if hi, ok := target[ni]; ok {
			book.Highlights[hi].AttachNote(note)
			attached++
		}
	}
	for _, ni := range result.Unmatched {
		book.UnmatchedNotes = append(book.UnmatchedNotes, notes[ni])
	}

	return attached
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
