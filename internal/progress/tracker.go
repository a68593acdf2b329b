// Package progress remembers which clipping blocks earlier runs already
// emitted, so an updated export only contributes its new entries.
package progress

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"slices"

	"github.com/gofrs/flock"
	"github.com/mrlokans/clippings/internal/utils"
)

var ErrLocked = errors.New("another run holds the progress file")

// Tracker is the set of processed block hashes backed by a JSON file.
type Tracker struct {
	Path string

	seen map[string]struct{}
	lock *flock.Flock
}

func NewTracker(path string) *Tracker {
	return &Tracker{
		Path: path,
		seen: make(map[string]struct{}),
		lock: flock.New(path + ".lock"),
	}
}

// Load reads the progress file. A missing file is an empty set; an
// unreadable or corrupt one is logged and also treated as empty, since the
// worst outcome is reprocessing.
func (t *Tracker) Load() {
	t.seen = make(map[string]struct{})

	data, err := os.ReadFile(t.Path)
	if errors.Is(err, os.ErrNotExist) {
		return
	}
	if err != nil {
		log.Printf("[PROGRESS] Cannot read %s, starting with empty progress: %v", t.Path, err)
		return
	}

	hashes, err := decode(data)
	if err != nil {
		log.Printf("[PROGRESS] Corrupt progress file %s, starting with empty progress: %v", t.Path, err)
		return
	}
	for _, h := range hashes {
		t.seen[h] = struct{}{}
	}
}

func decode(data []byte) ([]string, error) {
	var hashes []string
	if err := json.Unmarshal(data, &hashes); err != nil {
		return nil, err
	}
	return hashes, nil
}

func (t *Tracker) Seen(hash string) bool {
	_, ok := t.seen[hash]
	return ok
}

// Mark records hash as processed. It reports whether the hash was new.
func (t *Tracker) Mark(hash string) bool {
	if t.Seen(hash) {
		return false
	}
	t.seen[hash] = struct{}{}
	return true
}

func (t *Tracker) Len() int {
	return len(t.seen)
}

// Save rewrites the progress file as a sorted JSON array.
func (t *Tracker) Save() error {
	hashes := make([]string, 0, len(t.seen))
	for h := range t.seen {
		hashes = append(hashes, h)
	}
	slices.Sort(hashes)

	data, err := json.MarshalIndent(hashes, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal progress: %w", err)
	}
	if err := utils.WriteFileAtomic(t.Path, data); err != nil {
		return fmt.Errorf("failed to write progress file: %w", err)
	}
	return nil
}

// Lock takes an exclusive lock next to the progress file so two runs cannot
// interleave their rewrites. The lock file only exists while a run holds it.
func (t *Tracker) Lock() error {
	if dir := filepath.Dir(t.Path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create progress directory: %w", err)
		}
	}
	ok, err := t.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrLocked, t.lock.Path())
	}
	// A run finishing between our open and our lock removes the file we
	// locked; a lock on an unlinked file guards nothing.
	if _, err := os.Stat(t.lock.Path()); err != nil {
		_ = t.lock.Unlock()
		return fmt.Errorf("%w: %s", ErrLocked, t.lock.Path())
	}
	return nil
}

// Unlock removes the lock file and releases the lock.
func (t *Tracker) Unlock() {
	if err := os.Remove(t.lock.Path()); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("[PROGRESS] Failed to remove lock file %s: %v", t.lock.Path(), err)
	}
	if err := t.lock.Unlock(); err != nil {
		log.Printf("[PROGRESS] Failed to release lock %s: %v", t.lock.Path(), err)
	}
}
