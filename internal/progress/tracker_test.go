package progress

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTracker_Load(t *testing.T) {
	t.Run("missing file is empty progress", func(t *testing.T) {
		tracker := NewTracker(filepath.Join(t.TempDir(), "processed_entries.json"))
		tracker.Load()

		assert.Equal(t, 0, tracker.Len())
	})

	t.Run("corrupt file is empty progress", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "processed_entries.json")
		require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

		tracker := NewTracker(path)
		tracker.Load()

		assert.Equal(t, 0, tracker.Len())
	})

	t.Run("reads a json array", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "processed_entries.json")
		require.NoError(t, os.WriteFile(path, []byte(`["a","b"]`), 0644))

		tracker := NewTracker(path)
		tracker.Load()

		assert.True(t, tracker.Seen("a"))
		assert.True(t, tracker.Seen("b"))
		assert.False(t, tracker.Seen("c"))
	})

	t.Run("an object is corrupt progress", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "processed_entries.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"processedEntries":["x"]}`), 0644))

		tracker := NewTracker(path)
		tracker.Load()

		assert.Equal(t, 0, tracker.Len())
	})
}

func TestTracker_MarkAndSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "processed_entries.json")

	tracker := NewTracker(path)
	tracker.Load()
	assert.True(t, tracker.Mark("b"))
	assert.True(t, tracker.Mark("a"))
	assert.False(t, tracker.Mark("a"))
	assert.Equal(t, 2, tracker.Len())
	require.NoError(t, tracker.Save())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var hashes []string
	require.NoError(t, json.Unmarshal(data, &hashes))
	assert.Equal(t, []string{"a", "b"}, hashes)

	reloaded := NewTracker(path)
	reloaded.Load()
	assert.Equal(t, 2, reloaded.Len())
}

func TestTracker_Lock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "processed_entries.json")

	first := NewTracker(path)
	require.NoError(t, first.Lock())

	second := NewTracker(path)
	err := second.Lock()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrLocked))

	first.Unlock()
	require.NoError(t, second.Lock())
	second.Unlock()

	assert.NoFileExists(t, path+".lock")
}
