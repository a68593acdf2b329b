package audit

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/mrlokans/clippings/internal/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditor(t *testing.T) {
	tempDir := filepath.Join(t.TempDir(), "audit")
	auditor := NewAuditor(tempDir)

	t.Run("SaveReport creates audit directory and names file after the run", func(t *testing.T) {
		report := &entities.RunReport{
			ID:     "run-1",
			Status: entities.RunStatusSuccess,
			Blocks: 3,
			Errors: []entities.EntryError{{Block: 2, Line: 7, Message: "missing metadata line"}},
		}

		filename, err := auditor.SaveReport(report)
		require.NoError(t, err)
		assert.Equal(t, "run-1.json", filename)

		fileContent, err := os.ReadFile(filepath.Join(tempDir, filename))
		require.NoError(t, err)

		var saved entities.RunReport
		require.NoError(t, json.Unmarshal(fileContent, &saved))
		assert.Equal(t, 3, saved.Blocks)
		require.Len(t, saved.Errors, 1)
		assert.Equal(t, "missing metadata line", saved.Errors[0].Message)
	})

	t.Run("SaveReport assigns an id when missing", func(t *testing.T) {
		report := &entities.RunReport{}

		filename, err := auditor.SaveReport(report)
		require.NoError(t, err)
		assert.NotEmpty(t, report.ID)
		assert.Equal(t, report.ID+".json", filename)
	})

	t.Run("fails when the directory cannot be created", func(t *testing.T) {
		blocker := filepath.Join(t.TempDir(), "file")
		require.NoError(t, os.WriteFile(blocker, nil, 0644))

		_, err := NewAuditor(filepath.Join(blocker, "audit")).SaveReport(&entities.RunReport{})
		assert.Error(t, err)
	})
}
