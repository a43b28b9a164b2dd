package history

import (
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aks2learn/Test-Sync-Pro/internal/types"
)

func openTestJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	return j
}

func TestRecordAndList(t *testing.T) {
	j := openTestJournal(t)

	result := &types.SyncResult{
		RunID:        uuid.New().String(),
		StoryID:      101,
		CreatedIDs:   []int{301, 302},
		UpdatedIDs:   []int{201},
		SkippedCount: 2,
	}
	require.NoError(t, j.Record(result, false))

	entries, err := j.List(0, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	e := entries[0]
	assert.Equal(t, result.RunID, e.RunID)
	assert.Equal(t, 101, e.StoryID)
	assert.Equal(t, []int{301, 302}, e.CreatedIDs)
	assert.Equal(t, []int{201}, e.UpdatedIDs)
	assert.Equal(t, 2, e.SkippedCount)
	assert.False(t, e.DryRun)
	assert.False(t, e.RecordedAt.IsZero())
}

func TestListFiltersByStory(t *testing.T) {
	j := openTestJournal(t)

	for _, storyID := range []int{101, 101, 202} {
		require.NoError(t, j.Record(&types.SyncResult{
			RunID:   uuid.New().String(),
			StoryID: storyID,
		}, false))
	}

	entries, err := j.List(101, 10)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
	for _, e := range entries {
		assert.Equal(t, 101, e.StoryID)
	}

	all, err := j.List(0, 10)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestListLimit(t *testing.T) {
	j := openTestJournal(t)

	for i := 0; i < 5; i++ {
		require.NoError(t, j.Record(&types.SyncResult{
			RunID:   uuid.New().String(),
			StoryID: 101,
		}, false))
	}

	entries, err := j.List(101, 3)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestRecordDryRunFlag(t *testing.T) {
	j := openTestJournal(t)

	require.NoError(t, j.Record(&types.SyncResult{
		RunID:   uuid.New().String(),
		StoryID: 101,
	}, true))

	entries, err := j.List(101, 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].DryRun)
}

func TestDuplicateRunIDRejected(t *testing.T) {
	j := openTestJournal(t)

	runID := uuid.New().String()
	require.NoError(t, j.Record(&types.SyncResult{RunID: runID, StoryID: 1}, false))
	err := j.Record(&types.SyncResult{RunID: runID, StoryID: 1}, false)
	assert.Error(t, err)
}

func TestOpenCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "history.db")
	j, err := Open(path)
	require.NoError(t, err)
	defer j.Close()

	require.NoError(t, j.Record(&types.SyncResult{RunID: uuid.New().String(), StoryID: 1}, false))
}
