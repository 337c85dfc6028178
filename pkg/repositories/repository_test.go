package repositories_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/cardgrid/scramble/pkg/repositories"
	"github.com/cardgrid/scramble/pkg/repositories/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleEvents() []*models.GameEvent {
	return []*models.GameEvent{
		{Player: "alice", Action: "flip", Outcome: "turned-up", Row: 0, Col: 0, Timestamp: 100},
		{Player: "alice", Action: "flip", Outcome: "matched", Row: 0, Col: 1, Timestamp: 200},
		{Player: "alice", Action: "flip", Outcome: "failed", Row: 2, Col: 2, Timestamp: 300},
		{Player: "bob", Action: "flip", Outcome: "mismatched", Row: 1, Col: 0, Timestamp: 150},
		{Player: "bob", Action: "replace", Outcome: "replaced", Timestamp: 250},
	}
}

func testRepository(t *testing.T, repo repositories.Repository) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, repo.SaveEvents(ctx, sampleEvents()))

	stats, err := repo.PlayerStats(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.Flips)
	assert.Equal(t, int64(1), stats.Matches)
	assert.Equal(t, int64(0), stats.Mismatches)
	assert.Equal(t, int64(1), stats.Failures)
	assert.Equal(t, int64(300), stats.LastSeen)

	stats, err = repo.PlayerStats(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Flips)
	assert.Equal(t, int64(1), stats.Mismatches)

	_, err = repo.PlayerStats(ctx, "nobody")
	assert.True(t, repositories.IsNotFound(err))
}

func TestInMemoryRepository(t *testing.T) {
	repo := repositories.NewInMemoryRepository()
	defer repo.Close(context.Background())
	testRepository(t, repo)
}

func TestSQLiteRepository(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.db")
	repo, err := repositories.NewSQLiteRepository(context.Background(), path)
	require.NoError(t, err)
	defer repo.Close(context.Background())
	testRepository(t, repo)
}

func TestSaveEventsEmptyBatch(t *testing.T) {
	repo := repositories.NewInMemoryRepository()
	defer repo.Close(context.Background())
	assert.NoError(t, repo.SaveEvents(context.Background(), nil))
}
