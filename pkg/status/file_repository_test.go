package status

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stateName string

func (s stateName) String() string { return string(s) }

func TestFileRepository_LoadMissing(t *testing.T) {
	repo := NewFileRepository(t.TempDir())

	s, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.True(t, s.IsEmpty())
}

func TestFileRepository_SaveLoad(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	repo := NewFileRepository(dir)
	ctx := context.Background()

	want := Snapshot{
		WorkerID:   "id-1",
		Name:       "demo",
		Iterations: 42,
		Pauses:     2,
	}
	want.RecordConfiguration()
	want.Touch(stateName("Paused"))

	require.NoError(t, repo.Save(ctx, want))

	got, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want.WorkerID, got.WorkerID)
	assert.Equal(t, "Paused", got.State)
	assert.Equal(t, uint64(42), got.Iterations)
	assert.Equal(t, uint64(1), got.ConfigsApplied)
	assert.WithinDuration(t, want.UpdatedAt, got.UpdatedAt, time.Millisecond)
	assert.WithinDuration(t, want.LastConfigAt, got.LastConfigAt, time.Millisecond)

	_, err = os.Stat(repo.Path() + ".tmp")
	assert.True(t, os.IsNotExist(err), "temp file left behind")
}

func TestFileRepository_SaveOverwrites(t *testing.T) {
	repo := NewFileRepository(t.TempDir())
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, Snapshot{WorkerID: "a", Iterations: 1}))
	require.NoError(t, repo.Save(ctx, Snapshot{WorkerID: "a", Iterations: 2}))

	got, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), got.Iterations)
}

func TestFileRepository_LoadCorrupt(t *testing.T) {
	dir := t.TempDir()
	repo := NewFileRepository(dir)
	require.NoError(t, os.WriteFile(repo.Path(), []byte("{not json"), 0o600))

	_, err := repo.Load(context.Background())
	assert.Error(t, err)
}

func TestFileRepository_CanceledContext(t *testing.T) {
	repo := NewFileRepository(t.TempDir())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, repo.Save(ctx, Snapshot{WorkerID: "a"}), context.Canceled)
	_, err := repo.Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFileRepository_SnakeCase(t *testing.T) {
	repo := NewFileRepository(t.TempDir())
	require.NoError(t, repo.Save(context.Background(), Snapshot{WorkerID: "a", ConfigsApplied: 3}))

	data, err := os.ReadFile(repo.Path())
	require.NoError(t, err)
	assert.Contains(t, string(data), `"worker_id": "a"`)
	assert.Contains(t, string(data), `"configs_applied": 3`)
}
