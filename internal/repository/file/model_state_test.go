package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/workforce-analytics/internal/domain/forecast"
	"github.com/cmlabs-hris/workforce-analytics/internal/pkg/storage"
)

func newRepo(t *testing.T) (forecast.ModelStateRepository, string) {
	t.Helper()
	dir := t.TempDir()
	fs, err := storage.NewLocalStorage(dir)
	require.NoError(t, err)
	return NewModelStateRepository(fs), dir
}

func TestModelStateRepository_LoadMissing(t *testing.T) {
	repo, _ := newRepo(t)

	state, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, state)
}

func TestModelStateRepository_SaveAndLoad(t *testing.T) {
	repo, dir := newRepo(t)
	ctx := context.Background()
	trained := time.Date(2026, time.March, 18, 1, 0, 0, 0, time.UTC)

	saved, err := repo.Save(ctx, forecast.ModelState{
		AverageRate:     70,
		StabilityFactor: 0.8494,
		DataPoints:      10,
		LastTrained:     trained,
		Version:         forecast.ModelVersion,
		Logs:            []forecast.LogEntry{{Timestamp: trained, Message: "Training Complete."}},
	}, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), saved.Revision)

	_, err = os.Stat(filepath.Join(dir, "attendance_forecast.json"))
	require.NoError(t, err)

	loaded, err := repo.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, 70.0, loaded.AverageRate)
	assert.Equal(t, 0.8494, loaded.StabilityFactor)
	assert.True(t, loaded.LastTrained.Equal(trained))
	assert.Equal(t, "Training Complete.", loaded.Logs[0].Message)

	again, err := repo.Save(ctx, forecast.ModelState{Version: forecast.ModelVersion}, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), again.Revision)
	assert.NotNil(t, again.Logs)
}

func TestModelStateRepository_RevisionConflict(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := context.Background()

	_, err := repo.Save(ctx, forecast.ModelState{}, 0)
	require.NoError(t, err)

	_, err = repo.Save(ctx, forecast.ModelState{AverageRate: 1}, 0)
	assert.ErrorIs(t, err, forecast.ErrRevisionConflict)

	state, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Zero(t, state.AverageRate)
}

func TestModelStateRepository_CorruptFile(t *testing.T) {
	repo, dir := newRepo(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "attendance_forecast.json"), []byte("{not json"), 0o644))

	_, err := repo.Load(context.Background())
	assert.Error(t, err)
}
