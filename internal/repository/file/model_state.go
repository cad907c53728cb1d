// Package file persists the forecast model as a JSON document on a
// storage.FileStorage backend.
package file

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cmlabs-hris/workforce-analytics/internal/domain/forecast"
	"github.com/cmlabs-hris/workforce-analytics/internal/pkg/storage"
)

type modelStateRepositoryImpl struct {
	mu      sync.Mutex
	storage storage.FileStorage
	path    string
}

func NewModelStateRepository(fs storage.FileStorage) forecast.ModelStateRepository {
	return &modelStateRepositoryImpl{
		storage: fs,
		path:    forecast.ModelStateKey + ".json",
	}
}

// Load implements forecast.ModelStateRepository.
func (r *modelStateRepositoryImpl) Load(ctx context.Context) (*forecast.ModelState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.read(ctx)
}

func (r *modelStateRepositoryImpl) read(ctx context.Context) (*forecast.ModelState, error) {
	rc, err := r.storage.Get(ctx, r.path)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open model state: %w", err)
	}
	defer rc.Close()

	var state forecast.ModelState
	if err := json.NewDecoder(rc).Decode(&state); err != nil {
		return nil, fmt.Errorf("failed to decode model state: %w", err)
	}
	if state.Logs == nil {
		state.Logs = []forecast.LogEntry{}
	}
	return &state, nil
}

// Save implements forecast.ModelStateRepository. The document is replaced
// through the storage's temp-file-then-rename Put.
func (r *modelStateRepositoryImpl) Save(ctx context.Context, state forecast.ModelState, expectedRevision int64) (forecast.ModelState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, err := r.read(ctx)
	if err != nil {
		return forecast.ModelState{}, err
	}

	var revision int64
	if current != nil {
		revision = current.Revision
	}
	if revision != expectedRevision {
		return forecast.ModelState{}, forecast.ErrRevisionConflict
	}

	state.Revision = revision + 1
	state.LastTrained = state.LastTrained.UTC().Truncate(time.Microsecond)
	if state.Logs == nil {
		state.Logs = []forecast.LogEntry{}
	}

	payload, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return forecast.ModelState{}, fmt.Errorf("failed to encode model state: %w", err)
	}
	if err := r.storage.Put(ctx, r.path, bytes.NewReader(payload)); err != nil {
		return forecast.ModelState{}, fmt.Errorf("failed to write model state: %w", err)
	}

	return state, nil
}
