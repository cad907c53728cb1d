package memory

import (
	"context"
	"sync"

	"github.com/cmlabs-hris/workforce-analytics/internal/domain/forecast"
)

// ModelStateRepository keeps the model state in process with the same
// compare-and-set contract as the durable stores.
type ModelStateRepository struct {
	mu       sync.Mutex
	state    *forecast.ModelState
	saveErr  error
	loadErr  error
	saveHook func()
}

func NewModelStateRepository() *ModelStateRepository {
	return &ModelStateRepository{}
}

// FailSave makes Save return err; FailLoad does the same for Load.
func (r *ModelStateRepository) FailSave(err error) {
	r.mu.Lock()
	r.saveErr = err
	r.mu.Unlock()
}

func (r *ModelStateRepository) FailLoad(err error) {
	r.mu.Lock()
	r.loadErr = err
	r.mu.Unlock()
}

// BeforeSave registers fn to run at the start of every Save, outside the lock.
func (r *ModelStateRepository) BeforeSave(fn func()) {
	r.mu.Lock()
	r.saveHook = fn
	r.mu.Unlock()
}

func (r *ModelStateRepository) Load(_ context.Context) (*forecast.ModelState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.loadErr != nil {
		return nil, r.loadErr
	}
	if r.state == nil {
		return nil, nil
	}
	state := *r.state
	state.Logs = append([]forecast.LogEntry(nil), r.state.Logs...)
	return &state, nil
}

func (r *ModelStateRepository) Save(_ context.Context, state forecast.ModelState, expectedRevision int64) (forecast.ModelState, error) {
	r.mu.Lock()
	hook := r.saveHook
	r.mu.Unlock()
	if hook != nil {
		hook()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return forecast.ModelState{}, r.saveErr
	}

	var current int64
	if r.state != nil {
		current = r.state.Revision
	}
	if current != expectedRevision {
		return forecast.ModelState{}, forecast.ErrRevisionConflict
	}

	state.Revision = current + 1
	stored := state
	stored.Logs = append([]forecast.LogEntry(nil), state.Logs...)
	r.state = &stored
	return state, nil
}

// TrainingAuditRepository is an append-only in-process audit log.
type TrainingAuditRepository struct {
	mu        sync.Mutex
	entries   []forecast.TrainingAuditEntry
	appendErr error
}

func NewTrainingAuditRepository() *TrainingAuditRepository {
	return &TrainingAuditRepository{}
}

func (r *TrainingAuditRepository) FailAppend(err error) {
	r.mu.Lock()
	r.appendErr = err
	r.mu.Unlock()
}

func (r *TrainingAuditRepository) Append(_ context.Context, entry forecast.TrainingAuditEntry) (forecast.TrainingAuditEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.appendErr != nil {
		return forecast.TrainingAuditEntry{}, r.appendErr
	}
	r.entries = append(r.entries, entry)
	return entry, nil
}

func (r *TrainingAuditRepository) ListRecent(_ context.Context, limit int) ([]forecast.TrainingAuditEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// entries are appended in order, so newest first is the reverse
	out := make([]forecast.TrainingAuditEntry, 0, len(r.entries))
	for i := len(r.entries) - 1; i >= 0; i-- {
		if limit > 0 && len(out) == limit {
			break
		}
		out = append(out, r.entries[i])
	}
	return out, nil
}
