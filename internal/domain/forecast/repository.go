package forecast

import "context"

// ModelStateRepository stores the singleton model state as a versioned entry.
type ModelStateRepository interface {
	// Load returns nil, nil when no model has been trained yet
	Load(ctx context.Context) (*ModelState, error)

	// Save replaces the state if the stored revision still equals
	// expectedRevision (0 = no state yet) and returns it with its new revision.
	// A mismatch yields ErrRevisionConflict.
	Save(ctx context.Context, state ModelState, expectedRevision int64) (ModelState, error)
}

// TrainingAuditRepository is the append-only log of training runs.
type TrainingAuditRepository interface {
	Append(ctx context.Context, entry TrainingAuditEntry) (TrainingAuditEntry, error)

	// ListRecent returns up to limit entries, newest first
	ListRecent(ctx context.Context, limit int) ([]TrainingAuditEntry, error)
}
