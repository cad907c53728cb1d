package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/workforce-analytics/internal/domain/forecast"
	"github.com/cmlabs-hris/workforce-analytics/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type modelStateRepository struct {
	db *database.DB
}

// NewModelStateRepository stores the singleton model state as one keyed row.
func NewModelStateRepository(db *database.DB) forecast.ModelStateRepository {
	return &modelStateRepository{db: db}
}

// Load implements forecast.ModelStateRepository.
func (r *modelStateRepository) Load(ctx context.Context) (*forecast.ModelState, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT average_rate, stability_factor, data_points, last_trained, version, revision, logs
		FROM forecast_model_state
		WHERE key = $1
	`

	var (
		state forecast.ModelState
		logs  []byte
	)
	err := q.QueryRow(ctx, query, forecast.ModelStateKey).Scan(
		&state.AverageRate, &state.StabilityFactor, &state.DataPoints,
		&state.LastTrained, &state.Version, &state.Revision, &logs,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load model state: %w", err)
	}

	if err := json.Unmarshal(logs, &state.Logs); err != nil {
		return nil, fmt.Errorf("failed to decode model state logs: %w", err)
	}
	return &state, nil
}

// Save implements forecast.ModelStateRepository. Writers are serialized by a
// transaction-scoped advisory lock on the state key.
func (r *modelStateRepository) Save(ctx context.Context, state forecast.ModelState, expectedRevision int64) (forecast.ModelState, error) {
	logs, err := json.Marshal(state.Logs)
	if err != nil {
		return forecast.ModelState{}, fmt.Errorf("failed to encode model state logs: %w", err)
	}

	err = WithTransaction(ctx, r.db, func(txCtx context.Context) error {
		q := GetQuerier(txCtx, r.db)

		if _, err := q.Exec(txCtx, `SELECT pg_advisory_xact_lock(hashtext($1))`, forecast.ModelStateKey); err != nil {
			return fmt.Errorf("failed to lock model state: %w", err)
		}

		var current int64
		err := q.QueryRow(txCtx, `SELECT revision FROM forecast_model_state WHERE key = $1`, forecast.ModelStateKey).Scan(&current)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("failed to read model state revision: %w", err)
		}
		if current != expectedRevision {
			return forecast.ErrRevisionConflict
		}

		query := `
			INSERT INTO forecast_model_state (
				key, average_rate, stability_factor, data_points, last_trained, version, logs, revision, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
			ON CONFLICT (key) DO UPDATE SET
				average_rate = EXCLUDED.average_rate,
				stability_factor = EXCLUDED.stability_factor,
				data_points = EXCLUDED.data_points,
				last_trained = EXCLUDED.last_trained,
				version = EXCLUDED.version,
				logs = EXCLUDED.logs,
				revision = EXCLUDED.revision,
				updated_at = NOW()
		`

		state.Revision = current + 1
		_, err = q.Exec(txCtx, query,
			forecast.ModelStateKey,
			state.AverageRate,
			state.StabilityFactor,
			state.DataPoints,
			state.LastTrained,
			state.Version,
			string(logs),
			state.Revision,
		)
		if err != nil {
			return fmt.Errorf("failed to write model state: %w", err)
		}
		return nil
	})
	if err != nil {
		return forecast.ModelState{}, err
	}

	return state, nil
}
