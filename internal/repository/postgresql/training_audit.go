package postgresql

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cmlabs-hris/workforce-analytics/internal/domain/forecast"
	"github.com/cmlabs-hris/workforce-analytics/internal/pkg/database"
)

type trainingAuditRepository struct {
	db *database.DB
}

func NewTrainingAuditRepository(db *database.DB) forecast.TrainingAuditRepository {
	return &trainingAuditRepository{db: db}
}

// Append implements forecast.TrainingAuditRepository.
func (r *trainingAuditRepository) Append(ctx context.Context, entry forecast.TrainingAuditEntry) (forecast.TrainingAuditEntry, error) {
	q := GetQuerier(ctx, r.db)

	logs, err := json.Marshal(entry.Logs)
	if err != nil {
		return forecast.TrainingAuditEntry{}, fmt.Errorf("failed to encode training logs: %w", err)
	}

	query := `
		INSERT INTO forecast_training_logs (
			id, triggered_by, data_points, average_rate, stability_factor, logs, summary, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`

	err = q.QueryRow(ctx, query,
		entry.ID,
		entry.TriggeredBy,
		entry.DataPoints,
		entry.AverageRate,
		entry.StabilityFactor,
		string(logs),
		entry.Summary,
		entry.CreatedAt,
	).Scan(&entry.CreatedAt)
	if err != nil {
		return forecast.TrainingAuditEntry{}, fmt.Errorf("failed to append training audit entry: %w", err)
	}

	return entry, nil
}

// ListRecent implements forecast.TrainingAuditRepository.
func (r *trainingAuditRepository) ListRecent(ctx context.Context, limit int) ([]forecast.TrainingAuditEntry, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id::text, triggered_by, data_points, average_rate, stability_factor, logs, summary, created_at
		FROM forecast_training_logs
		ORDER BY created_at DESC, id DESC
		LIMIT $1
	`

	rows, err := q.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list training audit entries: %w", err)
	}
	defer rows.Close()

	var entries []forecast.TrainingAuditEntry
	for rows.Next() {
		var (
			e    forecast.TrainingAuditEntry
			logs []byte
		)
		err := rows.Scan(&e.ID, &e.TriggeredBy, &e.DataPoints, &e.AverageRate, &e.StabilityFactor, &logs, &e.Summary, &e.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan training audit entry: %w", err)
		}
		if err := json.Unmarshal(logs, &e.Logs); err != nil {
			return nil, fmt.Errorf("failed to decode training logs: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate training audit entries: %w", err)
	}
	return entries, nil
}
