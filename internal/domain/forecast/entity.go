package forecast

import "time"

// ModelVersion is stamped on every persisted model state.
const ModelVersion = "1.0.0"

// ModelStateKey identifies the singleton model state entry.
const ModelStateKey = "attendance_forecast"

type Trend string

const (
	TrendUp     Trend = "UP"
	TrendDown   Trend = "DOWN"
	TrendStable Trend = "STABLE"
)

// LogEntry is one staged message of a training run.
type LogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
}

// ModelState holds the long-run stability statistics produced by training.
// It is replaced wholesale on every successful run; Revision increases by one
// with each replacement and guards against lost updates.
type ModelState struct {
	AverageRate     float64    `json:"average_rate"`
	StabilityFactor float64    `json:"stability_factor"`
	DataPoints      int        `json:"data_points"`
	LastTrained     time.Time  `json:"last_trained"`
	Version         string     `json:"version"`
	Revision        int64      `json:"revision"`
	Logs            []LogEntry `json:"logs"`
}

// TrainingAuditEntry is the immutable record of one successful training run.
type TrainingAuditEntry struct {
	ID              string     `json:"id"`
	TriggeredBy     string     `json:"triggered_by"`
	DataPoints      int        `json:"data_points"`
	AverageRate     float64    `json:"average_rate"`
	StabilityFactor float64    `json:"stability_factor"`
	Logs            []LogEntry `json:"logs"`
	Summary         string     `json:"summary"`
	CreatedAt       time.Time  `json:"created_at"`
}
