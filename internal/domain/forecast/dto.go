package forecast

// DailyRate is the company attendance rate of one date.
type DailyRate struct {
	Date         string  `json:"date"` // Format: "YYYY-MM-DD"
	Rate         float64 `json:"attendance_rate"`
	PresentCount int64   `json:"present_count"`
}

// DailyRateSeries is the working-day series, oldest first.
type DailyRateSeries struct {
	Rates       []DailyRate `json:"rates"`
	Denominator int64       `json:"denominator"`
	NoData      bool        `json:"no_data"` // denominator was zero; rates are placeholders
}

// TrendPoint is one calendar day of the trend line.
type TrendPoint struct {
	Date         string  `json:"date"` // Format: "YYYY-MM-DD"
	Rate         float64 `json:"attendance_rate"`
	MovingAvg    float64 `json:"moving_avg"`
	PresentCount int64   `json:"present_count"`
}

// Result is the short-horizon company forecast.
type Result struct {
	Percentage    float64 `json:"percentage"`
	Confidence    int     `json:"confidence"` // 0-99
	Trend         Trend   `json:"trend"`
	DataPoints    int     `json:"data_points"`
	LowConfidence bool    `json:"low_confidence"`
	ModelApplied  bool    `json:"model_applied"`
}

// TrainingResult reports a training run. Failures are carried here, never as errors.
type TrainingResult struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Summary *ModelState `json:"summary,omitempty"`
	Logs    []LogEntry  `json:"logs"`

	// Conflict marks failures caused by a concurrent run rather than by the data.
	Conflict bool `json:"-"`
}

// ModelStatusResponse is returned by the model endpoint.
type ModelStatusResponse struct {
	Trained bool        `json:"trained"`
	State   *ModelState `json:"state,omitempty"`
}
