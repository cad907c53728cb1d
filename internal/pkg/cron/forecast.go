package cron

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cmlabs-hris/workforce-analytics/internal/domain/forecast"
	"github.com/cmlabs-hris/workforce-analytics/internal/pkg/utils"
)

// TriggeredByCron is recorded in the training audit for scheduled runs.
const TriggeredByCron = "cron"

const retrainTimeout = 10 * time.Minute

type ForecastJobs struct {
	trainerService forecast.TrainerService
	retrainHour    int
	loc            *time.Location
	now            func() time.Time

	mu      sync.Mutex
	lastRun string
}

func NewForecastJobs(trainerService forecast.TrainerService, retrainHour int, loc *time.Location) *ForecastJobs {
	if loc == nil {
		loc = time.UTC
	}
	return &ForecastJobs{
		trainerService: trainerService,
		retrainHour:    retrainHour,
		loc:            loc,
		now:            time.Now,
	}
}

func (j *ForecastJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("retrain_attendance_forecast", 1*time.Hour, retrainTimeout, j.RetrainForecast)
}

// RetrainForecast retrains the model once per day, during the configured hour.
func (j *ForecastJobs) RetrainForecast(ctx context.Context) error {
	now := j.now().In(j.loc)
	if now.Hour() != j.retrainHour {
		return nil
	}

	today := utils.FormatDate(utils.Today(now, j.loc))

	j.mu.Lock()
	defer j.mu.Unlock()
	if j.lastRun == today {
		return nil
	}

	slog.Info("Cron: Starting forecast model retraining")

	result := j.trainerService.Train(ctx, TriggeredByCron)
	if !result.Success {
		if result.Conflict {
			slog.Info("Cron: Forecast retraining skipped", "reason", result.Message)
			return nil
		}
		return fmt.Errorf("forecast retraining failed: %s", result.Message)
	}

	j.lastRun = today
	slog.Info("Cron: Forecast model retrained",
		"average_rate", result.Summary.AverageRate,
		"stability_factor", result.Summary.StabilityFactor,
		"data_points", result.Summary.DataPoints,
		"revision", result.Summary.Revision,
	)
	return nil
}
