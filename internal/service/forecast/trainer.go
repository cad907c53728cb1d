package forecast

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/cmlabs-hris/workforce-analytics/internal/domain/attendance"
	"github.com/cmlabs-hris/workforce-analytics/internal/domain/employee"
	"github.com/cmlabs-hris/workforce-analytics/internal/domain/forecast"
	"github.com/cmlabs-hris/workforce-analytics/internal/pkg/lock"
	"github.com/cmlabs-hris/workforce-analytics/internal/pkg/utils"
)

const (
	// TrainingLockKey serializes training runs across instances.
	TrainingLockKey = "forecast:model-training"

	defaultHistoryLimit = 10
	maxHistoryLimit     = 100
	defaultStability    = 0.5
)

// trainingLog collects the staged messages of one run.
type trainingLog struct {
	now     func() time.Time
	entries []forecast.LogEntry
}

func (l *trainingLog) add(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	l.entries = append(l.entries, forecast.LogEntry{Timestamp: l.now(), Message: msg})
	slog.Debug("Model training", "step", msg)
}

func (l *trainingLog) fail(message string) forecast.TrainingResult {
	return forecast.TrainingResult{Success: false, Message: message, Logs: l.entries}
}

type TrainerServiceImpl struct {
	attendanceRepo attendance.AttendanceRepository
	employeeRepo   employee.EmployeeRepository
	modelStates    forecast.ModelStateRepository
	auditLog       forecast.TrainingAuditRepository
	locker         lock.Locker
	lockTTL        time.Duration
	now            func() time.Time
}

func NewTrainerService(
	attendanceRepo attendance.AttendanceRepository,
	employeeRepo employee.EmployeeRepository,
	modelStates forecast.ModelStateRepository,
	auditLog forecast.TrainingAuditRepository,
	locker lock.Locker,
	lockTTL time.Duration,
) *TrainerServiceImpl {
	return &TrainerServiceImpl{
		attendanceRepo: attendanceRepo,
		employeeRepo:   employeeRepo,
		modelStates:    modelStates,
		auditLog:       auditLog,
		locker:         locker,
		lockTTL:        lockTTL,
		now:            time.Now,
	}
}

// Train implements forecast.TrainerService.
func (s *TrainerServiceImpl) Train(ctx context.Context, triggeredBy string) forecast.TrainingResult {
	logs := &trainingLog{now: s.now}

	unlock, err := s.locker.TryLock(ctx, TrainingLockKey, s.lockTTL)
	if err != nil {
		if errors.Is(err, lock.ErrLockHeld) {
			logs.add("Another training run holds the model lock.")
			result := logs.fail("Model training already in progress")
			result.Conflict = true
			return result
		}
		slog.Error("Failed to acquire training lock", "error", err)
		logs.add("CRITICAL ERROR: %v", err)
		return logs.fail(fmt.Sprintf("Failed to acquire training lock: %v", err))
	}
	defer func() {
		if err := unlock(context.WithoutCancel(ctx)); err != nil {
			slog.Warn("Failed to release training lock", "error", err)
		}
	}()

	logs.add("Initializing model training sequence...")

	logs.add("Fetching employee database for normalization...")
	denominator, err := s.employeeRepo.Count(ctx, employee.WorkforceScope)
	if err != nil {
		slog.Error("Failed to count employees for training", "error", err)
		logs.add("CRITICAL ERROR: %v", err)
		return logs.fail(fmt.Sprintf("Failed to count employees: %v", err))
	}
	if denominator == 0 {
		logs.add("ERROR: No employees found in system.")
		return logs.fail("No employees found to train model")
	}
	logs.add("System identified %d active employees.", denominator)

	logs.add("Analyzing historical attendance records...")
	counts, err := s.attendanceRepo.CountByDateAll(ctx, employee.WorkforceScope, attendance.PresentStatuses)
	if err != nil {
		slog.Error("Failed to load attendance history for training", "error", err)
		logs.add("CRITICAL ERROR: %v", err)
		return logs.fail(fmt.Sprintf("Failed to load attendance history: %v", err))
	}
	if len(counts) == 0 {
		logs.add("ERROR: Database is empty or no valid attendance records found.")
		return logs.fail("No attendance records found to train model")
	}
	logs.add("Retrieved %d days of historical data.", len(counts))

	logs.add("Filtering working days and removing anomalies...")
	rates, workingDays := trainingRates(counts, denominator)
	logs.add("Processed %d working days. Identified %d valid data points.", workingDays, len(rates))
	if len(rates) == 0 {
		logs.add("ERROR: Insufficient valid data points after filtering.")
		return logs.fail("Insufficient data for training")
	}

	logs.add("Calculating long-term attendance averages...")
	avg := utils.Mean(rates)
	logs.add("Global historical average set to %.2f%%.", utils.Round(avg, 2))

	logs.add("Performing variance and stability analysis...")
	stability := defaultStability
	if len(rates) > 1 && avg > 0 {
		stdDev := utils.SampleStdDev(rates)
		stability = max(0, 1-stdDev/avg)
		logs.add("Standard deviation: %.2f. Stability factor: %.4f.", utils.Round(stdDev, 2), utils.Round(stability, 4))
	} else {
		logs.add("Single data point detected. Defaulting stability factor to 0.5.")
	}

	state := forecast.ModelState{
		AverageRate:     utils.Round(avg, 2),
		StabilityFactor: utils.Round(stability, 4),
		DataPoints:      len(rates),
		LastTrained:     s.now(),
		Version:         forecast.ModelVersion,
	}

	logs.add("Finalizing neural pattern calibration...")
	saved, err := s.persist(ctx, state, logs)
	if err != nil {
		logs.add("CRITICAL ERROR: Model write failed. %v", err)
		result := logs.fail(fmt.Sprintf("Failed to save model: %v", err))
		result.Conflict = errors.Is(err, forecast.ErrRevisionConflict)
		return result
	}
	logs.add("Model state serialized and committed to storage.")

	s.appendAudit(ctx, saved, triggeredBy)

	return forecast.TrainingResult{Success: true, Summary: &saved, Logs: logs.entries}
}

// persist replaces the stored state using the revision read just before the write.
func (s *TrainerServiceImpl) persist(ctx context.Context, state forecast.ModelState, logs *trainingLog) (forecast.ModelState, error) {
	current, err := s.modelStates.Load(ctx)
	if err != nil {
		return forecast.ModelState{}, fmt.Errorf("failed to read current model state: %w", err)
	}

	var expected int64
	if current != nil {
		expected = current.Revision
	}

	// logs are stored as of the save, so they end with the calibration step
	state.Logs = append([]forecast.LogEntry(nil), logs.entries...)

	saved, err := s.modelStates.Save(ctx, state, expected)
	if err != nil {
		return forecast.ModelState{}, err
	}
	return saved, nil
}

func (s *TrainerServiceImpl) appendAudit(ctx context.Context, state forecast.ModelState, triggeredBy string) {
	entry := forecast.TrainingAuditEntry{
		ID:              uuid.Must(uuid.NewV7()).String(),
		TriggeredBy:     triggeredBy,
		DataPoints:      state.DataPoints,
		AverageRate:     state.AverageRate,
		StabilityFactor: state.StabilityFactor,
		Logs:            state.Logs,
		Summary: fmt.Sprintf("Trained on %d data points: average %.2f%%, stability %.4f (revision %d)",
			state.DataPoints, state.AverageRate, state.StabilityFactor, state.Revision),
		CreatedAt: s.now(),
	}

	if _, err := s.auditLog.Append(ctx, entry); err != nil {
		slog.Warn("Failed to append training audit entry", "error", err, "revision", state.Revision)
	}
}

// History implements forecast.TrainerService.
func (s *TrainerServiceImpl) History(ctx context.Context, limit int) ([]forecast.TrainingAuditEntry, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	entries, err := s.auditLog.ListRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list training history: %w", err)
	}
	if entries == nil {
		entries = []forecast.TrainingAuditEntry{}
	}
	return entries, nil
}

// trainingRates converts the per-date present counts into working-day rates,
// dropping zero-rate days. It also reports how many working days were seen.
func trainingRates(counts []attendance.DailyCount, denominator int64) ([]float64, int) {
	rates := make([]float64, 0, len(counts))
	workingDays := 0
	for _, c := range counts {
		if !utils.IsWorkday(c.Date) {
			continue
		}
		workingDays++
		rate := utils.Clamp(utils.Percent(float64(c.Count), float64(denominator)), 0, 100)
		if rate > 0 {
			rates = append(rates, rate)
		}
	}
	return rates, workingDays
}
