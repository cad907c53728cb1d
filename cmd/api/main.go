package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/workforce-analytics/internal/config"
	"github.com/cmlabs-hris/workforce-analytics/internal/domain/forecast"
	appHTTP "github.com/cmlabs-hris/workforce-analytics/internal/handler/http"
	"github.com/cmlabs-hris/workforce-analytics/internal/pkg/cron"
	"github.com/cmlabs-hris/workforce-analytics/internal/pkg/database"
	"github.com/cmlabs-hris/workforce-analytics/internal/pkg/jwt"
	"github.com/cmlabs-hris/workforce-analytics/internal/pkg/lock"
	"github.com/cmlabs-hris/workforce-analytics/internal/pkg/storage"
	fileRepo "github.com/cmlabs-hris/workforce-analytics/internal/repository/file"
	"github.com/cmlabs-hris/workforce-analytics/internal/repository/postgresql"
	forecastService "github.com/cmlabs-hris/workforce-analytics/internal/service/forecast"
	overviewService "github.com/cmlabs-hris/workforce-analytics/internal/service/overview"
	predictionService "github.com/cmlabs-hris/workforce-analytics/internal/service/prediction"
)

const version = "v1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	})).With(slog.String("app", "workforce-analytics")))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL())
	if err != nil {
		slog.Error("Error connecting to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if cfg.Database.Migrate {
		if err := database.RunMigrations(db); err != nil {
			slog.Error("Error running migrations", "error", err)
			os.Exit(1)
		}
	}

	attendanceRepo := postgresql.NewAttendanceRepository(db)
	employeeRepo := postgresql.NewEmployeeRepository(db)
	leaveRequestRepo := postgresql.NewLeaveRequestRepository(db)
	trainingAuditRepo := postgresql.NewTrainingAuditRepository(db)

	var modelStateRepo forecast.ModelStateRepository
	switch cfg.Analytics.ModelStore {
	case config.ModelStoreFile:
		fileStorage, err := storage.NewLocalStorage(cfg.Analytics.ModelDir)
		if err != nil {
			slog.Error("Failed to initialize model storage", "error", err)
			os.Exit(1)
		}
		modelStateRepo = fileRepo.NewModelStateRepository(fileStorage)
	default:
		modelStateRepo = postgresql.NewModelStateRepository(db)
	}
	slog.Info("Model store selected", "store", cfg.Analytics.ModelStore)

	var locker lock.Locker = lock.NewLocalLocker()
	if cfg.Redis.Addr != "" {
		rdb, err := lock.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			slog.Error("Failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer rdb.Close()
		locker = lock.NewRedisLocker(rdb)
	}

	loc := cfg.Location()
	forecastSvc := forecastService.NewForecastService(attendanceRepo, employeeRepo, modelStateRepo, loc)
	trainerSvc := forecastService.NewTrainerService(
		attendanceRepo,
		employeeRepo,
		modelStateRepo,
		trainingAuditRepo,
		locker,
		cfg.Analytics.TrainingLockTTL,
	)
	overviewSvc := overviewService.NewOverviewService(attendanceRepo, employeeRepo, forecastSvc, loc)
	predictionSvc := predictionService.NewPredictionService(
		attendanceRepo,
		employeeRepo,
		leaveRequestRepo,
		loc,
		cfg.Analytics.AccuracyJitter,
	)

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)

	analyticsHandler := appHTTP.NewAnalyticsHandler(forecastSvc, trainerSvc)
	overviewHandler := appHTTP.NewOverviewHandler(overviewSvc)
	predictionHandler := appHTTP.NewPredictionHandler(predictionSvc)

	router := appHTTP.NewRouter(
		appHTTP.RouterConfig{
			Env:            cfg.App.Env,
			Version:        version,
			AllowedOrigins: cfg.App.AllowedOrigins,
			LogLevel:       cfg.SlogLevel(),
		},
		JWTService,
		analyticsHandler,
		overviewHandler,
		predictionHandler,
	)

	scheduler := cron.NewScheduler()
	if cfg.Analytics.RetrainEnabled {
		cron.NewForecastJobs(trainerSvc, cfg.Analytics.RetrainHour, loc).RegisterJobs(scheduler)
	}
	scheduler.Start()
	defer scheduler.Stop()

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}
	}()

	slog.Info("Server running", "addr", "http://localhost"+server.Addr, "env", cfg.App.Env)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
	}
}
