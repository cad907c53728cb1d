package http

import (
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"

	"github.com/cmlabs-hris/workforce-analytics/internal/handler/http/middleware"
	"github.com/cmlabs-hris/workforce-analytics/internal/pkg/jwt"
)

type RouterConfig struct {
	Env            string
	Version        string
	AllowedOrigins []string
	LogLevel       slog.Level
}

func NewRouter(cfg RouterConfig, JWTService jwt.Service, analyticsHandler AnalyticsHandler, overviewHandler OverviewHandler, predictionHandler PredictionHandler) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "workforce-analytics"),
		slog.String("version", cfg.Version),
		slog.String("env", cfg.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Content-Disposition"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  cfg.LogLevel,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1/analytics", func(r chi.Router) {
		r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
		r.Use(middleware.AuthRequired(JWTService.JWTAuth()))

		// Manager or admin only
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireManager)

			r.Get("/forecast", analyticsHandler.GetForecast)
			r.Get("/daily-rates", analyticsHandler.GetDailyRates)
			r.Get("/trends", analyticsHandler.GetTrends)

			r.Route("/model", func(r chi.Router) {
				r.Get("/", analyticsHandler.GetModel)
				r.Post("/train", analyticsHandler.TrainModel)
				r.Get("/history", analyticsHandler.GetModelHistory)
			})

			r.Route("/overview", func(r chi.Router) {
				r.Get("/", overviewHandler.GetOverview)
				r.Get("/export", overviewHandler.ExportOverview)
			})
			r.Post("/search", overviewHandler.SearchPersonnel)

			r.Get("/predictions", predictionHandler.ListPredictions)
		})

		// The employee themself, or a manager
		r.Route("/employees/{id}", func(r chi.Router) {
			r.Use(middleware.RequireSelfOrManager("id"))

			r.Get("/prediction", predictionHandler.GetInsight)
			r.Get("/summary", predictionHandler.GetSummary)
			r.Get("/week", predictionHandler.GetWeek)
			r.Get("/forecast", predictionHandler.GetForecast)
			r.Get("/performance", predictionHandler.GetPerformance)
			r.Get("/accuracy", predictionHandler.GetAccuracy)
		})
	})
	return r
}
