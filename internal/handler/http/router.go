package http

import (
	"io"
	"log/slog"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
)

// NewLogger builds the JSON logger shared by the access log and the application.
func NewLogger(w io.Writer, level slog.Level, app, version, env string) *slog.Logger {
	logFormat := httplog.SchemaECS.Concise(false)
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", app),
		slog.String("version", version),
		slog.String("env", env),
	)
}

func NewRouter(
	logger *slog.Logger,
	allowedOrigins []string,
	attendanceHandler AttendanceHandler,
	userHandler UserHandler,
	categoryHandler CategoryHandler,
	eventsHandler EventsHandler,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		ExposedHeaders:   []string{"Location"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api", func(r chi.Router) {
		r.Route("/attendance", func(r chi.Router) {
			r.Get("/", attendanceHandler.GetByUserAndDate)
			r.Post("/", attendanceHandler.Upsert)
			r.Get("/monthly", attendanceHandler.GetMonthly)
			r.Get("/monthly/stats", attendanceHandler.GetMonthlyStats)
			r.Delete("/{id}", attendanceHandler.Delete)
		})
		r.Get("/attendances", attendanceHandler.List)

		r.Get("/users", userHandler.List)
		r.Route("/user", func(r chi.Router) {
			r.Post("/", userHandler.Create)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", userHandler.Get)
				r.Put("/", userHandler.Update)
				r.Delete("/", userHandler.Delete)
				r.Patch("/goal", userHandler.UpdateGoal)
				r.Get("/events", eventsHandler.Stream)
			})
		})

		r.Get("/categories", categoryHandler.List)
		r.Get("/category/{id}", categoryHandler.Get)
	})

	return r
}
