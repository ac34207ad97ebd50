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

	"golang.org/x/sync/errgroup"

	"github.com/wfo-tracker/attendance-backend-go/internal/config"
	"github.com/wfo-tracker/attendance-backend-go/internal/domain/attendance"
	"github.com/wfo-tracker/attendance-backend-go/internal/domain/category"
	"github.com/wfo-tracker/attendance-backend-go/internal/domain/user"
	appHTTP "github.com/wfo-tracker/attendance-backend-go/internal/handler/http"
	"github.com/wfo-tracker/attendance-backend-go/internal/pkg/amqp"
	"github.com/wfo-tracker/attendance-backend-go/internal/pkg/cache"
	"github.com/wfo-tracker/attendance-backend-go/internal/pkg/database"
	"github.com/wfo-tracker/attendance-backend-go/internal/pkg/sse"
	"github.com/wfo-tracker/attendance-backend-go/internal/repository/memory"
	"github.com/wfo-tracker/attendance-backend-go/internal/repository/postgresql"
	attendanceService "github.com/wfo-tracker/attendance-backend-go/internal/service/attendance"
	categoryService "github.com/wfo-tracker/attendance-backend-go/internal/service/category"
	userService "github.com/wfo-tracker/attendance-backend-go/internal/service/user"
)

const (
	appName    = "wfo-attendance"
	appVersion = "v1.0.0"
)

type stores struct {
	tx          database.Transactor
	users       user.UserRepository
	categories  category.CategoryRepository
	attendances attendance.AttendanceRepository
	close       func()
}

func main() {
	if err := run(); err != nil {
		slog.Error("Server exited with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := appHTTP.NewLogger(os.Stdout, cfg.App.SlogLevel(), appName, appVersion, cfg.App.Env)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStores(cfg)
	if err != nil {
		return err
	}
	defer st.close()

	statsCache := cache.NewNoopStatsCache()
	if cfg.Redis.Addr != "" {
		redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		defer redisClient.Close()
		statsCache = cache.NewRedisStatsCache(redisClient, cfg.Redis.StatsTTL)
		logger.Info("Stats cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.StatsTTL.String())
	}

	hub := sse.NewHub()
	publishers := attendance.Publishers{hub}
	if cfg.AMQP.URL != "" {
		client, err := amqp.NewClient(cfg.AMQP)
		if err != nil {
			return err
		}
		defer client.Close()
		publishers = append(publishers, client)
		logger.Info("Attendance events enabled", "exchange", cfg.AMQP.Exchange, "queue", cfg.AMQP.Queue)
	}

	attendanceSvc := attendanceService.NewAttendanceService(st.tx, st.attendances, st.users, st.categories, statsCache, publishers)
	userSvc := userService.NewUserService(st.users, statsCache)
	categorySvc := categoryService.NewCategoryService(st.categories)

	router := appHTTP.NewRouter(
		logger,
		cfg.App.AllowedOrigins,
		appHTTP.NewAttendanceHandler(attendanceSvc),
		appHTTP.NewUserHandler(userSvc),
		appHTTP.NewCategoryHandler(categorySvc),
		appHTTP.NewEventsHandler(userSvc, hub),
	)

	srv := &http.Server{
		Addr:           fmt.Sprintf(":%d", cfg.App.Port),
		Handler:        router,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 16,
	}
	// Shutdown waits for idle connections; open event streams never go idle
	srv.RegisterOnShutdown(hub.Close)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting server", "addr", srv.Addr, "store", cfg.Store.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("Server stopped gracefully")
	return nil
}

func openStores(cfg *config.Config) (*stores, error) {
	if cfg.Store.Driver == config.StoreDriverMemory {
		s := memory.New()
		slog.Warn("Using in-memory store, data is lost on restart")
		return &stores{
			tx:          s,
			users:       s.Users(),
			categories:  s.Categories(),
			attendances: s.Attendances(),
			close:       func() {},
		}, nil
	}

	dsn := cfg.DatabaseURL()
	if err := database.RunMigrations(dsn); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	db, err := database.NewPostgreSQLDB(dsn)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	return &stores{
		tx:          postgresql.NewTransactor(db),
		users:       postgresql.NewUserRepository(db),
		categories:  postgresql.NewCategoryRepository(db),
		attendances: postgresql.NewAttendanceRepository(db),
		close:       db.Close,
	}, nil
}
