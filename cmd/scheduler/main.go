package main

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/redis/go-redis/v9"

	"github.com/example/mentorship-scheduler/internal/application"
	"github.com/example/mentorship-scheduler/internal/config"
	httptransport "github.com/example/mentorship-scheduler/internal/http"
	"github.com/example/mentorship-scheduler/internal/persistence"
	"github.com/example/mentorship-scheduler/internal/persistence/redisstore"
	"github.com/example/mentorship-scheduler/internal/persistence/sqlite"
)

func main() {
	bootLogger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		bootLogger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("scheduler stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	storage, err := sqlite.Open(cfg.SQLiteConfig(), sqlite.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer func() {
		if cerr := storage.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	if err := storage.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	health := []httptransport.HealthChecker{storage}
	var attendanceRepo persistence.AttendanceRepository = storage.Attendance
	if cfg.AttendanceBackend == config.BackendRedis {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer client.Close()

		repo, err := redisstore.NewAttendanceRepository(&redisstore.Config{RedisClient: client})
		if err != nil {
			return fmt.Errorf("failed to open redis attendance store: %w", err)
		}
		attendanceRepo = repo
		health = append(health, redisPinger{client: client})
	}
	logger.Info("attendance store selected", "backend", cfg.AttendanceBackend)

	app := newApp(storage, attendanceRepo, uuid.NewString, newULIDGenerator(), time.Now, logger)
	app.health = health

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           app.handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	var wg sync.WaitGroup
	if cfg.SweepInterval > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.runSweeper(ctx, cfg.SweepInterval)
		}()
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("scheduler API listening", "addr", server.Addr)
	err = server.ListenAndServe()
	wg.Wait()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server encountered error: %w", err)
	}
	return nil
}

// app wires services and handlers over a storage backend.
type app struct {
	groups     *application.GroupService
	sessions   *application.SessionService
	attendance *application.AttendanceService
	health     []httptransport.HealthChecker
	logger     *slog.Logger
}

func newApp(storage *sqlite.Storage, attendanceRepo persistence.AttendanceRepository, idGenerator, recordIDGenerator func() string, now func() time.Time, logger *slog.Logger) *app {
	sessionStore := newSessionStoreAdapter(storage.Groups, storage.Sessions, idGenerator, now)
	attendanceStore := newAttendanceStoreAdapter(attendanceRepo)

	sessions := application.NewSessionServiceWithLogger(sessionStore, now, logger)
	attendance := application.NewAttendanceServiceWithLogger(attendanceStore, sessionStore, recordIDGenerator, now, logger)
	sessions.OnOutcome(func(application.Session) { attendance.InvalidateSummaries() })

	return &app{
		groups:     application.NewGroupServiceWithLogger(sessionStore, now, logger),
		sessions:   sessions,
		attendance: attendance,
		logger:     logger,
	}
}

func (a *app) handler() http.Handler {
	return httptransport.NewRouter(httptransport.RouterConfig{
		Groups:     httptransport.NewGroupHandler(a.groups, a.logger),
		Sessions:   httptransport.NewSessionHandler(a.sessions, a.logger),
		Attendance: httptransport.NewAttendanceHandler(a.attendance, a.logger),
		Health:     a.health,
		Middleware: []func(http.Handler) http.Handler{
			httptransport.RequestLogger(a.logger),
			httptransport.Recoverer(a.logger),
		},
	})
}

// runSweeper generates attendance for elapsed sessions every interval until
// ctx is done. A failed sweep is logged and retried on the next tick.
func (a *app) runSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger := a.logger.With("component", "attendance_sweeper", "interval", interval)
	logger.Info("attendance sweeper started")
	for {
		select {
		case <-ctx.Done():
			logger.Info("attendance sweeper stopped")
			return
		case <-ticker.C:
			result, err := a.attendance.GenerateFromElapsedSessions(ctx)
			if err != nil {
				if ctx.Err() != nil {
					continue
				}
				logger.Error("attendance sweep failed", "error", err, "error_kind", application.ErrorKind(err))
				continue
			}
			logger.Info("attendance sweep finished", "created", len(result.Created), "skipped", result.Skipped)
		}
	}
}

// newULIDGenerator returns a generator of monotonic, lexically sortable IDs.
func newULIDGenerator() func() string {
	var mu sync.Mutex
	entropy := ulid.Monotonic(rand.Reader, 0)
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
	}
}

type redisPinger struct {
	client *redis.Client
}

func (p redisPinger) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}
