// Package main is the entrypoint for the Daybook API server.
package main

import (
	"context"
	"io"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/daybook/daybook/internal/backend"
	"github.com/daybook/daybook/internal/cache"
	"github.com/daybook/daybook/internal/config"
	"github.com/daybook/daybook/internal/handler"
	"github.com/daybook/daybook/internal/metrics"
	"github.com/daybook/daybook/internal/middleware"
	"github.com/daybook/daybook/internal/server"
	"github.com/daybook/daybook/internal/service"
)

func main() {
	ctx := context.Background()

	if err := config.LoadDotEnv(); err != nil {
		slog.Error("failed to load .env", "error", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	// Initialize database
	db, err := backend.Open(ctx, cfg.DatabaseURL, cfg.Location(), cfg.AutoMigrate)
	if err != nil {
		logger.Error(
			"failed to open database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	logger.Info("connected to database")

	recorder := metrics.NewPrometheus()

	// Redis is optional: without it the calendar index is computed on every
	// request and sessions live in process memory.
	var (
		dates    service.DateCache
		sessions service.SessionStore
		limiter  middleware.LoginLimiter
		pinger   handler.HealthChecker
	)
	var cacheClient *cache.Cache
	if cfg.RedisURL != "" {
		cacheClient, err = cache.New(ctx, cfg.RedisURL)
		if err != nil {
			logger.Error(
				"failed to connect to Redis",
				slog.String("error", sanitizeError(err, cfg.RedisURL)),
				slog.String("redis_url", redactURL(cfg.RedisURL)),
			)
			db.Close()
			os.Exit(1)
		}
		logger.Info("connected to Redis")
		dates, sessions, limiter, pinger = cacheClient, cacheClient, cacheClient, cacheClient
	} else {
		logger.Warn("REDIS_URL not set; using in-process sessions and no calendar cache")
		sessions = cache.NewMemorySessions()
	}

	// Initialize services
	journal := service.NewJournalService(db, dates, cfg.Location(), recorder,
		service.WithLogger(logger.With("component", "journal")))
	accounts := service.NewAccountService(db, db, sessions, cfg.SessionTTL, recorder,
		logger.With("component", "accounts"))
	prefs := service.NewPreferenceService(db, recorder, logger.With("component", "preferences"))

	r := server.NewRouter(server.RouterConfig{
		Logger:                logger,
		Journal:               journal,
		Accounts:              accounts,
		Preferences:           prefs,
		Health:                handler.NewHealthHandler(db, pinger),
		Metrics:               recorder.Handler(),
		Limiter:               limiter,
		Recorder:              recorder,
		IsDevelopment:         cfg.IsDevelopment(),
		CORSAllowedOrigins:    cfg.GetCORSAllowedOrigins(),
		MaxRequestBodySize:    cfg.MaxRequestBodySize,
		MaxEntryLength:        cfg.MaxEntryLength,
		RateLimitLoginEnabled: cfg.RateLimitLoginEnabled,
		RateLimitLoginRPM:     cfg.RateLimitLoginRPM,
		RateLimitLoginBurst:   cfg.RateLimitLoginBurst,
		TrustProxy:            cfg.TrustProxy,
	})

	srv := server.New(r, server.Options{
		Addr:            ":" + strconv.Itoa(cfg.AppPort),
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, logger)

	// LIFO: Redis closes before the database.
	srv.OnShutdown("database", func(context.Context) error {
		db.Close()
		return nil
	})
	if cacheClient != nil {
		srv.OnShutdown("redis", func(context.Context) error { return cacheClient.Close() })
	}

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
		"timezone", cfg.Location().String(),
	)

	if err := srv.Run(ctx); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// initLogger initializes the slog logger based on configuration.
// With LOG_FILE set, records also go to a rotated file.
func initLogger(cfg *config.Config) *slog.Logger {
	var out io.Writer = os.Stdout
	if cfg.LogFile != "" {
		out = io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    100, // megabytes
			MaxBackups: 5,
			MaxAge:     28, // days
			Compress:   true,
		})
	}

	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}

	var h slog.Handler
	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(out, opts)
	} else {
		h = slog.NewTextHandler(out, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		if username := parsed.User.Username(); username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
