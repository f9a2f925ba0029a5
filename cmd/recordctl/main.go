// Package main is the entrypoint for recordctl, the operator CLI for
// application records.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"

	"github.com/google/uuid"

	"github.com/enterprise-auth/appmodel/internal/cache"
	"github.com/enterprise-auth/appmodel/internal/config"
	"github.com/enterprise-auth/appmodel/internal/metrics"
	"github.com/enterprise-auth/appmodel/internal/repository"
	"github.com/enterprise-auth/appmodel/internal/service"
)

// Exit codes.
const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// cmdEnv is everything a command can use. The store fields are only set for
// commands that need them.
type cmdEnv struct {
	cfg     *config.Config
	logger  *slog.Logger
	stdin   io.Reader
	stdout  io.Writer
	stderr  io.Writer
	metrics *metrics.InMemoryRecorder

	records *service.RecordService
	keys    *service.APIKeyService
	cache   *cache.Cache
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) == 0 || args[0] == "-h" || args[0] == "help" {
		printUsage(stderr)
		if len(args) == 0 {
			return exitUsage
		}
		return exitOK
	}

	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(stderr, "unknown command %q\n\n", args[0])
		printUsage(stderr)
		return exitUsage
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(stderr, "load config:", err)
		return exitFailure
	}

	logger := initLogger(cfg, stderr).With(
		"run_id", uuid.NewString(),
		"command", cmd.name,
	)

	ctx, cancel := context.WithTimeout(ctx, cfg.CommandTimeout)
	defer cancel()

	env := &cmdEnv{
		cfg:     cfg,
		logger:  logger,
		stdin:   stdin,
		stdout:  stdout,
		stderr:  stderr,
		metrics: metrics.NewInMemory(),
	}

	if cmd.needsStore {
		closeFn, err := env.connect(ctx)
		if err != nil {
			logger.Error("failed to connect", "error", err)
			return exitFailure
		}
		defer closeFn()
	}

	err = cmd.run(ctx, env, args[1:])
	switch {
	case err == nil:
		if cmd.needsStore {
			logSummary(logger, env.metrics.Snapshot())
		}
		return exitOK
	case errors.Is(err, errUsage):
		return exitUsage
	case errors.Is(err, errReported):
		return exitFailure
	default:
		logger.Error("command failed", "error", err)
		return exitFailure
	}
}

// connect opens the database and, when configured, the cache. A cache that
// cannot be reached is logged and skipped.
func (e *cmdEnv) connect(ctx context.Context) (func(), error) {
	if err := e.cfg.RequireStore(); err != nil {
		return nil, err
	}

	repo, err := repository.Connect(ctx, e.cfg.DatabaseURL, repository.DefaultPoolOptions, e.cfg.DBConnectAttempts, e.logger)
	if err != nil {
		return nil, fmt.Errorf("connect database %s: %s",
			redactURL(e.cfg.DatabaseURL), sanitizeError(err, e.cfg.DatabaseURL))
	}
	e.logger.Debug("connected to database")

	var recordCache service.RecordCache
	if e.cfg.HasCache() {
		c, err := cache.New(ctx, e.cfg.RedisURL, cache.Options{LocalTTL: e.cfg.LocalCacheTTL})
		if err != nil {
			e.logger.Warn("running without cache",
				slog.String("error", sanitizeError(err, e.cfg.RedisURL)),
				slog.String("redis_url", redactURL(e.cfg.RedisURL)),
			)
		} else {
			e.cache = c
			recordCache = c
			e.logger.Debug("connected to Redis")
		}
	}

	e.records = service.NewRecordService(repo, recordCache, e.cfg.CacheTTL, e.logger, e.metrics)
	e.keys = service.NewAPIKeyService(e.records, repo, e.cfg.KeyEnv, e.logger)

	return func() {
		if e.cache != nil {
			_ = e.cache.Close()
		}
		repo.Close()
	}, nil
}

func logSummary(logger *slog.Logger, s metrics.Snapshot) {
	logger.Debug("record metrics",
		"cache_hits", s.RecordCacheHits,
		"cache_misses", s.RecordCacheMisses,
		"loads", s.LoadDurationCount,
		"saved", s.Saved,
		"deleted", s.Deleted,
		"decode_failures", s.DecodeFailures,
	)
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "usage: recordctl <command> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "commands:")

	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %-8s %s\n", name, commands[name].summary)
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	var h slog.Handler

	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
