package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// RequireEnv returns an environment variable or skips the test if missing.
func RequireEnv(t testing.TB, key string) string {
	t.Helper()
	value := os.Getenv(key)
	if value == "" {
		t.Skipf("%s not set", key)
	}
	return value
}

const advisoryLockID int64 = 420420

// AcquireDBLock grabs a global advisory lock to serialize DB tests.
func AcquireDBLock(ctx context.Context, pool *pgxpool.Pool) (func() error, error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}

	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", advisoryLockID); err != nil {
		conn.Release()
		return nil, fmt.Errorf("acquire advisory lock: %w", err)
	}

	unlock := func() error {
		defer conn.Release()
		if _, err := conn.Exec(ctx, "SELECT pg_advisory_unlock($1)", advisoryLockID); err != nil {
			return fmt.Errorf("release advisory lock: %w", err)
		}
		return nil
	}

	return unlock, nil
}

// Migrations lists the migration names in apply order.
var Migrations = []string{
	"000001_records",
	"000002_api_key_secrets",
}

// ResetSchema drops and recreates one migration's tables.
func ResetSchema(ctx context.Context, pool *pgxpool.Pool, migration string) error {
	root, err := ProjectRoot()
	if err != nil {
		return err
	}

	downSQL, err := os.ReadFile(filepath.Join(root, "migrations", migration+".down.sql"))
	if err != nil {
		return fmt.Errorf("read %s down migration: %w", migration, err)
	}
	if _, err := pool.Exec(ctx, string(downSQL)); err != nil {
		return fmt.Errorf("apply %s down migration: %w", migration, err)
	}

	upSQL, err := os.ReadFile(filepath.Join(root, "migrations", migration+".up.sql"))
	if err != nil {
		return fmt.Errorf("read %s up migration: %w", migration, err)
	}
	if _, err := pool.Exec(ctx, string(upSQL)); err != nil {
		return fmt.Errorf("apply %s up migration: %w", migration, err)
	}

	return nil
}

// ResetAllSchemas resets every migration in order.
func ResetAllSchemas(ctx context.Context, pool *pgxpool.Pool) error {
	for _, m := range Migrations {
		if err := ResetSchema(ctx, pool, m); err != nil {
			return err
		}
	}
	return nil
}

// FlushRedis clears the current Redis database.
func FlushRedis(ctx context.Context, client *redis.Client) error {
	return client.FlushDB(ctx).Err()
}

// ProjectRoot returns the project root directory.
func ProjectRoot() (string, error) {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		return "", fmt.Errorf("failed to resolve testutil path")
	}
	root := filepath.Clean(filepath.Join(filepath.Dir(filename), "..", ".."))
	return root, nil
}

// UniqueID generates a unique ID for tests.
func UniqueID(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}
