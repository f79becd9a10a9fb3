package database

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/jonboulle/clockwork"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// Database owns the record store connection pool and its readiness flag.
// The flag is false until a ping and the migrations have succeeded once.
type Database struct {
	db     *sqlx.DB
	driver string
	ready  atomic.Bool
}

// ParseURL maps a connection string onto a database/sql driver name and DSN.
// Supported forms: sqlite3://path, file:path, :memory:, postgres://..., postgresql://...
func ParseURL(raw string) (driver, dsn string, err error) {
	switch {
	case raw == "":
		return "", "", fmt.Errorf("database url is empty")
	case raw == ":memory:":
		return "sqlite3", raw, nil
	case strings.HasPrefix(raw, "file:"):
		return "sqlite3", raw, nil
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", "", fmt.Errorf("invalid database url: %w", err)
	}

	switch u.Scheme {
	case "sqlite", "sqlite3":
		return "sqlite3", strings.TrimPrefix(raw, u.Scheme+"://"), nil
	case "postgres", "postgresql":
		return "postgres", raw, nil
	default:
		return "", "", fmt.Errorf("unsupported database scheme %q", u.Scheme)
	}
}

// Open prepares a connection pool without touching the network.
// Call Connect or ConnectWithRetry to establish readiness.
func Open(rawURL string) (*Database, error) {
	driver, dsn, err := ParseURL(rawURL)
	if err != nil {
		return nil, err
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if driver == "sqlite3" {
		// sqlite serialises writers; a single connection avoids "database is locked"
		// and keeps :memory: databases shared across the pool
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	return &Database{db: db, driver: driver}, nil
}

// Connect pings the store and runs pending migrations, then marks it ready
func (d *Database) Connect(ctx context.Context) error {
	if err := d.db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	if err := RunMigrations(ctx, d.db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	d.ready.Store(true)
	return nil
}

// ConnectWithRetry keeps calling Connect with exponential backoff until it
// succeeds or ctx is done. It is meant to run in its own goroutine.
func (d *Database) ConnectWithRetry(ctx context.Context, clock clockwork.Clock, logger *zap.Logger) {
	backoff := 500 * time.Millisecond
	const maxBackoff = 30 * time.Second

	for attempt := 1; ; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		err := d.Connect(attemptCtx)
		cancel()
		if err == nil {
			logger.Info("record store ready", zap.String("driver", d.driver), zap.Int("attempt", attempt))
			return
		}

		logger.Warn("record store not reachable, request logging disabled until it is",
			zap.Error(err), zap.Int("attempt", attempt), zap.Duration("retry_in", backoff))

		select {
		case <-ctx.Done():
			return
		case <-clock.After(backoff):
		}

		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
}

// Ready reports whether the store connection has been established
func (d *Database) Ready() bool {
	return d.ready.Load()
}

// DB returns the underlying pool
func (d *Database) DB() *sqlx.DB {
	return d.db
}

// Driver returns the database/sql driver name in use
func (d *Database) Driver() string {
	return d.driver
}

// Close closes the connection pool
func (d *Database) Close() error {
	d.ready.Store(false)
	return d.db.Close()
}
