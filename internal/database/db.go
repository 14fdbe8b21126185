package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"todo-api/pkg/logger"
)

// Dialect names the SQL driver behind a DB. The values double as
// database/sql driver names.
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite3"
)

// DB is a connection pool together with the dialect it speaks.
type DB struct {
	*sql.DB
	Dialect Dialect
}

// ParseURL maps DATABASE_URL to a dialect and a driver DSN.
// Accepted forms: postgres://..., postgresql://..., sqlite:///path,
// sqlite://path, file:path and :memory:.
func ParseURL(raw string) (Dialect, string, error) {
	raw = strings.TrimSpace(raw)
	switch {
	case strings.HasPrefix(raw, "postgres://"), strings.HasPrefix(raw, "postgresql://"):
		return DialectPostgres, raw, nil
	case strings.HasPrefix(raw, "sqlite:///"):
		return sqliteDSN(strings.TrimPrefix(raw, "sqlite:///"))
	case strings.HasPrefix(raw, "sqlite://"):
		return sqliteDSN(strings.TrimPrefix(raw, "sqlite://"))
	case strings.HasPrefix(raw, "file:"), raw == ":memory:":
		return DialectSQLite, raw, nil
	}
	return "", "", fmt.Errorf("unsupported DATABASE_URL scheme in %q", redact(raw))
}

func sqliteDSN(path string) (Dialect, string, error) {
	if path == "" {
		return "", "", fmt.Errorf("sqlite url has no path")
	}
	return DialectSQLite, path, nil
}

// Open connects to the database named by url and verifies it answers a ping.
func Open(ctx context.Context, url string, poolSize int) (*DB, error) {
	dialect, dsn, err := ParseURL(url)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(string(dialect), dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dialect, err)
	}

	switch dialect {
	case DialectSQLite:
		// One writer at a time, and an in-memory database only lives as long
		// as its single connection.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	default:
		if poolSize <= 0 {
			poolSize = 10
		}
		db.SetMaxOpenConns(poolSize)
		db.SetMaxIdleConns(max(poolSize/2, 1))
		db.SetConnMaxIdleTime(5 * time.Minute)
		db.SetConnMaxLifetime(30 * time.Minute)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", dialect, err)
	}

	logger.Info(ctx, "Database pool initialized", "dialect", string(dialect), "max_open", db.Stats().MaxOpenConnections)
	return &DB{DB: db, Dialect: dialect}, nil
}

// redact hides the password of a URL-style DSN before it reaches an error or a log line.
func redact(raw string) string {
	at := strings.LastIndex(raw, "@")
	scheme := strings.Index(raw, "://")
	if at < 0 || scheme < 0 || at < scheme {
		return raw
	}
	userinfo := raw[scheme+3 : at]
	if colon := strings.Index(userinfo, ":"); colon >= 0 {
		userinfo = userinfo[:colon] + ":***"
	}
	return raw[:scheme+3] + userinfo + raw[at:]
}
