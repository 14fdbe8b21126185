package database

import (
	"context"
	"strings"
	"testing"
)

func TestParseURL(t *testing.T) {
	tests := []struct {
		name        string
		url         string
		wantDialect Dialect
		wantDSN     string
		wantErr     bool
	}{
		{"postgres", "postgres://u:p@db:5432/todo?sslmode=disable", DialectPostgres, "postgres://u:p@db:5432/todo?sslmode=disable", false},
		{"postgresql", "postgresql://db/todo", DialectPostgres, "postgresql://db/todo", false},
		{"sqlite relative triple slash", "sqlite:///./todos.db", DialectSQLite, "./todos.db", false},
		{"sqlite absolute", "sqlite:////var/lib/todo.db", DialectSQLite, "/var/lib/todo.db", false},
		{"sqlite short", "sqlite://todo.db", DialectSQLite, "todo.db", false},
		{"sqlite memory", "sqlite://:memory:", DialectSQLite, ":memory:", false},
		{"file uri", "file:todo.db?cache=shared", DialectSQLite, "file:todo.db?cache=shared", false},
		{"bare memory", ":memory:", DialectSQLite, ":memory:", false},
		{"empty sqlite path", "sqlite://", "", "", true},
		{"mysql", "mysql://u:secret@db/todo", "", "", true},
		{"empty", "", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dialect, dsn, err := ParseURL(tt.url)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseURL(%q) error: got %v, wantErr %v", tt.url, err, tt.wantErr)
			}
			if dialect != tt.wantDialect {
				t.Errorf("dialect: got %q, want %q", dialect, tt.wantDialect)
			}
			if dsn != tt.wantDSN {
				t.Errorf("dsn: got %q, want %q", dsn, tt.wantDSN)
			}
		})
	}
}

func TestParseURLErrorHidesPassword(t *testing.T) {
	_, _, err := ParseURL("mysql://user:secret@db/todo")
	if err == nil {
		t.Fatal("ParseURL: got nil error, want unsupported scheme")
	}
	if strings.Contains(err.Error(), "secret") {
		t.Errorf("error leaks password: %v", err)
	}
}

func TestMigrateOrCreateSchemaIsIdempotent(t *testing.T) {
	ctx := context.Background()
	db, err := Open(ctx, "sqlite://:memory:", 1)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()

	for i := 0; i < 2; i++ {
		if err := MigrateOrCreateSchema(ctx, db); err != nil {
			t.Fatalf("MigrateOrCreateSchema run %d: %v", i+1, err)
		}
	}

	var n int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM todos`).Scan(&n); err != nil {
		t.Fatalf("count todos: %v", err)
	}
	if n != 0 {
		t.Errorf("todos: got %d rows, want 0", n)
	}
}
