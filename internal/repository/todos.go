package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"todo-api/internal/models"
	"todo-api/pkg/logger"
)

// ErrNotFound is returned when no todo has the requested id.
var ErrNotFound = errors.New("todo not found")

const selectTodo = `SELECT id, title, description, completed, created_at, updated_at FROM todos`

// TodoRepository runs todo queries against a SQL database. Every call
// checks out one connection and returns it before the call ends.
type TodoRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewTodoRepository returns a repository backed by db.
func NewTodoRepository(db *sql.DB) *TodoRepository {
	return &TodoRepository{db: db, now: time.Now}
}

func (r *TodoRepository) withConn(ctx context.Context, fn func(conn *sql.Conn) error) error {
	conn, err := r.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Close()
	return fn(conn)
}

// stamp returns the current time at the precision every supported store keeps.
func (r *TodoRepository) stamp() time.Time {
	return r.now().UTC().Truncate(time.Microsecond)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTodo(row rowScanner) (models.Todo, error) {
	var t models.Todo
	err := row.Scan(&t.ID, &t.Title, &t.Description, &t.Completed, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

// List returns todos in insertion order, skipping the first skip rows and
// returning at most limit. A skip past the end yields an empty slice.
func (r *TodoRepository) List(ctx context.Context, skip, limit int) ([]models.Todo, error) {
	todos := []models.Todo{}
	err := r.withConn(ctx, func(conn *sql.Conn) error {
		rows, err := conn.QueryContext(ctx, selectTodo+` ORDER BY id LIMIT $1 OFFSET $2`, limit, skip)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			t, err := scanTodo(rows)
			if err != nil {
				return err
			}
			todos = append(todos, t)
		}
		return rows.Err()
	})
	if err != nil {
		logger.Error(ctx, "Repository List failed", "error", err)
		return nil, err
	}
	return todos, nil
}

// Get returns the todo with the given id or ErrNotFound.
func (r *TodoRepository) Get(ctx context.Context, id int64) (models.Todo, error) {
	var t models.Todo
	err := r.withConn(ctx, func(conn *sql.Conn) error {
		var err error
		t, err = scanTodo(conn.QueryRowContext(ctx, selectTodo+` WHERE id = $1`, id))
		return err
	})
	if errors.Is(err, sql.ErrNoRows) {
		return models.Todo{}, ErrNotFound
	}
	if err != nil {
		logger.Error(ctx, "Repository Get failed", "error", err, "id", id)
		return models.Todo{}, err
	}
	return t, nil
}

// Create inserts a new todo, filling in its id and both timestamps.
func (r *TodoRepository) Create(ctx context.Context, todo *models.Todo) error {
	now := r.stamp()
	err := r.withConn(ctx, func(conn *sql.Conn) error {
		return conn.QueryRowContext(ctx,
			`INSERT INTO todos (title, description, completed, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
			todo.Title, todo.Description, todo.Completed, now, now).Scan(&todo.ID)
	})
	if err != nil {
		logger.Error(ctx, "Repository Create failed", "error", err)
		return err
	}
	todo.CreatedAt = now
	todo.UpdatedAt = now
	return nil
}

// Update applies the fields present in patch to the todo with the given id
// and refreshes updated_at. Returns the stored result or ErrNotFound.
func (r *TodoRepository) Update(ctx context.Context, id int64, patch models.TodoPatch) (models.Todo, error) {
	var t models.Todo
	err := r.withConn(ctx, func(conn *sql.Conn) error {
		tx, err := conn.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer tx.Rollback()

		t, err = scanTodo(tx.QueryRowContext(ctx, selectTodo+` WHERE id = $1`, id))
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		patch.Apply(&t)
		t.UpdatedAt = r.nextUpdatedAt(t.UpdatedAt)

		res, err := tx.ExecContext(ctx,
			`UPDATE todos SET title = $1, description = $2, completed = $3, updated_at = $4 WHERE id = $5`,
			t.Title, t.Description, t.Completed, t.UpdatedAt, id)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		if n == 0 {
			return ErrNotFound
		}
		return tx.Commit()
	})
	if errors.Is(err, ErrNotFound) {
		return models.Todo{}, ErrNotFound
	}
	if err != nil {
		logger.Error(ctx, "Repository Update failed", "error", err, "id", id)
		return models.Todo{}, err
	}
	return t, nil
}

// nextUpdatedAt never returns a time at or before prev, even when the clock
// is coarse or has stepped backwards.
func (r *TodoRepository) nextUpdatedAt(prev time.Time) time.Time {
	now := r.stamp()
	if !now.After(prev) {
		now = prev.UTC().Add(time.Microsecond)
	}
	return now
}

// Delete removes the todo with the given id or returns ErrNotFound.
func (r *TodoRepository) Delete(ctx context.Context, id int64) error {
	var affected int64
	err := r.withConn(ctx, func(conn *sql.Conn) error {
		res, err := conn.ExecContext(ctx, `DELETE FROM todos WHERE id = $1`, id)
		if err != nil {
			return err
		}
		affected, err = res.RowsAffected()
		return err
	})
	if err != nil {
		logger.Error(ctx, "Repository Delete failed", "error", err, "id", id)
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
