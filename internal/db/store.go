package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/metalagman/taskq/internal/task"
)

// Store persists the task set in SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a task store backed by db. path is used in error reports.
func NewStore(db *sql.DB, path string) *Store {
	return &Store{db: db, path: path}
}

// DB returns the underlying database handle.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Save replaces every stored task in one transaction.
func (s *Store) Save(ctx context.Context, tasks []task.Task) error {
	if err := s.replaceAll(ctx, tasks); err != nil {
		return &task.IOError{Op: "save tasks", Path: s.path, Err: err}
	}
	return nil
}

func (s *Store) replaceAll(ctx context.Context, tasks []task.Task) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM task_dependencies`); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("clear dependencies: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM tasks`); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("clear tasks: %w", err)
	}
	for i, t := range tasks {
		if _, err := tx.ExecContext(ctx, `INSERT INTO tasks(position, name, priority, due_date) VALUES(?, ?, ?, ?)`,
			i, t.Name, t.Priority, t.DueString()); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert task %q: %w", t.Name, err)
		}
		for j, dep := range t.Dependencies {
			if _, err := tx.ExecContext(ctx, `INSERT INTO task_dependencies(task_name, position, depends_on) VALUES(?, ?, ?)`,
				t.Name, j, dep); err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("insert dependency %q -> %q: %w", t.Name, dep, err)
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	return nil
}

// Load returns tasks in saved order with dependencies in saved order.
func (s *Store) Load(ctx context.Context) ([]task.Task, error) {
	deps, err := s.loadDependencies(ctx)
	if err != nil {
		return nil, &task.IOError{Op: "load dependencies", Path: s.path, Err: err}
	}

	rows, err := s.db.QueryContext(ctx, `SELECT name, priority, due_date FROM tasks ORDER BY position`)
	if err != nil {
		return nil, &task.IOError{Op: "query tasks", Path: s.path, Err: err}
	}
	defer rows.Close()

	out := []task.Task{}
	for rows.Next() {
		var name, dueDate string
		var priority int
		if err := rows.Scan(&name, &priority, &dueDate); err != nil {
			return nil, &task.CorruptionError{Path: s.path, Err: fmt.Errorf("scan task: %w", err)}
		}
		due, err := task.ParseDate(dueDate)
		if err != nil {
			return nil, &task.CorruptionError{Path: s.path, Err: fmt.Errorf("task %q due_date: %w", name, err)}
		}
		out = append(out, task.New(name, priority, due, deps[name]))
	}
	if err := rows.Err(); err != nil {
		return nil, &task.IOError{Op: "iterate tasks", Path: s.path, Err: err}
	}
	return out, nil
}

func (s *Store) loadDependencies(ctx context.Context) (map[string][]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT task_name, depends_on FROM task_dependencies ORDER BY task_name, position`)
	if err != nil {
		return nil, fmt.Errorf("query dependencies: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]string)
	for rows.Next() {
		var name, dep string
		if err := rows.Scan(&name, &dep); err != nil {
			return nil, fmt.Errorf("scan dependency: %w", err)
		}
		out[name] = append(out[name], dep)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate dependencies: %w", err)
	}
	return out, nil
}
