package task

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alecgard/taskhub/internal/history"
	"github.com/alecgard/taskhub/internal/label"
	"github.com/alecgard/taskhub/internal/postgres"
)

var (
	_ Repository      = (*Store)(nil)
	_ label.TaskTeams = (*Store)(nil)
)

// Store provides database operations for tasks.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a new task store backed by the given connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

const taskColumns = `id, title, description, status, priority, creator_id, COALESCE(team_id::text, ''), created_at, updated_at`

func scanTask(scan func(dest ...any) error) (*Task, error) {
	t := &Task{}
	if err := scan(&t.ID, &t.Title, &t.Description, &t.Status, &t.Priority,
		&t.CreatorID, &t.TeamID, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	return t, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Create inserts the task, its creation entry and its label links in one
// transaction.
func (s *Store) Create(ctx context.Context, in NewTask, created history.Entry, labelIDs []string) (*Task, error) {
	var t *Task
	err := postgres.InTx(ctx, s.pool, func(tx pgx.Tx) error {
		var err error
		t, err = scanTask(func(dest ...any) error {
			return tx.QueryRow(ctx,
				`INSERT INTO tasks (title, description, status, priority, creator_id, team_id)
				 VALUES ($1, $2, $3, $4, $5, $6)
				 RETURNING `+taskColumns,
				in.Title, in.Description, in.Status, in.Priority, in.CreatorID, nullable(in.TeamID),
			).Scan(dest...)
		})
		if err != nil {
			return fmt.Errorf("inserting task: %w", err)
		}

		created.TaskID = t.ID
		if err := history.Insert(ctx, tx, created); err != nil {
			return err
		}
		for _, id := range labelIDs {
			if err := label.Link(ctx, tx, t.ID, id); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, label.ErrLinkGone) || postgres.IsForeignKeyViolation(err) {
			return nil, ErrReferenceGone
		}
		return nil, fmt.Errorf("creating task: %w", err)
	}
	return t, nil
}

// GetByID retrieves a task by primary key.
func (s *Store) GetByID(ctx context.Context, id string) (*Task, error) {
	t, err := scanTask(func(dest ...any) error {
		return s.pool.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id).Scan(dest...)
	})
	if err != nil {
		if postgres.IsNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting task: %w", err)
	}
	return t, nil
}

// TeamOf returns the team id of a task, or "" if it has none.
func (s *Store) TeamOf(ctx context.Context, taskID string) (string, error) {
	var teamID string
	err := s.pool.QueryRow(ctx,
		`SELECT COALESCE(team_id::text, '') FROM tasks WHERE id = $1`, taskID,
	).Scan(&teamID)
	if err != nil {
		if postgres.IsNoRows(err) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("getting task team: %w", err)
	}
	return teamID, nil
}

// UpdateStatus moves the task from one status to another and appends entry,
// atomically. If the stored status is no longer from, nothing is written and
// a Conflict is returned.
func (s *Store) UpdateStatus(ctx context.Context, id string, from, to Status, entry history.Entry) (*Task, error) {
	var t *Task
	err := postgres.InTx(ctx, s.pool, func(tx pgx.Tx) error {
		var err error
		t, err = scanTask(func(dest ...any) error {
			return tx.QueryRow(ctx,
				`UPDATE tasks SET status = $1, updated_at = now()
				 WHERE id = $2 AND status = $3
				 RETURNING `+taskColumns,
				to, id, from,
			).Scan(dest...)
		})
		if err != nil {
			if postgres.IsNoRows(err) {
				return ErrStatusChanged
			}
			return fmt.Errorf("updating task status: %w", err)
		}
		entry.TaskID = id
		return history.Insert(ctx, tx, entry)
	})
	if err != nil {
		if postgres.IsForeignKeyViolation(err) {
			return nil, ErrReferenceGone
		}
		return nil, err
	}
	return t, nil
}

// Delete removes a task. Comments, label links and history cascade.
func (s *Store) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// escapeLike escapes LIKE wildcards so q matches literally.
func escapeLike(q string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(q)
}

// List returns one page of a team's tasks matching f, newest first, and the
// total number of matches.
func (s *Store) List(ctx context.Context, teamID string, f Filter, offset, limit int) ([]*Task, int, error) {
	where := []string{"team_id = $1"}
	args := []any{teamID}
	argIdx := 2

	if f.Status != "" {
		where = append(where, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, f.Status)
		argIdx++
	}
	if f.Priority != "" {
		where = append(where, fmt.Sprintf("priority = $%d", argIdx))
		args = append(args, f.Priority)
		argIdx++
	}
	if f.LabelID != "" {
		where = append(where, fmt.Sprintf("id IN (SELECT task_id FROM task_labels WHERE label_id = $%d)", argIdx))
		args = append(args, f.LabelID)
		argIdx++
	}
	if f.Query != "" {
		where = append(where, fmt.Sprintf("(title ILIKE $%d OR description ILIKE $%d)", argIdx, argIdx))
		args = append(args, "%"+escapeLike(f.Query)+"%")
		argIdx++
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM tasks WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting tasks: %w", err)
	}

	query := fmt.Sprintf(
		`SELECT %s FROM tasks WHERE %s ORDER BY created_at DESC, id DESC OFFSET $%d LIMIT $%d`,
		taskColumns, cond, argIdx, argIdx+1,
	)
	args = append(args, offset, limit)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("listing tasks: %w", err)
	}
	defer rows.Close()

	tasks := []*Task{}
	for rows.Next() {
		t, err := scanTask(rows.Scan)
		if err != nil {
			return nil, 0, fmt.Errorf("scanning task row: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return tasks, total, nil
}
