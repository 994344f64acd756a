package label

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alecgard/taskhub/internal/postgres"
)

var _ Repository = (*Store)(nil)

// Store provides database operations for labels and task links.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a new label store backed by the given connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

const labelColumns = `l.id, l.name, l.team_id, l.creator_id, l.created_at, l.updated_at`

func scanLabel(scan func(dest ...any) error) (*Label, error) {
	l := &Label{}
	if err := scan(&l.ID, &l.Name, &l.TeamID, &l.CreatorID, &l.CreatedAt, &l.UpdatedAt); err != nil {
		return nil, err
	}
	return l, nil
}

func mapLabelErr(err error, op string) error {
	switch {
	case postgres.IsNoRows(err):
		return ErrNotFound
	case postgres.IsUniqueViolation(err):
		return ErrDuplicateName
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

func (s *Store) list(ctx context.Context, op, sql string, args ...any) ([]*Label, error) {
	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	labels := []*Label{}
	for rows.Next() {
		l, err := scanLabel(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning label row: %w", err)
		}
		labels = append(labels, l)
	}
	return labels, rows.Err()
}

// Create inserts a label. A duplicate name within the team is a Conflict.
func (s *Store) Create(ctx context.Context, in NewLabel) (*Label, error) {
	l, err := scanLabel(func(dest ...any) error {
		return s.pool.QueryRow(ctx,
			`INSERT INTO labels AS l (name, team_id, creator_id)
			 VALUES ($1, $2, $3)
			 RETURNING `+labelColumns,
			in.Name, in.TeamID, in.CreatorID,
		).Scan(dest...)
	})
	if err != nil {
		return nil, mapLabelErr(err, "creating label")
	}
	return l, nil
}

// GetByID retrieves a label by primary key.
func (s *Store) GetByID(ctx context.Context, id string) (*Label, error) {
	l, err := scanLabel(func(dest ...any) error {
		return s.pool.QueryRow(ctx,
			`SELECT `+labelColumns+` FROM labels l WHERE l.id = $1`, id,
		).Scan(dest...)
	})
	if err != nil {
		return nil, mapLabelErr(err, "getting label")
	}
	return l, nil
}

// GetMany returns the labels among ids that exist. Missing ids are skipped.
func (s *Store) GetMany(ctx context.Context, ids []string) ([]*Label, error) {
	if len(ids) == 0 {
		return []*Label{}, nil
	}
	return s.list(ctx, "getting labels",
		`SELECT `+labelColumns+` FROM labels l WHERE l.id = ANY($1) ORDER BY l.name`, ids)
}

// ListByTeam returns the labels of a team ordered by name.
func (s *Store) ListByTeam(ctx context.Context, teamID string) ([]*Label, error) {
	return s.list(ctx, "listing team labels",
		`SELECT `+labelColumns+` FROM labels l WHERE l.team_id = $1 ORDER BY l.name`, teamID)
}

// Rename changes a label's name.
func (s *Store) Rename(ctx context.Context, id, name string) (*Label, error) {
	l, err := scanLabel(func(dest ...any) error {
		return s.pool.QueryRow(ctx,
			`UPDATE labels AS l SET name = $1, updated_at = now() WHERE l.id = $2
			 RETURNING `+labelColumns,
			name, id,
		).Scan(dest...)
	})
	if err != nil {
		return nil, mapLabelErr(err, "renaming label")
	}
	return l, nil
}

// Delete removes a label and its task links.
func (s *Store) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM labels WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting label: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Link attaches a label to a task using q. Existing links are left as is.
func Link(ctx context.Context, q postgres.Querier, taskID, labelID string) error {
	_, err := q.Exec(ctx,
		`INSERT INTO task_labels (task_id, label_id) VALUES ($1, $2)
		 ON CONFLICT DO NOTHING`, taskID, labelID)
	if err != nil {
		if postgres.IsForeignKeyViolation(err) {
			return ErrLinkGone
		}
		return fmt.Errorf("linking label: %w", err)
	}
	return nil
}

// Link attaches a label to a task. Idempotent.
func (s *Store) Link(ctx context.Context, taskID, labelID string) error {
	return Link(ctx, s.pool, taskID, labelID)
}

// Unlink detaches a label from a task. Idempotent.
func (s *Store) Unlink(ctx context.Context, taskID, labelID string) error {
	_, err := s.pool.Exec(ctx,
		`DELETE FROM task_labels WHERE task_id = $1 AND label_id = $2`, taskID, labelID)
	if err != nil {
		return fmt.Errorf("unlinking label: %w", err)
	}
	return nil
}

// ListByTask returns the labels linked to a task ordered by name.
func (s *Store) ListByTask(ctx context.Context, taskID string) ([]*Label, error) {
	return s.list(ctx, "listing task labels",
		`SELECT `+labelColumns+` FROM labels l
		 JOIN task_labels tl ON tl.label_id = l.id
		 WHERE tl.task_id = $1 ORDER BY l.name`, taskID)
}

// ListByTasks returns the labels of several tasks keyed by task id.
func (s *Store) ListByTasks(ctx context.Context, taskIDs []string) (map[string][]*Label, error) {
	out := make(map[string][]*Label, len(taskIDs))
	if len(taskIDs) == 0 {
		return out, nil
	}
	rows, err := s.pool.Query(ctx,
		`SELECT tl.task_id, `+labelColumns+` FROM labels l
		 JOIN task_labels tl ON tl.label_id = l.id
		 WHERE tl.task_id = ANY($1) ORDER BY l.name`, taskIDs)
	if err != nil {
		return nil, fmt.Errorf("listing labels for tasks: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var taskID string
		l := &Label{}
		if err := rows.Scan(&taskID, &l.ID, &l.Name, &l.TeamID, &l.CreatorID, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning task label row: %w", err)
		}
		out[taskID] = append(out[taskID], l)
	}
	return out, rows.Err()
}
