package history

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alecgard/taskhub/internal/postgres"
)

var _ Reader = (*Store)(nil)

// Store reads history entries from Postgres.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a new history store backed by the given connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Insert appends e using q, which is normally the caller's transaction. The
// task id on e is authoritative; ID and CreatedAt are assigned by the database.
func Insert(ctx context.Context, q postgres.Querier, e Entry) error {
	_, err := q.Exec(ctx,
		`INSERT INTO task_history (task_id, user_id, description) VALUES ($1, $2, $3)`,
		e.TaskID, e.UserID, e.Description,
	)
	if err != nil {
		return fmt.Errorf("inserting history entry: %w", err)
	}
	return nil
}

const selectEntries = `SELECT h.id, h.task_id, h.user_id, COALESCE(u.name, ''), COALESCE(u.email, ''),
	       h.description, h.created_at
	  FROM task_history h LEFT JOIN users u ON u.id = h.user_id`

func (s *Store) query(ctx context.Context, sql string, args ...any) ([]Entry, error) {
	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("listing history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var name, email string
		if err := rows.Scan(&e.ID, &e.TaskID, &e.UserID, &name, &email, &e.Description, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning history entry: %w", err)
		}
		e.ActorName = DisplayName(name, email)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ListByTask returns the entries of one task, newest first.
func (s *Store) ListByTask(ctx context.Context, taskID string) ([]Entry, error) {
	entries, err := s.query(ctx,
		selectEntries+` WHERE h.task_id = $1 ORDER BY h.created_at DESC, h.seq DESC`, taskID)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []Entry{}
	}
	return entries, nil
}

// ListByTasks returns the entries of several tasks keyed by task id, each
// slice newest first.
func (s *Store) ListByTasks(ctx context.Context, taskIDs []string) (map[string][]Entry, error) {
	out := make(map[string][]Entry, len(taskIDs))
	if len(taskIDs) == 0 {
		return out, nil
	}
	entries, err := s.query(ctx,
		selectEntries+` WHERE h.task_id = ANY($1) ORDER BY h.created_at DESC, h.seq DESC`, taskIDs)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		out[e.TaskID] = append(out[e.TaskID], e)
	}
	return out, nil
}
