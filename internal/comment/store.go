package comment

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alecgard/taskhub/internal/postgres"
)

var _ Repository = (*Store)(nil)

// Store provides database operations for comments.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a new comment store backed by the given connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

const selectComment = `SELECT c.id, c.content, c.author_id, COALESCE(NULLIF(u.name, ''), u.email, ''),
	       c.task_id, c.created_at, c.updated_at
	  FROM comments c LEFT JOIN users u ON u.id = c.author_id`

func scanComment(scan func(dest ...any) error) (*Comment, error) {
	c := &Comment{}
	if err := scan(&c.ID, &c.Content, &c.AuthorID, &c.AuthorName, &c.TaskID, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return c, nil
}

// Create inserts a comment.
func (s *Store) Create(ctx context.Context, in NewComment) (*Comment, error) {
	var id string
	err := s.pool.QueryRow(ctx,
		`INSERT INTO comments (content, author_id, task_id) VALUES ($1, $2, $3) RETURNING id`,
		in.Content, in.AuthorID, in.TaskID,
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("creating comment: %w", err)
	}
	return s.GetByID(ctx, id)
}

// GetByID retrieves a comment with its author's display name.
func (s *Store) GetByID(ctx context.Context, id string) (*Comment, error) {
	c, err := scanComment(func(dest ...any) error {
		return s.pool.QueryRow(ctx, selectComment+` WHERE c.id = $1`, id).Scan(dest...)
	})
	if err != nil {
		if postgres.IsNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting comment: %w", err)
	}
	return c, nil
}

// UpdateContent replaces a comment's content.
func (s *Store) UpdateContent(ctx context.Context, id, content string) (*Comment, error) {
	tag, err := s.pool.Exec(ctx,
		`UPDATE comments SET content = $1, updated_at = now() WHERE id = $2`, content, id)
	if err != nil {
		return nil, fmt.Errorf("updating comment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}
	return s.GetByID(ctx, id)
}

// Delete removes a comment.
func (s *Store) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting comment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListByTask returns a task's comments oldest first.
func (s *Store) ListByTask(ctx context.Context, taskID string) ([]*Comment, error) {
	rows, err := s.pool.Query(ctx,
		selectComment+` WHERE c.task_id = $1 ORDER BY c.created_at, c.id`, taskID)
	if err != nil {
		return nil, fmt.Errorf("listing comments: %w", err)
	}
	defer rows.Close()

	comments := []*Comment{}
	for rows.Next() {
		c, err := scanComment(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning comment row: %w", err)
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}
