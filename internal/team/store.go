package team

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alecgard/taskhub/internal/postgres"
)

var _ Repository = (*Store)(nil)

// Store provides database operations for teams and their members.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a new team store backed by the given connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Create inserts the team and the owner's membership row in one transaction.
func (s *Store) Create(ctx context.Context, name, ownerID string) (*Team, error) {
	var id string
	err := postgres.InTx(ctx, s.pool, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx,
			`INSERT INTO teams (name, owner_id) VALUES ($1, $2) RETURNING id`,
			name, ownerID,
		).Scan(&id); err != nil {
			return fmt.Errorf("inserting team: %w", err)
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO team_members (team_id, user_id) VALUES ($1, $2)`,
			id, ownerID,
		); err != nil {
			return fmt.Errorf("inserting owner membership: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("creating team: %w", err)
	}
	return s.GetByID(ctx, id)
}

// GetByID returns the team with its members in join order.
func (s *Store) GetByID(ctx context.Context, id string) (*Team, error) {
	t := &Team{}
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, owner_id, created_at FROM teams WHERE id = $1`, id,
	).Scan(&t.ID, &t.Name, &t.OwnerID, &t.CreatedAt)
	if err != nil {
		if postgres.IsNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting team: %w", err)
	}

	members, err := s.members(ctx, id)
	if err != nil {
		return nil, err
	}
	t.Members = members
	return t, nil
}

func (s *Store) members(ctx context.Context, teamID string) ([]Member, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT u.id, u.name, u.email, m.joined_at
		 FROM team_members m JOIN users u ON u.id = m.user_id
		 WHERE m.team_id = $1
		 ORDER BY m.joined_at, u.id`, teamID)
	if err != nil {
		return nil, fmt.Errorf("listing team members: %w", err)
	}
	defer rows.Close()

	members := []Member{}
	for rows.Next() {
		var m Member
		if err := rows.Scan(&m.UserID, &m.Name, &m.Email, &m.JoinedAt); err != nil {
			return nil, fmt.Errorf("scanning team member: %w", err)
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

// ListByUser returns every team userID belongs to, newest first.
func (s *Store) ListByUser(ctx context.Context, userID string) ([]*Team, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT t.id FROM teams t
		 JOIN team_members m ON m.team_id = t.id
		 WHERE m.user_id = $1
		 ORDER BY t.created_at DESC, t.id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("listing teams for user: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scanning team ids: %w", err)
	}

	teams := make([]*Team, 0, len(ids))
	for _, id := range ids {
		t, err := s.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		teams = append(teams, t)
	}
	return teams, nil
}

// OwnerOf returns the owner id of the team.
func (s *Store) OwnerOf(ctx context.Context, teamID string) (string, error) {
	var owner string
	err := s.pool.QueryRow(ctx, `SELECT owner_id FROM teams WHERE id = $1`, teamID).Scan(&owner)
	if err != nil {
		if postgres.IsNoRows(err) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("getting team owner: %w", err)
	}
	return owner, nil
}

// IsMember reports whether userID has a membership row in the team.
func (s *Store) IsMember(ctx context.Context, teamID, userID string) (bool, error) {
	var exists, member bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM teams WHERE id = $1),
		        EXISTS (SELECT 1 FROM team_members WHERE team_id = $1 AND user_id = $2)`,
		teamID, userID,
	).Scan(&exists, &member)
	if err != nil {
		return false, fmt.Errorf("checking membership: %w", err)
	}
	if !exists {
		return false, ErrNotFound
	}
	return member, nil
}

// AddMember inserts a membership row. A duplicate is a Conflict.
func (s *Store) AddMember(ctx context.Context, teamID, userID string) error {
	tag, err := s.pool.Exec(ctx,
		`INSERT INTO team_members (team_id, user_id) VALUES ($1, $2)
		 ON CONFLICT DO NOTHING`, teamID, userID)
	if err != nil {
		return fmt.Errorf("adding team member: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAlreadyMember
	}
	return nil
}

// RemoveMember deletes a membership row. The owner's row is never removed.
func (s *Store) RemoveMember(ctx context.Context, teamID, userID string) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM team_members m USING teams t
		 WHERE m.team_id = t.id AND m.team_id = $1 AND m.user_id = $2
		   AND t.owner_id <> m.user_id`, teamID, userID)
	if err != nil {
		return fmt.Errorf("removing team member: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotMember
	}
	return nil
}

// Delete removes the team. Tasks, labels, comments and history go with it
// through ON DELETE CASCADE.
func (s *Store) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM teams WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting team: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
