package memstore

import (
	"context"
	"time"

	"github.com/alecgard/taskhub/internal/user"
)

// Users implements user.Repository.
type Users struct {
	db *DB
}

func copyUser(u *user.User) *user.User {
	c := *u
	return &c
}

func (r *Users) emailTaken(email, exceptID string) bool {
	for _, u := range r.db.users {
		if u.Email == email && u.ID != exceptID {
			return true
		}
	}
	return false
}

func (r *Users) Create(ctx context.Context, in user.NewUser) (*user.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if r.emailTaken(in.Email, "") {
		return nil, user.ErrEmailTaken
	}
	now := r.db.now()
	u := &user.User{
		ID:           newID(),
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: in.PasswordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	r.db.users[u.ID] = u
	return copyUser(u), nil
}

func (r *Users) GetByID(ctx context.Context, id string) (*user.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	u, ok := r.db.users[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	return copyUser(u), nil
}

func (r *Users) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	for _, u := range r.db.users {
		if u.Email == email {
			return copyUser(u), nil
		}
	}
	return nil, user.ErrNotFound
}

func (r *Users) Update(ctx context.Context, id string, f user.UpdateFields) (*user.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	u, ok := r.db.users[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	if f.Email != nil && r.emailTaken(*f.Email, id) {
		return nil, user.ErrEmailTaken
	}
	if f.Name == nil && f.Email == nil && f.PasswordHash == nil {
		return copyUser(u), nil
	}
	if f.Name != nil {
		u.Name = *f.Name
	}
	if f.Email != nil {
		u.Email = *f.Email
	}
	if f.PasswordHash != nil {
		u.PasswordHash = *f.PasswordHash
	}
	u.UpdatedAt = r.db.now()
	return copyUser(u), nil
}

func (r *Users) CreateSession(ctx context.Context, sess user.Session) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.users[sess.UserID]; !ok {
		return user.ErrNotFound
	}
	r.db.sessions[sess.TokenHash] = sess
	return nil
}

func (r *Users) GetSessionUser(ctx context.Context, tokenHash string, now time.Time) (*user.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	sess, ok := r.db.sessions[tokenHash]
	if !ok || !sess.ExpiresAt.After(now) {
		return nil, user.ErrInvalidSession
	}
	u, ok := r.db.users[sess.UserID]
	if !ok {
		return nil, user.ErrInvalidSession
	}
	return copyUser(u), nil
}

func (r *Users) DeleteSession(ctx context.Context, tokenHash string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	delete(r.db.sessions, tokenHash)
	return nil
}

func (r *Users) CleanExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	var n int64
	for h, sess := range r.db.sessions {
		if sess.ExpiresAt.Before(now) {
			delete(r.db.sessions, h)
			n++
		}
	}
	return n, nil
}
