package memstore

import (
	"context"
	"sort"

	"github.com/alecgard/taskhub/internal/comment"
)

// Comments implements comment.Repository.
type Comments struct {
	db *DB
}

// resolveLocked copies c and fills in the author's display name.
func (r *Comments) resolveLocked(c *comment.Comment) *comment.Comment {
	out := *c
	if u, ok := r.db.users[c.AuthorID]; ok {
		out.AuthorName = u.DisplayName()
	}
	return &out
}

func (r *Comments) Create(ctx context.Context, in comment.NewComment) (*comment.Comment, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	now := r.db.now()
	c := &comment.Comment{
		ID:        newID(),
		Content:   in.Content,
		AuthorID:  in.AuthorID,
		TaskID:    in.TaskID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.db.comments[c.ID] = c
	return r.resolveLocked(c), nil
}

func (r *Comments) GetByID(ctx context.Context, id string) (*comment.Comment, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	c, ok := r.db.comments[id]
	if !ok {
		return nil, comment.ErrNotFound
	}
	return r.resolveLocked(c), nil
}

func (r *Comments) UpdateContent(ctx context.Context, id, content string) (*comment.Comment, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	c, ok := r.db.comments[id]
	if !ok {
		return nil, comment.ErrNotFound
	}
	c.Content = content
	c.UpdatedAt = r.db.now()
	return r.resolveLocked(c), nil
}

func (r *Comments) Delete(ctx context.Context, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.comments[id]; !ok {
		return comment.ErrNotFound
	}
	delete(r.db.comments, id)
	return nil
}

// ListByTask returns the comments of a task, oldest first.
func (r *Comments) ListByTask(ctx context.Context, taskID string) ([]*comment.Comment, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	out := []*comment.Comment{}
	for _, c := range r.db.comments {
		if c.TaskID == taskID {
			out = append(out, r.resolveLocked(c))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}
