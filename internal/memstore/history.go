package memstore

import (
	"context"

	"github.com/alecgard/taskhub/internal/history"
)

// History implements history.Reader.
type History struct {
	db *DB
}

func (r *History) resolveLocked(e history.Entry) history.Entry {
	var name, email string
	if e.UserID != nil {
		if u, ok := r.db.users[*e.UserID]; ok {
			name, email = u.Name, u.Email
		}
		id := *e.UserID
		e.UserID = &id
	}
	e.ActorName = history.DisplayName(name, email)
	return e
}

// ListByTask returns a task's entries, newest first.
func (r *History) ListByTask(ctx context.Context, taskID string) ([]history.Entry, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	out := []history.Entry{}
	for i := len(r.db.history) - 1; i >= 0; i-- {
		if e := r.db.history[i]; e.TaskID == taskID {
			out = append(out, r.resolveLocked(e))
		}
	}
	return out, nil
}

// ListByTasks groups the entries of several tasks, each newest first.
func (r *History) ListByTasks(ctx context.Context, taskIDs []string) (map[string][]history.Entry, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	want := make(map[string]struct{}, len(taskIDs))
	for _, id := range taskIDs {
		want[id] = struct{}{}
	}
	out := make(map[string][]history.Entry, len(taskIDs))
	for i := len(r.db.history) - 1; i >= 0; i-- {
		e := r.db.history[i]
		if _, ok := want[e.TaskID]; ok {
			out[e.TaskID] = append(out[e.TaskID], r.resolveLocked(e))
		}
	}
	return out, nil
}
