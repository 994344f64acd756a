package memstore

import (
	"context"
	"sort"
	"strings"

	"github.com/alecgard/taskhub/internal/history"
	"github.com/alecgard/taskhub/internal/task"
)

// Tasks implements task.Repository.
type Tasks struct {
	db *DB
}

func copyTask(t *task.Task) *task.Task {
	c := *t
	return &c
}

// appendHistoryLocked stores e with a fresh id and timestamp.
func (db *DB) appendHistoryLocked(e history.Entry) {
	e.ID = newID()
	e.CreatedAt = db.now()
	e.ActorName = ""
	if e.UserID != nil {
		id := *e.UserID
		e.UserID = &id
	}
	db.history = append(db.history, e)
}

func (db *DB) linkLocked(taskID, labelID string) {
	for _, l := range db.links[taskID] {
		if l == labelID {
			return
		}
	}
	db.links[taskID] = append(db.links[taskID], labelID)
}

// entryUserGoneLocked reports whether e names a user that no longer exists.
func (db *DB) entryUserGoneLocked(e history.Entry) bool {
	if e.UserID == nil {
		return false
	}
	_, ok := db.users[*e.UserID]
	return !ok
}

// Create stores the task, its creation entry and its label links under one
// lock. Every referenced row is checked before anything is written, so a
// reference deleted concurrently leaves no partial task behind.
func (r *Tasks) Create(ctx context.Context, in task.NewTask, created history.Entry, labelIDs []string) (*task.Task, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.users[in.CreatorID]; !ok {
		return nil, task.ErrReferenceGone
	}
	if in.TeamID != "" {
		if _, ok := r.db.teams[in.TeamID]; !ok {
			return nil, task.ErrReferenceGone
		}
	}
	if r.db.entryUserGoneLocked(created) {
		return nil, task.ErrReferenceGone
	}
	for _, id := range labelIDs {
		if _, ok := r.db.labels[id]; !ok {
			return nil, task.ErrReferenceGone
		}
	}

	now := r.db.now()
	t := &task.Task{
		ID:          newID(),
		Title:       in.Title,
		Description: in.Description,
		Status:      in.Status,
		Priority:    in.Priority,
		CreatorID:   in.CreatorID,
		TeamID:      in.TeamID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	r.db.tasks[t.ID] = t

	created.TaskID = t.ID
	r.db.appendHistoryLocked(created)
	for _, id := range labelIDs {
		r.db.linkLocked(t.ID, id)
	}
	return copyTask(t), nil
}

func (r *Tasks) GetByID(ctx context.Context, id string) (*task.Task, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	t, ok := r.db.tasks[id]
	if !ok {
		return nil, task.ErrNotFound
	}
	return copyTask(t), nil
}

func (r *Tasks) TeamOf(ctx context.Context, taskID string) (string, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	t, ok := r.db.tasks[taskID]
	if !ok {
		return "", task.ErrNotFound
	}
	return t.TeamID, nil
}

// UpdateStatus writes the new status only if the stored one is still from.
func (r *Tasks) UpdateStatus(ctx context.Context, id string, from, to task.Status, entry history.Entry) (*task.Task, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	t, ok := r.db.tasks[id]
	if !ok {
		return nil, task.ErrNotFound
	}
	if t.Status != from {
		return nil, task.ErrStatusChanged
	}
	if r.db.entryUserGoneLocked(entry) {
		return nil, task.ErrReferenceGone
	}
	t.Status = to
	t.UpdatedAt = r.db.now()

	entry.TaskID = id
	r.db.appendHistoryLocked(entry)
	return copyTask(t), nil
}

func (r *Tasks) Delete(ctx context.Context, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.tasks[id]; !ok {
		return task.ErrNotFound
	}
	r.db.deleteTaskLocked(id)
	return nil
}

func (r *Tasks) matchesLocked(t *task.Task, teamID string, f task.Filter) bool {
	if t.TeamID != teamID {
		return false
	}
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	if f.Priority != "" && t.Priority != f.Priority {
		return false
	}
	if f.LabelID != "" {
		found := false
		for _, l := range r.db.links[t.ID] {
			if l == f.LabelID {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.Query != "" {
		q := strings.ToLower(f.Query)
		if !strings.Contains(strings.ToLower(t.Title), q) &&
			!strings.Contains(strings.ToLower(t.Description), q) {
			return false
		}
	}
	return true
}

// List returns one page of matching tasks, newest first, and the total.
func (r *Tasks) List(ctx context.Context, teamID string, f task.Filter, offset, limit int) ([]*task.Task, int, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	var matched []*task.Task
	for _, t := range r.db.tasks {
		if r.matchesLocked(t, teamID, f) {
			matched = append(matched, t)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID > matched[j].ID
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	page := []*task.Task{}
	if offset < 0 || limit <= 0 || offset >= total {
		return page, total, nil
	}
	end := total
	if limit < total-offset {
		end = offset + limit
	}
	for _, t := range matched[offset:end] {
		page = append(page, copyTask(t))
	}
	return page, total, nil
}
