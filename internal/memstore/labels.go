package memstore

import (
	"context"
	"sort"

	"github.com/alecgard/taskhub/internal/label"
)

// Labels implements label.Repository.
type Labels struct {
	db *DB
}

func copyLabel(l *label.Label) *label.Label {
	c := *l
	return &c
}

func sortByName(labels []*label.Label) {
	sort.Slice(labels, func(i, j int) bool {
		if labels[i].Name == labels[j].Name {
			return labels[i].ID < labels[j].ID
		}
		return labels[i].Name < labels[j].Name
	})
}

func (r *Labels) nameTakenLocked(teamID, name, exceptID string) bool {
	for _, l := range r.db.labels {
		if l.TeamID == teamID && l.Name == name && l.ID != exceptID {
			return true
		}
	}
	return false
}

func (r *Labels) Create(ctx context.Context, in label.NewLabel) (*label.Label, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if r.nameTakenLocked(in.TeamID, in.Name, "") {
		return nil, label.ErrDuplicateName
	}
	now := r.db.now()
	l := &label.Label{
		ID:        newID(),
		Name:      in.Name,
		TeamID:    in.TeamID,
		CreatorID: in.CreatorID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.db.labels[l.ID] = l
	return copyLabel(l), nil
}

func (r *Labels) GetByID(ctx context.Context, id string) (*label.Label, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	l, ok := r.db.labels[id]
	if !ok {
		return nil, label.ErrNotFound
	}
	return copyLabel(l), nil
}

func (r *Labels) GetMany(ctx context.Context, ids []string) ([]*label.Label, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	out := []*label.Label{}
	for _, id := range ids {
		if l, ok := r.db.labels[id]; ok {
			out = append(out, copyLabel(l))
		}
	}
	sortByName(out)
	return out, nil
}

func (r *Labels) ListByTeam(ctx context.Context, teamID string) ([]*label.Label, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	out := []*label.Label{}
	for _, l := range r.db.labels {
		if l.TeamID == teamID {
			out = append(out, copyLabel(l))
		}
	}
	sortByName(out)
	return out, nil
}

func (r *Labels) Rename(ctx context.Context, id, name string) (*label.Label, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	l, ok := r.db.labels[id]
	if !ok {
		return nil, label.ErrNotFound
	}
	if r.nameTakenLocked(l.TeamID, name, id) {
		return nil, label.ErrDuplicateName
	}
	l.Name = name
	l.UpdatedAt = r.db.now()
	return copyLabel(l), nil
}

func (r *Labels) Delete(ctx context.Context, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.labels[id]; !ok {
		return label.ErrNotFound
	}
	r.db.deleteLabelLocked(id)
	return nil
}

func (r *Labels) Link(ctx context.Context, taskID, labelID string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.tasks[taskID]; !ok {
		return label.ErrLinkGone
	}
	if _, ok := r.db.labels[labelID]; !ok {
		return label.ErrLinkGone
	}
	r.db.linkLocked(taskID, labelID)
	return nil
}

func (r *Labels) Unlink(ctx context.Context, taskID, labelID string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	links := r.db.links[taskID]
	for i, l := range links {
		if l == labelID {
			r.db.links[taskID] = append(links[:i:i], links[i+1:]...)
			break
		}
	}
	return nil
}

func (r *Labels) listByTaskLocked(taskID string) []*label.Label {
	out := []*label.Label{}
	for _, id := range r.db.links[taskID] {
		if l, ok := r.db.labels[id]; ok {
			out = append(out, copyLabel(l))
		}
	}
	sortByName(out)
	return out
}

func (r *Labels) ListByTask(ctx context.Context, taskID string) ([]*label.Label, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	return r.listByTaskLocked(taskID), nil
}

func (r *Labels) ListByTasks(ctx context.Context, taskIDs []string) (map[string][]*label.Label, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	out := make(map[string][]*label.Label, len(taskIDs))
	for _, id := range taskIDs {
		if labels := r.listByTaskLocked(id); len(labels) > 0 {
			out[id] = labels
		}
	}
	return out, nil
}
