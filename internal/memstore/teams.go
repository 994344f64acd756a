package memstore

import (
	"context"
	"sort"

	"github.com/alecgard/taskhub/internal/team"
)

// Teams implements team.Repository.
type Teams struct {
	db *DB
}

func (r *Teams) buildLocked(row *teamRow) *team.Team {
	t := &team.Team{
		ID:        row.id,
		Name:      row.name,
		OwnerID:   row.ownerID,
		CreatedAt: row.createdAt,
		Members:   []team.Member{},
	}
	for _, m := range r.db.members[row.id] {
		mem := team.Member{UserID: m.userID, JoinedAt: m.joinedAt}
		if u, ok := r.db.users[m.userID]; ok {
			mem.Name = u.Name
			mem.Email = u.Email
		}
		t.Members = append(t.Members, mem)
	}
	return t
}

func (r *Teams) isMemberLocked(teamID, userID string) bool {
	for _, m := range r.db.members[teamID] {
		if m.userID == userID {
			return true
		}
	}
	return false
}

func (r *Teams) Create(ctx context.Context, name, ownerID string) (*team.Team, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	now := r.db.now()
	row := &teamRow{id: newID(), name: name, ownerID: ownerID, createdAt: now}
	r.db.teams[row.id] = row
	r.db.members[row.id] = []membership{{userID: ownerID, joinedAt: now}}
	return r.buildLocked(row), nil
}

func (r *Teams) GetByID(ctx context.Context, id string) (*team.Team, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	row, ok := r.db.teams[id]
	if !ok {
		return nil, team.ErrNotFound
	}
	return r.buildLocked(row), nil
}

func (r *Teams) ListByUser(ctx context.Context, userID string) ([]*team.Team, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	var rows []*teamRow
	for id, row := range r.db.teams {
		if r.isMemberLocked(id, userID) {
			rows = append(rows, row)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].createdAt.Equal(rows[j].createdAt) {
			return rows[i].id > rows[j].id
		}
		return rows[i].createdAt.After(rows[j].createdAt)
	})

	teams := make([]*team.Team, 0, len(rows))
	for _, row := range rows {
		teams = append(teams, r.buildLocked(row))
	}
	return teams, nil
}

func (r *Teams) OwnerOf(ctx context.Context, teamID string) (string, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	row, ok := r.db.teams[teamID]
	if !ok {
		return "", team.ErrNotFound
	}
	return row.ownerID, nil
}

func (r *Teams) IsMember(ctx context.Context, teamID, userID string) (bool, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	if _, ok := r.db.teams[teamID]; !ok {
		return false, team.ErrNotFound
	}
	return r.isMemberLocked(teamID, userID), nil
}

func (r *Teams) AddMember(ctx context.Context, teamID, userID string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.teams[teamID]; !ok {
		return team.ErrNotFound
	}
	if r.isMemberLocked(teamID, userID) {
		return team.ErrAlreadyMember
	}
	r.db.members[teamID] = append(r.db.members[teamID], membership{userID: userID, joinedAt: r.db.now()})
	return nil
}

func (r *Teams) RemoveMember(ctx context.Context, teamID, userID string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	row, ok := r.db.teams[teamID]
	if !ok {
		return team.ErrNotFound
	}
	if row.ownerID == userID {
		return team.ErrNotMember
	}
	members := r.db.members[teamID]
	for i, m := range members {
		if m.userID == userID {
			r.db.members[teamID] = append(members[:i:i], members[i+1:]...)
			return nil
		}
	}
	return team.ErrNotMember
}

// Delete removes the team with its tasks and labels.
func (r *Teams) Delete(ctx context.Context, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.teams[id]; !ok {
		return team.ErrNotFound
	}
	for taskID, t := range r.db.tasks {
		if t.TeamID == id {
			r.db.deleteTaskLocked(taskID)
		}
	}
	for labelID, l := range r.db.labels {
		if l.TeamID == id {
			r.db.deleteLabelLocked(labelID)
		}
	}
	delete(r.db.members, id)
	delete(r.db.teams, id)
	return nil
}
