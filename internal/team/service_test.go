package team_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alecgard/taskhub/internal/apperr"
	"github.com/alecgard/taskhub/internal/history"
	"github.com/alecgard/taskhub/internal/label"
	"github.com/alecgard/taskhub/internal/memstore"
	"github.com/alecgard/taskhub/internal/task"
	"github.com/alecgard/taskhub/internal/team"
	"github.com/alecgard/taskhub/internal/user"
)

type env struct {
	db  *memstore.DB
	svc *team.Service
}

func newEnv() *env {
	db := memstore.New()
	return &env{db: db, svc: team.NewService(db.Teams(), db.Users())}
}

func (e *env) user(t *testing.T, name, email string) *user.User {
	t.Helper()
	u, err := e.db.Users().Create(context.Background(), user.NewUser{Name: name, Email: email, PasswordHash: "x"})
	require.NoError(t, err)
	return u
}

func memberIDs(tm *team.Team) []string {
	ids := make([]string, len(tm.Members))
	for i, m := range tm.Members {
		ids[i] = m.UserID
	}
	return ids
}

func TestCreate_OwnerIsSoleMember(t *testing.T) {
	ctx := context.Background()
	e := newEnv()
	u1 := e.user(t, "Ana", "ana@example.com")

	tm, err := e.svc.Create(ctx, "Alpha", u1.ID)
	require.NoError(t, err)

	assert.Equal(t, "Alpha", tm.Name)
	assert.Equal(t, u1.ID, tm.OwnerID)
	assert.Equal(t, []string{u1.ID}, memberIDs(tm))

	isOwner, err := e.svc.IsOwner(ctx, tm.ID, u1.ID)
	require.NoError(t, err)
	assert.True(t, isOwner)

	isMember, err := e.svc.IsMember(ctx, tm.ID, u1.ID)
	require.NoError(t, err)
	assert.True(t, isMember)
}

func TestCreate_Validation(t *testing.T) {
	ctx := context.Background()
	e := newEnv()
	u1 := e.user(t, "Ana", "ana@example.com")

	_, err := e.svc.Create(ctx, "   ", u1.ID)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = e.svc.Create(ctx, "Alpha", "missing")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestMembershipChecks_UnknownTeam(t *testing.T) {
	ctx := context.Background()
	e := newEnv()

	_, err := e.svc.IsMember(ctx, "nope", "u")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = e.svc.IsOwner(ctx, "nope", "u")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	err = e.svc.RequireMember(ctx, "nope", "u")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestInviteByEmail(t *testing.T) {
	ctx := context.Background()
	e := newEnv()
	u1 := e.user(t, "Ana", "ana@example.com")
	u2 := e.user(t, "Beto", "beto@example.com")
	tm, err := e.svc.Create(ctx, "Alpha", u1.ID)
	require.NoError(t, err)

	tm, err = e.svc.InviteByEmail(ctx, tm.ID, u1.ID, "Beto@Example.com")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{u1.ID, u2.ID}, memberIDs(tm))

	_, err = e.svc.InviteByEmail(ctx, tm.ID, u1.ID, "beto@example.com")
	require.ErrorIs(t, err, apperr.ErrConflict)
	assert.Equal(t, "El usuario ya es miembro del equipo", err.Error())

	_, err = e.svc.InviteByEmail(ctx, tm.ID, u1.ID, "nadie@example.com")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestAddMember_OnlyOwner(t *testing.T) {
	ctx := context.Background()
	e := newEnv()
	u1 := e.user(t, "Ana", "ana@example.com")
	u2 := e.user(t, "Beto", "beto@example.com")
	u3 := e.user(t, "Caro", "caro@example.com")
	tm, err := e.svc.Create(ctx, "Alpha", u1.ID)
	require.NoError(t, err)
	_, err = e.svc.AddMember(ctx, tm.ID, u1.ID, u2.ID)
	require.NoError(t, err)

	_, err = e.svc.AddMember(ctx, tm.ID, u2.ID, u3.ID)
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	_, err = e.svc.AddMember(ctx, tm.ID, u1.ID, "missing")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestRemoveMember_Policies(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		requester string // "owner", "member", "other"
		target    string
		wantKind  error
		wantMsg   string
	}{
		{"member leaves", "member", "member", nil, ""},
		{"owner leaves", "owner", "owner", apperr.ErrForbidden, "El propietario no puede salir, solo borrar el equipo."},
		{"owner removes member", "owner", "member", nil, ""},
		{"member removes other", "member", "other", apperr.ErrForbidden, "No tienes permiso para remover a otros miembros."},
		{"member removes owner", "member", "owner", apperr.ErrForbidden, "No tienes permiso para remover a otros miembros."},
		{"owner removes outsider", "owner", "outsider", apperr.ErrNotFound, "El usuario no es miembro del equipo."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv()
			users := map[string]*user.User{
				"owner":    e.user(t, "Owner", "owner@example.com"),
				"member":   e.user(t, "Member", "member@example.com"),
				"other":    e.user(t, "Other", "other@example.com"),
				"outsider": e.user(t, "Outsider", "outsider@example.com"),
			}
			tm, err := e.svc.Create(ctx, "Alpha", users["owner"].ID)
			require.NoError(t, err)
			for _, k := range []string{"member", "other"} {
				_, err := e.svc.AddMember(ctx, tm.ID, users["owner"].ID, users[k].ID)
				require.NoError(t, err)
			}

			err = e.svc.RemoveMember(ctx, tm.ID, users[tt.requester].ID, users[tt.target].ID)
			if tt.wantKind == nil {
				require.NoError(t, err)
				ok, err := e.svc.IsMember(ctx, tm.ID, users[tt.target].ID)
				require.NoError(t, err)
				assert.False(t, ok)
				return
			}
			require.ErrorIs(t, err, tt.wantKind)
			assert.Equal(t, tt.wantMsg, err.Error())

			ok, err := e.svc.IsMember(ctx, tm.ID, users["owner"].ID)
			require.NoError(t, err)
			assert.True(t, ok, "owner must remain a member")
		})
	}
}

func TestOwnerAlwaysMember(t *testing.T) {
	ctx := context.Background()
	e := newEnv()
	owner := e.user(t, "Owner", "owner@example.com")
	tm, err := e.svc.Create(ctx, "Alpha", owner.ID)
	require.NoError(t, err)

	var others []*user.User
	for _, email := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		u := e.user(t, "", email)
		others = append(others, u)
		_, err := e.svc.AddMember(ctx, tm.ID, owner.ID, u.ID)
		require.NoError(t, err)
	}

	// Every removal attempt aimed at the owner fails; the others succeed.
	for _, u := range others {
		assert.Error(t, e.svc.RemoveMember(ctx, tm.ID, u.ID, owner.ID))
		assert.Error(t, e.svc.RemoveMember(ctx, tm.ID, owner.ID, owner.ID))
		require.NoError(t, e.svc.RemoveMember(ctx, tm.ID, u.ID, u.ID))
	}

	got, err := e.svc.Get(ctx, tm.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{owner.ID}, memberIDs(got))
}

func TestGet_MembersOnly(t *testing.T) {
	ctx := context.Background()
	e := newEnv()
	u1 := e.user(t, "Ana", "ana@example.com")
	u2 := e.user(t, "Beto", "beto@example.com")
	tm, err := e.svc.Create(ctx, "Alpha", u1.ID)
	require.NoError(t, err)

	_, err = e.svc.Get(ctx, tm.ID, u2.ID)
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	teams, err := e.svc.ListForUser(ctx, u2.ID)
	require.NoError(t, err)
	assert.Empty(t, teams)

	teams, err = e.svc.ListForUser(ctx, u1.ID)
	require.NoError(t, err)
	require.Len(t, teams, 1)
	assert.Equal(t, "Ana", teams[0].Members[0].Name)
}

func TestDeleteTeam(t *testing.T) {
	ctx := context.Background()
	e := newEnv()
	u1 := e.user(t, "Ana", "ana@example.com")
	u2 := e.user(t, "Beto", "beto@example.com")
	tm, err := e.svc.Create(ctx, "Alpha", u1.ID)
	require.NoError(t, err)
	_, err = e.svc.AddMember(ctx, tm.ID, u1.ID, u2.ID)
	require.NoError(t, err)

	l, err := e.db.Labels().Create(ctx, label.NewLabel{Name: "Bug", TeamID: tm.ID, CreatorID: u1.ID})
	require.NoError(t, err)
	tk, err := e.db.Tasks().Create(ctx, task.NewTask{
		Title: "Deploy", Status: task.StatusPending, Priority: task.PriorityMedium,
		CreatorID: u1.ID, TeamID: tm.ID,
	}, history.New("", u1.ID, history.DescCreated), []string{l.ID})
	require.NoError(t, err)

	err = e.svc.DeleteTeam(ctx, tm.ID, u2.ID)
	require.ErrorIs(t, err, apperr.ErrForbidden)
	assert.Equal(t, "Solo el propietario puede borrar el equipo", err.Error())

	require.NoError(t, e.svc.DeleteTeam(ctx, tm.ID, u1.ID))

	_, err = e.svc.Get(ctx, tm.ID, u1.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	_, err = e.db.Tasks().GetByID(ctx, tk.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	_, err = e.db.Labels().GetByID(ctx, l.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	entries, err := e.db.History().ListByTask(ctx, tk.ID)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
