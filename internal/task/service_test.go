package task_test

import (
	"context"
	"fmt"
	"strings"
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

type recorder struct {
	created     []string
	transitions []string
}

func (r *recorder) RecordTaskCreated(status string) { r.created = append(r.created, status) }
func (r *recorder) RecordTransition(from, to string) {
	r.transitions = append(r.transitions, from+"->"+to)
}

type env struct {
	db    *memstore.DB
	teams *team.Service
	svc   *task.Service
	rec   *recorder

	owner  *user.User
	member *user.User
	team   *team.Team
}

func newEnv(t *testing.T) *env {
	t.Helper()
	ctx := context.Background()
	db := memstore.New()
	e := &env{db: db, rec: &recorder{}}
	e.teams = team.NewService(db.Teams(), db.Users())
	e.svc = task.NewService(task.Deps{
		Repo:       db.Tasks(),
		Members:    e.teams,
		Users:      db.Users(),
		Labels:     db.Labels(),
		History:    db.History(),
		Pagination: task.Pagination{DefaultLimit: 10, MaxLimit: 100},
		Recorder:   e.rec,
	})

	e.owner = e.user(t, "Ana", "ana@example.com")
	e.member = e.user(t, "Beto", "beto@example.com")
	var err error
	e.team, err = e.teams.Create(ctx, "Alpha", e.owner.ID)
	require.NoError(t, err)
	_, err = e.teams.AddMember(ctx, e.team.ID, e.owner.ID, e.member.ID)
	require.NoError(t, err)
	return e
}

func (e *env) user(t *testing.T, name, email string) *user.User {
	t.Helper()
	u, err := e.db.Users().Create(context.Background(), user.NewUser{Name: name, Email: email, PasswordHash: "x"})
	require.NoError(t, err)
	return u
}

func (e *env) label(t *testing.T, teamID, name string) *label.Label {
	t.Helper()
	l, err := e.db.Labels().Create(context.Background(), label.NewLabel{Name: name, TeamID: teamID, CreatorID: e.owner.ID})
	require.NoError(t, err)
	return l
}

func (e *env) create(t *testing.T, title string) *task.View {
	t.Helper()
	v, err := e.svc.Create(context.Background(), task.CreateInput{Title: title, TeamID: e.team.ID}, e.member.ID)
	require.NoError(t, err)
	return v
}

func TestCreate_Defaults(t *testing.T) {
	e := newEnv(t)

	v := e.create(t, "Preparar demo")

	assert.Equal(t, task.StatusPending, v.Status)
	assert.Equal(t, task.PriorityMedium, v.Priority)
	assert.Equal(t, e.member.ID, v.CreatorID)
	require.Len(t, v.History, 1)
	assert.Equal(t, "Tarea creada", v.History[0].Description)
	assert.Equal(t, "Beto", v.History[0].ActorName)
	assert.Empty(t, v.Labels)
	assert.Equal(t, []string{"Pendiente"}, e.rec.created)
}

func TestCreate_Validation(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	outsider := e.user(t, "Caro", "caro@example.com")

	tests := []struct {
		name    string
		in      task.CreateInput
		creator string
		want    error
	}{
		{"missing title", task.CreateInput{Title: "  ", TeamID: e.team.ID}, e.member.ID, apperr.ErrValidation},
		{"missing team", task.CreateInput{Title: "x"}, e.member.ID, apperr.ErrValidation},
		{"unknown team", task.CreateInput{Title: "x", TeamID: "nope"}, e.member.ID, apperr.ErrNotFound},
		{"unknown creator", task.CreateInput{Title: "x", TeamID: e.team.ID}, "ghost", apperr.ErrNotFound},
		{"non member", task.CreateInput{Title: "x", TeamID: e.team.ID}, outsider.ID, apperr.ErrForbidden},
		{"bad status", task.CreateInput{Title: "x", TeamID: e.team.ID, Status: "Hecha"}, e.member.ID, apperr.ErrValidation},
		{"bad priority", task.CreateInput{Title: "x", TeamID: e.team.ID, Priority: "Urgente"}, e.member.ID, apperr.ErrValidation},
		{"unknown label", task.CreateInput{Title: "x", TeamID: e.team.ID, LabelIDs: []string{"nope"}}, e.member.ID, apperr.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.svc.Create(ctx, tt.in, tt.creator)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	res, err := e.svc.List(ctx, e.team.ID, e.owner.ID, task.Filter{}, task.Page{})
	require.NoError(t, err)
	assert.Zero(t, res.Total, "failed creations must leave nothing behind")
}

func TestCreate_WithLabels(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	bug := e.label(t, e.team.ID, "Bug")
	ui := e.label(t, e.team.ID, "UI")

	v, err := e.svc.Create(ctx, task.CreateInput{
		Title:    "Arreglar botón",
		TeamID:   e.team.ID,
		Status:   "En curso",
		Priority: "Alta",
		LabelIDs: []string{ui.ID, bug.ID, ui.ID},
	}, e.member.ID)
	require.NoError(t, err)

	assert.Equal(t, task.StatusInProgress, v.Status)
	assert.Equal(t, task.PriorityHigh, v.Priority)
	require.Len(t, v.Labels, 2)
	assert.Equal(t, "Bug", v.Labels[0].Name)
	assert.Equal(t, "UI", v.Labels[1].Name)
}

func TestCreate_RejectsForeignLabel(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	other, err := e.teams.Create(ctx, "Beta", e.owner.ID)
	require.NoError(t, err)
	foreign := e.label(t, other.ID, "Bug")

	_, err = e.svc.Create(ctx, task.CreateInput{Title: "x", TeamID: e.team.ID, LabelIDs: []string{foreign.ID}}, e.member.ID)
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestUpdateStatus_TransitionTable(t *testing.T) {
	ctx := context.Background()
	all := []task.Status{task.StatusPending, task.StatusInProgress, task.StatusDone, task.StatusCancelled}

	for _, from := range all {
		for _, to := range all {
			t.Run(fmt.Sprintf("%s to %s", from, to), func(t *testing.T) {
				e := newEnv(t)
				v, err := e.svc.Create(ctx, task.CreateInput{Title: "x", TeamID: e.team.ID, Status: string(from)}, e.member.ID)
				require.NoError(t, err)

				_, err = e.svc.UpdateStatus(ctx, v.ID, string(to), e.member.ID)
				entries, herr := e.svc.History(ctx, v.ID, e.member.ID)
				require.NoError(t, herr)

				if task.CanTransition(from, to) {
					require.NoError(t, err)
					require.Len(t, entries, 2)
					assert.Equal(t, fmt.Sprintf("Estado cambiado de %s a %s", from, to), entries[0].Description)
					return
				}
				require.ErrorIs(t, err, apperr.ErrValidation)
				assert.Len(t, entries, 1)
			})
		}
	}
}

func TestUpdateStatus_Workflow(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	v := e.create(t, "Escribir informe")

	_, err := e.svc.UpdateStatus(ctx, v.ID, "Terminada", e.member.ID)
	require.ErrorIs(t, err, apperr.ErrValidation)
	assert.True(t, strings.HasPrefix(err.Error(), "Transición de estado inválida"))

	updated, err := e.svc.UpdateStatus(ctx, v.ID, "En curso", e.member.ID)
	require.NoError(t, err)
	assert.Equal(t, task.StatusInProgress, updated.Status)

	updated, err = e.svc.UpdateStatus(ctx, v.ID, "Terminada", e.owner.ID)
	require.NoError(t, err)
	assert.Equal(t, task.StatusDone, updated.Status)

	entries, err := e.svc.History(ctx, v.ID, e.owner.ID)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "Estado cambiado de En curso a Terminada", entries[0].Description)
	assert.Equal(t, "Ana", entries[0].ActorName)
	assert.Equal(t, "Estado cambiado de Pendiente a En curso", entries[1].Description)
	assert.Equal(t, "Tarea creada", entries[2].Description)

	assert.Equal(t, []string{"Pendiente->En curso", "En curso->Terminada"}, e.rec.transitions)
}

func TestUpdateStatus_Errors(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	v := e.create(t, "x")
	outsider := e.user(t, "Caro", "caro@example.com")

	_, err := e.svc.UpdateStatus(ctx, "missing", "En curso", e.member.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = e.svc.UpdateStatus(ctx, v.ID, "En curso", "ghost")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = e.svc.UpdateStatus(ctx, v.ID, "En curso", outsider.ID)
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	_, err = e.svc.UpdateStatus(ctx, v.ID, "Archivada", e.member.ID)
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

// vanishingLabels deletes every label it resolves, as if another request
// removed them between validation and the insert.
type vanishingLabels struct {
	task.LabelReader
	db *memstore.DB
}

func (v vanishingLabels) GetMany(ctx context.Context, ids []string) ([]*label.Label, error) {
	labels, err := v.LabelReader.GetMany(ctx, ids)
	for _, l := range labels {
		_ = v.db.Labels().Delete(ctx, l.ID)
	}
	return labels, err
}

func TestCreate_LabelDeletedConcurrently(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	bug := e.label(t, e.team.ID, "Bug")

	svc := task.NewService(task.Deps{
		Repo:     e.db.Tasks(),
		Members:  e.teams,
		Users:    e.db.Users(),
		Labels:   vanishingLabels{LabelReader: e.db.Labels(), db: e.db},
		History:  e.db.History(),
		Recorder: e.rec,
	})
	_, err := svc.Create(ctx, task.CreateInput{Title: "x", TeamID: e.team.ID, LabelIDs: []string{bug.ID}}, e.member.ID)
	require.ErrorIs(t, err, apperr.ErrConflict)
	assert.ErrorIs(t, err, task.ErrReferenceGone)
	assert.Empty(t, e.rec.created)

	res, err := e.svc.List(ctx, e.team.ID, e.member.ID, task.Filter{}, task.Page{})
	require.NoError(t, err)
	assert.Zero(t, res.Total)
}

func TestUpdateStatus_StaleStatusWritesNothing(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	v := e.create(t, "x")

	// Another request already moved the task out of Pendiente.
	_, err := e.db.Tasks().UpdateStatus(ctx, v.ID, task.StatusPending, task.StatusInProgress,
		history.New(v.ID, e.owner.ID, history.StatusChanged(task.StatusPending, task.StatusInProgress)))
	require.NoError(t, err)

	_, err = e.db.Tasks().UpdateStatus(ctx, v.ID, task.StatusPending, task.StatusCancelled,
		history.New(v.ID, e.member.ID, history.StatusChanged(task.StatusPending, task.StatusCancelled)))
	require.ErrorIs(t, err, task.ErrStatusChanged)
	assert.ErrorIs(t, err, apperr.ErrConflict)

	got, err := e.svc.Get(ctx, v.ID, e.member.ID)
	require.NoError(t, err)
	assert.Equal(t, task.StatusInProgress, got.Status)
	require.Len(t, got.History, 2)
	assert.Equal(t, "Estado cambiado de Pendiente a En curso", got.History[0].Description)
}

func TestDelete_OwnerOnly(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	v := e.create(t, "x")
	_, err := e.svc.UpdateStatus(ctx, v.ID, "En curso", e.member.ID)
	require.NoError(t, err)

	err = e.svc.Delete(ctx, v.ID, e.member.ID)
	require.ErrorIs(t, err, apperr.ErrForbidden)
	assert.Equal(t, "No tienes permisos para eliminar esta tarea", err.Error())

	require.NoError(t, e.svc.Delete(ctx, v.ID, e.owner.ID))

	_, err = e.svc.Get(ctx, v.ID, e.owner.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	entries, err := e.db.History().ListByTask(ctx, v.ID)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestGet_MembersOnly(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	v := e.create(t, "x")
	outsider := e.user(t, "Caro", "caro@example.com")

	got, err := e.svc.Get(ctx, v.ID, e.owner.ID)
	require.NoError(t, err)
	assert.Equal(t, v.ID, got.ID)

	_, err = e.svc.Get(ctx, v.ID, outsider.ID)
	assert.ErrorIs(t, err, apperr.ErrForbidden)
	_, err = e.svc.History(ctx, v.ID, outsider.ID)
	assert.ErrorIs(t, err, apperr.ErrForbidden)
}
