package comment_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alecgard/taskhub/internal/apperr"
	"github.com/alecgard/taskhub/internal/comment"
	"github.com/alecgard/taskhub/internal/history"
	"github.com/alecgard/taskhub/internal/memstore"
	"github.com/alecgard/taskhub/internal/task"
	"github.com/alecgard/taskhub/internal/team"
	"github.com/alecgard/taskhub/internal/user"
)

type fixture struct {
	db       *memstore.DB
	svc      *comment.Service
	author   *user.User
	other    *user.User
	outsider *user.User
	taskID   string
}

func setup(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	db := memstore.New()
	teams := team.NewService(db.Teams(), db.Users())
	f := &fixture{db: db, svc: comment.NewService(db.Comments(), db.Tasks(), db.Users(), teams)}

	mk := func(name, email string) *user.User {
		u, err := db.Users().Create(ctx, user.NewUser{Name: name, Email: email, PasswordHash: "x"})
		require.NoError(t, err)
		return u
	}
	f.author = mk("Ana", "ana@example.com")
	f.other = mk("", "beto@example.com")
	f.outsider = mk("Caro", "caro@example.com")

	tm, err := teams.Create(ctx, "Alpha", f.author.ID)
	require.NoError(t, err)
	_, err = teams.AddMember(ctx, tm.ID, f.author.ID, f.other.ID)
	require.NoError(t, err)

	tk, err := db.Tasks().Create(ctx, task.NewTask{
		Title: "x", Status: task.StatusPending, Priority: task.PriorityMedium,
		CreatorID: f.author.ID, TeamID: tm.ID,
	}, history.New("", f.author.ID, history.DescCreated), nil)
	require.NoError(t, err)
	f.taskID = tk.ID
	return f
}

func TestCreate(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	c, err := f.svc.Create(ctx, f.taskID, f.author.ID, "  Listo para revisar  ")
	require.NoError(t, err)
	assert.Equal(t, "Listo para revisar", c.Content)
	assert.Equal(t, "Ana", c.AuthorName)

	tests := []struct {
		name    string
		taskID  string
		author  string
		content string
		want    error
	}{
		{"empty content", f.taskID, f.author.ID, "   ", apperr.ErrValidation},
		{"unknown task", "missing", f.author.ID, "hola", apperr.ErrNotFound},
		{"unknown author", f.taskID, "ghost", "hola", apperr.ErrNotFound},
		{"not a member", f.taskID, f.outsider.ID, "hola", apperr.ErrForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Create(ctx, tt.taskID, tt.author, tt.content)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestEditDelete_AuthorOnly(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	c, err := f.svc.Create(ctx, f.taskID, f.author.ID, "original")
	require.NoError(t, err)

	for _, intruder := range []string{f.other.ID, f.outsider.ID, "ghost"} {
		_, err := f.svc.Edit(ctx, c.ID, "hackeado", intruder)
		assert.ErrorIs(t, err, apperr.ErrForbidden)
		assert.ErrorIs(t, f.svc.Delete(ctx, c.ID, intruder), apperr.ErrForbidden)
	}

	edited, err := f.svc.Edit(ctx, c.ID, "corregido", f.author.ID)
	require.NoError(t, err)
	assert.Equal(t, "corregido", edited.Content)

	_, err = f.svc.Edit(ctx, c.ID, "", f.author.ID)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	require.NoError(t, f.svc.Delete(ctx, c.ID, f.author.ID))
	assert.ErrorIs(t, f.svc.Delete(ctx, c.ID, f.author.ID), apperr.ErrNotFound)
}

func TestListForTask_OldestFirst(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	for _, body := range []string{"uno", "dos", "tres"} {
		_, err := f.svc.Create(ctx, f.taskID, f.other.ID, body)
		require.NoError(t, err)
	}

	list, err := f.svc.ListForTask(ctx, f.taskID, f.author.ID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "uno", list[0].Content)
	assert.Equal(t, "tres", list[2].Content)
	assert.Equal(t, "beto@example.com", list[0].AuthorName)

	_, err = f.svc.ListForTask(ctx, f.taskID, f.outsider.ID)
	assert.ErrorIs(t, err, apperr.ErrForbidden)
}
