package memstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alecgard/taskhub/internal/apperr"
	"github.com/alecgard/taskhub/internal/history"
	"github.com/alecgard/taskhub/internal/label"
	"github.com/alecgard/taskhub/internal/task"
	"github.com/alecgard/taskhub/internal/user"
)

type fixture struct {
	db     *DB
	userID string
	teamID string
	label  *label.Label
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	db := New()
	u, err := db.Users().Create(ctx, user.NewUser{Name: "Ana", Email: "ana@example.com", PasswordHash: "x"})
	require.NoError(t, err)
	tm, err := db.Teams().Create(ctx, "Alpha", u.ID)
	require.NoError(t, err)
	l, err := db.Labels().Create(ctx, label.NewLabel{Name: "Bug", TeamID: tm.ID, CreatorID: u.ID})
	require.NoError(t, err)
	return &fixture{db: db, userID: u.ID, teamID: tm.ID, label: l}
}

func (f *fixture) newTask(creatorID string) task.NewTask {
	return task.NewTask{
		Title: "x", Status: task.StatusPending, Priority: task.PriorityMedium,
		CreatorID: creatorID, TeamID: f.teamID,
	}
}

func TestTasksCreate_MissingReferenceWritesNothing(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(f *fixture, in *task.NewTask, labelIDs *[]string)
	}{
		{
			name:   "deleted label",
			mutate: func(f *fixture, _ *task.NewTask, labelIDs *[]string) { *labelIDs = append(*labelIDs, "gone") },
		},
		{
			name:   "deleted team",
			mutate: func(_ *fixture, in *task.NewTask, _ *[]string) { in.TeamID = "gone" },
		},
		{
			name:   "deleted creator",
			mutate: func(_ *fixture, in *task.NewTask, _ *[]string) { in.CreatorID = "gone" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			in := f.newTask(f.userID)
			labelIDs := []string{f.label.ID}
			tt.mutate(f, &in, &labelIDs)

			_, err := f.db.Tasks().Create(context.Background(), in,
				history.New("", f.userID, history.DescCreated), labelIDs)
			require.ErrorIs(t, err, task.ErrReferenceGone)
			assert.ErrorIs(t, err, apperr.ErrConflict)

			assert.Empty(t, f.db.tasks)
			assert.Empty(t, f.db.history)
			assert.Empty(t, f.db.links)
		})
	}
}

func TestTasksUpdateStatus_AllOrNothing(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	tk, err := f.db.Tasks().Create(ctx, f.newTask(f.userID),
		history.New("", f.userID, history.DescCreated), []string{f.label.ID})
	require.NoError(t, err)
	require.Len(t, f.db.history, 1)

	move := func(from, to task.Status, actorID string) error {
		_, err := f.db.Tasks().UpdateStatus(ctx, tk.ID, from, to,
			history.New(tk.ID, actorID, history.StatusChanged(from, to)))
		return err
	}

	err = move(task.StatusInProgress, task.StatusDone, f.userID)
	assert.ErrorIs(t, err, task.ErrStatusChanged)

	err = move(task.StatusPending, task.StatusInProgress, "gone")
	assert.ErrorIs(t, err, task.ErrReferenceGone)

	assert.Equal(t, task.StatusPending, f.db.tasks[tk.ID].Status)
	assert.Len(t, f.db.history, 1)

	require.NoError(t, move(task.StatusPending, task.StatusInProgress, f.userID))
	assert.Equal(t, task.StatusInProgress, f.db.tasks[tk.ID].Status)
	assert.Len(t, f.db.history, 2)
}

func TestLabelsLink_MissingRow(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	tk, err := f.db.Tasks().Create(ctx, f.newTask(f.userID),
		history.New("", f.userID, history.DescCreated), nil)
	require.NoError(t, err)

	require.NoError(t, f.db.Labels().Delete(ctx, f.label.ID))
	err = f.db.Labels().Link(ctx, tk.ID, f.label.ID)
	assert.ErrorIs(t, err, label.ErrLinkGone)
	err = f.db.Labels().Link(ctx, "gone", f.label.ID)
	assert.ErrorIs(t, err, label.ErrLinkGone)
	assert.Empty(t, f.db.links[tk.ID])
}

func TestTasksList_OffsetBounds(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	for i := 0; i < 3; i++ {
		_, err := f.db.Tasks().Create(ctx, f.newTask(f.userID),
			history.New("", f.userID, history.DescCreated), nil)
		require.NoError(t, err)
	}

	tests := []struct {
		name          string
		offset, limit int
		want          int
	}{
		{"first page", 0, 2, 2},
		{"tail", 2, 2, 1},
		{"past end", 3, 2, 0},
		{"negative offset", -4, 2, 0},
		{"huge limit", 1, int(^uint(0) >> 1), 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, total, err := f.db.Tasks().List(ctx, f.teamID, task.Filter{}, tt.offset, tt.limit)
			require.NoError(t, err)
			assert.Equal(t, 3, total)
			assert.Len(t, items, tt.want)
		})
	}
}
