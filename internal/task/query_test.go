package task_test

import (
	"context"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alecgard/taskhub/internal/apperr"
	"github.com/alecgard/taskhub/internal/task"
)

func TestList_SecondPage(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	for i := 0; i < 15; i++ {
		e.create(t, fmt.Sprintf("Tarea %02d", i))
	}

	res, err := e.svc.List(ctx, e.team.ID, e.member.ID, task.Filter{}, task.Page{Number: 2, Size: 10})
	require.NoError(t, err)

	assert.Equal(t, 15, res.Total)
	assert.Equal(t, 2, res.TotalPages)
	assert.Equal(t, 2, res.Page)
	assert.Equal(t, 10, res.PageSize)
	require.Len(t, res.Items, 5)
	// Newest first, so the last page holds the oldest tasks.
	assert.Equal(t, "Tarea 04", res.Items[0].Title)
	assert.Equal(t, "Tarea 00", res.Items[4].Title)
}

func TestList_PagesCoverResultExactlyOnce(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	const n = 23
	for i := 0; i < n; i++ {
		e.create(t, fmt.Sprintf("t%d", i))
	}

	for _, size := range []int{1, 4, 5, 10, 23, 50} {
		t.Run(fmt.Sprintf("size %d", size), func(t *testing.T) {
			all, err := e.svc.List(ctx, e.team.ID, e.member.ID, task.Filter{}, task.Page{Number: 1, Size: 100})
			require.NoError(t, err)

			var union []string
			first, err := e.svc.List(ctx, e.team.ID, e.member.ID, task.Filter{}, task.Page{Number: 1, Size: size})
			require.NoError(t, err)
			assert.Equal(t, (n+size-1)/size, first.TotalPages)

			for p := 1; p <= first.TotalPages; p++ {
				res, err := e.svc.List(ctx, e.team.ID, e.member.ID, task.Filter{}, task.Page{Number: p, Size: size})
				require.NoError(t, err)
				for _, it := range res.Items {
					union = append(union, it.ID)
				}
			}

			want := make([]string, len(all.Items))
			for i, it := range all.Items {
				want[i] = it.ID
			}
			assert.Equal(t, want, union)
		})
	}
}

func TestList_Filters(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	bug := e.label(t, e.team.ID, "Bug")
	ui := e.label(t, e.team.ID, "UI")

	mk := func(in task.CreateInput) {
		in.TeamID = e.team.ID
		_, err := e.svc.Create(ctx, in, e.owner.ID)
		require.NoError(t, err)
	}
	mk(task.CreateInput{Title: "Login roto", Description: "El FORMULARIO falla", Priority: "Alta", LabelIDs: []string{bug.ID, ui.ID}})
	mk(task.CreateInput{Title: "Nuevo logo", Priority: "Baja", LabelIDs: []string{ui.ID}})
	mk(task.CreateInput{Title: "Migrar base", Status: "En curso"})
	mk(task.CreateInput{Title: "100% cobertura", Description: "tests"})

	tests := []struct {
		name   string
		filter task.Filter
		want   []string
	}{
		{"no filter", task.Filter{}, []string{"100% cobertura", "Migrar base", "Nuevo logo", "Login roto"}},
		{"status", task.Filter{Status: task.StatusInProgress}, []string{"Migrar base"}},
		{"priority", task.Filter{Priority: task.PriorityHigh}, []string{"Login roto"}},
		{"label once per task", task.Filter{LabelID: ui.ID}, []string{"Nuevo logo", "Login roto"}},
		{"text in description", task.Filter{Query: "formulario"}, []string{"Login roto"}},
		{"text in title", task.Filter{Query: "LOGO"}, []string{"Nuevo logo"}},
		{"literal percent", task.Filter{Query: "100%"}, []string{"100% cobertura"}},
		{"combined", task.Filter{LabelID: bug.ID, Priority: task.PriorityLow}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := e.svc.List(ctx, e.team.ID, e.member.ID, tt.filter, task.Page{})
			require.NoError(t, err)
			var titles []string
			for _, it := range res.Items {
				titles = append(titles, it.Title)
			}
			assert.Equal(t, tt.want, titles)
			assert.Equal(t, len(tt.want), res.Total)
		})
	}
}

func TestList_Enrichment(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	bug := e.label(t, e.team.ID, "Bug")
	v, err := e.svc.Create(ctx, task.CreateInput{Title: "x", TeamID: e.team.ID, LabelIDs: []string{bug.ID}}, e.member.ID)
	require.NoError(t, err)
	_, err = e.svc.UpdateStatus(ctx, v.ID, "En curso", e.owner.ID)
	require.NoError(t, err)

	res, err := e.svc.List(ctx, e.team.ID, e.owner.ID, task.Filter{}, task.Page{})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)

	it := res.Items[0]
	require.Len(t, it.Labels, 1)
	assert.Equal(t, "Bug", it.Labels[0].Name)
	require.Len(t, it.History, 2)
	assert.Equal(t, "Ana", it.History[0].ActorName)
	assert.Equal(t, "Beto", it.History[1].ActorName)
}

func TestList_PageBounds(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	e.create(t, "x")

	res, err := e.svc.List(ctx, e.team.ID, e.member.ID, task.Filter{}, task.Page{Size: 1000})
	require.NoError(t, err)
	assert.Equal(t, 100, res.PageSize)
	assert.Equal(t, 1, res.Page)

	res, err = e.svc.List(ctx, e.team.ID, e.member.ID, task.Filter{}, task.Page{Number: 5})
	require.NoError(t, err)
	assert.Empty(t, res.Items)
	assert.Equal(t, 1, res.Total)

	_, err = e.svc.List(ctx, e.team.ID, e.member.ID, task.Filter{}, task.Page{Number: -1})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestList_PageOverflow(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	e.create(t, "x")

	_, err := e.svc.List(ctx, e.team.ID, e.member.ID, task.Filter{}, task.Page{Number: math.MaxInt/2 + 2, Size: 2})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = e.svc.List(ctx, e.team.ID, e.member.ID, task.Filter{}, task.Page{Number: math.MaxInt, Size: 100})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	// Largest page whose offset still fits is simply empty.
	res, err := e.svc.List(ctx, e.team.ID, e.member.ID, task.Filter{}, task.Page{Number: math.MaxInt/100 + 1, Size: 100})
	require.NoError(t, err)
	assert.Empty(t, res.Items)
	assert.Equal(t, 1, res.Total)
}

func TestList_Authorization(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	outsider := e.user(t, "Caro", "caro@example.com")

	_, err := e.svc.List(ctx, e.team.ID, outsider.ID, task.Filter{}, task.Page{})
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	_, err = e.svc.List(ctx, "missing", e.member.ID, task.Filter{}, task.Page{})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = e.svc.List(ctx, e.team.ID, e.member.ID, task.Filter{Status: "Hecha"}, task.Page{})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}
