package task

import (
	"context"
	"math"
	"strings"

	"github.com/alecgard/taskhub/internal/apperr"
	"github.com/alecgard/taskhub/internal/history"
	"github.com/alecgard/taskhub/internal/label"
)

// List returns one page of a team's tasks matching f, newest first, each
// enriched with its labels and history.
func (s *Service) List(ctx context.Context, teamID, requesterID string, f Filter, p Page) (*Result, error) {
	if err := s.members.RequireMember(ctx, teamID, requesterID); err != nil {
		return nil, err
	}
	if f.Status != "" && !f.Status.Valid() {
		return nil, apperr.Validation(msgInvalidStatus)
	}
	if f.Priority != "" && !f.Priority.Valid() {
		return nil, apperr.Validation(msgInvalidPriority)
	}
	f.Query = strings.TrimSpace(f.Query)

	page, size, err := s.normalizePage(p)
	if err != nil {
		return nil, err
	}

	tasks, total, err := s.repo.List(ctx, teamID, f, (page-1)*size, size)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(tasks))
	for i, t := range tasks {
		ids[i] = t.ID
	}
	labels, err := s.labels.ListByTasks(ctx, ids)
	if err != nil {
		return nil, err
	}
	entries, err := s.history.ListByTasks(ctx, ids)
	if err != nil {
		return nil, err
	}

	items := make([]*View, len(tasks))
	for i, t := range tasks {
		v := &View{Task: t, Labels: labels[t.ID], History: entries[t.ID]}
		if v.Labels == nil {
			v.Labels = []*label.Label{}
		}
		if v.History == nil {
			v.History = []history.Entry{}
		}
		items[i] = v
	}

	return &Result{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   size,
		TotalPages: TotalPages(total, size),
	}, nil
}

func (s *Service) normalizePage(p Page) (int, int, error) {
	page, size := p.Number, p.Size
	if page < 0 || size < 0 {
		return 0, 0, apperr.Validation("Los parámetros de paginación deben ser positivos")
	}
	if page == 0 {
		page = 1
	}
	if size == 0 {
		size = s.pages.DefaultLimit
	}
	if size > s.pages.MaxLimit {
		size = s.pages.MaxLimit
	}
	if page-1 > math.MaxInt/size {
		return 0, 0, apperr.Validation("La página solicitada está fuera de rango")
	}
	return page, size, nil
}

// TotalPages is ceil(total/size). A non-positive size yields 0.
func TotalPages(total, size int) int {
	if size <= 0 {
		return 0
	}
	return (total + size - 1) / size
}
