// Package task implements the task lifecycle (creation, status workflow,
// deletion) and the filtered task query engine.
package task

import (
	"context"
	"errors"
	"strings"

	"github.com/alecgard/taskhub/internal/apperr"
	"github.com/alecgard/taskhub/internal/history"
	"github.com/alecgard/taskhub/internal/label"
	"github.com/alecgard/taskhub/internal/user"
)

const (
	msgTaskNotFound    = "Tarea no encontrada"
	msgUserNotFound    = "Usuario no encontrado"
	msgTitleRequired   = "El título es obligatorio"
	msgTeamRequired    = "El equipo es obligatorio"
	msgInvalidStatus   = "Estado inválido"
	msgInvalidPriority = "Prioridad inválida"
	msgUnknownLabels   = "Alguna etiqueta no existe o no pertenece al equipo de la tarea"
	msgTaskOrphan      = "La tarea no pertenece a ningún equipo"
	msgOnlyOwnerDelete = "No tienes permisos para eliminar esta tarea"
	msgStatusRace      = "El estado de la tarea cambió mientras se actualizaba"
	msgReferenceGone   = "El equipo, el usuario o una etiqueta fue eliminado durante la operación"
)

// Errors returned by task repositories.
var (
	ErrNotFound      = apperr.NotFound(msgTaskNotFound)
	ErrStatusChanged = apperr.Conflict(msgStatusRace)
	ErrReferenceGone = apperr.Conflict(msgReferenceGone)
)

// Repository is the persistence contract for tasks.
type Repository interface {
	Create(ctx context.Context, in NewTask, created history.Entry, labelIDs []string) (*Task, error)
	GetByID(ctx context.Context, id string) (*Task, error)
	TeamOf(ctx context.Context, taskID string) (string, error)
	UpdateStatus(ctx context.Context, id string, from, to Status, entry history.Entry) (*Task, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, teamID string, f Filter, offset, limit int) ([]*Task, int, error)
}

// Membership answers team authorization questions.
type Membership interface {
	RequireMember(ctx context.Context, teamID, userID string) error
	RequireOwner(ctx context.Context, teamID, userID, rule string) error
}

// UserLookup resolves user accounts.
type UserLookup interface {
	GetByID(ctx context.Context, id string) (*user.User, error)
}

// LabelReader resolves labels for validation and enrichment.
type LabelReader interface {
	GetMany(ctx context.Context, ids []string) ([]*label.Label, error)
	ListByTask(ctx context.Context, taskID string) ([]*label.Label, error)
	ListByTasks(ctx context.Context, taskIDs []string) (map[string][]*label.Label, error)
}

// Recorder receives task lifecycle events for metrics.
type Recorder interface {
	RecordTaskCreated(status string)
	RecordTransition(from, to string)
}

// Pagination bounds the page size of listings.
type Pagination struct {
	DefaultLimit int
	MaxLimit     int
}

// Deps holds the collaborators of the task service.
type Deps struct {
	Repo       Repository
	Members    Membership
	Users      UserLookup
	Labels     LabelReader
	History    history.Reader
	Pagination Pagination
	Recorder   Recorder // optional
}

// Service implements the task lifecycle and queries.
type Service struct {
	repo    Repository
	members Membership
	users   UserLookup
	labels  LabelReader
	history history.Reader
	pages   Pagination
	rec     Recorder
}

// NewService creates a task service.
func NewService(d Deps) *Service {
	p := d.Pagination
	if p.DefaultLimit <= 0 {
		p.DefaultLimit = 10
	}
	if p.MaxLimit <= 0 {
		p.MaxLimit = 100
	}
	if p.DefaultLimit > p.MaxLimit {
		p.DefaultLimit = p.MaxLimit
	}
	return &Service{
		repo:    d.Repo,
		members: d.Members,
		users:   d.Users,
		labels:  d.Labels,
		history: d.History,
		pages:   p,
		rec:     d.Recorder,
	}
}

func (s *Service) requireUser(ctx context.Context, id string) error {
	if _, err := s.users.GetByID(ctx, id); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return apperr.NotFound(msgUserNotFound)
		}
		return err
	}
	return nil
}

// Create makes a task in a team the creator belongs to. The task, its
// "Tarea creada" entry and its label links are stored atomically.
func (s *Service) Create(ctx context.Context, in CreateInput, creatorID string) (*View, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, apperr.Validation(msgTitleRequired)
	}
	if in.TeamID == "" {
		return nil, apperr.Validation(msgTeamRequired)
	}
	if err := s.requireUser(ctx, creatorID); err != nil {
		return nil, err
	}
	if err := s.members.RequireMember(ctx, in.TeamID, creatorID); err != nil {
		return nil, err
	}

	status, ok := ParseStatus(in.Status)
	if !ok {
		return nil, apperr.Validation(msgInvalidStatus)
	}
	priority, ok := ParsePriority(in.Priority)
	if !ok {
		return nil, apperr.Validation(msgInvalidPriority)
	}

	labelIDs := dedupe(in.LabelIDs)
	labels, err := s.resolveLabels(ctx, in.TeamID, labelIDs)
	if err != nil {
		return nil, err
	}

	t, err := s.repo.Create(ctx, NewTask{
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		Status:      status,
		Priority:    priority,
		CreatorID:   creatorID,
		TeamID:      in.TeamID,
	}, history.New("", creatorID, history.DescCreated), labelIDs)
	if err != nil {
		return nil, err
	}
	if s.rec != nil {
		s.rec.RecordTaskCreated(string(status))
	}

	entries, err := s.history.ListByTask(ctx, t.ID)
	if err != nil {
		return nil, err
	}
	return &View{Task: t, Labels: labels, History: entries}, nil
}

// resolveLabels requires every id to name a label of teamID.
func (s *Service) resolveLabels(ctx context.Context, teamID string, ids []string) ([]*label.Label, error) {
	if len(ids) == 0 {
		return []*label.Label{}, nil
	}
	labels, err := s.labels.GetMany(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(labels) != len(ids) {
		return nil, apperr.Validation(msgUnknownLabels)
	}
	for _, l := range labels {
		if l.TeamID != teamID {
			return nil, apperr.Validation(msgUnknownLabels)
		}
	}
	return labels, nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// UpdateStatus applies a workflow transition and records it in the history.
func (s *Service) UpdateStatus(ctx context.Context, taskID, newStatus, actorID string) (*Task, error) {
	to := Status(newStatus)
	if !to.Valid() {
		return nil, apperr.Validation(msgInvalidStatus)
	}
	t, err := s.repo.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if err := s.requireUser(ctx, actorID); err != nil {
		return nil, err
	}
	if t.TeamID == "" {
		return nil, apperr.Validation(msgTaskOrphan)
	}
	if err := s.members.RequireMember(ctx, t.TeamID, actorID); err != nil {
		return nil, err
	}

	from := t.Status
	if !CanTransition(from, to) {
		return nil, apperr.Validation("Transición de estado inválida: %s -> %s", from, to)
	}

	updated, err := s.repo.UpdateStatus(ctx, taskID, from, to,
		history.New(taskID, actorID, history.StatusChanged(from, to)))
	if err != nil {
		return nil, err
	}
	if s.rec != nil {
		s.rec.RecordTransition(string(from), string(to))
	}
	return updated, nil
}

// Delete removes a task permanently. Only the owner of the task's team may
// delete it.
func (s *Service) Delete(ctx context.Context, taskID, requesterID string) error {
	t, err := s.repo.GetByID(ctx, taskID)
	if err != nil {
		return err
	}
	if t.TeamID == "" {
		return apperr.Validation(msgTaskOrphan)
	}
	if err := s.members.RequireOwner(ctx, t.TeamID, requesterID, msgOnlyOwnerDelete); err != nil {
		return err
	}
	return s.repo.Delete(ctx, taskID)
}

// Get returns a single enriched task to a member of its team.
func (s *Service) Get(ctx context.Context, taskID, requesterID string) (*View, error) {
	t, err := s.readable(ctx, taskID, requesterID)
	if err != nil {
		return nil, err
	}
	labels, err := s.labels.ListByTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	entries, err := s.history.ListByTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	return &View{Task: t, Labels: labels, History: entries}, nil
}

// History returns the audit trail of a task, newest first.
func (s *Service) History(ctx context.Context, taskID, requesterID string) ([]history.Entry, error) {
	if _, err := s.readable(ctx, taskID, requesterID); err != nil {
		return nil, err
	}
	return s.history.ListByTask(ctx, taskID)
}

func (s *Service) readable(ctx context.Context, taskID, requesterID string) (*Task, error) {
	t, err := s.repo.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if t.TeamID == "" {
		return nil, apperr.Validation(msgTaskOrphan)
	}
	if err := s.members.RequireMember(ctx, t.TeamID, requesterID); err != nil {
		return nil, err
	}
	return t, nil
}
