// Package label is the team-scoped tag registry and the task-label linking
// rules.
package label

import (
	"context"
	"strings"

	"github.com/alecgard/taskhub/internal/apperr"
)

const (
	msgLabelNotFound   = "Etiqueta no encontrada."
	msgNameRequired    = "El nombre de la etiqueta es obligatorio"
	msgDuplicateName   = "Ya existe una etiqueta con ese nombre en el equipo"
	msgOnlyCreatorEdit = "Acceso denegado. Solo el creador puede editar esta etiqueta."
	msgOnlyCreatorDel  = "Acceso denegado. Solo el creador puede eliminar esta etiqueta."
	msgWrongTeam       = "La etiqueta no pertenece al equipo de esta tarea."
	msgTaskOrphan      = "La tarea no pertenece a ningún equipo"
	msgLinkGone        = "La tarea o la etiqueta fue eliminada durante la operación"
)

// Errors returned by label repositories.
var (
	ErrNotFound      = apperr.NotFound(msgLabelNotFound)
	ErrDuplicateName = apperr.Conflict(msgDuplicateName)
	ErrLinkGone      = apperr.Conflict(msgLinkGone)
)

// Repository is the persistence contract for labels.
type Repository interface {
	Create(ctx context.Context, in NewLabel) (*Label, error)
	GetByID(ctx context.Context, id string) (*Label, error)
	GetMany(ctx context.Context, ids []string) ([]*Label, error)
	ListByTeam(ctx context.Context, teamID string) ([]*Label, error)
	Rename(ctx context.Context, id, name string) (*Label, error)
	Delete(ctx context.Context, id string) error
	Link(ctx context.Context, taskID, labelID string) error
	Unlink(ctx context.Context, taskID, labelID string) error
	ListByTask(ctx context.Context, taskID string) ([]*Label, error)
	ListByTasks(ctx context.Context, taskIDs []string) (map[string][]*Label, error)
}

// Membership answers team authorization questions.
type Membership interface {
	RequireMember(ctx context.Context, teamID, userID string) error
}

// TaskTeams resolves the team a task belongs to. It returns NotFound when the
// task does not exist and "" when the task has no team.
type TaskTeams interface {
	TeamOf(ctx context.Context, taskID string) (string, error)
}

// Service implements label CRUD and assignment.
type Service struct {
	repo    Repository
	members Membership
	tasks   TaskTeams
}

// NewService creates a label service.
func NewService(repo Repository, members Membership, tasks TaskTeams) *Service {
	return &Service{repo: repo, members: members, tasks: tasks}
}

// Create adds a label to the team. The creator must be a member.
func (s *Service) Create(ctx context.Context, teamID, creatorID, name string) (*Label, error) {
	if err := s.members.RequireMember(ctx, teamID, creatorID); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Validation(msgNameRequired)
	}
	return s.repo.Create(ctx, NewLabel{Name: name, TeamID: teamID, CreatorID: creatorID})
}

// List returns the labels of a team to one of its members.
func (s *Service) List(ctx context.Context, teamID, requesterID string) ([]*Label, error) {
	if err := s.members.RequireMember(ctx, teamID, requesterID); err != nil {
		return nil, err
	}
	return s.repo.ListByTeam(ctx, teamID)
}

// Update renames a label. Only its creator may do so, whether or not they are
// still a member of the team.
func (s *Service) Update(ctx context.Context, labelID, requesterID, name string) (*Label, error) {
	l, err := s.repo.GetByID(ctx, labelID)
	if err != nil {
		return nil, err
	}
	if l.CreatorID != requesterID {
		return nil, apperr.Forbidden(msgOnlyCreatorEdit)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Validation(msgNameRequired)
	}
	if name == l.Name {
		return l, nil
	}
	return s.repo.Rename(ctx, labelID, name)
}

// Delete removes a label. Creator only.
func (s *Service) Delete(ctx context.Context, labelID, requesterID string) error {
	l, err := s.repo.GetByID(ctx, labelID)
	if err != nil {
		return err
	}
	if l.CreatorID != requesterID {
		return apperr.Forbidden(msgOnlyCreatorDel)
	}
	return s.repo.Delete(ctx, labelID)
}

func (s *Service) taskTeam(ctx context.Context, taskID string) (string, error) {
	teamID, err := s.tasks.TeamOf(ctx, taskID)
	if err != nil {
		return "", err
	}
	if teamID == "" {
		return "", apperr.Validation(msgTaskOrphan)
	}
	return teamID, nil
}

// Assign links a label to a task. Both must belong to the same team and the
// requester must be a member of it. Assigning twice is a no-op.
func (s *Service) Assign(ctx context.Context, taskID, labelID, requesterID string) error {
	teamID, err := s.taskTeam(ctx, taskID)
	if err != nil {
		return err
	}
	l, err := s.repo.GetByID(ctx, labelID)
	if err != nil {
		return err
	}
	if l.TeamID != teamID {
		return apperr.Validation(msgWrongTeam)
	}
	if err := s.members.RequireMember(ctx, teamID, requesterID); err != nil {
		return err
	}
	return s.repo.Link(ctx, taskID, labelID)
}

// Unassign removes a label from a task. Removing a label that is not linked
// is a no-op.
func (s *Service) Unassign(ctx context.Context, taskID, labelID, requesterID string) error {
	teamID, err := s.taskTeam(ctx, taskID)
	if err != nil {
		return err
	}
	if err := s.members.RequireMember(ctx, teamID, requesterID); err != nil {
		return err
	}
	return s.repo.Unlink(ctx, taskID, labelID)
}

// ListForTask returns the labels linked to a task.
func (s *Service) ListForTask(ctx context.Context, taskID, requesterID string) ([]*Label, error) {
	teamID, err := s.taskTeam(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if err := s.members.RequireMember(ctx, teamID, requesterID); err != nil {
		return nil, err
	}
	return s.repo.ListByTask(ctx, taskID)
}
