// Package comment guards task comments: members of the task's team may read
// and write them, and only the author may edit or delete one.
package comment

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/alecgard/taskhub/internal/apperr"
	"github.com/alecgard/taskhub/internal/user"
)

const (
	msgCommentNotFound  = "Comentario no encontrado"
	msgTaskNotFound     = "La tarea no existe"
	msgUserNotFound     = "El usuario no existe"
	msgContentRequired  = "El contenido es obligatorio"
	msgTaskOrphan       = "La tarea no pertenece a ningún equipo"
	msgOnlyAuthorEdit   = "Solo el autor puede editar este comentario"
	msgOnlyAuthorDelete = "Solo el autor puede eliminar este comentario"
)

// ErrNotFound is returned by repositories for an unknown comment id.
var ErrNotFound = apperr.NotFound(msgCommentNotFound)

// Comment is a note left by a user on a task.
type Comment struct {
	ID         string    `json:"id"`
	Content    string    `json:"contenido"`
	AuthorID   string    `json:"autorId"`
	AuthorName string    `json:"autor"`
	TaskID     string    `json:"tareaId"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// NewComment holds the columns persisted when a comment is created.
type NewComment struct {
	Content  string
	AuthorID string
	TaskID   string
}

// Repository is the persistence contract for comments.
type Repository interface {
	Create(ctx context.Context, in NewComment) (*Comment, error)
	GetByID(ctx context.Context, id string) (*Comment, error)
	UpdateContent(ctx context.Context, id, content string) (*Comment, error)
	Delete(ctx context.Context, id string) error
	ListByTask(ctx context.Context, taskID string) ([]*Comment, error)
}

// TaskTeams resolves the team of a task; "" when it has none.
type TaskTeams interface {
	TeamOf(ctx context.Context, taskID string) (string, error)
}

// Membership answers team authorization questions.
type Membership interface {
	RequireMember(ctx context.Context, teamID, userID string) error
}

// UserLookup resolves user accounts.
type UserLookup interface {
	GetByID(ctx context.Context, id string) (*user.User, error)
}

type Service struct {
	repo    Repository
	tasks   TaskTeams
	users   UserLookup
	members Membership
}

func NewService(repo Repository, tasks TaskTeams, users UserLookup, members Membership) *Service {
	return &Service{repo: repo, tasks: tasks, users: users, members: members}
}

func (s *Service) taskTeam(ctx context.Context, taskID string) (string, error) {
	teamID, err := s.tasks.TeamOf(ctx, taskID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return "", apperr.NotFound(msgTaskNotFound)
		}
		return "", err
	}
	if teamID == "" {
		return "", apperr.Validation(msgTaskOrphan)
	}
	return teamID, nil
}

// Create adds a comment to a task. The author must be a member of the task's
// team.
func (s *Service) Create(ctx context.Context, taskID, authorID, content string) (*Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperr.Validation(msgContentRequired)
	}
	teamID, err := s.taskTeam(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if _, err := s.users.GetByID(ctx, authorID); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.NotFound(msgUserNotFound)
		}
		return nil, err
	}
	if err := s.members.RequireMember(ctx, teamID, authorID); err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, NewComment{Content: content, AuthorID: authorID, TaskID: taskID})
}

// Edit replaces the content of a comment. Author only.
func (s *Service) Edit(ctx context.Context, commentID, content, requesterID string) (*Comment, error) {
	c, err := s.repo.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if c.AuthorID != requesterID {
		return nil, apperr.Forbidden(msgOnlyAuthorEdit)
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperr.Validation(msgContentRequired)
	}
	return s.repo.UpdateContent(ctx, commentID, content)
}

// Delete removes a comment. Author only.
func (s *Service) Delete(ctx context.Context, commentID, requesterID string) error {
	c, err := s.repo.GetByID(ctx, commentID)
	if err != nil {
		return err
	}
	if c.AuthorID != requesterID {
		return apperr.Forbidden(msgOnlyAuthorDelete)
	}
	return s.repo.Delete(ctx, commentID)
}

// ListForTask returns the comments of a task, oldest first.
func (s *Service) ListForTask(ctx context.Context, taskID, requesterID string) ([]*Comment, error) {
	teamID, err := s.taskTeam(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if err := s.members.RequireMember(ctx, teamID, requesterID); err != nil {
		return nil, err
	}
	return s.repo.ListByTask(ctx, taskID)
}
