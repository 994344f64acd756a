// Package team is the membership authority: it owns teams and answers whether
// a user may act on a team as a member or as its owner. Every other service
// delegates its authorization checks here.
package team

import (
	"context"
	"errors"
	"strings"

	"github.com/alecgard/taskhub/internal/apperr"
	"github.com/alecgard/taskhub/internal/user"
)

const (
	msgTeamNotFound     = "Equipo no encontrado"
	msgNameRequired     = "El nombre del equipo es obligatorio"
	msgAlreadyMember    = "El usuario ya es miembro del equipo"
	msgNotAMember       = "El usuario no es miembro del equipo."
	msgNotTeamMember    = "Acceso denegado. El usuario no es miembro del equipo."
	msgOwnerCannotLeave = "El propietario no puede salir, solo borrar el equipo."
	msgCannotRemove     = "No tienes permiso para remover a otros miembros."
	msgOwnerNotRemoved  = "El propietario no puede ser removido por esta vía."
	msgOnlyOwnerInvites = "Solo el propietario puede invitar miembros"
	msgOnlyOwnerDeletes = "Solo el propietario puede borrar el equipo"
)

// Errors returned by team repositories.
var (
	ErrNotFound      = apperr.NotFound(msgTeamNotFound)
	ErrAlreadyMember = apperr.Conflict(msgAlreadyMember)
	ErrNotMember     = apperr.NotFound(msgNotAMember)
)

// Repository is the persistence contract for teams.
type Repository interface {
	Create(ctx context.Context, name, ownerID string) (*Team, error)
	GetByID(ctx context.Context, id string) (*Team, error)
	ListByUser(ctx context.Context, userID string) ([]*Team, error)
	OwnerOf(ctx context.Context, teamID string) (string, error)
	IsMember(ctx context.Context, teamID, userID string) (bool, error)
	AddMember(ctx context.Context, teamID, userID string) error
	RemoveMember(ctx context.Context, teamID, userID string) error
	Delete(ctx context.Context, id string) error
}

// UserLookup resolves user accounts.
type UserLookup interface {
	GetByID(ctx context.Context, id string) (*user.User, error)
	GetByEmail(ctx context.Context, email string) (*user.User, error)
}

// Service implements team management and membership authorization.
type Service struct {
	repo  Repository
	users UserLookup
}

// NewService creates a team service.
func NewService(repo Repository, users UserLookup) *Service {
	return &Service{repo: repo, users: users}
}

// IsMember reports whether userID belongs to the team. NotFound if the team
// does not exist.
func (s *Service) IsMember(ctx context.Context, teamID, userID string) (bool, error) {
	return s.repo.IsMember(ctx, teamID, userID)
}

// IsOwner reports whether userID owns the team. NotFound if the team does not
// exist.
func (s *Service) IsOwner(ctx context.Context, teamID, userID string) (bool, error) {
	owner, err := s.repo.OwnerOf(ctx, teamID)
	if err != nil {
		return false, err
	}
	return owner == userID, nil
}

// RequireMember returns Forbidden unless userID is a member of the team.
func (s *Service) RequireMember(ctx context.Context, teamID, userID string) error {
	ok, err := s.IsMember(ctx, teamID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.Forbidden(msgNotTeamMember)
	}
	return nil
}

// RequireOwner returns Forbidden with rule as message unless userID owns the
// team.
func (s *Service) RequireOwner(ctx context.Context, teamID, userID, rule string) error {
	ok, err := s.IsOwner(ctx, teamID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.Forbidden(rule)
	}
	return nil
}

// Create makes a team owned by ownerID, who becomes its sole member.
func (s *Service) Create(ctx context.Context, name, ownerID string) (*Team, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Validation(msgNameRequired)
	}
	if _, err := s.users.GetByID(ctx, ownerID); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.NotFound("Propietario no encontrado")
		}
		return nil, err
	}
	return s.repo.Create(ctx, name, ownerID)
}

// Get returns the team if requesterID is a member.
func (s *Service) Get(ctx context.Context, teamID, requesterID string) (*Team, error) {
	t, err := s.repo.GetByID(ctx, teamID)
	if err != nil {
		return nil, err
	}
	if !t.HasMember(requesterID) {
		return nil, apperr.Forbidden(msgNotTeamMember)
	}
	return t, nil
}

// ListForUser returns the teams userID belongs to.
func (s *Service) ListForUser(ctx context.Context, userID string) ([]*Team, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.repo.ListByUser(ctx, userID)
}

// AddMember adds targetUserID to the team. Only the owner may add members.
func (s *Service) AddMember(ctx context.Context, teamID, requesterID, targetUserID string) (*Team, error) {
	if err := s.RequireOwner(ctx, teamID, requesterID, msgOnlyOwnerInvites); err != nil {
		return nil, err
	}
	if _, err := s.users.GetByID(ctx, targetUserID); err != nil {
		return nil, err
	}
	member, err := s.repo.IsMember(ctx, teamID, targetUserID)
	if err != nil {
		return nil, err
	}
	if member {
		return nil, ErrAlreadyMember
	}
	if err := s.repo.AddMember(ctx, teamID, targetUserID); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, teamID)
}

// InviteByEmail resolves email to a user and adds them to the team.
func (s *Service) InviteByEmail(ctx context.Context, teamID, requesterID, email string) (*Team, error) {
	if err := s.RequireOwner(ctx, teamID, requesterID, msgOnlyOwnerInvites); err != nil {
		return nil, err
	}
	u, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, err
	}
	return s.AddMember(ctx, teamID, requesterID, u.ID)
}

// RemoveMember removes targetUserID from the team.
//
// A member may remove themself, except the owner, who must delete the team
// instead. Removing someone else is reserved to the owner, and the owner
// cannot be removed that way either.
func (s *Service) RemoveMember(ctx context.Context, teamID, requesterID, targetUserID string) error {
	t, err := s.repo.GetByID(ctx, teamID)
	if err != nil {
		return err
	}
	if _, err := s.users.GetByID(ctx, targetUserID); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return apperr.NotFound("Usuario a remover no encontrado.")
		}
		return err
	}
	if !t.HasMember(targetUserID) {
		return ErrNotMember
	}

	if requesterID == targetUserID {
		if t.OwnerID == requesterID {
			return apperr.Forbidden(msgOwnerCannotLeave)
		}
		return s.repo.RemoveMember(ctx, teamID, targetUserID)
	}

	if t.OwnerID != requesterID {
		return apperr.Forbidden(msgCannotRemove)
	}
	if t.OwnerID == targetUserID {
		return apperr.Forbidden(msgOwnerNotRemoved)
	}
	return s.repo.RemoveMember(ctx, teamID, targetUserID)
}

// DeleteTeam removes the team and everything scoped to it. Owner only.
func (s *Service) DeleteTeam(ctx context.Context, teamID, requesterID string) error {
	if err := s.RequireOwner(ctx, teamID, requesterID, msgOnlyOwnerDeletes); err != nil {
		return err
	}
	return s.repo.Delete(ctx, teamID)
}
