package user

import (
	"context"

	"github.com/alecgard/taskhub/internal/auth"
)

// AuthAdapter adapts the user service to the auth.SessionLookup interface.
type AuthAdapter struct {
	svc *Service
}

// NewAuthAdapter creates a new AuthAdapter wrapping the given user service.
func NewAuthAdapter(svc *Service) *AuthAdapter {
	return &AuthAdapter{svc: svc}
}

// LookupSession resolves a session token to the authenticated principal.
func (a *AuthAdapter) LookupSession(ctx context.Context, token string) (*auth.User, error) {
	u, err := a.svc.Authenticate(ctx, token)
	if err != nil {
		return nil, err
	}
	return &auth.User{
		ID:    u.ID,
		Email: u.Email,
		Name:  u.Name,
	}, nil
}
