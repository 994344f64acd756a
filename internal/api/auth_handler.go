package api

import (
	"net/http"

	"github.com/alecgard/taskhub/internal/auth"
	"github.com/alecgard/taskhub/internal/user"
)

// authHandler groups registration, session and profile handlers.
type authHandler struct {
	responder
	users *user.Service
}

func newAuthHandler(users *user.Service, rs responder) *authHandler {
	return &authHandler{responder: rs, users: users}
}

// Register handles POST /api/v1/auth/register.
func (h *authHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req user.RegisterInput
	if err := readJSON(r, &req); err != nil {
		h.invalid(w, msgInvalidBody)
		return
	}

	u, err := h.users.Register(r.Context(), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	auditLog(r, "register", "user", u.ID)
	writeJSON(w, http.StatusCreated, u)
}

// Login handles POST /api/v1/auth/login.
func (h *authHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := readJSON(r, &req); err != nil {
		h.invalid(w, msgInvalidBody)
		return
	}

	res, err := h.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Logout handles POST /api/v1/auth/logout.
func (h *authHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.users.Logout(r.Context(), auth.BearerToken(r)); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Me handles GET /api/v1/auth/me.
func (h *authHandler) Me(w http.ResponseWriter, r *http.Request) {
	u, err := h.users.Get(r.Context(), currentUserID(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// UpdateProfile handles PUT /api/v1/users/me.
func (h *authHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req user.UpdateProfileInput
	if err := readJSON(r, &req); err != nil {
		h.invalid(w, msgInvalidBody)
		return
	}

	u, err := h.users.UpdateProfile(r.Context(), currentUserID(r), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	auditLog(r, "update_profile", "user", u.ID)
	writeJSON(w, http.StatusOK, u)
}
