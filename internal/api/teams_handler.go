package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/alecgard/taskhub/internal/task"
	"github.com/alecgard/taskhub/internal/team"
	"github.com/google/uuid"
)

// teamsHandler groups team and membership handlers, plus the team-scoped
// task listing.
type teamsHandler struct {
	responder
	teams *team.Service
	tasks *task.Service
}

func newTeamsHandler(teams *team.Service, tasks *task.Service, rs responder) *teamsHandler {
	return &teamsHandler{responder: rs, teams: teams, tasks: tasks}
}

// CreateTeam handles POST /api/v1/teams.
func (h *teamsHandler) CreateTeam(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"nombre"`
	}
	if err := readJSON(r, &req); err != nil {
		h.invalid(w, msgInvalidBody)
		return
	}

	t, err := h.teams.Create(r.Context(), req.Name, currentUserID(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	auditLog(r, "create", "team", t.ID, "name", t.Name)
	writeJSON(w, http.StatusCreated, t)
}

// ListTeams handles GET /api/v1/teams.
func (h *teamsHandler) ListTeams(w http.ResponseWriter, r *http.Request) {
	teams, err := h.teams.ListForUser(r.Context(), currentUserID(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, teams)
}

// GetTeam handles GET /api/v1/teams/{teamID}.
func (h *teamsHandler) GetTeam(w http.ResponseWriter, r *http.Request) {
	teamID, ok := pathID(r, "teamID")
	if !ok {
		h.invalid(w, msgInvalidID)
		return
	}

	t, err := h.teams.Get(r.Context(), teamID, currentUserID(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// Invite handles POST /api/v1/teams/{teamID}/invite.
func (h *teamsHandler) Invite(w http.ResponseWriter, r *http.Request) {
	teamID, ok := pathID(r, "teamID")
	if !ok {
		h.invalid(w, msgInvalidID)
		return
	}
	var req struct {
		Email string `json:"email"`
	}
	if err := readJSON(r, &req); err != nil || req.Email == "" {
		h.invalid(w, msgInvalidBody)
		return
	}

	t, err := h.teams.InviteByEmail(r.Context(), teamID, currentUserID(r), req.Email)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	auditLog(r, "invite", "team", teamID, "email", req.Email)
	writeJSON(w, http.StatusOK, t)
}

// Leave handles POST /api/v1/teams/{teamID}/leave. Without a body the caller
// leaves; with {"userId": ...} the owner removes that member.
func (h *teamsHandler) Leave(w http.ResponseWriter, r *http.Request) {
	teamID, ok := pathID(r, "teamID")
	if !ok {
		h.invalid(w, msgInvalidID)
		return
	}
	requester := currentUserID(r)

	var req struct {
		UserID string `json:"userId"`
	}
	// The body is optional; an empty one, chunked or not, means self-removal.
	if err := readJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		h.invalid(w, msgInvalidBody)
		return
	}
	target := requester
	if req.UserID != "" {
		if _, err := uuid.Parse(req.UserID); err != nil {
			h.invalid(w, msgInvalidID)
			return
		}
		target = req.UserID
	}

	if err := h.teams.RemoveMember(r.Context(), teamID, requester, target); err != nil {
		h.fail(w, r, err)
		return
	}

	auditLog(r, "remove_member", "team", teamID, "member_id", target)
	if target == requester {
		writeMessage(w, "Has salido del equipo")
		return
	}
	writeMessage(w, "Miembro removido del equipo")
}

// DeleteTeam handles DELETE /api/v1/teams/{teamID}.
func (h *teamsHandler) DeleteTeam(w http.ResponseWriter, r *http.Request) {
	teamID, ok := pathID(r, "teamID")
	if !ok {
		h.invalid(w, msgInvalidID)
		return
	}

	if err := h.teams.DeleteTeam(r.Context(), teamID, currentUserID(r)); err != nil {
		h.fail(w, r, err)
		return
	}

	auditLog(r, "delete", "team", teamID)
	writeMessage(w, "Equipo eliminado correctamente")
}

// ListTasks handles GET /api/v1/teams/{teamID}/tasks.
func (h *teamsHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	teamID, ok := pathID(r, "teamID")
	if !ok {
		h.invalid(w, msgInvalidID)
		return
	}
	f, p, err := parseTaskQuery(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	res, err := h.tasks.List(r.Context(), teamID, currentUserID(r), f, p)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
