package api

import (
	"net/http"

	"github.com/alecgard/taskhub/internal/label"
)

// labelsHandler groups label CRUD and task assignment handlers.
type labelsHandler struct {
	responder
	labels *label.Service
}

func newLabelsHandler(labels *label.Service, rs responder) *labelsHandler {
	return &labelsHandler{responder: rs, labels: labels}
}

type labelRequest struct {
	Name string `json:"nombre"`
}

// CreateLabel handles POST /api/v1/teams/{teamID}/labels.
func (h *labelsHandler) CreateLabel(w http.ResponseWriter, r *http.Request) {
	teamID, ok := pathID(r, "teamID")
	if !ok {
		h.invalid(w, msgInvalidID)
		return
	}
	var req labelRequest
	if err := readJSON(r, &req); err != nil {
		h.invalid(w, msgInvalidBody)
		return
	}

	l, err := h.labels.Create(r.Context(), teamID, currentUserID(r), req.Name)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	auditLog(r, "create", "label", l.ID, "team_id", teamID)
	writeJSON(w, http.StatusCreated, l)
}

// ListLabels handles GET /api/v1/teams/{teamID}/labels.
func (h *labelsHandler) ListLabels(w http.ResponseWriter, r *http.Request) {
	teamID, ok := pathID(r, "teamID")
	if !ok {
		h.invalid(w, msgInvalidID)
		return
	}

	labels, err := h.labels.List(r.Context(), teamID, currentUserID(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, labels)
}

// UpdateLabel handles PATCH /api/v1/labels/{labelID}.
func (h *labelsHandler) UpdateLabel(w http.ResponseWriter, r *http.Request) {
	labelID, ok := pathID(r, "labelID")
	if !ok {
		h.invalid(w, msgInvalidID)
		return
	}
	var req labelRequest
	if err := readJSON(r, &req); err != nil {
		h.invalid(w, msgInvalidBody)
		return
	}

	l, err := h.labels.Update(r.Context(), labelID, currentUserID(r), req.Name)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	auditLog(r, "update", "label", labelID)
	writeJSON(w, http.StatusOK, l)
}

// DeleteLabel handles DELETE /api/v1/labels/{labelID}.
func (h *labelsHandler) DeleteLabel(w http.ResponseWriter, r *http.Request) {
	labelID, ok := pathID(r, "labelID")
	if !ok {
		h.invalid(w, msgInvalidID)
		return
	}

	if err := h.labels.Delete(r.Context(), labelID, currentUserID(r)); err != nil {
		h.fail(w, r, err)
		return
	}

	auditLog(r, "delete", "label", labelID)
	writeMessage(w, "Etiqueta eliminada correctamente")
}

// ListTaskLabels handles GET /api/v1/tasks/{taskID}/labels.
func (h *labelsHandler) ListTaskLabels(w http.ResponseWriter, r *http.Request) {
	taskID, ok := pathID(r, "taskID")
	if !ok {
		h.invalid(w, msgInvalidID)
		return
	}

	labels, err := h.labels.ListForTask(r.Context(), taskID, currentUserID(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, labels)
}

// Assign handles POST /api/v1/tasks/{taskID}/labels/{labelID}.
func (h *labelsHandler) Assign(w http.ResponseWriter, r *http.Request) {
	taskID, ok1 := pathID(r, "taskID")
	labelID, ok2 := pathID(r, "labelID")
	if !ok1 || !ok2 {
		h.invalid(w, msgInvalidID)
		return
	}

	if err := h.labels.Assign(r.Context(), taskID, labelID, currentUserID(r)); err != nil {
		h.fail(w, r, err)
		return
	}

	auditLog(r, "assign_label", "task", taskID, "label_id", labelID)
	writeMessage(w, "Etiqueta asignada correctamente")
}

// Unassign handles DELETE /api/v1/tasks/{taskID}/labels/{labelID}.
func (h *labelsHandler) Unassign(w http.ResponseWriter, r *http.Request) {
	taskID, ok1 := pathID(r, "taskID")
	labelID, ok2 := pathID(r, "labelID")
	if !ok1 || !ok2 {
		h.invalid(w, msgInvalidID)
		return
	}

	if err := h.labels.Unassign(r.Context(), taskID, labelID, currentUserID(r)); err != nil {
		h.fail(w, r, err)
		return
	}

	auditLog(r, "unassign_label", "task", taskID, "label_id", labelID)
	writeMessage(w, "Etiqueta removida de la tarea")
}
