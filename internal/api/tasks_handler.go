package api

import (
	"net/http"

	"github.com/alecgard/taskhub/internal/task"
)

// tasksHandler groups task lifecycle handlers.
type tasksHandler struct {
	responder
	tasks *task.Service
}

func newTasksHandler(tasks *task.Service, rs responder) *tasksHandler {
	return &tasksHandler{responder: rs, tasks: tasks}
}

// CreateTask handles POST /api/v1/tasks.
func (h *tasksHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var req task.CreateInput
	if err := readJSON(r, &req); err != nil {
		h.invalid(w, msgInvalidBody)
		return
	}
	if !validIDs(req.TeamID) || !validIDs(req.LabelIDs...) {
		h.invalid(w, msgInvalidID)
		return
	}

	v, err := h.tasks.Create(r.Context(), req, currentUserID(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	auditLog(r, "create", "task", v.ID, "team_id", v.TeamID)
	writeJSON(w, http.StatusCreated, v)
}

// GetTask handles GET /api/v1/tasks/{taskID}.
func (h *tasksHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	taskID, ok := pathID(r, "taskID")
	if !ok {
		h.invalid(w, msgInvalidID)
		return
	}

	v, err := h.tasks.Get(r.Context(), taskID, currentUserID(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// UpdateStatus handles PUT /api/v1/tasks/{taskID}/status.
func (h *tasksHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	taskID, ok := pathID(r, "taskID")
	if !ok {
		h.invalid(w, msgInvalidID)
		return
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := readJSON(r, &req); err != nil {
		h.invalid(w, msgInvalidBody)
		return
	}

	t, err := h.tasks.UpdateStatus(r.Context(), taskID, req.Status, currentUserID(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	auditLog(r, "update_status", "task", taskID, "status", t.Status.String())
	writeJSON(w, http.StatusOK, t)
}

// DeleteTask handles DELETE /api/v1/tasks/{taskID}.
func (h *tasksHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	taskID, ok := pathID(r, "taskID")
	if !ok {
		h.invalid(w, msgInvalidID)
		return
	}

	if err := h.tasks.Delete(r.Context(), taskID, currentUserID(r)); err != nil {
		h.fail(w, r, err)
		return
	}

	auditLog(r, "delete", "task", taskID)
	writeMessage(w, "Tarea eliminada correctamente")
}

// History handles GET /api/v1/tasks/{taskID}/history.
func (h *tasksHandler) History(w http.ResponseWriter, r *http.Request) {
	taskID, ok := pathID(r, "taskID")
	if !ok {
		h.invalid(w, msgInvalidID)
		return
	}

	entries, err := h.tasks.History(r.Context(), taskID, currentUserID(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
