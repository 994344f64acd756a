package api

import (
	"net/http"

	"github.com/alecgard/taskhub/internal/comment"
)

// commentsHandler groups comment handlers.
type commentsHandler struct {
	responder
	comments *comment.Service
}

func newCommentsHandler(comments *comment.Service, rs responder) *commentsHandler {
	return &commentsHandler{responder: rs, comments: comments}
}

type commentRequest struct {
	Content string `json:"contenido"`
}

// CreateComment handles POST /api/v1/tasks/{taskID}/comments.
func (h *commentsHandler) CreateComment(w http.ResponseWriter, r *http.Request) {
	taskID, ok := pathID(r, "taskID")
	if !ok {
		h.invalid(w, msgInvalidID)
		return
	}
	var req commentRequest
	if err := readJSON(r, &req); err != nil {
		h.invalid(w, msgInvalidBody)
		return
	}

	c, err := h.comments.Create(r.Context(), taskID, currentUserID(r), req.Content)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	auditLog(r, "create", "comment", c.ID, "task_id", taskID)
	writeJSON(w, http.StatusCreated, c)
}

// ListComments handles GET /api/v1/tasks/{taskID}/comments.
func (h *commentsHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	taskID, ok := pathID(r, "taskID")
	if !ok {
		h.invalid(w, msgInvalidID)
		return
	}

	comments, err := h.comments.ListForTask(r.Context(), taskID, currentUserID(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, comments)
}

// EditComment handles PUT /api/v1/comments/{commentID}.
func (h *commentsHandler) EditComment(w http.ResponseWriter, r *http.Request) {
	commentID, ok := pathID(r, "commentID")
	if !ok {
		h.invalid(w, msgInvalidID)
		return
	}
	var req commentRequest
	if err := readJSON(r, &req); err != nil {
		h.invalid(w, msgInvalidBody)
		return
	}

	c, err := h.comments.Edit(r.Context(), commentID, req.Content, currentUserID(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	auditLog(r, "update", "comment", commentID)
	writeJSON(w, http.StatusOK, c)
}

// DeleteComment handles DELETE /api/v1/comments/{commentID}.
func (h *commentsHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	commentID, ok := pathID(r, "commentID")
	if !ok {
		h.invalid(w, msgInvalidID)
		return
	}

	if err := h.comments.Delete(r.Context(), commentID, currentUserID(r)); err != nil {
		h.fail(w, r, err)
		return
	}

	auditLog(r, "delete", "comment", commentID)
	writeMessage(w, "Comentario eliminado correctamente")
}
