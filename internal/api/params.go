package api

import (
	"net/http"
	"strconv"

	"github.com/alecgard/taskhub/internal/apperr"
	"github.com/alecgard/taskhub/internal/task"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const (
	msgInvalidID   = "Identificador inválido"
	msgInvalidBody = "Cuerpo de la solicitud inválido"
	msgInvalidPage = "Los parámetros page y limit deben ser enteros mayores que 0"
)

// pathID returns the named URL parameter when it is a well-formed UUID.
func pathID(r *http.Request, name string) (string, bool) {
	v := chi.URLParam(r, name)
	if _, err := uuid.Parse(v); err != nil {
		return "", false
	}
	return v, true
}

// validIDs reports whether every non-empty id is a well-formed UUID. Empty
// ids are left to the services, which report the missing field.
func validIDs(ids ...string) bool {
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, err := uuid.Parse(id); err != nil {
			return false
		}
	}
	return true
}

// positiveParam parses an optional positive integer query parameter. Absent
// parameters yield 0, which the task service reads as "use the default".
func positiveParam(r *http.Request, name string) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return 0, apperr.Validation(msgInvalidPage)
	}
	return n, nil
}

// parseTaskQuery reads estado, prioridad, etiquetaId, q, page and limit.
// Status and priority values are checked by the task service.
func parseTaskQuery(r *http.Request) (task.Filter, task.Page, error) {
	q := r.URL.Query()
	f := task.Filter{
		Status:   task.Status(q.Get("estado")),
		Priority: task.Priority(q.Get("prioridad")),
		Query:    q.Get("q"),
	}
	if v := q.Get("etiquetaId"); v != "" {
		if _, err := uuid.Parse(v); err != nil {
			return f, task.Page{}, apperr.Validation(msgInvalidID)
		}
		f.LabelID = v
	}

	page, err := positiveParam(r, "page")
	if err != nil {
		return f, task.Page{}, err
	}
	limit, err := positiveParam(r, "limit")
	if err != nil {
		return f, task.Page{}, err
	}
	return f, task.Page{Number: page, Size: limit}, nil
}
