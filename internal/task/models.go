package task

import (
	"time"

	"github.com/alecgard/taskhub/internal/history"
	"github.com/alecgard/taskhub/internal/label"
)

// Task is a unit of work owned by a team.
type Task struct {
	ID          string    `json:"id"`
	Title       string    `json:"titulo"`
	Description string    `json:"descripcion"`
	Status      Status    `json:"estado"`
	Priority    Priority  `json:"prioridad"`
	CreatorID   string    `json:"creadorId"`
	TeamID      string    `json:"equipoId,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// View is a task enriched with its labels and history, newest entry first.
type View struct {
	*Task
	Labels  []*label.Label  `json:"etiquetas"`
	History []history.Entry `json:"historial"`
}

// NewTask holds the columns persisted when a task is created.
type NewTask struct {
	Title       string
	Description string
	Status      Status
	Priority    Priority
	CreatorID   string
	TeamID      string
}

// CreateInput is the request to create a task.
type CreateInput struct {
	Title       string   `json:"titulo"`
	Description string   `json:"descripcion"`
	TeamID      string   `json:"equipoId"`
	Status      string   `json:"estado,omitempty"`
	Priority    string   `json:"prioridad,omitempty"`
	LabelIDs    []string `json:"etiquetaIds,omitempty"`
}

// Filter narrows a task listing. Zero fields do not filter.
type Filter struct {
	Status   Status
	Priority Priority
	LabelID  string
	Query    string
}

// Page selects a slice of a listing. Zero values pick the defaults.
type Page struct {
	Number int
	Size   int
}

// Result is one page of a filtered listing.
type Result struct {
	Items      []*View `json:"items"`
	Total      int     `json:"total"`
	Page       int     `json:"page"`
	PageSize   int     `json:"limit"`
	TotalPages int     `json:"totalPages"`
}
