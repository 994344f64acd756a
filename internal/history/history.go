// Package history is the append-only audit trail attached to tasks. Entries
// are written by the task store in the same transaction as the change they
// describe and are never updated or deleted afterwards.
package history

import (
	"context"
	"fmt"
	"time"
)

// DescCreated is recorded once for every new task.
const DescCreated = "Tarea creada"

// UnknownActor is shown when an entry has no actor or the actor has neither
// a name nor an email.
const UnknownActor = "Usuario desconocido"

// Entry is one immutable history record.
type Entry struct {
	ID          string    `json:"id"`
	TaskID      string    `json:"tareaId"`
	UserID      *string   `json:"usuarioId"`
	ActorName   string    `json:"usuario"`
	Description string    `json:"cambio"`
	CreatedAt   time.Time `json:"fecha"`
}

// StatusChanged renders the description of a status transition.
func StatusChanged(from, to fmt.Stringer) string {
	return fmt.Sprintf("Estado cambiado de %s a %s", from, to)
}

// New builds an entry for taskID acted on by userID. An empty userID records a
// system entry with no actor.
func New(taskID, userID, description string) Entry {
	e := Entry{TaskID: taskID, Description: description}
	if userID != "" {
		e.UserID = &userID
	}
	return e
}

// DisplayName picks the actor label for an entry.
func DisplayName(name, email string) string {
	switch {
	case name != "":
		return name
	case email != "":
		return email
	default:
		return UnknownActor
	}
}

// Reader exposes the read side of the trail. Results are newest first.
type Reader interface {
	ListByTask(ctx context.Context, taskID string) ([]Entry, error)
	ListByTasks(ctx context.Context, taskIDs []string) (map[string][]Entry, error)
}
