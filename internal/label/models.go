package label

import "time"

// Label is a team-scoped tag.
type Label struct {
	ID        string    `json:"id"`
	Name      string    `json:"nombre"`
	TeamID    string    `json:"equipoId"`
	CreatorID string    `json:"creadorId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewLabel holds the fields persisted when a label is created.
type NewLabel struct {
	Name      string
	TeamID    string
	CreatorID string
}
