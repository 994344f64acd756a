package team

import "time"

// Team is a named group with one owner. The owner is always among Members.
type Team struct {
	ID        string    `json:"id"`
	Name      string    `json:"nombre"`
	OwnerID   string    `json:"propietarioId"`
	Members   []Member  `json:"miembros"`
	CreatedAt time.Time `json:"createdAt"`
}

// Member is a user's membership row, resolved with the user's public fields.
type Member struct {
	UserID   string    `json:"id"`
	Name     string    `json:"nombre"`
	Email    string    `json:"email"`
	JoinedAt time.Time `json:"joinedAt"`
}

// HasMember reports whether userID is the owner or one of the members.
func (t *Team) HasMember(userID string) bool {
	if t.OwnerID == userID {
		return true
	}
	for _, m := range t.Members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}
