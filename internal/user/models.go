package user

import "time"

// User represents a registered account.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// DisplayName returns the name, falling back to the email.
func (u *User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}

// NewUser holds the fields persisted when an account is created.
type NewUser struct {
	Name         string
	Email        string
	PasswordHash string
}

// UpdateFields holds optional columns for a partial update. Nil fields are
// left untouched.
type UpdateFields struct {
	Name         *string
	Email        *string
	PasswordHash *string
}

func (f UpdateFields) empty() bool {
	return f.Name == nil && f.Email == nil && f.PasswordHash == nil
}

// RegisterInput holds the fields required to register.
type RegisterInput struct {
	Name     string `json:"nombre"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateProfileInput holds optional fields for a profile update.
type UpdateProfileInput struct {
	Name     *string `json:"nombre,omitempty"`
	Email    *string `json:"email,omitempty"`
	Password *string `json:"password,omitempty"`
}

// Session represents an active login. Only the token hash is stored.
type Session struct {
	TokenHash string    `json:"-"`
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      *User     `json:"user"`
}
