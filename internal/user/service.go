package user

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/alecgard/taskhub/internal/apperr"
)

const (
	// DefaultSessionTTL matches a one-day login.
	DefaultSessionTTL = 24 * time.Hour

	minPasswordLen = 8

	msgEmailTaken      = "El email ya está registrado"
	msgEmailInvalid    = "Formato de e-mail inválido"
	msgBadCredentials  = "Credenciales inválidas"
	msgSessionInvalid  = "Sesión inválida o expirada"
	msgNameRequired    = "El nombre es obligatorio"
	msgPasswordTooWeak = "La contraseña debe tener al menos 8 caracteres"
)

var emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

// Errors returned by user repositories.
var (
	ErrNotFound       = apperr.NotFound("Usuario no encontrado")
	ErrEmailTaken     = apperr.Conflict(msgEmailTaken)
	ErrInvalidSession = apperr.Unauthorized(msgSessionInvalid)
)

// Repository is the persistence contract for users and sessions.
type Repository interface {
	Create(ctx context.Context, in NewUser) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, id string, f UpdateFields) (*User, error)
	CreateSession(ctx context.Context, sess Session) error
	GetSessionUser(ctx context.Context, tokenHash string, now time.Time) (*User, error)
	DeleteSession(ctx context.Context, tokenHash string) error
	CleanExpiredSessions(ctx context.Context, now time.Time) (int64, error)
}

// Service implements registration, login and profile management.
type Service struct {
	repo Repository
	ttl  time.Duration
	cost int
	now  func() time.Time
}

// NewService creates a user service. A non-positive ttl selects
// DefaultSessionTTL.
func NewService(repo Repository, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Service{repo: repo, ttl: ttl, cost: bcrypt.DefaultCost, now: time.Now}
}

// SetHashCost overrides the bcrypt cost. Tests use bcrypt.MinCost.
func (s *Service) SetHashCost(cost int) {
	s.cost = cost
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateEmail(email string) error {
	if !emailPattern.MatchString(email) {
		return apperr.Validation(msgEmailInvalid)
	}
	return nil
}

func validatePassword(pw string) error {
	if len(pw) < minPasswordLen {
		return apperr.Validation(msgPasswordTooWeak)
	}
	return nil
}

func (s *Service) hash(pw string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(pw), s.cost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(h), nil
}

// Register creates a new account.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*User, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperr.Validation(msgNameRequired)
	}
	email := normalizeEmail(in.Email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(in.Password); err != nil {
		return nil, err
	}

	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}

	hash, err := s.hash(in.Password)
	if err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, NewUser{Name: name, Email: email, PasswordHash: hash})
}

// Login verifies credentials and opens a session. The returned token is the
// only copy of the plaintext; the store keeps its SHA-256 hash.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	u, err := s.repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.Unauthorized(msgBadCredentials)
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, apperr.Unauthorized(msgBadCredentials)
	}

	token, err := generateToken()
	if err != nil {
		return nil, err
	}
	now := s.now()
	sess := Session{
		TokenHash: HashToken(token),
		UserID:    u.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.repo.CreateSession(ctx, sess); err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, ExpiresAt: sess.ExpiresAt, User: u}, nil
}

// Authenticate resolves a plaintext session token to its user.
func (s *Service) Authenticate(ctx context.Context, token string) (*User, error) {
	if token == "" {
		return nil, ErrInvalidSession
	}
	return s.repo.GetSessionUser(ctx, HashToken(token), s.now())
}

// Logout ends the session identified by token. Unknown tokens are ignored.
func (s *Service) Logout(ctx context.Context, token string) error {
	return s.repo.DeleteSession(ctx, HashToken(token))
}

// Get returns the user with the given id.
func (s *Service) Get(ctx context.Context, id string) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

// GetByEmail returns the user registered under email.
func (s *Service) GetByEmail(ctx context.Context, email string) (*User, error) {
	return s.repo.GetByEmail(ctx, normalizeEmail(email))
}

// UpdateProfile changes name, email or password of the given user.
func (s *Service) UpdateProfile(ctx context.Context, id string, in UpdateProfileInput) (*User, error) {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var f UpdateFields
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, apperr.Validation(msgNameRequired)
		}
		f.Name = &name
	}
	if in.Email != nil {
		email := normalizeEmail(*in.Email)
		if err := validateEmail(email); err != nil {
			return nil, err
		}
		if email != current.Email {
			if _, err := s.repo.GetByEmail(ctx, email); err == nil {
				return nil, ErrEmailTaken
			} else if !errors.Is(err, apperr.ErrNotFound) {
				return nil, err
			}
			f.Email = &email
		}
	}
	if in.Password != nil {
		if err := validatePassword(*in.Password); err != nil {
			return nil, err
		}
		hash, err := s.hash(*in.Password)
		if err != nil {
			return nil, err
		}
		f.PasswordHash = &hash
	}

	return s.repo.Update(ctx, id, f)
}

// CleanExpiredSessions purges sessions past their expiry.
func (s *Service) CleanExpiredSessions(ctx context.Context) (int64, error) {
	return s.repo.CleanExpiredSessions(ctx, s.now())
}

// HashToken returns the hex SHA-256 of a plaintext session token.
func HashToken(plaintext string) string {
	h := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(h[:])
}

func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generating session token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
