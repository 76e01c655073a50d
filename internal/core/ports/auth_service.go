package ports

import (
	"context"
	"time"

	"github.com/plannr/event-planner/internal/core/domain"
)

// PasswordHasher produces self-contained salted hashes.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) bool
}

// TokenIssuer issues and verifies signed identity tokens. Verify reports
// every failure as domain.ErrInvalidToken.
type TokenIssuer interface {
	Issue(userID string) (string, time.Time, error)
	Verify(token string) (string, error)
}

// Session is the outcome of a successful register or login.
type Session struct {
	User      *domain.User
	Token     string
	ExpiresAt time.Time
}

// AuthService covers registration, login and token-based identity resolution.
type AuthService interface {
	Register(ctx context.Context, name, email, password string) (*Session, error)
	Login(ctx context.Context, email, password string) (*Session, error)
	Authenticate(ctx context.Context, token string) (*domain.User, error)
}
