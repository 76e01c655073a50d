package ports

import (
	"context"

	"github.com/plannr/event-planner/internal/core/domain"
)

// UserRepository defines the persistence contract for user accounts.
// Create must enforce email uniqueness atomically and report a collision as
// domain.ErrEmailTaken.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
}

// LoginLimiter throttles repeated failed logins for the same account key.
type LoginLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
	RecordFailure(ctx context.Context, key string) error
	Reset(ctx context.Context, key string) error
}
