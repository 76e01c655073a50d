package ports

import (
	"context"
	"time"

	"github.com/plannr/event-planner/internal/core/domain"
)

// EventRepository persists events. Every method is scoped by ownerID and
// reports a missing or foreign event as domain.ErrEventNotFound.
type EventRepository interface {
	// List returns the owner's events, most recently updated first.
	List(ctx context.Context, ownerID string) ([]*domain.Event, error)
	FindLatest(ctx context.Context, ownerID string) (*domain.Event, error)
	FindByID(ctx context.Context, ownerID, id string) (*domain.Event, error)
	Create(ctx context.Context, event *domain.Event) (*domain.Event, error)

	// Update merges the present fields of patch into the event and bumps
	// its updated timestamp to now.
	Update(ctx context.Context, ownerID, id string, patch domain.EventPatch, now time.Time) (*domain.Event, error)

	// UpdateLatest applies patch to the owner's most recently updated event.
	UpdateLatest(ctx context.Context, ownerID string, patch domain.EventPatch, now time.Time) (*domain.Event, error)

	// UpsertByName merges patch into the owner's most recently updated event
	// called name, or inserts a new event with defaults when none exists, in
	// one operation. created reports whether an insert happened.
	UpsertByName(ctx context.Context, ownerID, name string, patch domain.EventPatch, now time.Time) (event *domain.Event, created bool, err error)

	Delete(ctx context.Context, ownerID, id string) error
	DeleteLatest(ctx context.Context, ownerID string) error
}
