package ports

import (
	"context"

	"github.com/plannr/event-planner/internal/core/domain"
)

// EventInput is the DTO passed from the transport layer to EventService.
// ID is empty unless the client addressed an existing event.
type EventInput struct {
	ID    string
	Patch domain.EventPatch
}

// UpsertResult tells the caller whether Upsert created a new event.
type UpsertResult struct {
	Event   *domain.Event
	Created bool
}

// EventService defines the owner-scoped event use cases.
type EventService interface {
	List(ctx context.Context, ownerID string) ([]*domain.Event, error)
	Current(ctx context.Context, ownerID string) (*domain.Event, error)
	Get(ctx context.Context, ownerID, id string) (*domain.Event, error)
	Upsert(ctx context.Context, ownerID string, in EventInput) (*UpsertResult, error)
	CreateNew(ctx context.Context, ownerID string, in EventInput) (*domain.Event, error)
	Update(ctx context.Context, ownerID, id string, in EventInput) (*domain.Event, error)
	PatchStep(ctx context.Context, ownerID string, step int, eventID string) (*domain.Event, error)
	PatchCategory(ctx context.Context, ownerID, category, eventID string) (*domain.Event, error)
	Delete(ctx context.Context, ownerID, id string) error
	DeleteCurrent(ctx context.Context, ownerID string) error
}
