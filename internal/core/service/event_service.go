package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/plannr/event-planner/internal/core/domain"
	"github.com/plannr/event-planner/internal/core/ports"
	"github.com/plannr/event-planner/internal/pkg/metrics"
)

type eventService struct {
	repo ports.EventRepository
	log  zerolog.Logger
	now  func() time.Time
}

// NewEventService returns an EventService implementation. Every operation is
// scoped by the owner id the caller was authenticated as.
func NewEventService(repo ports.EventRepository, log zerolog.Logger) ports.EventService {
	return &eventService{repo: repo, log: log, now: time.Now}
}

func (s *eventService) List(ctx context.Context, ownerID string) ([]*domain.Event, error) {
	events, err := s.repo.List(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

func (s *eventService) Current(ctx context.Context, ownerID string) (*domain.Event, error) {
	return s.repo.FindLatest(ctx, ownerID)
}

func (s *eventService) Get(ctx context.Context, ownerID, id string) (*domain.Event, error) {
	return s.repo.FindByID(ctx, ownerID, id)
}

// Upsert resolves the target in a fixed order: explicit id, then an existing
// event with the same name, then a new event.
func (s *eventService) Upsert(ctx context.Context, ownerID string, in ports.EventInput) (*ports.UpsertResult, error) {
	patch := in.Patch.Normalize()
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	now := s.timestamp()

	// 1. Explicit id: must be one of the owner's events.
	if in.ID != "" {
		event, err := s.repo.Update(ctx, ownerID, in.ID, patch, now)
		if err != nil {
			return nil, err
		}
		s.written("update", ownerID, event.ID)
		return &ports.UpsertResult{Event: event}, nil
	}

	// 2 + 3. Same name updates, otherwise insert. The repository performs both
	// branches as one operation.
	event, created, err := s.repo.UpsertByName(ctx, ownerID, patch.EffectiveName(), patch, now)
	if err != nil {
		return nil, fmt.Errorf("upsert event: %w", err)
	}
	op := "upsert_by_name"
	if created {
		op = "create"
	}
	s.written(op, ownerID, event.ID)
	return &ports.UpsertResult{Event: event, Created: created}, nil
}

// CreateNew always inserts; it refuses payloads that address an existing id.
func (s *eventService) CreateNew(ctx context.Context, ownerID string, in ports.EventInput) (*domain.Event, error) {
	if in.ID != "" {
		return nil, domain.ErrCannotReuseID
	}
	patch := in.Patch.Normalize()
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	event, err := s.repo.Create(ctx, domain.NewEvent(ownerID, patch, s.timestamp()))
	if err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	s.written("create", ownerID, event.ID)
	return event, nil
}

// Update merges the payload into the owner's event id. Any id carried in the
// payload is ignored so the identifier cannot be overwritten.
func (s *eventService) Update(ctx context.Context, ownerID, id string, in ports.EventInput) (*domain.Event, error) {
	patch := in.Patch.Normalize()
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	event, err := s.repo.Update(ctx, ownerID, id, patch, s.timestamp())
	if err != nil {
		return nil, err
	}
	s.written("update", ownerID, event.ID)
	return event, nil
}

func (s *eventService) PatchStep(ctx context.Context, ownerID string, step int, eventID string) (*domain.Event, error) {
	patch := domain.EventPatch{Step: &step}
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	event, err := s.patch(ctx, ownerID, eventID, patch)
	if err != nil {
		return nil, err
	}
	s.written("patch_step", ownerID, event.ID)
	return event, nil
}

func (s *eventService) PatchCategory(ctx context.Context, ownerID, category, eventID string) (*domain.Event, error) {
	event, err := s.patch(ctx, ownerID, eventID, domain.EventPatch{ActiveCategory: &category})
	if err != nil {
		return nil, err
	}
	s.written("patch_category", ownerID, event.ID)
	return event, nil
}

func (s *eventService) Delete(ctx context.Context, ownerID, id string) error {
	if err := s.repo.Delete(ctx, ownerID, id); err != nil {
		return err
	}
	s.written("delete", ownerID, id)
	return nil
}

func (s *eventService) DeleteCurrent(ctx context.Context, ownerID string) error {
	if err := s.repo.DeleteLatest(ctx, ownerID); err != nil {
		return err
	}
	s.written("delete", ownerID, "current")
	return nil
}

// patch targets eventID, or the current event when eventID is empty.
func (s *eventService) patch(ctx context.Context, ownerID, eventID string, patch domain.EventPatch) (*domain.Event, error) {
	now := s.timestamp()
	if eventID == "" {
		return s.repo.UpdateLatest(ctx, ownerID, patch, now)
	}
	return s.repo.Update(ctx, ownerID, eventID, patch, now)
}

// timestamp is truncated to the millisecond precision of stored dates so
// returned events match what a later read yields.
func (s *eventService) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

func (s *eventService) written(op, ownerID, eventID string) {
	metrics.EventWritesTotal.WithLabelValues(op).Inc()
	s.log.Info().
		Str("operation", op).
		Str("owner_id", ownerID).
		Str("event_id", eventID).
		Msg("event written")
}
