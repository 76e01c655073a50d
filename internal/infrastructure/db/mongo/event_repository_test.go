package mongo

import (
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/plannr/event-planner/internal/core/domain"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func TestSetFields_OnlyPresentFields(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	set := setFields(domain.EventPatch{Step: intPtr(3), Location: strPtr("Lisbon")}, now)

	if len(set) != 3 {
		t.Fatalf("expected 3 keys, got %d: %v", len(set), set)
	}
	if set["step"] != 3 || set["location"] != "Lisbon" {
		t.Fatalf("unexpected values: %v", set)
	}
	if set["updated_at"] != now {
		t.Fatalf("updated_at not bumped: %v", set["updated_at"])
	}
}

func TestSetFields_EmptyProvidersNeverNull(t *testing.T) {
	var none []domain.ProviderSelection
	set := setFields(domain.EventPatch{SelectedProviders: &none}, time.Now())

	providers, ok := set["selected_providers"].([]domain.ProviderSelection)
	if !ok || providers == nil {
		t.Fatalf("expected empty provider slice, got %#v", set["selected_providers"])
	}
}

func TestInsertDefaults_DisjointFromSet(t *testing.T) {
	now := time.Now()
	patch := domain.EventPatch{
		Budget: func() *float64 { v := 1500.0; return &v }(),
		Step:   intPtr(2),
	}

	set := setFields(patch, now)
	defaults := insertDefaults(patch, now)

	for key := range set {
		if _, clash := defaults[key]; clash {
			t.Fatalf("field %q present in both $set and $setOnInsert", key)
		}
	}
	if defaults["selected_providers"] == nil {
		t.Fatalf("expected selected_providers default")
	}
	if _, ok := defaults["name"]; ok {
		t.Fatalf("name must come from the upsert filter")
	}
	if defaults["created_at"] != now {
		t.Fatalf("created_at default missing")
	}
}

func TestOwnedFilter_MalformedIDsAreNotFound(t *testing.T) {
	valid := primitive.NewObjectID().Hex()

	if _, err := ownedFilter("nope", valid); !errors.Is(err, domain.ErrEventNotFound) {
		t.Fatalf("expected ErrEventNotFound for bad owner, got %v", err)
	}
	if _, err := ownedFilter(valid, "nope"); !errors.Is(err, domain.ErrEventNotFound) {
		t.Fatalf("expected ErrEventNotFound for bad id, got %v", err)
	}

	filter, err := ownedFilter(valid, valid)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := filter["owner_id"]; !ok {
		t.Fatalf("filter must be owner scoped: %v", filter)
	}
}

func TestMongoEvent_RoundTrip(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Millisecond)
	owner := primitive.NewObjectID()
	in := &domain.Event{
		OwnerID:    owner.Hex(),
		Name:       "Wedding",
		GuestCount: 120,
		Budget:     25000,
		SelectedProviders: []domain.ProviderSelection{
			{ID: "p1", Name: "Catering", Price: 40, Category: "food"},
		},
		Step:      2,
		CreatedAt: now,
		UpdatedAt: now,
	}

	doc := fromDomain(in)
	doc.ID = primitive.NewObjectID()
	doc.OwnerID = owner
	out := doc.toDomain()

	if out.ID != doc.ID.Hex() || out.OwnerID != owner.Hex() {
		t.Fatalf("ids not mapped: %+v", out)
	}
	if out.Name != in.Name || out.GuestCount != in.GuestCount || out.Budget != in.Budget || out.Step != in.Step {
		t.Fatalf("fields not mapped: %+v", out)
	}
	if len(out.SelectedProviders) != 1 || out.SelectedProviders[0].ID != "p1" {
		t.Fatalf("providers not mapped: %+v", out.SelectedProviders)
	}
}

func TestMongoEvent_NilProvidersBecomeEmpty(t *testing.T) {
	out := mongoEvent{ID: primitive.NewObjectID(), OwnerID: primitive.NewObjectID()}.toDomain()
	if out.SelectedProviders == nil {
		t.Fatalf("expected empty provider slice")
	}
}
