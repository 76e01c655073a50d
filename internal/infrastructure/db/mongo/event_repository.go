package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/plannr/event-planner/internal/core/domain"
)

const eventsCollection = "events"

// EventRepository implements ports.EventRepository using MongoDB. Every
// filter carries owner_id, so foreign events are indistinguishable from
// missing ones.
type EventRepository struct {
	provider DatabaseProvider
}

// NewEventRepository creates a new EventRepository.
func NewEventRepository(provider DatabaseProvider) *EventRepository {
	return &EventRepository{provider: provider}
}

type mongoEvent struct {
	ID                primitive.ObjectID         `bson:"_id"`
	OwnerID           primitive.ObjectID         `bson:"owner_id"`
	Name              string                     `bson:"name"`
	Date              string                     `bson:"date"`
	Location          string                     `bson:"location"`
	Description       string                     `bson:"description"`
	EventType         string                     `bson:"event_type"`
	GuestCount        int                        `bson:"guest_count"`
	Budget            float64                    `bson:"budget"`
	SelectedProviders []domain.ProviderSelection `bson:"selected_providers"`
	Step              int                        `bson:"step"`
	ActiveCategory    string                     `bson:"active_category"`
	CreatedAt         time.Time                  `bson:"created_at"`
	UpdatedAt         time.Time                  `bson:"updated_at"`
}

var latestFirst = bson.D{{Key: "updated_at", Value: -1}}

func eventIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "updated_at", Value: -1}}},
		{Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "name", Value: 1}}},
	}
}

func (r *EventRepository) coll(ctx context.Context) (*mongo.Collection, error) {
	db, err := r.provider.Database(ctx)
	if err != nil {
		return nil, err
	}
	return db.Collection(eventsCollection), nil
}

// List returns the owner's events, most recently updated first.
func (r *EventRepository) List(ctx context.Context, ownerID string) ([]*domain.Event, error) {
	owner, err := primitive.ObjectIDFromHex(ownerID)
	if err != nil {
		return []*domain.Event{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	coll, err := r.coll(ctx)
	if err != nil {
		return nil, err
	}

	cursor, err := coll.Find(ctx, bson.M{"owner_id": owner}, options.Find().SetSort(latestFirst))
	if err != nil {
		return nil, storageError("list events", err)
	}

	var docs []mongoEvent
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, storageError("decode events", err)
	}

	events := make([]*domain.Event, 0, len(docs))
	for _, d := range docs {
		events = append(events, d.toDomain())
	}
	return events, nil
}

// FindLatest returns the owner's most recently updated event.
func (r *EventRepository) FindLatest(ctx context.Context, ownerID string) (*domain.Event, error) {
	owner, err := primitive.ObjectIDFromHex(ownerID)
	if err != nil {
		return nil, domain.ErrEventNotFound
	}
	return r.findOne(ctx, bson.M{"owner_id": owner}, options.FindOne().SetSort(latestFirst))
}

// FindByID retrieves one of the owner's events.
func (r *EventRepository) FindByID(ctx context.Context, ownerID, id string) (*domain.Event, error) {
	filter, err := ownedFilter(ownerID, id)
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, filter)
}

// Create inserts a new event and returns it with its generated id.
func (r *EventRepository) Create(ctx context.Context, event *domain.Event) (*domain.Event, error) {
	owner, err := primitive.ObjectIDFromHex(event.OwnerID)
	if err != nil {
		return nil, domain.Invalid("owner id is malformed")
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	coll, err := r.coll(ctx)
	if err != nil {
		return nil, err
	}

	doc := fromDomain(event)
	doc.ID = primitive.NewObjectID()
	doc.OwnerID = owner

	if _, err := coll.InsertOne(ctx, doc); err != nil {
		return nil, storageError("insert event", err)
	}
	return doc.toDomain(), nil
}

// Update merges patch into the owner's event id.
func (r *EventRepository) Update(ctx context.Context, ownerID, id string, patch domain.EventPatch, now time.Time) (*domain.Event, error) {
	filter, err := ownedFilter(ownerID, id)
	if err != nil {
		return nil, err
	}
	return r.findOneAndUpdate(ctx, filter, patch, now, nil)
}

// UpdateLatest merges patch into the owner's most recently updated event.
func (r *EventRepository) UpdateLatest(ctx context.Context, ownerID string, patch domain.EventPatch, now time.Time) (*domain.Event, error) {
	owner, err := primitive.ObjectIDFromHex(ownerID)
	if err != nil {
		return nil, domain.ErrEventNotFound
	}
	return r.findOneAndUpdate(ctx, bson.M{"owner_id": owner}, patch, now, latestFirst)
}

// UpsertByName merges patch into the owner's latest event named name, or
// inserts one. The pre-image is requested so an insert is recognisable by
// the absence of a previous document; the post-image is then derived from
// the patch, which is exactly what the update applied.
func (r *EventRepository) UpsertByName(ctx context.Context, ownerID, name string, patch domain.EventPatch, now time.Time) (*domain.Event, bool, error) {
	owner, err := primitive.ObjectIDFromHex(ownerID)
	if err != nil {
		return nil, false, domain.Invalid("owner id is malformed")
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	coll, err := r.coll(ctx)
	if err != nil {
		return nil, false, err
	}

	// The filter seeds owner_id and name on insert; keep name out of $set so
	// the two operators never touch the same path.
	patch.Name = nil
	newID := primitive.NewObjectID()
	onInsert := insertDefaults(patch, now)
	onInsert["_id"] = newID

	update := bson.M{
		"$set":         setFields(patch, now),
		"$setOnInsert": onInsert,
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetSort(latestFirst).
		SetReturnDocument(options.Before)

	var before mongoEvent
	err = coll.FindOneAndUpdate(ctx, bson.M{"owner_id": owner, "name": name}, update, opts).Decode(&before)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		created := domain.NewEvent(ownerID, patch, now)
		created.ID = newID.Hex()
		created.Name = name
		return created, true, nil
	case err != nil:
		return nil, false, storageError("upsert event", err)
	}

	event := before.toDomain()
	patch.Apply(event)
	event.UpdatedAt = now
	return event, false, nil
}

// Delete removes one of the owner's events.
func (r *EventRepository) Delete(ctx context.Context, ownerID, id string) error {
	filter, err := ownedFilter(ownerID, id)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	coll, err := r.coll(ctx)
	if err != nil {
		return err
	}

	res, err := coll.DeleteOne(ctx, filter)
	if err != nil {
		return storageError("delete event", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrEventNotFound
	}
	return nil
}

// DeleteLatest removes the owner's most recently updated event.
func (r *EventRepository) DeleteLatest(ctx context.Context, ownerID string) error {
	owner, err := primitive.ObjectIDFromHex(ownerID)
	if err != nil {
		return domain.ErrEventNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	coll, err := r.coll(ctx)
	if err != nil {
		return err
	}

	err = coll.FindOneAndDelete(ctx, bson.M{"owner_id": owner}, options.FindOneAndDelete().SetSort(latestFirst)).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.ErrEventNotFound
	}
	if err != nil {
		return storageError("delete latest event", err)
	}
	return nil
}

func (r *EventRepository) findOne(ctx context.Context, filter bson.M, opts ...*options.FindOneOptions) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	coll, err := r.coll(ctx)
	if err != nil {
		return nil, err
	}

	var doc mongoEvent
	if err := coll.FindOne(ctx, filter, opts...).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrEventNotFound
		}
		return nil, storageError("find event", err)
	}
	return doc.toDomain(), nil
}

func (r *EventRepository) findOneAndUpdate(ctx context.Context, filter bson.M, patch domain.EventPatch, now time.Time, sort bson.D) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	coll, err := r.coll(ctx)
	if err != nil {
		return nil, err
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	if sort != nil {
		opts.SetSort(sort)
	}

	var doc mongoEvent
	err = coll.FindOneAndUpdate(ctx, filter, bson.M{"$set": setFields(patch, now)}, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrEventNotFound
		}
		return nil, storageError("update event", err)
	}
	return doc.toDomain(), nil
}

// ownedFilter builds the {_id, owner_id} filter. Malformed ids cannot match
// anything and are reported as not found.
func ownedFilter(ownerID, id string) (bson.M, error) {
	owner, err := primitive.ObjectIDFromHex(ownerID)
	if err != nil {
		return nil, domain.ErrEventNotFound
	}
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrEventNotFound
	}
	return bson.M{"_id": oid, "owner_id": owner}, nil
}

// setFields maps the present patch fields to their document paths and
// always bumps updated_at.
func setFields(p domain.EventPatch, now time.Time) bson.M {
	set := bson.M{"updated_at": now}
	if p.Name != nil {
		set["name"] = *p.Name
	}
	if p.Date != nil {
		set["date"] = *p.Date
	}
	if p.Location != nil {
		set["location"] = *p.Location
	}
	if p.Description != nil {
		set["description"] = *p.Description
	}
	if p.EventType != nil {
		set["event_type"] = *p.EventType
	}
	if p.GuestCount != nil {
		set["guest_count"] = *p.GuestCount
	}
	if p.Budget != nil {
		set["budget"] = *p.Budget
	}
	if p.SelectedProviders != nil {
		providers := *p.SelectedProviders
		if providers == nil {
			providers = []domain.ProviderSelection{}
		}
		set["selected_providers"] = providers
	}
	if p.Step != nil {
		set["step"] = *p.Step
	}
	if p.ActiveCategory != nil {
		set["active_category"] = *p.ActiveCategory
	}
	return set
}

// insertDefaults returns the defaults for every field the patch leaves out,
// for use with $setOnInsert. owner_id and name come from the upsert filter.
func insertDefaults(p domain.EventPatch, now time.Time) bson.M {
	defaults := bson.M{"created_at": now}
	if p.Date == nil {
		defaults["date"] = ""
	}
	if p.Location == nil {
		defaults["location"] = ""
	}
	if p.Description == nil {
		defaults["description"] = ""
	}
	if p.EventType == nil {
		defaults["event_type"] = ""
	}
	if p.GuestCount == nil {
		defaults["guest_count"] = 0
	}
	if p.Budget == nil {
		defaults["budget"] = 0.0
	}
	if p.SelectedProviders == nil {
		defaults["selected_providers"] = []domain.ProviderSelection{}
	}
	if p.Step == nil {
		defaults["step"] = domain.DefaultStep
	}
	if p.ActiveCategory == nil {
		defaults["active_category"] = ""
	}
	return defaults
}

func fromDomain(e *domain.Event) mongoEvent {
	providers := e.SelectedProviders
	if providers == nil {
		providers = []domain.ProviderSelection{}
	}
	return mongoEvent{
		Name:              e.Name,
		Date:              e.Date,
		Location:          e.Location,
		Description:       e.Description,
		EventType:         e.EventType,
		GuestCount:        e.GuestCount,
		Budget:            e.Budget,
		SelectedProviders: providers,
		Step:              e.Step,
		ActiveCategory:    e.ActiveCategory,
		CreatedAt:         e.CreatedAt,
		UpdatedAt:         e.UpdatedAt,
	}
}

func (d mongoEvent) toDomain() *domain.Event {
	providers := d.SelectedProviders
	if providers == nil {
		providers = []domain.ProviderSelection{}
	}
	return &domain.Event{
		ID:                d.ID.Hex(),
		OwnerID:           d.OwnerID.Hex(),
		Name:              d.Name,
		Date:              d.Date,
		Location:          d.Location,
		Description:       d.Description,
		EventType:         d.EventType,
		GuestCount:        d.GuestCount,
		Budget:            d.Budget,
		SelectedProviders: providers,
		Step:              d.Step,
		ActiveCategory:    d.ActiveCategory,
		CreatedAt:         d.CreatedAt.UTC(),
		UpdatedAt:         d.UpdatedAt.UTC(),
	}
}
