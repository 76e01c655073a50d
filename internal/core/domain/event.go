package domain

import (
	"strings"
	"time"
)

const (
	DefaultEventName = "My Event"
	DefaultStep      = 1
)

// ProviderSelection is a service provider the user picked for an event.
type ProviderSelection struct {
	ID            string   `json:"id" bson:"id"`
	Name          string   `json:"name" bson:"name"`
	Price         float64  `json:"price" bson:"price"`
	OriginalPrice *float64 `json:"originalPrice,omitempty" bson:"original_price,omitempty"`
	Category      string   `json:"category" bson:"category"`
	Image         string   `json:"image" bson:"image"`
	IsPerPerson   *bool    `json:"isPerPerson,omitempty" bson:"is_per_person,omitempty"`
	OfferID       string   `json:"offerId,omitempty" bson:"offer_id,omitempty"`
	OfferName     string   `json:"offerName,omitempty" bson:"offer_name,omitempty"`
}

// Event is a planning record owned by exactly one user.
type Event struct {
	ID                string              `json:"id"`
	OwnerID           string              `json:"ownerId"`
	Name              string              `json:"name"`
	Date              string              `json:"date"`
	Location          string              `json:"location"`
	Description       string              `json:"description"`
	EventType         string              `json:"eventType"`
	GuestCount        int                 `json:"guestCount"`
	Budget            float64             `json:"budget"`
	SelectedProviders []ProviderSelection `json:"selectedProviders"`
	Step              int                 `json:"step"`
	ActiveCategory    string              `json:"activeCategory"`
	CreatedAt         time.Time           `json:"createdAt"`
	UpdatedAt         time.Time           `json:"updatedAt"`
}

// EventPatch carries the mutable event fields a client sent. A nil field was
// absent from the payload and leaves the stored value untouched.
type EventPatch struct {
	Name              *string
	Date              *string
	Location          *string
	Description       *string
	EventType         *string
	GuestCount        *int
	Budget            *float64
	SelectedProviders *[]ProviderSelection
	Step              *int
	ActiveCategory    *string
}

// Normalize trims the name and drops it when blank, so a blank name falls
// back to the stored or default value instead of failing validation.
func (p EventPatch) Normalize() EventPatch {
	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		if name == "" {
			p.Name = nil
		} else {
			p.Name = &name
		}
	}
	return p
}

// Validate checks the fields that are present.
func (p EventPatch) Validate() error {
	if p.GuestCount != nil && *p.GuestCount < 0 {
		return Invalid("guestCount must be zero or positive")
	}
	if p.Budget != nil && *p.Budget < 0 {
		return Invalid("budget must be zero or positive")
	}
	if p.Step != nil && *p.Step < 1 {
		return Invalid("step must be at least 1")
	}
	if p.SelectedProviders != nil {
		for i, sp := range *p.SelectedProviders {
			if strings.TrimSpace(sp.ID) == "" {
				return Invalid("selectedProviders[%d].id is required", i)
			}
			if sp.Price < 0 {
				return Invalid("selectedProviders[%d].price must be zero or positive", i)
			}
		}
	}
	return nil
}

// Apply merges the present fields of p into e.
func (p EventPatch) Apply(e *Event) {
	if p.Name != nil {
		e.Name = *p.Name
	}
	if p.Date != nil {
		e.Date = *p.Date
	}
	if p.Location != nil {
		e.Location = *p.Location
	}
	if p.Description != nil {
		e.Description = *p.Description
	}
	if p.EventType != nil {
		e.EventType = *p.EventType
	}
	if p.GuestCount != nil {
		e.GuestCount = *p.GuestCount
	}
	if p.Budget != nil {
		e.Budget = *p.Budget
	}
	if p.SelectedProviders != nil {
		e.SelectedProviders = append([]ProviderSelection{}, (*p.SelectedProviders)...)
	}
	if p.Step != nil {
		e.Step = *p.Step
	}
	if p.ActiveCategory != nil {
		e.ActiveCategory = *p.ActiveCategory
	}
}

// EffectiveName is the name an event created from p would carry.
func (p EventPatch) EffectiveName() string {
	if p.Name == nil || strings.TrimSpace(*p.Name) == "" {
		return DefaultEventName
	}
	return strings.TrimSpace(*p.Name)
}

// NewEvent builds an event for ownerID with defaults for every field p omits.
func NewEvent(ownerID string, p EventPatch, now time.Time) *Event {
	e := &Event{
		OwnerID:           ownerID,
		Name:              DefaultEventName,
		SelectedProviders: []ProviderSelection{},
		Step:              DefaultStep,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	p.Normalize().Apply(e)
	return e
}
