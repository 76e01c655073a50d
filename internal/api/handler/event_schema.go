package handler

import (
	"github.com/plannr/event-planner/internal/core/domain"
	"github.com/plannr/event-planner/internal/core/ports"
)

type providerRequest struct {
	ID            string   `json:"id"                      validate:"required"`
	Name          string   `json:"name"`
	Price         float64  `json:"price"                   validate:"min=0"`
	OriginalPrice *float64 `json:"originalPrice,omitempty"`
	Category      string   `json:"category"`
	Image         string   `json:"image"`
	IsPerPerson   *bool    `json:"isPerPerson,omitempty"`
	OfferID       string   `json:"offerId,omitempty"`
	OfferName     string   `json:"offerName,omitempty"`
}

// eventRequest is the body of every event write. A nil field was absent
// from the JSON and leaves the stored value untouched. "_id" is accepted as
// an alias of "id" for older clients.
type eventRequest struct {
	ID                string             `json:"id,omitempty"`
	LegacyID          string             `json:"_id,omitempty"`
	Name              *string            `json:"name,omitempty"`
	Date              *string            `json:"date,omitempty"`
	Location          *string            `json:"location,omitempty"`
	Description       *string            `json:"description,omitempty"`
	EventType         *string            `json:"eventType,omitempty"`
	GuestCount        *int               `json:"guestCount,omitempty"        validate:"omitempty,min=0"`
	Budget            *float64           `json:"budget,omitempty"            validate:"omitempty,min=0"`
	SelectedProviders *[]providerRequest `json:"selectedProviders,omitempty" validate:"omitempty,dive"`
	Step              *int               `json:"step,omitempty"              validate:"omitempty,min=1"`
	ActiveCategory    *string            `json:"activeCategory,omitempty"`
}

type stepRequest struct {
	Step    *int   `json:"step"    validate:"required"`
	EventID string `json:"eventId"`
}

type categoryRequest struct {
	ActiveCategory *string `json:"activeCategory" validate:"required"`
	EventID        string  `json:"eventId"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// toEventInput maps the HTTP request to the service DTO.
func toEventInput(r eventRequest) ports.EventInput {
	in := ports.EventInput{
		ID: r.ID,
		Patch: domain.EventPatch{
			Name:           r.Name,
			Date:           r.Date,
			Location:       r.Location,
			Description:    r.Description,
			EventType:      r.EventType,
			GuestCount:     r.GuestCount,
			Budget:         r.Budget,
			Step:           r.Step,
			ActiveCategory: r.ActiveCategory,
		},
	}
	if in.ID == "" {
		in.ID = r.LegacyID
	}
	if r.SelectedProviders != nil {
		providers := make([]domain.ProviderSelection, 0, len(*r.SelectedProviders))
		for _, p := range *r.SelectedProviders {
			providers = append(providers, domain.ProviderSelection{
				ID:            p.ID,
				Name:          p.Name,
				Price:         p.Price,
				OriginalPrice: p.OriginalPrice,
				Category:      p.Category,
				Image:         p.Image,
				IsPerPerson:   p.IsPerPerson,
				OfferID:       p.OfferID,
				OfferName:     p.OfferName,
			})
		}
		in.Patch.SelectedProviders = &providers
	}
	return in
}
