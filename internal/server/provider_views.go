package server

import (
	"time"

	"github.com/abdanbarkaath/marketlink/internal/models"
)

// providerSummary is the listing row shape. Contact and moderation fields
// stay off the public listing surface.
type providerSummary struct {
	ID           uint      `json:"id"`
	Slug         string    `json:"slug"`
	BusinessName string    `json:"business_name"`
	Tagline      string    `json:"tagline,omitempty"`
	City         string    `json:"city,omitempty"`
	State        string    `json:"state,omitempty"`
	Verified     bool      `json:"verified"`
	Logo         string    `json:"logo,omitempty"`
	Services     []string  `json:"services"`
	Rating       float64   `json:"rating"`
	CreatedAt    time.Time `json:"created_at"`
}

// providerDetail is the detail page shape, also returned to owners.
type providerDetail struct {
	providerSummary
	Email          string                `json:"email"`
	Zip            string                `json:"zip,omitempty"`
	Status         models.ProviderStatus `json:"status"`
	DisabledReason *string               `json:"disabled_reason,omitempty"`
	UpdatedAt      time.Time             `json:"updated_at"`
}

// adminProviderView adds the moderation-only fields on top of the detail.
type adminProviderView struct {
	providerDetail
	Notes       string `json:"notes,omitempty"`
	OwnerUserID *uint  `json:"owner_user_id,omitempty"`
}

func newProviderSummary(p models.Provider) providerSummary {
	return providerSummary{
		ID:           p.ID,
		Slug:         p.Slug,
		BusinessName: p.BusinessName,
		Tagline:      p.Tagline,
		City:         p.City,
		State:        p.State,
		Verified:     p.Verified,
		Logo:         p.Logo,
		Services:     p.ServiceNames(),
		Rating:       p.Rating,
		CreatedAt:    p.CreatedAt,
	}
}

func newProviderDetail(p models.Provider) providerDetail {
	return providerDetail{
		providerSummary: newProviderSummary(p),
		Email:           p.Email,
		Zip:             p.Zip,
		Status:          p.Status,
		DisabledReason:  p.DisabledReason,
		UpdatedAt:       p.UpdatedAt,
	}
}

func newAdminProviderView(p models.Provider) adminProviderView {
	return adminProviderView{
		providerDetail: newProviderDetail(p),
		Notes:          p.Notes,
		OwnerUserID:    p.OwnerUserID,
	}
}

func summarizeProviders(providers []models.Provider) []providerSummary {
	out := make([]providerSummary, 0, len(providers))
	for _, p := range providers {
		out = append(out, newProviderSummary(p))
	}
	return out
}

func adminViewProviders(providers []models.Provider) []adminProviderView {
	out := make([]adminProviderView, 0, len(providers))
	for _, p := range providers {
		out = append(out, newAdminProviderView(p))
	}
	return out
}
