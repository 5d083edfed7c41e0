// Package models contains data structures for the application's domain models.
package models

import "time"

// ProviderStatus defines the moderation lifecycle state of a provider.
type ProviderStatus string

const (
	// ProviderStatusPending indicates a provider is awaiting moderation.
	ProviderStatusPending ProviderStatus = "pending"
	// ProviderStatusActive indicates a provider is publicly listed.
	ProviderStatusActive ProviderStatus = "active"
	// ProviderStatusDisabled indicates a provider was taken down by moderation.
	ProviderStatusDisabled ProviderStatus = "disabled"
)

// Provider represents a business listing in the directory.
type Provider struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	Slug           string         `gorm:"size:64;not null;uniqueIndex" json:"slug"`
	Email          string         `gorm:"size:255;not null;uniqueIndex" json:"email"`
	BusinessName   string         `gorm:"size:120;not null" json:"business_name"`
	Tagline        string         `gorm:"size:255" json:"tagline"`
	City           string         `gorm:"size:80;index" json:"city"`
	State          string         `gorm:"size:2" json:"state"`
	Zip            string         `gorm:"size:10" json:"zip"`
	Logo           string         `gorm:"size:512" json:"logo"`
	Notes          string         `gorm:"type:text" json:"-"`
	Status         ProviderStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	DisabledReason *string        `gorm:"type:text" json:"disabled_reason,omitempty"`
	Verified       bool           `gorm:"not null;default:false" json:"verified"`
	Rating         float64        `gorm:"not null;default:0" json:"rating"`
	OwnerUserID    *uint          `gorm:"uniqueIndex" json:"owner_user_id,omitempty"`
	OwnerUser      *User          `gorm:"foreignKey:OwnerUserID" json:"owner_user,omitempty"`
	Services       []ProviderService `gorm:"foreignKey:ProviderID" json:"services,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (Provider) TableName() string {
	return "providers"
}

// ServiceNames returns the provider's service tags as a flat string slice.
func (p *Provider) ServiceNames() []string {
	names := make([]string, 0, len(p.Services))
	for _, s := range p.Services {
		names = append(names, s.Name)
	}
	return names
}

// ProviderService is a single service tag attached to a provider.
// Tags live in their own table so any/all tag matching stays plain SQL.
type ProviderService struct {
	ID         uint   `gorm:"primaryKey" json:"-"`
	ProviderID uint   `gorm:"not null;index:idx_provider_service,unique" json:"-"`
	Name       string `gorm:"size:64;not null;index:idx_provider_service,unique;index" json:"name"`
}

// TableName specifies the table name for GORM.
func (ProviderService) TableName() string {
	return "provider_services"
}
