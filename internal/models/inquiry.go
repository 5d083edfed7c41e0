package models

import "time"

// InquiryStatus defines lifecycle states for provider inquiries.
type InquiryStatus string

const (
	// InquiryStatusNew indicates an inquiry the owner has not opened yet.
	InquiryStatusNew InquiryStatus = "NEW"
	// InquiryStatusRead indicates the owner has seen the inquiry.
	InquiryStatusRead InquiryStatus = "READ"
	// InquiryStatusArchived indicates the inquiry was filed away.
	InquiryStatusArchived InquiryStatus = "ARCHIVED"
)

// Inquiry is a message submitted by a visitor to a provider.
// Inquiries are only accepted against active providers.
type Inquiry struct {
	ID         uint          `gorm:"primaryKey" json:"id"`
	ProviderID uint          `gorm:"not null;index" json:"provider_id"`
	Provider   *Provider     `gorm:"foreignKey:ProviderID" json:"provider,omitempty"`
	Name       string        `gorm:"size:120;not null" json:"name"`
	Email      string        `gorm:"size:255;not null" json:"email"`
	Phone      string        `gorm:"size:32" json:"phone"`
	Message    string        `gorm:"type:text;not null" json:"message"`
	Status     InquiryStatus `gorm:"type:varchar(20);not null;default:'NEW';index" json:"status"`
	CreatedAt  time.Time     `json:"created_at"`
}

// TableName specifies the table name for GORM.
func (Inquiry) TableName() string {
	return "inquiries"
}
