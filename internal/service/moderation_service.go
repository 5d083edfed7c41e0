// Package service contains domain logic layered between handlers and
// repositories.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"

	"github.com/abdanbarkaath/marketlink/internal/cache"
	"github.com/abdanbarkaath/marketlink/internal/models"
	"github.com/abdanbarkaath/marketlink/internal/observability"
	"github.com/abdanbarkaath/marketlink/internal/validation"

	"gorm.io/gorm"
)

// ModerationService drives the provider visibility lifecycle. Every
// transition and the audit record describing it commit in one transaction,
// so the log never disagrees with provider state.
type ModerationService struct {
	db *gorm.DB
}

// NewModerationService returns a new ModerationService.
func NewModerationService(db *gorm.DB) *ModerationService {
	return &ModerationService{db: db}
}

type transitionMetadata struct {
	PriorStatus models.ProviderStatus `json:"prior_status"`
	Reason      string                `json:"reason,omitempty"`
}

// Approve moves a provider to active from any state and clears any disabled
// reason. Re-approving an active provider is allowed; the audit record keeps
// the prior status so the history stays meaningful.
func (s *ModerationService) Approve(ctx context.Context, adminUserID, providerID uint) (*models.Provider, error) {
	return s.transition(ctx, adminUserID, providerID, models.AdminActionApprove, func(p *models.Provider) error {
		p.Status = models.ProviderStatusActive
		p.DisabledReason = nil
		return nil
	}, "")
}

// Disable takes a provider off the public listing. The reason is mandatory;
// an empty reason fails validation before any write happens, including the
// audit record.
func (s *ModerationService) Disable(ctx context.Context, adminUserID, providerID uint, reason string) (*models.Provider, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, models.NewValidationError("A reason is required to disable a provider")
	}
	return s.transition(ctx, adminUserID, providerID, models.AdminActionDisable, func(p *models.Provider) error {
		p.Status = models.ProviderStatusDisabled
		p.DisabledReason = &reason
		return nil
	}, reason)
}

// Enable restores a disabled provider to active and clears the reason.
func (s *ModerationService) Enable(ctx context.Context, adminUserID, providerID uint) (*models.Provider, error) {
	return s.transition(ctx, adminUserID, providerID, models.AdminActionEnable, func(p *models.Provider) error {
		if p.Status != models.ProviderStatusDisabled {
			return models.NewConflictError("Only disabled providers can be enabled")
		}
		p.Status = models.ProviderStatusActive
		p.DisabledReason = nil
		return nil
	}, "")
}

// SetPending sends a provider back to review, pulling it off the public
// listing without the stigma of a disable. Any disabled reason is cleared.
func (s *ModerationService) SetPending(ctx context.Context, adminUserID, providerID uint) (*models.Provider, error) {
	return s.transition(ctx, adminUserID, providerID, models.AdminActionSetPending, func(p *models.Provider) error {
		p.Status = models.ProviderStatusPending
		p.DisabledReason = nil
		return nil
	}, "")
}

// SetVerified grants or revokes the verified badge.
func (s *ModerationService) SetVerified(ctx context.Context, adminUserID, providerID uint, verified bool) (*models.Provider, error) {
	action := models.AdminActionVerifyOn
	if !verified {
		action = models.AdminActionVerifyOff
	}
	return s.transition(ctx, adminUserID, providerID, action, func(p *models.Provider) error {
		p.Verified = verified
		return nil
	}, "")
}

// AdminEditInput is a partial update of provider fields by an admin. Nil
// pointers leave the field untouched; a nil Services slice keeps the
// current tag set.
type AdminEditInput struct {
	Slug         *string
	Email        *string
	BusinessName *string
	Tagline      *string
	City         *string
	State        *string
	Zip          *string
	Logo         *string
	Notes        *string
	Rating       *float64
	Services     []string
}

// Edit applies an admin edit to any provider field and records an EDIT
// action listing the changed fields. A slug change that collides with
// another provider returns a conflict and nothing is written.
func (s *ModerationService) Edit(ctx context.Context, adminUserID, providerID uint, in AdminEditInput) (*models.Provider, error) {
	var provider models.Provider
	var changed []string

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Services").First(&provider, providerID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Provider", providerID)
			}
			return models.NewInternalError(err)
		}

		if in.Slug != nil && *in.Slug != provider.Slug {
			slug := strings.ToLower(strings.TrimSpace(*in.Slug))
			if err := validation.ValidateProviderSlug(slug); err != nil {
				return err
			}
			var count int64
			if err := tx.Model(&models.Provider{}).
				Where("slug = ? AND id <> ?", slug, providerID).
				Count(&count).Error; err != nil {
				return models.NewInternalError(err)
			}
			if count > 0 {
				return models.NewConflictError("Another provider already uses this slug")
			}
			cache.InvalidateProvider(ctx, provider.Slug)
			provider.Slug = slug
			changed = append(changed, "slug")
		}
		if in.Email != nil {
			email := strings.TrimSpace(strings.ToLower(*in.Email))
			if err := validation.ValidateEmail(email); err != nil {
				return err
			}
			if email != provider.Email {
				provider.Email = email
				changed = append(changed, "email")
			}
		}
		setString := func(field string, dst *string, src *string) {
			if src != nil && strings.TrimSpace(*src) != *dst {
				*dst = strings.TrimSpace(*src)
				changed = append(changed, field)
			}
		}
		if in.BusinessName != nil && strings.TrimSpace(*in.BusinessName) == "" {
			return models.NewValidationError("Business name cannot be empty")
		}
		setString("business_name", &provider.BusinessName, in.BusinessName)
		setString("tagline", &provider.Tagline, in.Tagline)
		setString("city", &provider.City, in.City)
		setString("zip", &provider.Zip, in.Zip)
		setString("logo", &provider.Logo, in.Logo)
		setString("notes", &provider.Notes, in.Notes)
		if in.State != nil {
			state := strings.ToUpper(strings.TrimSpace(*in.State))
			if state != "" {
				if err := validation.ValidateUSState(state); err != nil {
					return err
				}
			}
			if state != provider.State {
				provider.State = state
				changed = append(changed, "state")
			}
		}
		if in.Rating != nil {
			if *in.Rating < 0 || *in.Rating > 5 {
				return models.NewValidationError("Rating must be between 0 and 5")
			}
			if *in.Rating != provider.Rating {
				provider.Rating = *in.Rating
				changed = append(changed, "rating")
			}
		}

		if err := tx.Save(&provider).Error; err != nil {
			return models.NewInternalError(err)
		}

		if in.Services != nil {
			if err := tx.Where("provider_id = ?", providerID).Delete(&models.ProviderService{}).Error; err != nil {
				return models.NewInternalError(err)
			}
			for _, name := range normalizeServiceNames(in.Services) {
				svc := models.ProviderService{ProviderID: providerID, Name: name}
				if err := tx.Create(&svc).Error; err != nil {
					return models.NewInternalError(err)
				}
			}
			changed = append(changed, "services")
		}

		if len(changed) == 0 {
			return nil
		}
		meta, err := json.Marshal(map[string]any{"changed_fields": changed})
		if err != nil {
			return models.NewInternalError(err)
		}
		record := models.AdminAction{
			AdminUserID: &adminUserID,
			ProviderID:  providerID,
			Action:      models.AdminActionEdit,
			Metadata:    string(meta),
		}
		if err := tx.Create(&record).Error; err != nil {
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(changed) > 0 {
		observability.ModerationActions.WithLabelValues(string(models.AdminActionEdit)).Inc()
		cache.InvalidateProvider(ctx, provider.Slug)
		cache.InvalidateListing(ctx)
	}

	if err := s.db.WithContext(ctx).Preload("Services").First(&provider, providerID).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return &provider, nil
}

func (s *ModerationService) transition(
	ctx context.Context,
	adminUserID, providerID uint,
	action models.AdminActionType,
	mutate func(p *models.Provider) error,
	reason string,
) (*models.Provider, error) {
	var provider models.Provider

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Services").First(&provider, providerID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Provider", providerID)
			}
			return models.NewInternalError(err)
		}

		prior := provider.Status
		if err := mutate(&provider); err != nil {
			return err
		}
		if err := tx.Save(&provider).Error; err != nil {
			return models.NewInternalError(err)
		}

		meta, err := json.Marshal(transitionMetadata{PriorStatus: prior, Reason: reason})
		if err != nil {
			return models.NewInternalError(err)
		}
		record := models.AdminAction{
			AdminUserID: &adminUserID,
			ProviderID:  providerID,
			Action:      action,
			Metadata:    string(meta),
		}
		if err := tx.Create(&record).Error; err != nil {
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	observability.ModerationActions.WithLabelValues(string(action)).Inc()
	cache.InvalidateProvider(ctx, provider.Slug)
	cache.InvalidateListing(ctx)
	slog.InfoContext(ctx, "moderation action applied",
		"action", string(action),
		"provider_id", providerID,
		"admin_user_id", adminUserID,
	)
	return &provider, nil
}
