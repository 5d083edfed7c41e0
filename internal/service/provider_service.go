package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/abdanbarkaath/marketlink/internal/models"
	"github.com/abdanbarkaath/marketlink/internal/repository"
	"github.com/abdanbarkaath/marketlink/internal/validation"
)

// maxSlugAttempts bounds the collision suffix search during onboarding.
const maxSlugAttempts = 100

// ProviderService handles provider onboarding, public detail lookup, and
// owner self-service edits.
type ProviderService struct {
	providerRepo repository.ProviderRepository
}

// NewProviderService returns a new ProviderService.
func NewProviderService(providerRepo repository.ProviderRepository) *ProviderService {
	return &ProviderService{providerRepo: providerRepo}
}

// OnboardProviderInput is the payload for creating a provider listing.
type OnboardProviderInput struct {
	OwnerUserID  uint
	BusinessName string
	Email        string
	Tagline      string
	City         string
	State        string
	Zip          string
	Logo         string
	Services     []string
}

// UpdateOwnProviderInput is the owner-editable subset of provider fields.
// Status, verification, rating, and slug stay out of the owner's reach.
type UpdateOwnProviderInput struct {
	BusinessName *string
	Tagline      *string
	City         *string
	State        *string
	Zip          *string
	Logo         *string
	Services     []string
}

// Onboard creates a new provider in pending status for the given user. Each
// user owns at most one provider; a second attempt returns a conflict.
func (s *ProviderService) Onboard(ctx context.Context, in OnboardProviderInput) (*models.Provider, error) {
	in.BusinessName = strings.TrimSpace(in.BusinessName)
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	in.City = strings.TrimSpace(in.City)

	if in.BusinessName == "" {
		return nil, models.NewValidationError("Business name is required")
	}
	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, err
	}
	if in.State != "" {
		if err := validation.ValidateUSState(in.State); err != nil {
			return nil, err
		}
	}

	existing, err := s.providerRepo.GetByOwnerUserID(ctx, in.OwnerUserID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.NewConflictError("You already have a provider listing")
	}

	slug, err := s.availableSlug(ctx, in.BusinessName)
	if err != nil {
		return nil, err
	}

	ownerID := in.OwnerUserID
	provider := &models.Provider{
		Slug:         slug,
		Email:        in.Email,
		BusinessName: in.BusinessName,
		Tagline:      strings.TrimSpace(in.Tagline),
		City:         in.City,
		State:        strings.ToUpper(strings.TrimSpace(in.State)),
		Zip:          strings.TrimSpace(in.Zip),
		Logo:         strings.TrimSpace(in.Logo),
		Status:       models.ProviderStatusPending,
		OwnerUserID:  &ownerID,
	}
	if err := s.providerRepo.Create(ctx, provider); err != nil {
		return nil, err
	}
	if names := normalizeServiceNames(in.Services); len(names) > 0 {
		if err := s.providerRepo.ReplaceServices(ctx, provider.ID, names); err != nil {
			return nil, err
		}
		return s.providerRepo.GetByID(ctx, provider.ID)
	}
	return provider, nil
}

// availableSlug derives a slug from the business name and resolves
// collisions with a numeric suffix: acme-co, acme-co-2, acme-co-3, ...
func (s *ProviderService) availableSlug(ctx context.Context, businessName string) (string, error) {
	base := validation.Slugify(businessName)
	if err := validation.ValidateProviderSlug(base); err != nil {
		return "", err
	}

	candidate := base
	for i := 2; i <= maxSlugAttempts; i++ {
		taken, err := s.providerRepo.SlugExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
	return "", models.NewConflictError("Could not find an available slug for this business name")
}

// GetBySlug returns a provider for the detail page. callerUserID is 0 for
// anonymous requests. Anything not active is visible only to its owner;
// every other caller, admins included, gets the same not-found as a missing
// slug, so the response never reveals that a pending or disabled record
// exists.
func (s *ProviderService) GetBySlug(ctx context.Context, slug string, callerUserID uint) (*models.Provider, error) {
	provider, err := s.providerRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if provider.Status != models.ProviderStatusActive {
		isOwner := callerUserID != 0 &&
			provider.OwnerUserID != nil &&
			*provider.OwnerUserID == callerUserID
		if !isOwner {
			return nil, models.NewNotFoundError("Provider", slug)
		}
	}
	return provider, nil
}

// List runs a listing query.
func (s *ProviderService) List(ctx context.Context, q repository.ProviderListQuery) (*repository.ProviderPage, error) {
	return s.providerRepo.List(ctx, q)
}

// GetOwn returns the provider owned by the given user.
func (s *ProviderService) GetOwn(ctx context.Context, userID uint) (*models.Provider, error) {
	provider, err := s.providerRepo.GetByOwnerUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if provider == nil {
		return nil, models.NewNotFoundError("Provider", "owned by user")
	}
	return provider, nil
}

// UpdateOwn applies an owner's edits to their provider. Edits never touch
// status, so a disabled provider stays hidden until moderation re-enables it.
func (s *ProviderService) UpdateOwn(ctx context.Context, userID uint, in UpdateOwnProviderInput) (*models.Provider, error) {
	provider, err := s.GetOwn(ctx, userID)
	if err != nil {
		return nil, err
	}

	if in.BusinessName != nil {
		name := strings.TrimSpace(*in.BusinessName)
		if name == "" {
			return nil, models.NewValidationError("Business name cannot be empty")
		}
		provider.BusinessName = name
	}
	if in.Tagline != nil {
		provider.Tagline = strings.TrimSpace(*in.Tagline)
	}
	if in.City != nil {
		provider.City = strings.TrimSpace(*in.City)
	}
	if in.State != nil {
		state := strings.ToUpper(strings.TrimSpace(*in.State))
		if state != "" {
			if err := validation.ValidateUSState(state); err != nil {
				return nil, err
			}
		}
		provider.State = state
	}
	if in.Zip != nil {
		provider.Zip = strings.TrimSpace(*in.Zip)
	}
	if in.Logo != nil {
		provider.Logo = strings.TrimSpace(*in.Logo)
	}

	if err := s.providerRepo.Update(ctx, provider); err != nil {
		return nil, err
	}
	if in.Services != nil {
		if err := s.providerRepo.ReplaceServices(ctx, provider.ID, normalizeServiceNames(in.Services)); err != nil {
			return nil, err
		}
	}
	return s.providerRepo.GetByID(ctx, provider.ID)
}

// normalizeServiceNames lowercases, trims, and dedupes tags preserving order.
func normalizeServiceNames(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.ToLower(strings.TrimSpace(n))
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
