package service

import (
	"context"
	"strings"

	"github.com/abdanbarkaath/marketlink/internal/models"
	"github.com/abdanbarkaath/marketlink/internal/observability"
	"github.com/abdanbarkaath/marketlink/internal/repository"
	"github.com/abdanbarkaath/marketlink/internal/validation"
)

const maxInquiryMessageLen = 4000

// InquiryService handles visitor inquiries and the owner's inbox.
type InquiryService struct {
	inquiryRepo  repository.InquiryRepository
	providerRepo repository.ProviderRepository
}

// NewInquiryService returns a new InquiryService.
func NewInquiryService(inquiryRepo repository.InquiryRepository, providerRepo repository.ProviderRepository) *InquiryService {
	return &InquiryService{inquiryRepo: inquiryRepo, providerRepo: providerRepo}
}

// CreateInquiryInput is the payload for a visitor inquiry.
type CreateInquiryInput struct {
	ProviderSlug string
	Name         string
	Email        string
	Phone        string
	Message      string
}

// Create accepts a visitor inquiry against an active provider. A pending or
// disabled provider answers with the same not-found as a missing slug.
func (s *InquiryService) Create(ctx context.Context, in CreateInquiryInput) (*models.Inquiry, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Message = strings.TrimSpace(in.Message)
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))

	if in.Name == "" {
		return nil, models.NewValidationError("Name is required")
	}
	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, err
	}
	if in.Message == "" {
		return nil, models.NewValidationError("Message is required")
	}
	if len(in.Message) > maxInquiryMessageLen {
		return nil, models.NewValidationError("Message is too long")
	}

	provider, err := s.providerRepo.GetBySlug(ctx, in.ProviderSlug)
	if err != nil {
		return nil, err
	}
	if provider.Status != models.ProviderStatusActive {
		return nil, models.NewNotFoundError("Provider", in.ProviderSlug)
	}

	inquiry := &models.Inquiry{
		ProviderID: provider.ID,
		Name:       in.Name,
		Email:      in.Email,
		Phone:      strings.TrimSpace(in.Phone),
		Message:    in.Message,
		Status:     models.InquiryStatusNew,
	}
	if err := s.inquiryRepo.Create(ctx, inquiry); err != nil {
		return nil, err
	}
	observability.InquiriesCreated.Inc()
	return inquiry, nil
}

// ListForOwner returns the inbox for the provider owned by userID.
func (s *InquiryService) ListForOwner(ctx context.Context, userID uint, status *models.InquiryStatus, limit, offset int) ([]models.Inquiry, int64, error) {
	provider, err := s.ownedProvider(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	return s.inquiryRepo.ListForProvider(ctx, provider.ID, status, limit, offset)
}

// SetStatus updates an inquiry's status on behalf of the provider owner.
// NEW -> READ -> ARCHIVED move forward; READ can also return to NEW.
func (s *InquiryService) SetStatus(ctx context.Context, userID, inquiryID uint, status models.InquiryStatus) (*models.Inquiry, error) {
	provider, err := s.ownedProvider(ctx, userID)
	if err != nil {
		return nil, err
	}
	inquiry, err := s.inquiryRepo.GetByID(ctx, inquiryID)
	if err != nil {
		return nil, err
	}
	if inquiry.ProviderID != provider.ID {
		// Mask cross-tenant probes the same way a missing ID does.
		return nil, models.NewNotFoundError("Inquiry", inquiryID)
	}
	if !validInquiryTransition(inquiry.Status, status) {
		return nil, models.NewConflictError("Invalid inquiry status transition")
	}
	if err := s.inquiryRepo.UpdateStatus(ctx, inquiryID, status); err != nil {
		return nil, err
	}
	inquiry.Status = status
	return inquiry, nil
}

func validInquiryTransition(from, to models.InquiryStatus) bool {
	if from == to {
		return true
	}
	switch from {
	case models.InquiryStatusNew:
		return to == models.InquiryStatusRead || to == models.InquiryStatusArchived
	case models.InquiryStatusRead:
		return to == models.InquiryStatusNew || to == models.InquiryStatusArchived
	case models.InquiryStatusArchived:
		return false
	}
	return false
}

func (s *InquiryService) ownedProvider(ctx context.Context, userID uint) (*models.Provider, error) {
	provider, err := s.providerRepo.GetByOwnerUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if provider == nil {
		return nil, models.NewNotFoundError("Provider", "owned by user")
	}
	return provider, nil
}
