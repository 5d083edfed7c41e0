package repository

import (
	"context"
	"errors"

	"github.com/abdanbarkaath/marketlink/internal/models"

	"gorm.io/gorm"
)

// InquiryRepository defines persistence operations for provider inquiries.
type InquiryRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Inquiry, error)
	ListForProvider(ctx context.Context, providerID uint, status *models.InquiryStatus, limit, offset int) ([]models.Inquiry, int64, error)
	Create(ctx context.Context, inquiry *models.Inquiry) error
	UpdateStatus(ctx context.Context, id uint, status models.InquiryStatus) error
}

type inquiryRepository struct {
	db *gorm.DB
}

// NewInquiryRepository returns a new InquiryRepository implementation.
func NewInquiryRepository(db *gorm.DB) InquiryRepository {
	return &inquiryRepository{db: db}
}

func (r *inquiryRepository) GetByID(ctx context.Context, id uint) (*models.Inquiry, error) {
	var inquiry models.Inquiry
	if err := readDB(r.db).WithContext(ctx).First(&inquiry, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Inquiry", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &inquiry, nil
}

func (r *inquiryRepository) ListForProvider(ctx context.Context, providerID uint, status *models.InquiryStatus, limit, offset int) ([]models.Inquiry, int64, error) {
	if limit < 1 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	if offset < 0 {
		offset = 0
	}

	tx := readDB(r.db).WithContext(ctx).
		Model(&models.Inquiry{}).
		Where("provider_id = ?", providerID)
	if status != nil {
		tx = tx.Where("status = ?", string(*status))
	}

	var total int64
	if err := tx.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	var inquiries []models.Inquiry
	err := tx.Session(&gorm.Session{}).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&inquiries).Error
	if err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return inquiries, total, nil
}

func (r *inquiryRepository) Create(ctx context.Context, inquiry *models.Inquiry) error {
	if err := r.db.WithContext(ctx).Create(inquiry).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *inquiryRepository) UpdateStatus(ctx context.Context, id uint, status models.InquiryStatus) error {
	res := r.db.WithContext(ctx).
		Model(&models.Inquiry{}).
		Where("id = ?", id).
		Update("status", string(status))
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Inquiry", id)
	}
	return nil
}
