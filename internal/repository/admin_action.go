package repository

import (
	"context"

	"github.com/abdanbarkaath/marketlink/internal/models"

	"gorm.io/gorm"
)

// AdminActionRepository defines persistence operations for the append-only
// moderation audit log. There is no update or delete on purpose.
type AdminActionRepository interface {
	Create(ctx context.Context, action *models.AdminAction) error
	ListForProvider(ctx context.Context, providerID uint, limit, offset int) ([]models.AdminAction, int64, error)
	List(ctx context.Context, limit, offset int) ([]models.AdminAction, int64, error)
}

type adminActionRepository struct {
	db *gorm.DB
}

// NewAdminActionRepository returns a new AdminActionRepository implementation.
func NewAdminActionRepository(db *gorm.DB) AdminActionRepository {
	return &adminActionRepository{db: db}
}

func (r *adminActionRepository) Create(ctx context.Context, action *models.AdminAction) error {
	if err := r.db.WithContext(ctx).Create(action).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *adminActionRepository) ListForProvider(ctx context.Context, providerID uint, limit, offset int) ([]models.AdminAction, int64, error) {
	return r.list(ctx, &providerID, limit, offset)
}

func (r *adminActionRepository) List(ctx context.Context, limit, offset int) ([]models.AdminAction, int64, error) {
	return r.list(ctx, nil, limit, offset)
}

func (r *adminActionRepository) list(ctx context.Context, providerID *uint, limit, offset int) ([]models.AdminAction, int64, error) {
	if limit < 1 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	if offset < 0 {
		offset = 0
	}

	tx := readDB(r.db).WithContext(ctx).Model(&models.AdminAction{})
	if providerID != nil {
		tx = tx.Where("provider_id = ?", *providerID)
	}

	var total int64
	if err := tx.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	var actions []models.AdminAction
	err := tx.Session(&gorm.Session{}).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&actions).Error
	if err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return actions, total, nil
}
