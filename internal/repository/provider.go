package repository

import (
	"context"
	"errors"

	"github.com/abdanbarkaath/marketlink/internal/cache"
	"github.com/abdanbarkaath/marketlink/internal/models"
	"github.com/abdanbarkaath/marketlink/internal/observability"

	"gorm.io/gorm"
)

// ProviderRepository defines persistence operations for providers.
type ProviderRepository interface {
	List(ctx context.Context, q ProviderListQuery) (*ProviderPage, error)
	GetByID(ctx context.Context, id uint) (*models.Provider, error)
	GetBySlug(ctx context.Context, slug string) (*models.Provider, error)
	GetByOwnerUserID(ctx context.Context, userID uint) (*models.Provider, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	Create(ctx context.Context, provider *models.Provider) error
	Update(ctx context.Context, provider *models.Provider) error
	ReplaceServices(ctx context.Context, providerID uint, names []string) error
}

type providerRepository struct {
	db *gorm.DB
}

// NewProviderRepository returns a new ProviderRepository implementation.
func NewProviderRepository(db *gorm.DB) ProviderRepository {
	return &providerRepository{db: db}
}

// List runs a listing query and returns one page of providers plus the total
// match count. The count is taken over the same filter scope before
// pagination, so meta stays correct on out-of-range pages. The unfiltered
// first public page is the hottest read and goes through the cache; every
// provider mutation invalidates it.
func (r *providerRepository) List(ctx context.Context, q ProviderListQuery) (*ProviderPage, error) {
	defer observability.TrackListingQuery()()
	q = q.Normalize()

	if q.isFrontPage() {
		var page ProviderPage
		err := cache.Aside(ctx, cache.ListingFrontPage, &page, cache.ListingTTL, func() error {
			filled, fillErr := r.list(ctx, q)
			if fillErr != nil {
				return fillErr
			}
			page = *filled
			return nil
		})
		if err != nil {
			return nil, err
		}
		return &page, nil
	}
	return r.list(ctx, q)
}

func (r *providerRepository) list(ctx context.Context, q ProviderListQuery) (*ProviderPage, error) {
	base := q.scope(readDB(r.db).WithContext(ctx).Model(&models.Provider{}))

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	var providers []models.Provider
	err := base.Session(&gorm.Session{}).
		Preload("Services").
		Order(q.orderClause()).
		Limit(q.Limit).
		Offset((q.Page - 1) * q.Limit).
		Find(&providers).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	return &ProviderPage{
		Providers: providers,
		Total:     total,
		Page:      q.Page,
		Limit:     q.Limit,
		Sort:      q.Sort,
		Order:     q.Order,
	}, nil
}

func (r *providerRepository) GetByID(ctx context.Context, id uint) (*models.Provider, error) {
	var provider models.Provider
	err := readDB(r.db).WithContext(ctx).
		Preload("Services").
		First(&provider, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Provider", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &provider, nil
}

func (r *providerRepository) GetBySlug(ctx context.Context, slug string) (*models.Provider, error) {
	var provider models.Provider
	key := cache.ProviderKey(slug)

	err := cache.Aside(ctx, key, &provider, cache.ProviderTTL, func() error {
		err := readDB(r.db).WithContext(ctx).
			Preload("Services").
			Where("slug = ?", slug).
			First(&provider).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Provider", slug)
			}
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &provider, nil
}

func (r *providerRepository) GetByOwnerUserID(ctx context.Context, userID uint) (*models.Provider, error) {
	var provider models.Provider
	err := readDB(r.db).WithContext(ctx).
		Preload("Services").
		Where("owner_user_id = ?", userID).
		First(&provider).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &provider, nil
}

func (r *providerRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var count int64
	err := readDB(r.db).WithContext(ctx).
		Model(&models.Provider{}).
		Where("slug = ?", slug).
		Count(&count).Error
	if err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *providerRepository) Create(ctx context.Context, provider *models.Provider) error {
	if err := r.db.WithContext(ctx).Create(provider).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("Provider with this slug or email already exists")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *providerRepository) Update(ctx context.Context, provider *models.Provider) error {
	if err := r.db.WithContext(ctx).Save(provider).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("Provider with this slug or email already exists")
		}
		return models.NewInternalError(err)
	}
	cache.InvalidateProvider(ctx, provider.Slug)
	cache.InvalidateListing(ctx)
	return nil
}

// ReplaceServices swaps a provider's full service tag set in one transaction.
func (r *providerRepository) ReplaceServices(ctx context.Context, providerID uint, names []string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("provider_id = ?", providerID).Delete(&models.ProviderService{}).Error; err != nil {
			return err
		}
		for _, name := range names {
			svc := models.ProviderService{ProviderID: providerID, Name: name}
			if err := tx.Create(&svc).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateListing(ctx)
	return nil
}
