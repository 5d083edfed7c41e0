package repository

import (
	"context"
	"errors"
	"time"

	"github.com/abdanbarkaath/marketlink/internal/cache"
	"github.com/abdanbarkaath/marketlink/internal/models"

	"gorm.io/gorm"
)

// SessionRepository defines persistence operations for login sessions.
type SessionRepository interface {
	GetByToken(ctx context.Context, token string) (*models.Session, error)
	Create(ctx context.Context, session *models.Session) error
	Delete(ctx context.Context, token string) error
	DeleteForUser(ctx context.Context, userID uint) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type sessionRepository struct {
	db *gorm.DB
}

// NewSessionRepository returns a new SessionRepository implementation.
func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) GetByToken(ctx context.Context, token string) (*models.Session, error) {
	var session models.Session
	key := cache.SessionKey(token)

	err := cache.Aside(ctx, key, &session, cache.SessionTTL, func() error {
		err := readDB(r.db).WithContext(ctx).Where("token = ?", token).First(&session).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewUnauthorizedError("Invalid or expired session")
			}
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *sessionRepository) Create(ctx context.Context, session *models.Session) error {
	if err := r.db.WithContext(ctx).Create(session).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *sessionRepository) Delete(ctx context.Context, token string) error {
	if err := r.db.WithContext(ctx).Where("token = ?", token).Delete(&models.Session{}).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateSession(ctx, token)
	return nil
}

// DeleteForUser revokes every session belonging to a user. Cached copies
// expire on their own short TTL.
func (r *sessionRepository) DeleteForUser(ctx context.Context, userID uint) error {
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.Session{}).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *sessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Where("expires_at < ?", now).Delete(&models.Session{})
	if res.Error != nil {
		return 0, models.NewInternalError(res.Error)
	}
	return res.RowsAffected, nil
}
