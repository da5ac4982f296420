package repository

import (
	"context"
	"time"

	"github.com/damoang/angple-memo/internal/common"
	"github.com/damoang/angple-memo/internal/domain"
	"gorm.io/gorm"
)

// purgeBatchSize bounds a single expired-session delete
const purgeBatchSize = 1000

// SessionRepository legacy session data access
type SessionRepository interface {
	Create(ctx context.Context, session *domain.Session) error
	FindByToken(ctx context.Context, token string) (*domain.Session, error)
	TokenExists(ctx context.Context, token string) (bool, error)
	DeleteByToken(ctx context.Context, token string) (bool, error)
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}

type sessionRepository struct {
	db *gorm.DB
}

// NewSessionRepository creates a new SessionRepository
func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Create(ctx context.Context, session *domain.Session) error {
	return r.db.WithContext(ctx).Create(session).Error
}

// FindByToken returns the session with its user; expiry is left to the caller
func (r *sessionRepository) FindByToken(ctx context.Context, token string) (*domain.Session, error) {
	var session domain.Session
	err := r.db.WithContext(ctx).Preload("User").Where("token = ?", token).First(&session).Error
	if err != nil {
		return nil, translateNotFound(err, common.ErrInvalidToken)
	}
	if session.User == nil {
		return nil, common.ErrInvalidToken
	}
	return &session, nil
}

func (r *sessionRepository) TokenExists(ctx context.Context, token string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Session{}).Where("token = ?", token).Count(&count).Error
	return count > 0, err
}

// DeleteByToken deletes exactly the session carrying token
func (r *sessionRepository) DeleteByToken(ctx context.Context, token string) (bool, error) {
	result := r.db.WithContext(ctx).Where("token = ?", token).Delete(&domain.Session{})
	return result.RowsAffected > 0, result.Error
}

// PurgeExpired deletes sessions with expires_at <= now in batches
func (r *sessionRepository) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	var total int64
	for {
		var ids []uint64
		err := r.db.WithContext(ctx).Model(&domain.Session{}).
			Where("expires_at <= ?", now).
			Limit(purgeBatchSize).
			Pluck("id", &ids).Error
		if err != nil {
			return total, err
		}
		if len(ids) == 0 {
			return total, nil
		}
		result := r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&domain.Session{})
		if result.Error != nil {
			return total, result.Error
		}
		total += result.RowsAffected
		if len(ids) < purgeBatchSize {
			return total, nil
		}
	}
}
