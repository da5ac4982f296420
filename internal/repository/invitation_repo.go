package repository

import (
	"context"
	"errors"
	"time"

	"github.com/damoang/angple-memo/internal/common"
	"github.com/damoang/angple-memo/internal/domain"
	"github.com/damoang/angple-memo/pkg/logger"
	"gorm.io/gorm"
)

var errNotAccepted = errors.New("invitation not accepted")

// InvitationRepository invitation data access
type InvitationRepository interface {
	Create(ctx context.Context, inv *domain.Invitation) error
	TokenExists(ctx context.Context, token string) (bool, error)
	FindByID(ctx context.Context, id uint64) (*domain.Invitation, error)
	FindByToken(ctx context.Context, token string) (*domain.Invitation, error)
	ListPending(ctx context.Context, groupID uint64, now time.Time) ([]*domain.Invitation, error)
	Delete(ctx context.Context, id uint64) error
	Accept(ctx context.Context, inv *domain.Invitation, userID uint64, now time.Time) bool
}

type invitationRepository struct {
	db *gorm.DB
}

// NewInvitationRepository creates a new InvitationRepository
func NewInvitationRepository(db *gorm.DB) InvitationRepository {
	return &invitationRepository{db: db}
}

func (r *invitationRepository) Create(ctx context.Context, inv *domain.Invitation) error {
	return r.db.WithContext(ctx).Omit("Group").Create(inv).Error
}

func (r *invitationRepository) TokenExists(ctx context.Context, token string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Invitation{}).Where("token = ?", token).Count(&count).Error
	return count > 0, err
}

func (r *invitationRepository) FindByID(ctx context.Context, id uint64) (*domain.Invitation, error) {
	var inv domain.Invitation
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&inv).Error; err != nil {
		return nil, translateNotFound(err, common.ErrInvitationNotFound)
	}
	return &inv, nil
}

func (r *invitationRepository) FindByToken(ctx context.Context, token string) (*domain.Invitation, error) {
	var inv domain.Invitation
	if err := r.db.WithContext(ctx).Preload("Group").Where("token = ?", token).First(&inv).Error; err != nil {
		return nil, translateNotFound(err, common.ErrInvitationNotFound)
	}
	return &inv, nil
}

func (r *invitationRepository) ListPending(ctx context.Context, groupID uint64, now time.Time) ([]*domain.Invitation, error) {
	var invs []*domain.Invitation
	err := r.db.WithContext(ctx).
		Where("group_id = ? AND accepted_at IS NULL AND expires_at > ?", groupID, now).
		Order("created_at DESC, id DESC").
		Find(&invs).Error
	return invs, err
}

func (r *invitationRepository) Delete(ctx context.Context, id uint64) error {
	result := r.db.WithContext(ctx).Delete(&domain.Invitation{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return common.ErrInvitationNotFound
	}
	return nil
}

// Accept stamps accepted_at and inserts the membership atomically. It returns
// false, leaving nothing changed, when the invitation is already accepted or
// expired, or when the membership cannot be inserted (e.g. the user already
// belongs to the group).
func (r *invitationRepository) Accept(ctx context.Context, inv *domain.Invitation, userID uint64, now time.Time) bool {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&domain.Invitation{}).
			Where("id = ? AND accepted_at IS NULL AND expires_at > ?", inv.ID, now).
			Updates(map[string]interface{}{"accepted_at": now, "invited_user_id": userID})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return errNotAccepted
		}
		role := inv.Role
		if role == domain.RoleOwner {
			role = domain.RoleMember
		}
		membership := domain.UserGroup{UserID: userID, GroupID: inv.GroupID, Role: role}
		return tx.Create(&membership).Error
	})
	if err != nil {
		if !errors.Is(err, errNotAccepted) && !IsUniqueViolation(err) {
			logger.Warn("invitation %d accept rolled back: %v", inv.ID, err)
		}
		return false
	}
	inv.AcceptedAt = &now
	inv.InvitedUserID = &userID
	return true
}
