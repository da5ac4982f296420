package repository

import (
	"context"

	"github.com/damoang/angple-memo/internal/common"
	"github.com/damoang/angple-memo/internal/domain"
	"gorm.io/gorm"
)

// GroupRepository group and membership data access
type GroupRepository interface {
	FindByID(ctx context.Context, id uint64) (*domain.Group, error)
	ListForUser(ctx context.Context, userID uint64) ([]*domain.Group, error)
	Create(ctx context.Context, group *domain.Group) error
	Update(ctx context.Context, group *domain.Group) error
	Delete(ctx context.Context, id uint64) error
	ListMembers(ctx context.Context, groupID uint64) ([]domain.UserGroup, error)
	RemoveMember(ctx context.Context, groupID, userID uint64) (bool, error)
}

type groupRepository struct {
	db *gorm.DB
}

// NewGroupRepository creates a new GroupRepository
func NewGroupRepository(db *gorm.DB) GroupRepository {
	return &groupRepository{db: db}
}

// FindByID loads the group with its memberships
func (r *groupRepository) FindByID(ctx context.Context, id uint64) (*domain.Group, error) {
	var group domain.Group
	err := r.db.WithContext(ctx).Preload("Memberships").Where("id = ?", id).First(&group).Error
	if err != nil {
		return nil, translateNotFound(err, common.ErrGroupNotFound)
	}
	return &group, nil
}

// ListForUser returns groups the user owns or belongs to
func (r *groupRepository) ListForUser(ctx context.Context, userID uint64) ([]*domain.Group, error) {
	var groups []*domain.Group
	memberOf := r.db.Model(&domain.UserGroup{}).Select("group_id").Where("user_id = ?", userID)
	err := r.db.WithContext(ctx).
		Preload("Memberships").
		Where("owner_id = ? OR id IN (?)", userID, memberOf).
		Order("name ASC, id ASC").
		Find(&groups).Error
	return groups, err
}

// Create inserts the group and an owner membership for its creator
func (r *groupRepository) Create(ctx context.Context, group *domain.Group) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Memberships").Create(group).Error; err != nil {
			return err
		}
		owner := domain.UserGroup{UserID: group.OwnerID, GroupID: group.ID, Role: domain.RoleOwner}
		if err := tx.Create(&owner).Error; err != nil {
			return err
		}
		group.Memberships = []domain.UserGroup{owner}
		return nil
	})
}

func (r *groupRepository) Update(ctx context.Context, group *domain.Group) error {
	return r.db.WithContext(ctx).Model(group).
		Select("name", "description").
		Updates(map[string]interface{}{"name": group.Name, "description": group.Description}).Error
}

// Delete removes the group. Its memos are detached and stay with their authors.
func (r *groupRepository) Delete(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&domain.Memo{}).Where("group_id = ?", id).Update("group_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Where("group_id = ?", id).Delete(&domain.Invitation{}).Error; err != nil {
			return err
		}
		if err := tx.Where("group_id = ?", id).Delete(&domain.UserGroup{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&domain.Group{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return common.ErrGroupNotFound
		}
		return nil
	})
}

func (r *groupRepository) ListMembers(ctx context.Context, groupID uint64) ([]domain.UserGroup, error) {
	var members []domain.UserGroup
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("group_id = ?", groupID).
		Order("role DESC, id ASC").
		Find(&members).Error
	return members, err
}

func (r *groupRepository) RemoveMember(ctx context.Context, groupID, userID uint64) (bool, error) {
	result := r.db.WithContext(ctx).Where("group_id = ? AND user_id = ?", groupID, userID).Delete(&domain.UserGroup{})
	return result.RowsAffected > 0, result.Error
}
