package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/damoang/angple-memo/internal/common"
	"github.com/damoang/angple-memo/internal/domain"
	"github.com/damoang/angple-memo/internal/repository"
)

// GroupService handles group and membership business logic
type GroupService struct {
	groupRepo repository.GroupRepository
}

// NewGroupService creates a new GroupService
func NewGroupService(groupRepo repository.GroupRepository) *GroupService {
	return &GroupService{groupRepo: groupRepo}
}

func toGroupResponse(group *domain.Group, userID uint64) *domain.GroupResponse {
	return &domain.GroupResponse{
		Group:       group,
		Role:        group.RoleFor(userID),
		MemberCount: len(group.Memberships),
	}
}

// Create makes user the owner of a new group
func (s *GroupService) Create(ctx context.Context, user *domain.User, req *domain.GroupRequest) (*domain.GroupResponse, error) {
	group := &domain.Group{
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		OwnerID:     user.ID,
	}
	if group.Name == "" {
		return nil, common.NewFieldError("name", "is required")
	}
	if err := s.groupRepo.Create(ctx, group); err != nil {
		return nil, fmt.Errorf("create group: %w", err)
	}
	created, err := s.groupRepo.FindByID(ctx, group.ID)
	if err != nil {
		return nil, err
	}
	return toGroupResponse(created, user.ID), nil
}

// List returns the groups user owns or belongs to
func (s *GroupService) List(ctx context.Context, user *domain.User) ([]*domain.GroupResponse, error) {
	groups, err := s.groupRepo.ListForUser(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	out := make([]*domain.GroupResponse, 0, len(groups))
	for _, g := range groups {
		out = append(out, toGroupResponse(g, user.ID))
	}
	return out, nil
}

// Get returns a group to its owner and members
func (s *GroupService) Get(ctx context.Context, id uint64, user *domain.User) (*domain.GroupResponse, error) {
	group, err := s.groupRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !group.CanView(user.ID) {
		return nil, common.ErrForbidden
	}
	return toGroupResponse(group, user.ID), nil
}

// Update renames a group or changes its description
func (s *GroupService) Update(ctx context.Context, id uint64, user *domain.User, req *domain.GroupRequest) (*domain.GroupResponse, error) {
	group, err := s.groupRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !group.CanManage(user.ID) {
		return nil, common.ErrForbidden
	}
	group.Name = strings.TrimSpace(req.Name)
	group.Description = strings.TrimSpace(req.Description)
	if group.Name == "" {
		return nil, common.NewFieldError("name", "is required")
	}
	if err := s.groupRepo.Update(ctx, group); err != nil {
		return nil, fmt.Errorf("update group: %w", err)
	}
	return toGroupResponse(group, user.ID), nil
}

// Delete removes a group; only the owner may do so. Group memos fall back to their authors.
func (s *GroupService) Delete(ctx context.Context, id uint64, user *domain.User) error {
	group, err := s.groupRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if group.OwnerID != user.ID {
		return common.ErrForbidden
	}
	if err := s.groupRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete group: %w", err)
	}
	return nil
}

// Members lists the memberships of a group
func (s *GroupService) Members(ctx context.Context, id uint64, user *domain.User) ([]domain.UserGroup, error) {
	group, err := s.groupRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !group.CanView(user.ID) {
		return nil, common.ErrForbidden
	}
	return s.groupRepo.ListMembers(ctx, id)
}

// RemoveMember removes target from the group. Managers may remove members,
// only the owner may remove admins and nobody can remove the owner.
func (s *GroupService) RemoveMember(ctx context.Context, id, targetID uint64, user *domain.User) error {
	group, err := s.groupRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !group.CanManage(user.ID) {
		return common.ErrForbidden
	}
	switch group.RoleFor(targetID) {
	case "":
		return common.ErrNotFound
	case domain.RoleOwner.String():
		return common.ErrConflict
	case domain.RoleAdmin.String():
		if group.OwnerID != user.ID {
			return common.ErrForbidden
		}
	}
	removed, err := s.groupRepo.RemoveMember(ctx, id, targetID)
	if err != nil {
		return fmt.Errorf("remove member: %w", err)
	}
	if !removed {
		return common.ErrNotFound
	}
	return nil
}

// Leave removes the caller's own membership; the owner cannot leave
func (s *GroupService) Leave(ctx context.Context, id uint64, user *domain.User) error {
	group, err := s.groupRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if group.OwnerID == user.ID {
		return common.ErrConflict
	}
	if !group.IsMember(user.ID) {
		return common.ErrNotFound
	}
	if _, err := s.groupRepo.RemoveMember(ctx, id, user.ID); err != nil {
		return fmt.Errorf("leave group: %w", err)
	}
	return nil
}
