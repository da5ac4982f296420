package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/damoang/angple-memo/internal/common"
	"github.com/damoang/angple-memo/internal/domain"
	"github.com/damoang/angple-memo/internal/repository"
)

// MemoService handles memo business logic
type MemoService struct {
	memoRepo  repository.MemoRepository
	groupRepo repository.GroupRepository
	tagRepo   repository.TagRepository
}

// NewMemoService creates a new MemoService
func NewMemoService(memoRepo repository.MemoRepository, groupRepo repository.GroupRepository, tagRepo repository.TagRepository) *MemoService {
	return &MemoService{
		memoRepo:  memoRepo,
		groupRepo: groupRepo,
		tagRepo:   tagRepo,
	}
}

// viewableGroup loads the group and requires user to be its owner or a member
func (s *MemoService) viewableGroup(ctx context.Context, groupID uint64, user *domain.User) (*domain.Group, error) {
	group, err := s.groupRepo.FindByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !group.CanView(user.ID) {
		return nil, common.ErrForbidden
	}
	return group, nil
}

// List returns the caller's memos, or one group's memos when q.GroupID is set
func (s *MemoService) List(ctx context.Context, user *domain.User, q domain.MemoQuery) ([]*domain.Memo, int64, domain.MemoQuery, error) {
	q.UserID = user.ID
	q.Normalize()
	if q.GroupID != nil {
		if _, err := s.viewableGroup(ctx, *q.GroupID, user); err != nil {
			return nil, 0, q, err
		}
	}
	memos, total, err := s.memoRepo.List(ctx, q)
	if err != nil {
		return nil, 0, q, fmt.Errorf("list memos: %w", err)
	}
	return memos, total, q, nil
}

// Search is List with a mandatory search term
func (s *MemoService) Search(ctx context.Context, user *domain.User, q domain.MemoQuery) ([]*domain.Memo, int64, domain.MemoQuery, error) {
	if strings.TrimSpace(q.Search) == "" {
		return nil, 0, q, common.NewFieldError("q", "is required")
	}
	return s.List(ctx, user, q)
}

// Get returns a memo visible to user; user is nil for anonymous callers
func (s *MemoService) Get(ctx context.Context, id uint64, user *domain.User) (*domain.Memo, error) {
	memo, err := s.memoRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !memo.ViewableBy(user) {
		if user == nil {
			return nil, common.ErrMemoNotFound
		}
		return nil, common.ErrForbidden
	}
	return memo, nil
}

// Create validates and stores a memo with its tags in one transaction
func (s *MemoService) Create(ctx context.Context, user *domain.User, req *domain.MemoRequest) (*domain.Memo, error) {
	memo := &domain.Memo{
		UserID:      user.ID,
		Title:       req.Title,
		Description: req.Description,
		Visibility:  domain.VisibilityPrivate,
	}
	if req.Visibility != "" {
		v, err := domain.ParseVisibility(req.Visibility)
		if err != nil {
			return nil, common.NewFieldError("visibility", "is invalid")
		}
		memo.Visibility = v
	}
	if req.GroupID != nil {
		if _, err := s.viewableGroup(ctx, *req.GroupID, user); err != nil {
			return nil, err
		}
		memo.GroupID = req.GroupID
	}

	tags, err := parseMemoTags(req.Tags)
	if err != nil {
		return nil, err
	}
	if err := memo.Validate(len(tags)); err != nil {
		return nil, err
	}
	if err := s.memoRepo.Save(ctx, memo, tags); err != nil {
		return nil, fmt.Errorf("create memo: %w", err)
	}
	return s.memoRepo.FindByID(ctx, memo.ID)
}

// Update replaces title, description, visibility and tags. A nil group_id keeps the current group.
func (s *MemoService) Update(ctx context.Context, id uint64, user *domain.User, req *domain.MemoRequest) (*domain.Memo, error) {
	memo, err := s.memoRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !memo.AccessibleBy(user) {
		return nil, common.ErrForbidden
	}

	memo.Title = req.Title
	memo.Description = req.Description
	if req.Visibility != "" {
		v, err := domain.ParseVisibility(req.Visibility)
		if err != nil {
			return nil, common.NewFieldError("visibility", "is invalid")
		}
		memo.Visibility = v
	}
	if req.GroupID != nil && (memo.GroupID == nil || *memo.GroupID != *req.GroupID) {
		if _, err := s.viewableGroup(ctx, *req.GroupID, user); err != nil {
			return nil, err
		}
		memo.GroupID = req.GroupID
	}
	memo.Group = nil

	tags, err := parseMemoTags(req.Tags)
	if err != nil {
		return nil, err
	}
	if err := memo.Validate(len(tags)); err != nil {
		return nil, err
	}
	if err := s.memoRepo.Save(ctx, memo, tags); err != nil {
		return nil, fmt.Errorf("update memo: %w", err)
	}
	return s.memoRepo.FindByID(ctx, memo.ID)
}

// SetVisibility changes only the visibility of a memo
func (s *MemoService) SetVisibility(ctx context.Context, id uint64, user *domain.User, visibility string) (*domain.Memo, error) {
	v, err := domain.ParseVisibility(visibility)
	if err != nil {
		return nil, common.NewFieldError("visibility", "is invalid")
	}
	memo, err := s.memoRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !memo.AccessibleBy(user) {
		return nil, common.ErrForbidden
	}
	if err := s.memoRepo.UpdateVisibility(ctx, id, v); err != nil {
		return nil, fmt.Errorf("update visibility: %w", err)
	}
	memo.Visibility = v
	return memo, nil
}

// Delete removes a memo. Allowed for the author and for managers of the memo's group.
func (s *MemoService) Delete(ctx context.Context, id uint64, user *domain.User) error {
	memo, err := s.memoRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	allowed := memo.UserID == user.ID || (memo.Group != nil && memo.Group.CanManage(user.ID))
	if !allowed {
		return common.ErrForbidden
	}
	if err := s.memoRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, common.ErrMemoNotFound) {
			return err
		}
		return fmt.Errorf("delete memo: %w", err)
	}
	return nil
}

// Tags lists the tags on the caller's memos with usage counts
func (s *MemoService) Tags(ctx context.Context, user *domain.User) ([]domain.TagCount, error) {
	return s.tagRepo.ListForUser(ctx, user.ID)
}

func parseMemoTags(raw string) ([]string, error) {
	tags := domain.ParseTagList(raw)
	if name := domain.LongTagName(tags); name != "" {
		return nil, common.NewFieldError("tags", fmt.Sprintf("%q exceeds %d characters", name, domain.MaxTagNameLength))
	}
	return tags, nil
}
