package service

import (
	"context"
	"fmt"

	"github.com/damoang/angple-memo/internal/common"
	"github.com/damoang/angple-memo/internal/domain"
	"github.com/damoang/angple-memo/internal/repository"
)

// UserService handles the current user's account
type UserService struct {
	userRepo repository.UserRepository
}

// NewUserService creates a new UserService
func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// Me returns the stored user record
func (s *UserService) Me(ctx context.Context, userID uint64) (*domain.User, error) {
	return s.userRepo.FindByID(ctx, userID)
}

// UpdateSettings applies the non-nil fields of req
func (s *UserService) UpdateSettings(ctx context.Context, userID uint64, req *domain.SettingsRequest) (*domain.User, error) {
	updates := map[string]interface{}{}
	if req.Theme != nil {
		switch *req.Theme {
		case domain.ThemeLight, domain.ThemeDark, domain.ThemeSystem:
		default:
			return nil, common.NewFieldError("theme", "must be one of light dark system")
		}
		updates["theme"] = *req.Theme
	}
	if req.Font != nil {
		updates["font"] = *req.Font
	}
	if req.KeyboardShortcuts != nil {
		updates["keyboard_shortcuts"] = *req.KeyboardShortcuts
	}
	if len(updates) > 0 {
		if err := s.userRepo.UpdateSettings(ctx, userID, updates); err != nil {
			return nil, fmt.Errorf("update settings: %w", err)
		}
	}
	return s.userRepo.FindByID(ctx, userID)
}

// Delete removes the account. Owned groups must be deleted first.
func (s *UserService) Delete(ctx context.Context, userID uint64) error {
	return s.userRepo.Delete(ctx, userID)
}
