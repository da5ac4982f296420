package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/damoang/angple-memo/internal/common"
	"github.com/damoang/angple-memo/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProfileRepository identity-provider profile data access
type ProfileRepository interface {
	FindByProviderUserID(ctx context.Context, providerUserID string) (*domain.Profile, error)
	Provision(ctx context.Context, pu *domain.ProviderUser, now time.Time) (*domain.Profile, *domain.User, error)
}

type profileRepository struct {
	db *gorm.DB
}

// NewProfileRepository creates a new ProfileRepository
func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) FindByProviderUserID(ctx context.Context, providerUserID string) (*domain.Profile, error) {
	var profile domain.Profile
	err := r.db.WithContext(ctx).Where("provider_user_id = ?", providerUserID).First(&profile).Error
	if err != nil {
		return nil, translateNotFound(err, common.ErrNotProvisioned)
	}
	return &profile, nil
}

// Provision finds or creates the profile for pu and maps it onto a local user:
// the already linked user, an existing user with the same email, or a new one.
func (r *profileRepository) Provision(ctx context.Context, pu *domain.ProviderUser, now time.Time) (*domain.Profile, *domain.User, error) {
	var profile domain.Profile
	var user domain.User
	email := strings.ToLower(strings.TrimSpace(pu.Email))

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// concurrent first logins race on provider_user_id; the loser reads the winner's row
		seed := domain.Profile{ProviderUserID: pu.ID, Email: email}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "provider_user_id"}},
			DoNothing: true,
		}).Create(&seed).Error; err != nil {
			return err
		}
		if err := tx.Where("provider_user_id = ?", pu.ID).First(&profile).Error; err != nil {
			return err
		}

		if err := r.resolveUser(tx, &profile, pu, email, &user); err != nil {
			return err
		}

		profile.UserID = user.ID
		profile.Email = email
		profile.DisplayName = pu.DisplayName()
		profile.AvatarURL = pu.AvatarURL()
		profile.LastSignInAt = &now
		return tx.Save(&profile).Error
	})
	if err != nil {
		return nil, nil, err
	}
	return &profile, &user, nil
}

func (r *profileRepository) resolveUser(tx *gorm.DB, profile *domain.Profile, pu *domain.ProviderUser, email string, user *domain.User) error {
	if profile.UserID != 0 {
		err := tx.Where("id = ?", profile.UserID).First(user).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		// linked user was removed; fall through and remap
	}

	if email != "" {
		err := tx.Where("email = ?", email).First(user).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
	}

	*user = domain.User{
		Name:              pu.DisplayName(),
		Email:             email,
		Theme:             domain.ThemeSystem,
		Font:              "default",
		KeyboardShortcuts: true,
	}
	if user.Email == "" {
		// users.email is unique; keep provider-only accounts distinct
		user.Email = pu.ID + "@users.noreply"
	}
	return tx.Create(user).Error
}
