package service

import (
	"context"
	"testing"

	"github.com/damoang/angple-memo/internal/common"
	"github.com/damoang/angple-memo/internal/domain"
	"github.com/damoang/angple-memo/internal/repository"
	"github.com/damoang/angple-memo/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService_UpdateSettings(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	svc := NewUserService(repository.NewUserRepository(db))
	user := testutil.CreateUser(t, db, "kim", "kim@example.com")

	dark := domain.ThemeDark
	off := false
	updated, err := svc.UpdateSettings(ctx, user.ID, &domain.SettingsRequest{Theme: &dark, KeyboardShortcuts: &off})
	require.NoError(t, err)
	assert.Equal(t, domain.ThemeDark, updated.Theme)
	assert.False(t, updated.KeyboardShortcuts)
	assert.Equal(t, "default", updated.Font)

	// same values again is not an error
	_, err = svc.UpdateSettings(ctx, user.ID, &domain.SettingsRequest{Theme: &dark})
	require.NoError(t, err)

	bogus := "neon"
	_, err = svc.UpdateSettings(ctx, user.ID, &domain.SettingsRequest{Theme: &bogus})
	var verr *common.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "theme")
}

func TestUserService_DeleteRequiresNoOwnedGroups(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	svc := NewUserService(repository.NewUserRepository(db))
	owner := testutil.CreateUser(t, db, "owner", "owner@example.com")
	testutil.CreateGroup(t, db, owner, "team")

	assert.ErrorIs(t, svc.Delete(ctx, owner.ID), common.ErrConflict)

	solo := testutil.CreateUser(t, db, "solo", "solo@example.com")
	require.NoError(t, svc.Delete(ctx, solo.ID))
	_, err := svc.Me(ctx, solo.ID)
	assert.ErrorIs(t, err, common.ErrUserNotFound)
}
