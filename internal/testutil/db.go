// Package testutil provides shared fixtures for package tests.
package testutil

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/damoang/angple-memo/internal/domain"
	"github.com/damoang/angple-memo/internal/migration"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var dbSeq atomic.Int64

// NewDB opens a migrated, isolated in-memory SQLite database. A single
// connection is shared so transactions from concurrent goroutines serialize.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_", "#", "_", "?", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, dbSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, migration.Run(db))
	return db
}

// CreateUser inserts a user with the given email
func CreateUser(t testing.TB, db *gorm.DB, name, email string) *domain.User {
	t.Helper()
	user := &domain.User{Name: name, Email: email, Theme: domain.ThemeSystem, Font: "default", KeyboardShortcuts: true}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreateGroup inserts a group owned by owner, with the owner membership row
func CreateGroup(t testing.TB, db *gorm.DB, owner *domain.User, name string) *domain.Group {
	t.Helper()
	group := &domain.Group{Name: name, OwnerID: owner.ID}
	require.NoError(t, db.Create(group).Error)
	require.NoError(t, db.Create(&domain.UserGroup{UserID: owner.ID, GroupID: group.ID, Role: domain.RoleOwner}).Error)
	return group
}

// AddMember inserts a membership row
func AddMember(t testing.TB, db *gorm.DB, group *domain.Group, user *domain.User, role domain.Role) {
	t.Helper()
	require.NoError(t, db.Create(&domain.UserGroup{UserID: user.ID, GroupID: group.ID, Role: role}).Error)
}
