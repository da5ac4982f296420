package migration

import (
	"fmt"

	"github.com/damoang/angple-memo/internal/domain"
	"github.com/damoang/angple-memo/pkg/logger"
	"gorm.io/gorm"
)

// Models lists every table owned by the service, in dependency order
func Models() []interface{} {
	return []interface{}{
		&domain.User{},
		&domain.Session{},
		&domain.Profile{},
		&domain.Group{},
		&domain.UserGroup{},
		&domain.Tag{},
		&domain.Memo{},
		&domain.MemoTag{},
		&domain.Invitation{},
	}
}

// Run creates or updates all tables. Safe to run repeatedly.
func Run(db *gorm.DB) error {
	// memo_tags carries its own unique index, so register it before migrating Memo
	if err := db.SetupJoinTable(&domain.Memo{}, "Tags", &domain.MemoTag{}); err != nil {
		return fmt.Errorf("setup memo_tags join table: %w", err)
	}

	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	logger.Info("[Migration] %d tables up to date", len(Models()))
	return nil
}
