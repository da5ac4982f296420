package repository

import (
	"context"

	"github.com/damoang/angple-memo/internal/common"
	"github.com/damoang/angple-memo/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TagRepository tag data access
type TagRepository interface {
	FindOrCreateByName(ctx context.Context, name string) (*domain.Tag, error)
	ListForUser(ctx context.Context, userID uint64) ([]domain.TagCount, error)
}

type tagRepository struct {
	db *gorm.DB
}

// NewTagRepository creates a new TagRepository
func NewTagRepository(db *gorm.DB) TagRepository {
	return &tagRepository{db: db}
}

// FindOrCreateByName returns the tag named name, compared case-insensitively
func (r *tagRepository) FindOrCreateByName(ctx context.Context, name string) (*domain.Tag, error) {
	tags, err := findOrCreateTags(r.db.WithContext(ctx), []string{name})
	if err != nil {
		return nil, err
	}
	if len(tags) == 0 {
		return nil, common.NewFieldError("name", "is required")
	}
	return &tags[0], nil
}

// ListForUser returns the tags on the user's memos with per-tag memo counts
func (r *tagRepository) ListForUser(ctx context.Context, userID uint64) ([]domain.TagCount, error) {
	var tags []domain.TagCount
	err := r.db.WithContext(ctx).
		Table("tags").
		Select("tags.id, tags.name, tags.color, tags.description, COUNT(DISTINCT memo_tags.memo_id) AS memo_count").
		Joins("JOIN memo_tags ON memo_tags.tag_id = tags.id").
		Joins("JOIN memos ON memos.id = memo_tags.memo_id").
		Where("memos.user_id = ?", userID).
		Group("tags.id, tags.name, tags.color, tags.description").
		Order("tags.name ASC").
		Scan(&tags).Error
	return tags, err
}

// findOrCreateTags normalizes names and returns one row per distinct name, in order.
// Inserts ignore conflicts so concurrent writers converge on the same row.
func findOrCreateTags(tx *gorm.DB, names []string) ([]domain.Tag, error) {
	normalized := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		n = domain.NormalizeTagName(n)
		if n == "" {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		normalized = append(normalized, n)
	}

	tags := make([]domain.Tag, 0, len(normalized))
	for _, name := range normalized {
		seed := domain.Tag{Name: name, Color: domain.DefaultTagColor}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoNothing: true,
		}).Create(&seed).Error; err != nil {
			return nil, err
		}
		var tag domain.Tag
		if err := tx.Where("name = ?", name).First(&tag).Error; err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, nil
}
