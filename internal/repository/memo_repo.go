package repository

import (
	"context"
	"strings"

	"github.com/damoang/angple-memo/internal/common"
	"github.com/damoang/angple-memo/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// likeEscape is portable across MySQL and SQLite, unlike backslash
const likeEscape = "!"

// MemoRepository memo data access
type MemoRepository interface {
	FindByID(ctx context.Context, id uint64) (*domain.Memo, error)
	List(ctx context.Context, q domain.MemoQuery) ([]*domain.Memo, int64, error)
	Save(ctx context.Context, memo *domain.Memo, tagNames []string) error
	UpdateVisibility(ctx context.Context, id uint64, visibility domain.Visibility) error
	Delete(ctx context.Context, id uint64) error
}

type memoRepository struct {
	db *gorm.DB
}

// NewMemoRepository creates a new MemoRepository
func NewMemoRepository(db *gorm.DB) MemoRepository {
	return &memoRepository{db: db}
}

// FindByID loads a memo with its tags and, for group memos, the group memberships
func (r *memoRepository) FindByID(ctx context.Context, id uint64) (*domain.Memo, error) {
	var memo domain.Memo
	err := r.db.WithContext(ctx).
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("tags.name ASC") }).
		Preload("Group.Memberships").
		Where("id = ?", id).
		First(&memo).Error
	if err != nil {
		return nil, translateNotFound(err, common.ErrMemoNotFound)
	}
	return &memo, nil
}

// List returns one page of memos matching q and the total match count.
// q is expected to be normalized.
func (r *memoRepository) List(ctx context.Context, q domain.MemoQuery) ([]*domain.Memo, int64, error) {
	scoped := func() *gorm.DB {
		query := r.db.WithContext(ctx).Model(&domain.Memo{})
		if q.GroupID != nil {
			query = query.Where("memos.group_id = ?", *q.GroupID)
		} else {
			query = query.Where("memos.user_id = ?", q.UserID)
		}

		if q.Search != "" {
			pattern := "%" + escapeLike(strings.ToLower(q.Search)) + "%"
			query = query.Where(
				"(LOWER(memos.title) LIKE ? ESCAPE '"+likeEscape+"' OR LOWER(memos.description) LIKE ? ESCAPE '"+likeEscape+"')",
				pattern, pattern)
		}

		if len(q.Tags) > 0 {
			tagged := r.db.Table("memo_tags").
				Select("memo_tags.memo_id").
				Joins("JOIN tags ON tags.id = memo_tags.tag_id").
				Where("tags.name IN ?", q.Tags).
				Group("memo_tags.memo_id").
				Having("COUNT(DISTINCT tags.id) = ?", len(q.Tags))
			query = query.Where("memos.id IN (?)", tagged)
		}
		return query
	}

	var total int64
	if err := scoped().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var memos []*domain.Memo
	desc := q.Direction == "desc"
	err := scoped().
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("tags.name ASC") }).
		Order(clause.OrderByColumn{Column: clause.Column{Table: "memos", Name: q.Sort}, Desc: desc}).
		Order(clause.OrderByColumn{Column: clause.Column{Table: "memos", Name: "id"}, Desc: desc}).
		Offset(q.Offset()).
		Limit(q.PerPage).
		Find(&memos).Error
	if err != nil {
		return nil, 0, err
	}
	return memos, total, nil
}

// Save creates or updates memo and replaces its tag set in one transaction
func (r *memoRepository) Save(ctx context.Context, memo *domain.Memo, tagNames []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tags, err := findOrCreateTags(tx, tagNames)
		if err != nil {
			return err
		}

		if memo.ID == 0 {
			err = tx.Omit(clause.Associations).Create(memo).Error
		} else {
			err = tx.Omit(clause.Associations).Save(memo).Error
		}
		if err != nil {
			return err
		}

		if err := tx.Where("memo_id = ?", memo.ID).Delete(&domain.MemoTag{}).Error; err != nil {
			return err
		}
		if len(tags) > 0 {
			links := make([]domain.MemoTag, 0, len(tags))
			for _, t := range tags {
				links = append(links, domain.MemoTag{MemoID: memo.ID, TagID: t.ID})
			}
			if err := tx.Create(&links).Error; err != nil {
				return err
			}
		}
		memo.Tags = tags
		return nil
	})
}

func (r *memoRepository) UpdateVisibility(ctx context.Context, id uint64, visibility domain.Visibility) error {
	result := r.db.WithContext(ctx).Model(&domain.Memo{}).Where("id = ?", id).Update("visibility", visibility)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return common.ErrMemoNotFound
	}
	return nil
}

func (r *memoRepository) Delete(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("memo_id = ?", id).Delete(&domain.MemoTag{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&domain.Memo{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return common.ErrMemoNotFound
		}
		return nil
	})
}

func escapeLike(s string) string {
	return strings.NewReplacer(
		likeEscape, likeEscape+likeEscape,
		"%", likeEscape+"%",
		"_", likeEscape+"_",
	).Replace(s)
}
