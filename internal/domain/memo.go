package domain

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/damoang/angple-memo/internal/common"
)

// Visibility of a memo
type Visibility int

const (
	VisibilityPrivate Visibility = iota // private_memo
	VisibilityPublic                    // public_memo
	VisibilityShared                    // shared
)

var visibilityNames = map[Visibility]string{
	VisibilityPrivate: "private_memo",
	VisibilityPublic:  "public_memo",
	VisibilityShared:  "shared",
}

// ParseVisibility accepts the enum names plus the short forms "private" and "public"
func ParseVisibility(s string) (Visibility, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "private_memo", "private":
		return VisibilityPrivate, nil
	case "public_memo", "public":
		return VisibilityPublic, nil
	case "shared":
		return VisibilityShared, nil
	}
	return VisibilityPrivate, fmt.Errorf("unknown visibility %q", s)
}

func (v Visibility) String() string {
	if name, ok := visibilityNames[v]; ok {
		return name
	}
	return fmt.Sprintf("visibility(%d)", int(v))
}

// MarshalText implements encoding.TextMarshaler
func (v Visibility) MarshalText() ([]byte, error) {
	if _, ok := visibilityNames[v]; !ok {
		return nil, fmt.Errorf("invalid visibility %d", int(v))
	}
	return []byte(v.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (v *Visibility) UnmarshalText(text []byte) error {
	parsed, err := ParseVisibility(string(text))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// Field limits
const (
	MaxTitleLength       = 255
	MaxDescriptionLength = 10000
)

// Memo is a user-authored note, optionally owned by a group
type Memo struct {
	ID          uint64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	UserID      uint64     `gorm:"column:user_id;index;not null" json:"user_id"`
	GroupID     *uint64    `gorm:"column:group_id;index" json:"group_id,omitempty"`
	Title       *string    `gorm:"column:title;type:varchar(255)" json:"title"`
	Description *string    `gorm:"column:description;type:text" json:"description"`
	Visibility  Visibility `gorm:"column:visibility;not null;default:0" json:"visibility"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`

	Group *Group `gorm:"foreignKey:GroupID" json:"-"`
	Tags  []Tag  `gorm:"many2many:memo_tags;joinForeignKey:MemoID;joinReferences:TagID" json:"tags"`
}

// TableName returns the table name
func (Memo) TableName() string { return "memos" }

// IsPublic reports whether anyone may view the memo
func (m *Memo) IsPublic() bool {
	return m.Visibility == VisibilityPublic
}

// Validate checks field limits and the title/description presence rule.
// A memo with neither title nor description is accepted only when tagCount > 0;
// blank fields are normalized to nil in place.
func (m *Memo) Validate(tagCount int) error {
	m.Title = blankToNil(m.Title)
	m.Description = blankToNil(m.Description)

	if m.Title != nil && len([]rune(*m.Title)) > MaxTitleLength {
		return common.NewFieldError("title", fmt.Sprintf("must be at most %d characters", MaxTitleLength))
	}
	if m.Description != nil && len([]rune(*m.Description)) > MaxDescriptionLength {
		return common.NewFieldError("description", fmt.Sprintf("must be at most %d characters", MaxDescriptionLength))
	}
	if m.Title == nil && m.Description == nil && tagCount == 0 {
		return common.ErrMemoEmpty
	}
	if _, ok := visibilityNames[m.Visibility]; !ok {
		return common.NewFieldError("visibility", "is invalid")
	}
	return nil
}

// AccessibleBy reports whether user may read and edit the memo: the author,
// or for a group memo the group owner or a member. Group memberships must be preloaded.
func (m *Memo) AccessibleBy(user *User) bool {
	if user == nil {
		return false
	}
	if m.UserID == user.ID {
		return true
	}
	if m.GroupID == nil || m.Group == nil {
		return false
	}
	return m.Group.OwnerID == user.ID || m.Group.IsMember(user.ID)
}

// ViewableBy reports whether user (nil for anonymous) may read the memo.
// Shared visibility grants nothing beyond AccessibleBy.
func (m *Memo) ViewableBy(user *User) bool {
	if m.IsPublic() {
		return true
	}
	if user == nil {
		return false
	}
	if m.UserID == user.ID {
		return true
	}
	return m.AccessibleBy(user)
}

// TagNames returns the names of the loaded tags
func (m *Memo) TagNames() []string {
	names := make([]string, 0, len(m.Tags))
	for _, t := range m.Tags {
		names = append(names, t.Name)
	}
	return names
}

func blankToNil(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	return s
}

// MemoRequest is the body for creating or replacing a memo
type MemoRequest struct {
	Title       *string `json:"title" binding:"omitempty,max=255"`
	Description *string `json:"description" binding:"omitempty,max=10000"`
	Visibility  string  `json:"visibility" binding:"omitempty,oneof=private_memo public_memo shared private public"`
	GroupID     *uint64 `json:"group_id"`
	Tags        string  `json:"tags"` // comma-separated
}

// VisibilityRequest is the body for PATCH /memos/:id/visibility
type VisibilityRequest struct {
	Visibility string `json:"visibility" binding:"required,oneof=private_memo public_memo shared private public"`
}

// Sort keys and directions accepted by MemoQuery
const (
	SortUpdatedAt = "updated_at"
	SortCreatedAt = "created_at"
	SortTitle     = "title"

	DefaultPerPage = 20
	MaxPerPage     = 100
)

// MaxPage keeps Offset within int32 at MaxPerPage
const MaxPage = math.MaxInt32 / MaxPerPage

// MemoQuery describes a memo listing: scope, search, tag filter, sort and page
type MemoQuery struct {
	UserID    uint64
	GroupID   *uint64
	Search    string
	Tags      []string
	Sort      string
	Direction string
	Page      int
	PerPage   int
}

// Normalize applies defaults, whitelists the sort and clamps paging
func (q *MemoQuery) Normalize() {
	switch q.Sort {
	case SortUpdatedAt, SortCreatedAt, SortTitle:
	default:
		q.Sort = SortUpdatedAt
		q.Direction = "desc"
	}
	q.Direction = strings.ToLower(q.Direction)
	if q.Direction != "asc" && q.Direction != "desc" {
		q.Direction = "desc"
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Page > MaxPage {
		q.Page = MaxPage
	}
	switch {
	case q.PerPage <= 0:
		q.PerPage = DefaultPerPage
	case q.PerPage > MaxPerPage:
		q.PerPage = MaxPerPage
	}
	q.Search = strings.TrimSpace(q.Search)
	q.Tags = ParseTagList(strings.Join(q.Tags, ","))
}

// Offset returns the row offset of the current page
func (q *MemoQuery) Offset() int {
	return (q.Page - 1) * q.PerPage
}
