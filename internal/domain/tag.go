package domain

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// DefaultTagColor is assigned to tags created without a color
const DefaultTagColor = "#6c757d"

// MaxTagNameLength bounds Tag.Name
const MaxTagNameLength = 50

var tagColorPattern = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// Tag is a label shared across memos; names are stored lowercased
type Tag struct {
	ID          uint64  `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Name        string  `gorm:"column:name;type:varchar(50);uniqueIndex;not null" json:"name"`
	Color       string  `gorm:"column:color;type:varchar(7);not null;default:'#6c757d'" json:"color"`
	Description *string `gorm:"column:description;type:varchar(255)" json:"description,omitempty"`
}

// TableName returns the table name
func (Tag) TableName() string { return "tags" }

// MemoTag joins memos and tags
type MemoTag struct {
	MemoID uint64 `gorm:"column:memo_id;primaryKey;uniqueIndex:idx_memo_tag,priority:1"`
	TagID  uint64 `gorm:"column:tag_id;primaryKey;uniqueIndex:idx_memo_tag,priority:2;index"`
}

// TableName returns the table name
func (MemoTag) TableName() string { return "memo_tags" }

// TagCount is a tag with the number of the caller's memos carrying it
type TagCount struct {
	Tag
	MemoCount int64 `gorm:"column:memo_count" json:"memo_count"`
}

// NormalizeTagName trims and lowercases a tag name
func NormalizeTagName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// ValidTagColor reports whether color is a #RGB or #RRGGBB hex value
func ValidTagColor(color string) bool {
	return tagColorPattern.MatchString(color)
}

// ParseTagList splits a comma-separated tag string into normalized, unique,
// non-empty names in first-seen order. Over-length names are kept; see LongTagName.
func ParseTagList(raw string) []string {
	seen := make(map[string]struct{})
	names := []string{}
	for _, part := range strings.Split(raw, ",") {
		name := NormalizeTagName(part)
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names
}

// LongTagName returns the first name exceeding MaxTagNameLength, or "" if none does
func LongTagName(names []string) string {
	for _, name := range names {
		if utf8.RuneCountInString(name) > MaxTagNameLength {
			return name
		}
	}
	return ""
}
