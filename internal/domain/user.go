package domain

import "time"

// Theme values accepted for User.Theme
const (
	ThemeLight  = "light"
	ThemeDark   = "dark"
	ThemeSystem = "system"
)

// User is a local account. Email is stored lowercased so the unique index
// is effectively case-insensitive.
type User struct {
	ID                uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Name              string    `gorm:"column:name;type:varchar(100)" json:"name"`
	Email             string    `gorm:"column:email;type:varchar(255);uniqueIndex" json:"email"`
	PasswordHash      string    `gorm:"column:password_hash;type:varchar(255)" json:"-"`
	Theme             string    `gorm:"column:theme;type:varchar(20);default:system" json:"theme"`
	Font              string    `gorm:"column:font;type:varchar(50);default:default" json:"font"`
	KeyboardShortcuts bool      `gorm:"column:keyboard_shortcuts;default:true" json:"keyboard_shortcuts"`
	CreatedAt         time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// TableName returns the table name
func (User) TableName() string { return "users" }

// HasPassword reports whether the account can log in with a password
func (u *User) HasPassword() bool {
	return u.PasswordHash != ""
}

// SignupRequest represents a registration request
type SignupRequest struct {
	Name     string `json:"name" binding:"required,max=100"`
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=8,max=72"`
}

// LoginRequest represents a password login request
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// SettingsRequest updates display preferences; nil fields are left untouched
type SettingsRequest struct {
	Theme             *string `json:"theme" binding:"omitempty,oneof=light dark system"`
	Font              *string `json:"font" binding:"omitempty,min=1,max=50"`
	KeyboardShortcuts *bool   `json:"keyboard_shortcuts"`
}
