package domain

import "time"

// DefaultSessionTTL is the lifetime of a legacy session
const DefaultSessionTTL = 30 * 24 * time.Hour

// Session is a legacy opaque-token session created on password login
type Session struct {
	ID        uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	UserID    uint64    `gorm:"column:user_id;index;not null" json:"user_id"`
	User      *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Token     string    `gorm:"column:token;type:varchar(128);uniqueIndex;not null" json:"-"`
	UserAgent string    `gorm:"column:user_agent;type:varchar(500)" json:"user_agent,omitempty"`
	IPAddress string    `gorm:"column:ip_address;type:varchar(45)" json:"ip_address,omitempty"`
	ExpiresAt time.Time `gorm:"column:expires_at;index" json:"expires_at"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

// TableName returns the table name
func (Session) TableName() string { return "sessions" }

// Expired reports whether the session is no longer valid at now.
// A session whose expiry equals now is already expired.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// SessionResponse is returned by login endpoints
type SessionResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      *User     `json:"user"`
}
