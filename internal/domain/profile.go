package domain

import "time"

// Profile links an identity-provider account to a local User
type Profile struct {
	ID             uint64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	ProviderUserID string     `gorm:"column:provider_user_id;type:varchar(64);uniqueIndex;not null" json:"provider_user_id"`
	Email          string     `gorm:"column:email;type:varchar(255)" json:"email"`
	DisplayName    string     `gorm:"column:display_name;type:varchar(100)" json:"display_name"`
	AvatarURL      string     `gorm:"column:avatar_url;type:varchar(500)" json:"avatar_url,omitempty"`
	UserID         uint64     `gorm:"column:user_id;index" json:"user_id"`
	LastSignInAt   *time.Time `gorm:"column:last_sign_in_at" json:"last_sign_in_at,omitempty"`
	CreatedAt      time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// TableName returns the table name
func (Profile) TableName() string { return "profiles" }

// ProviderUser is the authoritative identity returned by the provider's user endpoint
type ProviderUser struct {
	ID           string                 `json:"id"`
	Email        string                 `json:"email"`
	UserMetadata map[string]interface{} `json:"user_metadata,omitempty"`
}

// DisplayName picks a display name from provider metadata, falling back to the
// local part of the email.
func (p *ProviderUser) DisplayName() string {
	for _, key := range []string{"full_name", "name", "user_name"} {
		if v, ok := p.UserMetadata[key].(string); ok && v != "" {
			return v
		}
	}
	for i := 0; i < len(p.Email); i++ {
		if p.Email[i] == '@' {
			return p.Email[:i]
		}
	}
	return p.Email
}

// AvatarURL returns the avatar from provider metadata if present
func (p *ProviderUser) AvatarURL() string {
	if v, ok := p.UserMetadata["avatar_url"].(string); ok {
		return v
	}
	return ""
}
