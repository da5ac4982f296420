package domain

import (
	"strings"
	"time"
)

// DefaultInvitationTTL is the lifetime of an invitation
const DefaultInvitationTTL = 7 * 24 * time.Hour

// InvitationState is derived from accepted_at and expires_at
type InvitationState string

const (
	InvitationPending  InvitationState = "pending"
	InvitationAccepted InvitationState = "accepted"
	InvitationExpired  InvitationState = "expired"
)

// Invitation grants an email a role in a group once accepted
type Invitation struct {
	ID            uint64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	GroupID       uint64     `gorm:"column:group_id;index;not null" json:"group_id"`
	InvitedByID   uint64     `gorm:"column:invited_by_id;not null" json:"invited_by_id"`
	InvitedUserID *uint64    `gorm:"column:invited_user_id;index" json:"invited_user_id,omitempty"`
	Email         string     `gorm:"column:email;type:varchar(255);index;not null" json:"email"`
	Token         string     `gorm:"column:token;type:varchar(64);uniqueIndex;not null" json:"-"`
	Role          Role       `gorm:"column:role;not null;default:0" json:"role"`
	ExpiresAt     time.Time  `gorm:"column:expires_at;not null" json:"expires_at"`
	AcceptedAt    *time.Time `gorm:"column:accepted_at" json:"accepted_at,omitempty"`
	CreatedAt     time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`

	Group *Group `gorm:"foreignKey:GroupID" json:"-"`
}

// TableName returns the table name
func (Invitation) TableName() string { return "invitations" }

// Accepted reports whether the invitation was accepted
func (i *Invitation) Accepted() bool {
	return i.AcceptedAt != nil
}

// Expired reports whether the invitation lapsed without being accepted.
// An invitation expiring exactly at now is expired.
func (i *Invitation) Expired(now time.Time) bool {
	return !i.Accepted() && !now.Before(i.ExpiresAt)
}

// State returns the current state at now
func (i *Invitation) State(now time.Time) InvitationState {
	switch {
	case i.Accepted():
		return InvitationAccepted
	case i.Expired(now):
		return InvitationExpired
	}
	return InvitationPending
}

// AddressedTo reports whether user is the invitee, by id or by email
func (i *Invitation) AddressedTo(user *User) bool {
	if user == nil {
		return false
	}
	if i.InvitedUserID != nil && *i.InvitedUserID == user.ID {
		return true
	}
	return strings.EqualFold(i.Email, user.Email)
}

// InvitationRequest is the body for creating an invitation
type InvitationRequest struct {
	Email string `json:"email" binding:"required,email,max=255"`
	Role  string `json:"role" binding:"omitempty,oneof=member admin"`
}

// InvitationResponse exposes the token to the inviter only
type InvitationResponse struct {
	*Invitation
	Token     string          `json:"token,omitempty"`
	State     InvitationState `json:"state"`
	AcceptURL string          `json:"accept_url,omitempty"`
}
