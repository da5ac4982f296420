package domain

import (
	"fmt"
	"time"
)

// Role of a user inside a group
type Role int

const (
	RoleMember Role = iota
	RoleAdmin
	RoleOwner
)

var roleNames = map[Role]string{
	RoleMember: "member",
	RoleAdmin:  "admin",
	RoleOwner:  "owner",
}

// ParseRole parses a role name
func ParseRole(s string) (Role, error) {
	for r, name := range roleNames {
		if name == s {
			return r, nil
		}
	}
	return RoleMember, fmt.Errorf("unknown role %q", s)
}

func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return fmt.Sprintf("role(%d)", int(r))
}

// MarshalText implements encoding.TextMarshaler
func (r Role) MarshalText() ([]byte, error) {
	if _, ok := roleNames[r]; !ok {
		return nil, fmt.Errorf("invalid role %d", int(r))
	}
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (r *Role) UnmarshalText(text []byte) error {
	parsed, err := ParseRole(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Group is a named collection of members sharing memos
type Group struct {
	ID          uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Name        string    `gorm:"column:name;type:varchar(100);not null" json:"name"`
	Description string    `gorm:"column:description;type:varchar(500)" json:"description"`
	OwnerID     uint64    `gorm:"column:owner_id;index;not null" json:"owner_id"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`

	Memberships []UserGroup `gorm:"foreignKey:GroupID" json:"-"`
}

// TableName returns the table name
func (Group) TableName() string { return "groups" }

// UserGroup is a membership row; (user_id, group_id) is unique
type UserGroup struct {
	ID        uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	UserID    uint64    `gorm:"column:user_id;not null;uniqueIndex:idx_user_group,priority:1" json:"user_id"`
	GroupID   uint64    `gorm:"column:group_id;not null;uniqueIndex:idx_user_group,priority:2;index" json:"group_id"`
	Role      Role      `gorm:"column:role;not null;default:0" json:"role"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// TableName returns the table name
func (UserGroup) TableName() string { return "user_groups" }

func (g *Group) membership(userID uint64) *UserGroup {
	for i := range g.Memberships {
		if g.Memberships[i].UserID == userID {
			return &g.Memberships[i]
		}
	}
	return nil
}

// IsMember reports whether a membership row exists for userID
func (g *Group) IsMember(userID uint64) bool {
	return g.membership(userID) != nil
}

// RoleFor returns "owner" for the group owner, the membership role otherwise,
// or "" when the user does not belong to the group.
func (g *Group) RoleFor(userID uint64) string {
	if g.OwnerID == userID {
		return RoleOwner.String()
	}
	if m := g.membership(userID); m != nil {
		return m.Role.String()
	}
	return ""
}

// CanManage reports whether userID is the owner or an admin
func (g *Group) CanManage(userID uint64) bool {
	switch g.RoleFor(userID) {
	case "owner", "admin":
		return true
	}
	return false
}

// CanView reports whether userID is the owner or a member
func (g *Group) CanView(userID uint64) bool {
	return g.OwnerID == userID || g.IsMember(userID)
}

// GroupRequest is the body for creating or updating a group
type GroupRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=100"`
	Description string `json:"description" binding:"max=500"`
}

// GroupResponse adds the caller's role to a group
type GroupResponse struct {
	*Group
	Role        string `json:"role"`
	MemberCount int    `json:"member_count"`
}
