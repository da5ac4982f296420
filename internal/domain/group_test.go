package domain

import (
	"testing"
	"time"
)

func testGroup() *Group {
	return &Group{
		ID:      1,
		OwnerID: 100,
		Memberships: []UserGroup{
			{UserID: 100, GroupID: 1, Role: RoleOwner},
			{UserID: 200, GroupID: 1, Role: RoleAdmin},
			{UserID: 300, GroupID: 1, Role: RoleMember},
		},
	}
}

func TestGroupRoleFor(t *testing.T) {
	g := testGroup()
	cases := map[uint64]string{100: "owner", 200: "admin", 300: "member", 400: ""}
	for userID, want := range cases {
		if got := g.RoleFor(userID); got != want {
			t.Errorf("RoleFor(%d) = %q, want %q", userID, got, want)
		}
	}
}

func TestGroupCanManage(t *testing.T) {
	g := testGroup()
	if !g.CanManage(100) || !g.CanManage(200) {
		t.Error("Expected owner and admin to manage")
	}
	if g.CanManage(300) || g.CanManage(400) {
		t.Error("Expected member and outsider not to manage")
	}
}

func TestGroupIsMember(t *testing.T) {
	g := testGroup()
	if !g.IsMember(300) {
		t.Error("Expected member row to count")
	}
	if g.IsMember(400) {
		t.Error("Expected outsider not to be a member")
	}
	// the owner is recognized even without a membership row
	g.Memberships = nil
	if g.RoleFor(100) != "owner" || !g.CanView(100) {
		t.Error("Expected owner role from owner_id")
	}
}

func TestParseRole(t *testing.T) {
	r, err := ParseRole("admin")
	if err != nil || r != RoleAdmin {
		t.Fatalf("Expected admin, got %v (%v)", r, err)
	}
	if _, err := ParseRole("superuser"); err == nil {
		t.Error("Expected unknown role to fail")
	}
}

func TestInvitationState(t *testing.T) {
	now := time.Now().UTC()
	inv := &Invitation{ExpiresAt: now.Add(time.Hour)}
	if inv.State(now) != InvitationPending {
		t.Errorf("Expected pending, got %s", inv.State(now))
	}

	inv.ExpiresAt = now.Add(-time.Minute)
	if !inv.Expired(now) || inv.State(now) != InvitationExpired {
		t.Error("Expected expired invitation")
	}

	accepted := now.Add(-2 * time.Minute)
	inv.AcceptedAt = &accepted
	if inv.Expired(now) || inv.State(now) != InvitationAccepted {
		t.Error("Expected accepted to take precedence over expiry")
	}
}

func TestInvitationAddressedTo(t *testing.T) {
	inv := &Invitation{Email: "x@example.com"}
	if !inv.AddressedTo(&User{ID: 1, Email: "X@Example.com"}) {
		t.Error("Expected case-insensitive email match")
	}
	if inv.AddressedTo(&User{ID: 1, Email: "y@example.com"}) {
		t.Error("Expected other email to be rejected")
	}
	id := uint64(5)
	inv.InvitedUserID = &id
	if !inv.AddressedTo(&User{ID: 5, Email: "y@example.com"}) {
		t.Error("Expected invited user id to match")
	}
}

func TestProviderUserDisplayName(t *testing.T) {
	p := &ProviderUser{Email: "jo@example.com"}
	if p.DisplayName() != "jo" {
		t.Errorf("Expected email local part, got %s", p.DisplayName())
	}
	p.UserMetadata = map[string]interface{}{"full_name": "Jo Park", "avatar_url": "https://img/a.png"}
	if p.DisplayName() != "Jo Park" || p.AvatarURL() != "https://img/a.png" {
		t.Errorf("Expected metadata values, got %s %s", p.DisplayName(), p.AvatarURL())
	}
}
