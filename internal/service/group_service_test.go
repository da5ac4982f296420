package service

import (
	"context"
	"testing"

	"github.com/damoang/angple-memo/internal/common"
	"github.com/damoang/angple-memo/internal/domain"
	"github.com/damoang/angple-memo/internal/repository"
	"github.com/damoang/angple-memo/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupService_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	svc := NewGroupService(repository.NewGroupRepository(db))
	owner := testutil.CreateUser(t, db, "owner", "owner@example.com")
	stranger := testutil.CreateUser(t, db, "stranger", "s@example.com")

	created, err := svc.Create(ctx, owner, &domain.GroupRequest{Name: " Team ", Description: "d"})
	require.NoError(t, err)
	assert.Equal(t, "Team", created.Name)
	assert.Equal(t, "owner", created.Role)
	assert.Equal(t, 1, created.MemberCount)

	_, err = svc.Get(ctx, created.ID, stranger)
	assert.ErrorIs(t, err, common.ErrForbidden)

	_, err = svc.Update(ctx, created.ID, stranger, &domain.GroupRequest{Name: "mine"})
	assert.ErrorIs(t, err, common.ErrForbidden)

	updated, err := svc.Update(ctx, created.ID, owner, &domain.GroupRequest{Name: "Renamed"})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)

	list, err := svc.List(ctx, owner)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Renamed", list[0].Name)

	_, err = svc.Get(ctx, 9999, owner)
	assert.ErrorIs(t, err, common.ErrGroupNotFound)
}

func TestGroupService_RemoveMemberRules(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	svc := NewGroupService(repository.NewGroupRepository(db))
	owner := testutil.CreateUser(t, db, "owner", "owner@example.com")
	admin := testutil.CreateUser(t, db, "admin", "admin@example.com")
	admin2 := testutil.CreateUser(t, db, "admin2", "admin2@example.com")
	member := testutil.CreateUser(t, db, "member", "member@example.com")
	group := testutil.CreateGroup(t, db, owner, "team")
	testutil.AddMember(t, db, group, admin, domain.RoleAdmin)
	testutil.AddMember(t, db, group, admin2, domain.RoleAdmin)
	testutil.AddMember(t, db, group, member, domain.RoleMember)

	assert.ErrorIs(t, svc.RemoveMember(ctx, group.ID, admin.ID, member), common.ErrForbidden)
	assert.ErrorIs(t, svc.RemoveMember(ctx, group.ID, owner.ID, admin), common.ErrConflict)
	assert.ErrorIs(t, svc.RemoveMember(ctx, group.ID, admin2.ID, admin), common.ErrForbidden)
	assert.ErrorIs(t, svc.RemoveMember(ctx, group.ID, 9999, admin), common.ErrNotFound)

	require.NoError(t, svc.RemoveMember(ctx, group.ID, member.ID, admin))
	require.NoError(t, svc.RemoveMember(ctx, group.ID, admin2.ID, owner))

	members, err := svc.Members(ctx, group.ID, owner)
	require.NoError(t, err)
	assert.Len(t, members, 2)
}

func TestGroupService_LeaveAndDelete(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	svc := NewGroupService(repository.NewGroupRepository(db))
	owner := testutil.CreateUser(t, db, "owner", "owner@example.com")
	member := testutil.CreateUser(t, db, "member", "member@example.com")
	group := testutil.CreateGroup(t, db, owner, "team")
	testutil.AddMember(t, db, group, member, domain.RoleMember)

	assert.ErrorIs(t, svc.Leave(ctx, group.ID, owner), common.ErrConflict)
	require.NoError(t, svc.Leave(ctx, group.ID, member))
	assert.ErrorIs(t, svc.Leave(ctx, group.ID, member), common.ErrNotFound)

	testutil.AddMember(t, db, group, member, domain.RoleAdmin)
	assert.ErrorIs(t, svc.Delete(ctx, group.ID, member), common.ErrForbidden)
	require.NoError(t, svc.Delete(ctx, group.ID, owner))

	_, err := svc.Get(ctx, group.ID, owner)
	assert.ErrorIs(t, err, common.ErrGroupNotFound)
}
