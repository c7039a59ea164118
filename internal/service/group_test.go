package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sudooom.im.groupchat/internal/model"
	apperrors "sudooom.im.groupchat/pkg/errors"
)

func newGroupFixture(t *testing.T) (*GroupService, *fakeGroupStore, *fakePublisher) {
	t.Helper()
	store := newFakeGroupStore()
	pub := &fakePublisher{}
	svc := NewGroupService(store, newFakeUserReader(), pub, newTestNode())
	return svc, store, pub
}

// setupGroup 建群并按角色填充成员：1=Leader 2=Assistant 3=Officer 4,5=Member
func setupGroup(t *testing.T, svc *GroupService, store *fakeGroupStore) int64 {
	t.Helper()
	ctx := context.Background()
	group, err := svc.CreateGroup(ctx, 1, &CreateGroupRequest{Name: "研发一组"})
	require.NoError(t, err)
	for _, uid := range []int64{2, 3, 4, 5} {
		require.NoError(t, store.AddMember(ctx, group.ID, uid, model.RoleMember))
	}
	require.NoError(t, store.UpdateMemberRole(ctx, group.ID, 2, model.RoleAssistant))
	require.NoError(t, store.UpdateMemberRole(ctx, group.ID, 3, model.RoleOfficer))
	return group.ID
}

func TestGroupService_CreateGroup(t *testing.T) {
	svc, store, _ := newGroupFixture(t)
	ctx := context.Background()

	group, err := svc.CreateGroup(ctx, 1, &CreateGroupRequest{Name: "研发一组"})
	require.NoError(t, err)

	creator, err := store.GetMember(ctx, group.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, model.RoleLeader, creator.Role, "创建者应自动成为Leader")
	assert.Equal(t, "张一", creator.DisplayName, "建群时昵称初始为用户全名")
}

func TestGroupService_GetGroup(t *testing.T) {
	ctx := context.Background()

	t.Run("群成员查询详情", func(t *testing.T) {
		svc, store, _ := newGroupFixture(t)
		groupID := setupGroup(t, svc, store)

		detail, err := svc.GetGroup(ctx, groupID, 4)
		require.NoError(t, err)
		assert.Equal(t, "研发一组", detail.Name)
		assert.Len(t, detail.Members, 5)
	})

	t.Run("非群成员不可见", func(t *testing.T) {
		svc, store, _ := newGroupFixture(t)
		groupID := setupGroup(t, svc, store)

		_, err := svc.GetGroup(ctx, groupID, 99)
		assert.ErrorIs(t, err, apperrors.ErrNotGroupMember)
	})

	t.Run("群组不存在优先于成员校验", func(t *testing.T) {
		svc, store, _ := newGroupFixture(t)
		setupGroup(t, svc, store)

		_, err := svc.GetGroup(ctx, 777, 1)
		assert.ErrorIs(t, err, apperrors.ErrGroupNotFound)
	})
}

func TestGroupService_Promote(t *testing.T) {
	ctx := context.Background()

	t.Run("Leader任命Assistant", func(t *testing.T) {
		svc, store, pub := newGroupFixture(t)
		groupID := setupGroup(t, svc, store)

		// 先降掉现任 Assistant 腾出名额
		require.NoError(t, svc.Demote(ctx, 1, &ChangeRoleRequest{GroupID: groupID, UserID: 2}))

		err := svc.Promote(ctx, 1, &PromoteRequest{GroupID: groupID, UserID: 4, Role: model.RoleAssistant})
		require.NoError(t, err)
		assert.Contains(t, pub.roleEvents, "Assistant")
	})

	t.Run("已有Assistant时Leader再任命被拒", func(t *testing.T) {
		svc, store, _ := newGroupFixture(t)
		groupID := setupGroup(t, svc, store)

		err := svc.Promote(ctx, 1, &PromoteRequest{GroupID: groupID, UserID: 4, Role: model.RoleAssistant})
		assert.ErrorIs(t, err, apperrors.ErrAssistantExists)
	})

	t.Run("Assistant任命Assistant被拒且优先报无权限", func(t *testing.T) {
		svc, store, _ := newGroupFixture(t)
		groupID := setupGroup(t, svc, store)

		err := svc.Promote(ctx, 2, &PromoteRequest{GroupID: groupID, UserID: 4, Role: model.RoleAssistant})
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
	})

	t.Run("Assistant任命Officer", func(t *testing.T) {
		svc, store, _ := newGroupFixture(t)
		groupID := setupGroup(t, svc, store)

		err := svc.Promote(ctx, 2, &PromoteRequest{GroupID: groupID, UserID: 4, Role: model.RoleOfficer})
		require.NoError(t, err)

		m, err := store.GetMember(ctx, groupID, 4)
		require.NoError(t, err)
		assert.Equal(t, model.RoleOfficer, m.Role)
	})

	t.Run("Officer无任命权限", func(t *testing.T) {
		svc, store, _ := newGroupFixture(t)
		groupID := setupGroup(t, svc, store)

		err := svc.Promote(ctx, 3, &PromoteRequest{GroupID: groupID, UserID: 4, Role: model.RoleOfficer})
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
	})

	t.Run("任命为Leader或Member是非法参数", func(t *testing.T) {
		svc, store, _ := newGroupFixture(t)
		groupID := setupGroup(t, svc, store)

		err := svc.Promote(ctx, 1, &PromoteRequest{GroupID: groupID, UserID: 4, Role: model.RoleLeader})
		assert.ErrorIs(t, err, apperrors.ErrInvalidParams)
	})

	t.Run("目标不在群内", func(t *testing.T) {
		svc, store, _ := newGroupFixture(t)
		groupID := setupGroup(t, svc, store)

		err := svc.Promote(ctx, 1, &PromoteRequest{GroupID: groupID, UserID: 99, Role: model.RoleOfficer})
		assert.ErrorIs(t, err, apperrors.ErrMemberNotFound)
	})

	t.Run("操作者不在群内", func(t *testing.T) {
		svc, store, _ := newGroupFixture(t)
		groupID := setupGroup(t, svc, store)

		err := svc.Promote(ctx, 99, &PromoteRequest{GroupID: groupID, UserID: 4, Role: model.RoleOfficer})
		assert.ErrorIs(t, err, apperrors.ErrNotGroupMember)
	})
}

func TestGroupService_Demote(t *testing.T) {
	ctx := context.Background()

	t.Run("Leader降级Assistant", func(t *testing.T) {
		svc, store, pub := newGroupFixture(t)
		groupID := setupGroup(t, svc, store)

		require.NoError(t, svc.Demote(ctx, 1, &ChangeRoleRequest{GroupID: groupID, UserID: 2}))

		m, err := store.GetMember(ctx, groupID, 2)
		require.NoError(t, err)
		assert.Equal(t, model.RoleMember, m.Role)
		assert.Contains(t, pub.roleEvents, "Member")
	})

	t.Run("Assistant降级Officer", func(t *testing.T) {
		svc, store, _ := newGroupFixture(t)
		groupID := setupGroup(t, svc, store)

		require.NoError(t, svc.Demote(ctx, 2, &ChangeRoleRequest{GroupID: groupID, UserID: 3}))
	})

	t.Run("Assistant不能降级Assistant", func(t *testing.T) {
		svc, store, _ := newGroupFixture(t)
		groupID := setupGroup(t, svc, store)

		// 对自己同样按角色对判定，Assistant->Assistant 不在允许表内
		err := svc.Demote(ctx, 2, &ChangeRoleRequest{GroupID: groupID, UserID: 2})
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
	})

	t.Run("Officer无降级权限", func(t *testing.T) {
		svc, store, _ := newGroupFixture(t)
		groupID := setupGroup(t, svc, store)

		err := svc.Demote(ctx, 3, &ChangeRoleRequest{GroupID: groupID, UserID: 4})
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
	})

	t.Run("Leader不能降级Leader", func(t *testing.T) {
		svc, store, _ := newGroupFixture(t)
		groupID := setupGroup(t, svc, store)

		err := svc.Demote(ctx, 1, &ChangeRoleRequest{GroupID: groupID, UserID: 1})
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
	})

	t.Run("降级普通成员不在允许表内", func(t *testing.T) {
		svc, store, _ := newGroupFixture(t)
		groupID := setupGroup(t, svc, store)

		err := svc.Demote(ctx, 1, &ChangeRoleRequest{GroupID: groupID, UserID: 4})
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
	})
}

func TestGroupService_AddMember(t *testing.T) {
	ctx := context.Background()

	t.Run("Officer可以添加成员", func(t *testing.T) {
		svc, store, _ := newGroupFixture(t)
		groupID := setupGroup(t, svc, store)

		require.NoError(t, svc.AddMember(ctx, 3, &AddMemberRequest{GroupID: groupID, UserID: 10}))

		m, err := store.GetMember(ctx, groupID, 10)
		require.NoError(t, err)
		assert.Equal(t, model.RoleMember, m.Role, "新成员初始角色为Member")
	})

	t.Run("Member不能添加成员", func(t *testing.T) {
		svc, store, _ := newGroupFixture(t)
		groupID := setupGroup(t, svc, store)

		err := svc.AddMember(ctx, 4, &AddMemberRequest{GroupID: groupID, UserID: 10})
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
	})

	t.Run("重复添加", func(t *testing.T) {
		svc, store, _ := newGroupFixture(t)
		groupID := setupGroup(t, svc, store)

		err := svc.AddMember(ctx, 1, &AddMemberRequest{GroupID: groupID, UserID: 4})
		assert.ErrorIs(t, err, apperrors.ErrAlreadyMember)
	})
}

func TestGroupService_SetIdentity(t *testing.T) {
	ctx := context.Background()

	t.Run("设置群内身份", func(t *testing.T) {
		svc, store, _ := newGroupFixture(t)
		groupID := setupGroup(t, svc, store)

		err := svc.SetIdentity(ctx, 4, &SetIdentityRequest{GroupID: groupID, DisplayName: "小李", Handle: "lee"})
		require.NoError(t, err)

		m, err := store.GetMember(ctx, groupID, 4)
		require.NoError(t, err)
		assert.Equal(t, "lee", m.Handle)
	})

	t.Run("handle被他人占用", func(t *testing.T) {
		svc, store, _ := newGroupFixture(t)
		groupID := setupGroup(t, svc, store)

		require.NoError(t, svc.SetIdentity(ctx, 4, &SetIdentityRequest{GroupID: groupID, DisplayName: "小李", Handle: "lee"}))
		err := svc.SetIdentity(ctx, 5, &SetIdentityRequest{GroupID: groupID, DisplayName: "老李", Handle: "Lee"})
		assert.ErrorIs(t, err, apperrors.ErrHandleTaken)
	})

	t.Run("非群成员", func(t *testing.T) {
		svc, store, _ := newGroupFixture(t)
		groupID := setupGroup(t, svc, store)

		err := svc.SetIdentity(ctx, 99, &SetIdentityRequest{GroupID: groupID, DisplayName: "路人", Handle: "nobody"})
		assert.ErrorIs(t, err, apperrors.ErrNotGroupMember)
	})
}
