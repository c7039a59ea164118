package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"sudooom.im.groupchat/internal/model"
	apperrors "sudooom.im.groupchat/pkg/errors"
)

func TestCheckPromote_Assistant(t *testing.T) {
	tests := []struct {
		name         string
		actor        model.Role
		hasAssistant bool
		wantErr      *apperrors.AppError
	}{
		{"队长任命副队长", model.RoleLeader, false, nil},
		{"已有副队长时队长再任命", model.RoleLeader, true, apperrors.ErrAssistantExists},
		{"副队长任命副队长", model.RoleAssistant, false, apperrors.ErrForbidden},
		{"干事任命副队长", model.RoleOfficer, false, apperrors.ErrForbidden},
		{"普通成员任命副队长", model.RoleMember, false, apperrors.ErrForbidden},
		// 非队长时，无论是否已有副队长都先判权限
		{"已有副队长时成员再任命", model.RoleMember, true, apperrors.ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckPromote(tt.actor, model.RoleAssistant, tt.hasAssistant)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.True(t, apperrors.Is(err, tt.wantErr), "expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestCheckPromote_Officer(t *testing.T) {
	tests := []struct {
		name    string
		actor   model.Role
		allowed bool
	}{
		{"队长任命干事", model.RoleLeader, true},
		{"副队长任命干事", model.RoleAssistant, true},
		{"干事任命干事", model.RoleOfficer, false},
		{"普通成员任命干事", model.RoleMember, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckPromote(tt.actor, model.RoleOfficer, false)
			if tt.allowed {
				assert.NoError(t, err)
			} else {
				assert.True(t, apperrors.Is(err, apperrors.ErrForbidden))
			}
		})
	}
}

func TestCheckPromote_InvalidTargetRole(t *testing.T) {
	// 不允许把成员"晋升"为队长或普通成员
	assert.True(t, apperrors.Is(CheckPromote(model.RoleLeader, model.RoleLeader, false), apperrors.ErrInvalidParams))
	assert.True(t, apperrors.Is(CheckPromote(model.RoleLeader, model.RoleMember, false), apperrors.ErrInvalidParams))
}

// TestCheckDemote_Exhaustive 穷举全部 (操作者, 目标) 组合，
// 只有权限表内的三种组合允许降级
func TestCheckDemote_Exhaustive(t *testing.T) {
	roles := []model.Role{model.RoleLeader, model.RoleAssistant, model.RoleOfficer, model.RoleMember}

	allowed := map[[2]model.Role]bool{
		{model.RoleLeader, model.RoleAssistant}:  true,
		{model.RoleLeader, model.RoleOfficer}:    true,
		{model.RoleAssistant, model.RoleOfficer}: true,
	}

	for _, actor := range roles {
		for _, target := range roles {
			err := CheckDemote(actor, target)
			if allowed[[2]model.Role{actor, target}] {
				assert.NoError(t, err, "actor=%s target=%s", actor, target)
			} else {
				assert.True(t, apperrors.Is(err, apperrors.ErrForbidden), "actor=%s target=%s", actor, target)
			}
		}
	}
}

func TestCheckAddMember(t *testing.T) {
	assert.NoError(t, CheckAddMember(model.RoleLeader))
	assert.NoError(t, CheckAddMember(model.RoleAssistant))
	assert.NoError(t, CheckAddMember(model.RoleOfficer))
	assert.True(t, apperrors.Is(CheckAddMember(model.RoleMember), apperrors.ErrForbidden))
}

func TestCheckIgnore(t *testing.T) {
	assert.NoError(t, CheckIgnore(model.RoleLeader))
	assert.NoError(t, CheckIgnore(model.RoleAssistant))
	assert.True(t, apperrors.Is(CheckIgnore(model.RoleOfficer), apperrors.ErrForbidden))
	assert.True(t, apperrors.Is(CheckIgnore(model.RoleMember), apperrors.ErrForbidden))
}

// TestActionTable_Exhaustive 权限表必须覆盖全部角色
func TestActionTable_Exhaustive(t *testing.T) {
	roles := []model.Role{model.RoleLeader, model.RoleAssistant, model.RoleOfficer, model.RoleMember}
	actions := []Action{ActionAssignAssistant, ActionAssignOfficer, ActionAddMember, ActionIgnoreImportant}

	for _, action := range actions {
		perms, ok := actionTable[action]
		assert.True(t, ok, "action %d missing from table", action)
		for _, role := range roles {
			_, ok := perms[role]
			assert.True(t, ok, "action %d missing role %s", action, role)
		}
	}
}
