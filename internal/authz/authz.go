// Package authz 实现群内角色权限引擎。
// 所有判定都基于显式的权限表，而不是分散在各处的角色字符串比较，
// 保证每个 (操作, 角色) 组合都有明确的允许/拒绝结论。
package authz

import (
	"sudooom.im.groupchat/internal/model"
	apperrors "sudooom.im.groupchat/pkg/errors"
)

// Action 需要鉴权的群内操作
type Action int

const (
	ActionAssignAssistant Action = iota // 任命副队长
	ActionAssignOfficer                 // 任命干事
	ActionAddMember                     // 添加成员
	ActionIgnoreImportant               // 代为忽略重要消息
)

// actionTable 单角色操作权限表：Action x Role -> 是否允许
// 每个操作都必须枚举全部四种角色
var actionTable = map[Action]map[model.Role]bool{
	ActionAssignAssistant: {
		model.RoleLeader:    true,
		model.RoleAssistant: false,
		model.RoleOfficer:   false,
		model.RoleMember:    false,
	},
	ActionAssignOfficer: {
		model.RoleLeader:    true,
		model.RoleAssistant: true,
		model.RoleOfficer:   false,
		model.RoleMember:    false,
	},
	ActionAddMember: {
		model.RoleLeader:    true,
		model.RoleAssistant: true,
		model.RoleOfficer:   true,
		model.RoleMember:    false,
	},
	ActionIgnoreImportant: {
		model.RoleLeader:    true,
		model.RoleAssistant: true,
		model.RoleOfficer:   false,
		model.RoleMember:    false,
	},
}

// demotePair 降级操作的 (操作者角色, 目标角色) 组合
type demotePair struct {
	actor  model.Role
	target model.Role
}

// demoteTable 降级权限表：只有表内组合允许，其余一律拒绝
// 表本身不校验操作者与目标是否为同一人，满足组合的自我降级同样放行
var demoteTable = map[demotePair]bool{
	{model.RoleLeader, model.RoleAssistant}:  true,
	{model.RoleLeader, model.RoleOfficer}:    true,
	{model.RoleAssistant, model.RoleOfficer}: true,
}

// Allowed 查询单角色操作权限表
func Allowed(action Action, actor model.Role) bool {
	perms, ok := actionTable[action]
	if !ok {
		return false
	}
	return perms[actor]
}

// CheckPromote 判定晋升操作
// hasAssistant 表示群内当前是否已有副队长
func CheckPromote(actor model.Role, newRole model.Role, hasAssistant bool) error {
	switch newRole {
	case model.RoleAssistant:
		if !Allowed(ActionAssignAssistant, actor) {
			return apperrors.ErrForbidden
		}
		if hasAssistant {
			return apperrors.ErrAssistantExists
		}
		return nil
	case model.RoleOfficer:
		if !Allowed(ActionAssignOfficer, actor) {
			return apperrors.ErrForbidden
		}
		return nil
	default:
		return apperrors.ErrInvalidParams
	}
}

// CheckDemote 判定降级操作（目标降为普通成员）
func CheckDemote(actor, target model.Role) error {
	if demoteTable[demotePair{actor, target}] {
		return nil
	}
	return apperrors.ErrForbidden
}

// CheckAddMember 判定添加成员操作
func CheckAddMember(actor model.Role) error {
	if Allowed(ActionAddMember, actor) {
		return nil
	}
	return apperrors.ErrForbidden
}

// CheckIgnore 判定代为忽略重要消息的操作
func CheckIgnore(actor model.Role) error {
	if Allowed(ActionIgnoreImportant, actor) {
		return nil
	}
	return apperrors.ErrForbidden
}
