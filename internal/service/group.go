package service

import (
	"context"
	"errors"

	"sudooom.im.groupchat/internal/authz"
	"sudooom.im.groupchat/internal/model"
	"sudooom.im.groupchat/internal/repository"
	apperrors "sudooom.im.groupchat/pkg/errors"
	"sudooom.im.groupchat/pkg/snowflake"
)

// UserReader 按ID读取用户资料
type UserReader interface {
	GetByID(ctx context.Context, id int64) (*model.User, error)
}

// GroupStore 群组存取接口
type GroupStore interface {
	Create(ctx context.Context, group *model.Group, creatorID int64, creatorName string) error
	GetByID(ctx context.Context, groupID int64) (*model.Group, error)
	GetMember(ctx context.Context, groupID, userID int64) (*model.GroupMember, error)
	GetMembers(ctx context.Context, groupID int64) ([]*model.GroupMemberWithUser, error)
	GetUserGroups(ctx context.Context, userID int64) ([]*model.GroupWithRole, error)
	AddMember(ctx context.Context, groupID, userID int64, role model.Role) error
	UpdateMemberRole(ctx context.Context, groupID, userID int64, role model.Role) error
	UpdateMemberIdentity(ctx context.Context, groupID, userID int64, displayName, handle string) error
	HasAssistant(ctx context.Context, groupID int64) (bool, error)
}

// RoleEventPublisher 角色变更事件发布接口
type RoleEventPublisher interface {
	PublishRoleUpdated(groupID, userID int64, role model.Role)
}

// CreateGroupRequest 创建群组请求
type CreateGroupRequest struct {
	Name string `json:"name" binding:"required,min=1,max=100"`
}

// SetIdentityRequest 设置群内身份请求
type SetIdentityRequest struct {
	GroupID     int64  `json:"groupId,string" binding:"required"`
	DisplayName string `json:"displayName" binding:"required,min=1,max=100"`
	Handle      string `json:"handle" binding:"required,min=1,max=100"`
}

// ChangeRoleRequest 角色变更请求（晋升或降级）
type ChangeRoleRequest struct {
	GroupID int64 `json:"groupId,string" binding:"required"`
	UserID  int64 `json:"userId,string" binding:"required"`
}

// PromoteRequest 晋升请求
type PromoteRequest struct {
	GroupID int64      `json:"groupId,string" binding:"required"`
	UserID  int64      `json:"userId,string" binding:"required"`
	Role    model.Role `json:"role" binding:"required"`
}

// AddMemberRequest 添加成员请求
type AddMemberRequest struct {
	GroupID int64 `json:"groupId,string" binding:"required"`
	UserID  int64 `json:"userId,string" binding:"required"`
}

// GroupService 群组服务：建群、身份、角色与成员管理
type GroupService struct {
	groupStore GroupStore
	users      UserReader
	publisher  RoleEventPublisher
	node       *snowflake.Node
}

// NewGroupService 创建群组服务
func NewGroupService(groupStore GroupStore, users UserReader, publisher RoleEventPublisher, node *snowflake.Node) *GroupService {
	return &GroupService{
		groupStore: groupStore,
		users:      users,
		publisher:  publisher,
		node:       node,
	}
}

// CreateGroup 创建群组，创建者自动成为 Leader，群内昵称初始为用户全名
func (s *GroupService) CreateGroup(ctx context.Context, creatorID int64, req *CreateGroupRequest) (*model.Group, error) {
	creator, err := s.users.GetByID(ctx, creatorID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, err
	}

	group := &model.Group{
		ID:   s.node.Generate().Int64(),
		Name: req.Name,
	}
	if err := s.groupStore.Create(ctx, group, creatorID, creator.Fullname); err != nil {
		return nil, err
	}
	return group, nil
}

// ListGroups 列出用户加入的群组
func (s *GroupService) ListGroups(ctx context.Context, userID int64) ([]*model.GroupWithRole, error) {
	return s.groupStore.GetUserGroups(ctx, userID)
}

// GetGroup 查询群组详情，仅群成员可见
// 群不存在优先于非群成员返回
func (s *GroupService) GetGroup(ctx context.Context, groupID, userID int64) (*model.GroupDetail, error) {
	group, err := s.groupStore.GetByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, repository.ErrGroupNotFound) {
			return nil, apperrors.ErrGroupNotFound
		}
		return nil, err
	}

	if _, err := s.requireMember(ctx, groupID, userID); err != nil {
		return nil, err
	}

	members, err := s.groupStore.GetMembers(ctx, groupID)
	if err != nil {
		return nil, err
	}

	return &model.GroupDetail{Group: *group, Members: members}, nil
}

// SetIdentity 设置自己在群内的昵称与唯一ID
func (s *GroupService) SetIdentity(ctx context.Context, userID int64, req *SetIdentityRequest) error {
	if _, err := s.requireMember(ctx, req.GroupID, userID); err != nil {
		return err
	}

	err := s.groupStore.UpdateMemberIdentity(ctx, req.GroupID, userID, req.DisplayName, req.Handle)
	if err != nil {
		if errors.Is(err, repository.ErrHandleTaken) {
			return apperrors.ErrHandleTaken
		}
		if errors.Is(err, repository.ErrGroupMemberNotFound) {
			return apperrors.ErrMemberNotFound
		}
		return err
	}
	return nil
}

// Promote 晋升成员为 Assistant 或 Officer
// Leader 可任命两者，Assistant 仅可任命 Officer；多名操作者并发任命
// Assistant 时由数据库唯一索引兜底
func (s *GroupService) Promote(ctx context.Context, actorID int64, req *PromoteRequest) error {
	actor, err := s.requireMember(ctx, req.GroupID, actorID)
	if err != nil {
		return err
	}
	if _, err := s.requireTarget(ctx, req.GroupID, req.UserID); err != nil {
		return err
	}

	hasAssistant := false
	if req.Role == model.RoleAssistant {
		hasAssistant, err = s.groupStore.HasAssistant(ctx, req.GroupID)
		if err != nil {
			return err
		}
	}

	if err := authz.CheckPromote(actor.Role, req.Role, hasAssistant); err != nil {
		return err
	}

	if err := s.groupStore.UpdateMemberRole(ctx, req.GroupID, req.UserID, req.Role); err != nil {
		if errors.Is(err, repository.ErrAssistantExists) {
			return apperrors.ErrAssistantExists
		}
		if errors.Is(err, repository.ErrGroupMemberNotFound) {
			return apperrors.ErrMemberNotFound
		}
		return err
	}

	s.publisher.PublishRoleUpdated(req.GroupID, req.UserID, req.Role)
	return nil
}

// Demote 将成员降为普通成员
// Leader 可降级 Assistant 与 Officer，Assistant 仅可降级 Officer；
// 对自己执行降级不做特殊处理，按同一规则判定
func (s *GroupService) Demote(ctx context.Context, actorID int64, req *ChangeRoleRequest) error {
	actor, err := s.requireMember(ctx, req.GroupID, actorID)
	if err != nil {
		return err
	}
	target, err := s.requireTarget(ctx, req.GroupID, req.UserID)
	if err != nil {
		return err
	}

	if err := authz.CheckDemote(actor.Role, target.Role); err != nil {
		return err
	}

	if err := s.groupStore.UpdateMemberRole(ctx, req.GroupID, req.UserID, model.RoleMember); err != nil {
		if errors.Is(err, repository.ErrGroupMemberNotFound) {
			return apperrors.ErrMemberNotFound
		}
		return err
	}

	s.publisher.PublishRoleUpdated(req.GroupID, req.UserID, model.RoleMember)
	return nil
}

// AddMember 添加新成员，初始角色为普通成员
// Leader、Assistant、Officer 均可添加
func (s *GroupService) AddMember(ctx context.Context, actorID int64, req *AddMemberRequest) error {
	actor, err := s.requireMember(ctx, req.GroupID, actorID)
	if err != nil {
		return err
	}

	if err := authz.CheckAddMember(actor.Role); err != nil {
		return err
	}

	if err := s.groupStore.AddMember(ctx, req.GroupID, req.UserID, model.RoleMember); err != nil {
		if errors.Is(err, repository.ErrAlreadyGroupMember) {
			return apperrors.ErrAlreadyMember
		}
		return err
	}
	return nil
}

// requireMember 要求操作者是群成员，否则返回业务错误
func (s *GroupService) requireMember(ctx context.Context, groupID, userID int64) (*model.GroupMember, error) {
	member, err := s.groupStore.GetMember(ctx, groupID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrGroupMemberNotFound) {
			return nil, apperrors.ErrNotGroupMember
		}
		return nil, err
	}
	return member, nil
}

// requireTarget 要求目标用户是群成员
func (s *GroupService) requireTarget(ctx context.Context, groupID, userID int64) (*model.GroupMember, error) {
	member, err := s.groupStore.GetMember(ctx, groupID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrGroupMemberNotFound) {
			return nil, apperrors.ErrMemberNotFound
		}
		return nil, err
	}
	return member, nil
}
