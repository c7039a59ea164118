package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"sudooom.im.groupchat/internal/middleware"
	"sudooom.im.groupchat/internal/service"
	"sudooom.im.groupchat/pkg/response"
)

// GroupHandler 群组处理器
type GroupHandler struct {
	groupService *service.GroupService
}

// NewGroupHandler 创建群组处理器
func NewGroupHandler(groupService *service.GroupService) *GroupHandler {
	return &GroupHandler{groupService: groupService}
}

// Create 创建群组
// @Summary      创建群组
// @Tags         群组
// @Security     BearerAuth
// @Param        request body service.CreateGroupRequest true "群组信息"
// @Success      200  {object}  response.Response
// @Router       /groups [post]
func (h *GroupHandler) Create(c *gin.Context) {
	var req service.CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithMsg(c, response.CodeInvalidParams, err.Error())
		return
	}

	group, err := h.groupService.CreateGroup(c.Request.Context(), middleware.GetUserID(c), &req)
	if err != nil {
		response.ErrorFromAppError(c, err)
		return
	}
	response.Success(c, group)
}

// List 列出我加入的群组
// @Summary      群组列表
// @Tags         群组
// @Security     BearerAuth
// @Success      200  {object}  response.Response
// @Router       /groups [get]
func (h *GroupHandler) List(c *gin.Context) {
	groups, err := h.groupService.ListGroups(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		response.Error(c, response.CodeServerError)
		return
	}
	response.Success(c, groups)
}

// Get 群组详情
// @Summary      群组详情
// @Tags         群组
// @Security     BearerAuth
// @Param        groupId path string true "群组ID"
// @Success      200  {object}  response.Response
// @Router       /groups/{groupId} [get]
func (h *GroupHandler) Get(c *gin.Context) {
	groupID, ok := parseID(c, "groupId")
	if !ok {
		return
	}

	detail, err := h.groupService.GetGroup(c.Request.Context(), groupID, middleware.GetUserID(c))
	if err != nil {
		response.ErrorFromAppError(c, err)
		return
	}
	response.Success(c, detail)
}

// SetIdentity 设置自己的群内身份
// @Summary      设置群内昵称与唯一ID
// @Tags         群组
// @Security     BearerAuth
// @Param        request body service.SetIdentityRequest true "身份信息"
// @Success      200  {object}  response.Response
// @Router       /groups/set-identity [post]
func (h *GroupHandler) SetIdentity(c *gin.Context) {
	var req service.SetIdentityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithMsg(c, response.CodeInvalidParams, err.Error())
		return
	}

	if err := h.groupService.SetIdentity(c.Request.Context(), middleware.GetUserID(c), &req); err != nil {
		response.ErrorFromAppError(c, err)
		return
	}
	response.Success(c, nil)
}

// Promote 晋升成员
// @Summary      晋升成员为副队长或干事
// @Tags         群组
// @Security     BearerAuth
// @Param        request body service.PromoteRequest true "晋升信息"
// @Success      200  {object}  response.Response
// @Router       /groups/promote [post]
func (h *GroupHandler) Promote(c *gin.Context) {
	var req service.PromoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithMsg(c, response.CodeInvalidParams, err.Error())
		return
	}

	if err := h.groupService.Promote(c.Request.Context(), middleware.GetUserID(c), &req); err != nil {
		response.ErrorFromAppError(c, err)
		return
	}
	response.Success(c, nil)
}

// Demote 降级成员
// @Summary      将成员降为普通成员
// @Tags         群组
// @Security     BearerAuth
// @Param        request body service.ChangeRoleRequest true "降级信息"
// @Success      200  {object}  response.Response
// @Router       /groups/demote [post]
func (h *GroupHandler) Demote(c *gin.Context) {
	var req service.ChangeRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithMsg(c, response.CodeInvalidParams, err.Error())
		return
	}

	if err := h.groupService.Demote(c.Request.Context(), middleware.GetUserID(c), &req); err != nil {
		response.ErrorFromAppError(c, err)
		return
	}
	response.Success(c, nil)
}

// AddMember 添加群成员
// @Summary      添加群成员
// @Tags         群组
// @Security     BearerAuth
// @Param        request body service.AddMemberRequest true "成员信息"
// @Success      200  {object}  response.Response
// @Router       /groups/add-member [post]
func (h *GroupHandler) AddMember(c *gin.Context) {
	var req service.AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithMsg(c, response.CodeInvalidParams, err.Error())
		return
	}

	if err := h.groupService.AddMember(c.Request.Context(), middleware.GetUserID(c), &req); err != nil {
		response.ErrorFromAppError(c, err)
		return
	}
	response.Success(c, nil)
}

// parseID 解析路径参数里的雪花ID
func parseID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		response.Error(c, response.CodeInvalidParams)
		return 0, false
	}
	return id, true
}
