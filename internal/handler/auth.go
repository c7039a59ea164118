package handler

import (
	"github.com/gin-gonic/gin"

	"sudooom.im.groupchat/internal/middleware"
	"sudooom.im.groupchat/internal/service"
	"sudooom.im.groupchat/pkg/response"
)

// AuthHandler 认证处理器
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler 创建认证处理器
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Signup 用户注册
// @Summary      用户注册
// @Description  创建新用户账号
// @Tags         认证
// @Accept       json
// @Produce      json
// @Param        request body service.SignupRequest true "注册信息"
// @Success      200  {object}  response.Response
// @Router       /auth/signup [post]
func (h *AuthHandler) Signup(c *gin.Context) {
	var req service.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithMsg(c, response.CodeInvalidParams, err.Error())
		return
	}

	user, err := h.authService.Signup(c.Request.Context(), &req)
	if err != nil {
		response.ErrorFromAppError(c, err)
		return
	}

	response.Success(c, user)
}

// Login 用户登录
// @Summary      用户登录
// @Description  用户登录获取 Token
// @Tags         认证
// @Accept       json
// @Produce      json
// @Param        request body service.LoginRequest true "登录信息"
// @Success      200  {object}  response.Response{data=service.LoginResponse}
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req service.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithMsg(c, response.CodeInvalidParams, err.Error())
		return
	}

	resp, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		response.ErrorFromAppError(c, err)
		return
	}

	response.Success(c, resp)
}

// Logout 用户登出
// @Summary      用户登出
// @Tags         认证
// @Security     BearerAuth
// @Success      200  {object}  response.Response
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.authService.Logout(c.Request.Context(), middleware.GetAccessToken(c)); err != nil {
		response.Error(c, response.CodeServerError)
		return
	}
	response.Success(c, nil)
}

// Check 查询当前登录用户
// @Summary      查询当前登录用户
// @Tags         认证
// @Security     BearerAuth
// @Success      200  {object}  response.Response
// @Router       /auth/check [get]
func (h *AuthHandler) Check(c *gin.Context) {
	user, err := h.authService.GetUser(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		response.ErrorFromAppError(c, err)
		return
	}
	response.Success(c, user)
}

// UpdateAvatar 更新头像
// @Summary      更新头像
// @Tags         认证
// @Security     BearerAuth
// @Success      200  {object}  response.Response
// @Router       /auth/update-avatar [put]
func (h *AuthHandler) UpdateAvatar(c *gin.Context) {
	var req struct {
		Avatar string `json:"avatar" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithMsg(c, response.CodeInvalidParams, err.Error())
		return
	}

	user, err := h.authService.UpdateAvatar(c.Request.Context(), middleware.GetUserID(c), req.Avatar)
	if err != nil {
		response.ErrorFromAppError(c, err)
		return
	}
	response.Success(c, user)
}

// ListUsers 列出可发起单聊的用户
// @Summary      用户列表
// @Tags         认证
// @Security     BearerAuth
// @Success      200  {object}  response.Response
// @Router       /messages/users [get]
func (h *AuthHandler) ListUsers(c *gin.Context) {
	users, err := h.authService.ListUsers(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		response.Error(c, response.CodeServerError)
		return
	}
	response.Success(c, users)
}
