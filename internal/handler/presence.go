package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"sudooom.im.groupchat/internal/middleware"
	"sudooom.im.groupchat/internal/presence"
	"sudooom.im.groupchat/pkg/response"
)

// PresenceHandler 在线状态处理器
type PresenceHandler struct {
	registry *presence.Registry
}

// NewPresenceHandler 创建在线状态处理器
func NewPresenceHandler(registry *presence.Registry) *PresenceHandler {
	return &PresenceHandler{registry: registry}
}

// Heartbeat 上报心跳并续期在线状态
// @Summary      心跳
// @Tags         在线状态
// @Security     BearerAuth
// @Success      200  {object}  response.Response
// @Router       /presence/heartbeat [post]
func (h *PresenceHandler) Heartbeat(c *gin.Context) {
	userID := middleware.GetUserID(c)

	loc, err := h.registry.Lookup(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, response.CodeServerError)
		return
	}
	if loc == nil {
		// 首次心跳视为上线
		err = h.registry.Register(c.Request.Context(), &presence.Location{
			UserID:    userID,
			Platform:  "web",
			LoginTime: time.Now(),
		})
	} else {
		err = h.registry.Refresh(c.Request.Context(), userID)
	}
	if err != nil {
		response.Error(c, response.CodeServerError)
		return
	}
	response.Success(c, nil)
}

// Online 在线用户列表
// @Summary      在线用户列表
// @Tags         在线状态
// @Security     BearerAuth
// @Success      200  {object}  response.Response
// @Router       /presence/online [get]
func (h *PresenceHandler) Online(c *gin.Context) {
	userIDs, err := h.registry.ListOnline(c.Request.Context())
	if err != nil {
		response.Error(c, response.CodeServerError)
		return
	}
	response.Success(c, gin.H{"userIds": userIDs})
}
