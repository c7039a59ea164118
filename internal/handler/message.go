package handler

import (
	"github.com/gin-gonic/gin"

	"sudooom.im.groupchat/internal/middleware"
	"sudooom.im.groupchat/internal/service"
	"sudooom.im.groupchat/pkg/response"
)

// MessageHandler 消息处理器
type MessageHandler struct {
	messageService *service.MessageService
}

// NewMessageHandler 创建消息处理器
func NewMessageHandler(messageService *service.MessageService) *MessageHandler {
	return &MessageHandler{messageService: messageService}
}

// Send 发送群消息
// @Summary      发送群消息
// @Tags         群消息
// @Security     BearerAuth
// @Param        groupId path string true "群组ID"
// @Param        request body service.SendMessageRequest true "消息内容"
// @Success      200  {object}  response.Response
// @Router       /groups/{groupId}/messages [post]
func (h *MessageHandler) Send(c *gin.Context) {
	groupID, ok := parseID(c, "groupId")
	if !ok {
		return
	}

	var req service.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithMsg(c, response.CodeInvalidParams, err.Error())
		return
	}

	view, err := h.messageService.Send(c.Request.Context(), groupID, middleware.GetUserID(c), &req)
	if err != nil {
		response.ErrorFromAppError(c, err)
		return
	}
	response.Success(c, view)
}

// History 群消息历史
// @Summary      群消息历史
// @Tags         群消息
// @Security     BearerAuth
// @Param        groupId path string true "群组ID"
// @Success      200  {object}  response.Response
// @Router       /groups/{groupId}/messages [get]
func (h *MessageHandler) History(c *gin.Context) {
	groupID, ok := parseID(c, "groupId")
	if !ok {
		return
	}

	views, err := h.messageService.History(c.Request.Context(), groupID, middleware.GetUserID(c))
	if err != nil {
		response.ErrorFromAppError(c, err)
		return
	}
	response.Success(c, views)
}

// Respond 回应重要消息
// @Summary      回应重要消息
// @Tags         群消息
// @Security     BearerAuth
// @Param        messageId path string true "消息ID"
// @Param        request body service.RespondRequest true "回应内容"
// @Success      200  {object}  response.Response
// @Router       /groups/important-response/{messageId} [post]
func (h *MessageHandler) Respond(c *gin.Context) {
	messageID, ok := parseID(c, "messageId")
	if !ok {
		return
	}

	var req service.RespondRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithMsg(c, response.CodeInvalidParams, err.Error())
		return
	}

	responders, err := h.messageService.Respond(c.Request.Context(), messageID, middleware.GetUserID(c), &req)
	if err != nil {
		response.ErrorFromAppError(c, err)
		return
	}
	response.Success(c, gin.H{"responders": responders})
}

// Ignore 代目标成员忽略重要消息
// @Summary      忽略重要消息
// @Tags         群消息
// @Security     BearerAuth
// @Param        messageId path string true "消息ID"
// @Param        request body service.IgnoreRequest true "目标成员"
// @Success      200  {object}  response.Response
// @Router       /groups/group-messages/{messageId}/ignore [put]
func (h *MessageHandler) Ignore(c *gin.Context) {
	messageID, ok := parseID(c, "messageId")
	if !ok {
		return
	}

	var req service.IgnoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithMsg(c, response.CodeInvalidParams, err.Error())
		return
	}

	ignoredBy, err := h.messageService.Ignore(c.Request.Context(), messageID, middleware.GetUserID(c), &req)
	if err != nil {
		response.ErrorFromAppError(c, err)
		return
	}
	response.Success(c, gin.H{"ignoredBy": ignoredBy})
}

// SendDirect 发送单聊消息
// @Summary      发送单聊消息
// @Tags         单聊
// @Security     BearerAuth
// @Param        request body service.SendDirectRequest true "消息内容"
// @Success      200  {object}  response.Response
// @Router       /messages/send [post]
func (h *MessageHandler) SendDirect(c *gin.Context) {
	var req service.SendDirectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithMsg(c, response.CodeInvalidParams, err.Error())
		return
	}

	msg, err := h.messageService.SendDirect(c.Request.Context(), middleware.GetUserID(c), &req)
	if err != nil {
		response.ErrorFromAppError(c, err)
		return
	}
	response.Success(c, msg)
}

// DirectHistory 单聊历史
// @Summary      单聊历史
// @Tags         单聊
// @Security     BearerAuth
// @Param        userId path string true "对方用户ID"
// @Success      200  {object}  response.Response
// @Router       /messages/{userId} [get]
func (h *MessageHandler) DirectHistory(c *gin.Context) {
	otherID, ok := parseID(c, "userId")
	if !ok {
		return
	}

	msgs, err := h.messageService.DirectHistory(c.Request.Context(), middleware.GetUserID(c), otherID)
	if err != nil {
		response.ErrorFromAppError(c, err)
		return
	}
	response.Success(c, msgs)
}
