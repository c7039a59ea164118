package event

import (
	"encoding/json"
	"log/slog"

	"github.com/nats-io/nats.go"

	"sudooom.im.groupchat/internal/model"
)

// Envelope 事件信封，data 结构由 event 决定
type Envelope struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// RoleUpdatedEvent 角色变更事件载荷
type RoleUpdatedEvent struct {
	GroupID int64      `json:"groupId,string"`
	UserID  int64      `json:"userId,string"`
	Role    model.Role `json:"role"`
}

// RespondersUpdatedEvent 重要消息回应列表变更事件载荷
type RespondersUpdatedEvent struct {
	GroupID    int64              `json:"groupId,string"`
	MessageID  int64              `json:"messageId,string"`
	Responders []*model.Responder `json:"responders"`
}

// MessageIgnoredEvent 重要消息被忽略事件载荷
type MessageIgnoredEvent struct {
	GroupID   int64   `json:"groupId,string"`
	MessageID int64   `json:"messageId,string"`
	IgnoredBy []int64 `json:"ignoredBy"`
}

// Publisher 事件发布器
// 发布失败只记录日志，不向调用方返回错误：事件分发不能影响主流程
type Publisher struct {
	nc     *nats.Conn
	logger *slog.Logger
}

// NewPublisher 创建事件发布器
func NewPublisher(nc *nats.Conn) *Publisher {
	return &Publisher{
		nc:     nc,
		logger: slog.Default(),
	}
}

// publish 序列化并发布事件
func (p *Publisher) publish(subject, eventName string, data any) {
	payload, err := json.Marshal(Envelope{Event: eventName, Data: data})
	if err != nil {
		p.logger.Error("Failed to marshal event", "event", eventName, "error", err)
		return
	}
	if err := p.nc.Publish(subject, payload); err != nil {
		p.logger.Error("Failed to publish event", "event", eventName, "subject", subject, "error", err)
		return
	}
	p.logger.Debug("Published event", "event", eventName, "subject", subject)
}

// PublishGroupMessage 推送新群消息
func (p *Publisher) PublishGroupMessage(view *model.GroupMessageView) {
	p.publish(BuildGroupSubject(view.GroupID), EventGroupMessage, view)
}

// PublishRoleUpdated 推送角色变更
func (p *Publisher) PublishRoleUpdated(groupID, userID int64, role model.Role) {
	p.publish(BuildGroupSubject(groupID), EventRoleUpdated, &RoleUpdatedEvent{
		GroupID: groupID,
		UserID:  userID,
		Role:    role,
	})
}

// PublishRespondersUpdated 推送回应列表变更
func (p *Publisher) PublishRespondersUpdated(groupID, messageID int64, responders []*model.Responder) {
	p.publish(BuildGroupSubject(groupID), EventRespondersUpdated, &RespondersUpdatedEvent{
		GroupID:    groupID,
		MessageID:  messageID,
		Responders: responders,
	})
}

// PublishMessageIgnored 推送忽略列表变更
func (p *Publisher) PublishMessageIgnored(groupID, messageID int64, ignoredBy []int64) {
	p.publish(BuildGroupSubject(groupID), EventMessageIgnored, &MessageIgnoredEvent{
		GroupID:   groupID,
		MessageID: messageID,
		IgnoredBy: ignoredBy,
	})
}

// PublishDirectMessage 推送单聊消息给接收者
func (p *Publisher) PublishDirectMessage(msg *model.DirectMessage) {
	p.publish(BuildUserSubject(msg.ReceiverID), EventNewDirectMessage, msg)
}
