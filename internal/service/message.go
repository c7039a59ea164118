package service

import (
	"context"
	"errors"
	"time"

	"sudooom.im.groupchat/internal/authz"
	"sudooom.im.groupchat/internal/model"
	"sudooom.im.groupchat/internal/repository"
	apperrors "sudooom.im.groupchat/pkg/errors"
	"sudooom.im.groupchat/pkg/snowflake"
)

// MessageStore 消息存取接口
type MessageStore interface {
	Create(ctx context.Context, msg *model.GroupMessage) error
	GetByID(ctx context.Context, messageID int64) (*model.GroupMessage, error)
	ListVisible(ctx context.Context, groupID int64, since time.Time) ([]*model.GroupMessageView, error)
	HasUnresolvedStrict(ctx context.Context, groupID, userID int64, role model.Role, joinedAt time.Time) (bool, error)
	UpsertResponder(ctx context.Context, messageID int64, resp *model.Responder) error
	AddIgnore(ctx context.Context, messageID, userID int64) error
	ListResponders(ctx context.Context, messageID int64) ([]*model.Responder, error)
	ListIgnores(ctx context.Context, messageID int64) ([]int64, error)
	CreateDirect(ctx context.Context, msg *model.DirectMessage) error
	ListDirectBetween(ctx context.Context, userA, userB int64) ([]*model.DirectMessage, error)
}

// GroupReader 消息服务需要的群组与成员查询接口
type GroupReader interface {
	GetByID(ctx context.Context, groupID int64) (*model.Group, error)
	GetMember(ctx context.Context, groupID, userID int64) (*model.GroupMember, error)
}

// MessageEventPublisher 消息事件发布接口
type MessageEventPublisher interface {
	PublishGroupMessage(view *model.GroupMessageView)
	PublishRespondersUpdated(groupID, messageID int64, responders []*model.Responder)
	PublishMessageIgnored(groupID, messageID int64, ignoredBy []int64)
	PublishDirectMessage(msg *model.DirectMessage)
}

// SendMessageRequest 发送群消息请求
// MessageType 与 StrictScope 仅是客户端意向，服务端会重新推导
type SendMessageRequest struct {
	Text        string `json:"text"`
	Image       string `json:"image"`
	MessageType string `json:"messageType"`
	StrictScope string `json:"strictScope"`
}

// RespondRequest 回应重要消息请求
type RespondRequest struct {
	Status      model.ResponseStatus `json:"status" binding:"required"`
	InfoMessage string               `json:"infoMessage"`
}

// IgnoreRequest 忽略重要消息请求，UserID 是被代为忽略的目标成员
type IgnoreRequest struct {
	UserID int64 `json:"userId,string" binding:"required"`
}

// SendDirectRequest 发送单聊消息请求
type SendDirectRequest struct {
	ReceiverID int64  `json:"receiverId,string" binding:"required"`
	Text       string `json:"text"`
	Image      string `json:"image"`
}

// MessageService 群消息与单聊消息服务
type MessageService struct {
	messageStore MessageStore
	groupReader  GroupReader
	users        UserReader
	publisher    MessageEventPublisher
	node         *snowflake.Node
}

// NewMessageService 创建消息服务
func NewMessageService(messageStore MessageStore, groupReader GroupReader, users UserReader, publisher MessageEventPublisher, node *snowflake.Node) *MessageService {
	return &MessageService{
		messageStore: messageStore,
		groupReader:  groupReader,
		users:        users,
		publisher:    publisher,
		node:         node,
	}
}

// Send 发送群消息
// 发送前校验发言闸门：存在未回应的强制重要消息时拒绝发言，
// 发送者自己的未回应强制消息同样拦截
func (s *MessageService) Send(ctx context.Context, groupID, senderID int64, req *SendMessageRequest) (*model.GroupMessageView, error) {
	if req.Text == "" && req.Image == "" {
		return nil, apperrors.ErrEmptyMessage
	}

	if err := s.requireGroup(ctx, groupID); err != nil {
		return nil, err
	}
	sender, err := s.requireMember(ctx, groupID, senderID)
	if err != nil {
		return nil, err
	}

	// 入群前的消息不可见，也不计入闸门
	blocked, err := s.messageStore.HasUnresolvedStrict(ctx, groupID, senderID, sender.Role, sender.JoinedAt)
	if err != nil {
		return nil, err
	}
	if blocked {
		return nil, apperrors.ErrStrictReplyPending
	}

	user, err := s.users.GetByID(ctx, senderID)
	if err != nil {
		return nil, err
	}

	msgType, scope := model.DeriveMessageType(req.MessageType, req.StrictScope)
	msg := &model.GroupMessage{
		ID:          s.node.Generate().Int64(),
		GroupID:     groupID,
		SenderID:    senderID,
		Text:        req.Text,
		Image:       req.Image,
		MessageType: msgType,
		StrictScope: scope,
	}
	if err := s.messageStore.Create(ctx, msg); err != nil {
		return nil, err
	}

	// 群内昵称优先，未设置时退回用户全名，与历史查询的装配规则一致
	displayName := sender.DisplayName
	if displayName == "" {
		displayName = user.Fullname
	}

	view := &model.GroupMessageView{
		ID:      msg.ID,
		GroupID: msg.GroupID,
		Sender: model.MessageSender{
			ID:          senderID,
			Avatar:      user.Avatar,
			DisplayName: displayName,
		},
		Text:        msg.Text,
		Image:       msg.Image,
		MessageType: msg.MessageType,
		StrictScope: msg.StrictScope,
		Responders:  []*model.Responder{},
		IgnoredBy:   []int64{},
		CreatedAt:   msg.CreatedAt,
	}

	s.publisher.PublishGroupMessage(view)
	return view, nil
}

// History 查询群消息历史
// 只返回请求者入群之后的消息：入群时间是可见性水位线
func (s *MessageService) History(ctx context.Context, groupID, userID int64) ([]*model.GroupMessageView, error) {
	if err := s.requireGroup(ctx, groupID); err != nil {
		return nil, err
	}
	member, err := s.requireMember(ctx, groupID, userID)
	if err != nil {
		return nil, err
	}
	return s.messageStore.ListVisible(ctx, groupID, member.JoinedAt)
}

// Respond 回应重要消息
// 同一用户重复回应时覆盖旧回应（后写生效）
func (s *MessageService) Respond(ctx context.Context, messageID, userID int64, req *RespondRequest) ([]*model.Responder, error) {
	if !req.Status.Valid() {
		return nil, apperrors.ErrInvalidParams
	}

	msg, err := s.getMessage(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if msg.MessageType == model.MessageTypeNormal {
		return nil, apperrors.ErrInvalidParams
	}

	if _, err := s.requireMember(ctx, msg.GroupID, userID); err != nil {
		return nil, err
	}

	resp := &model.Responder{
		UserID:      userID,
		Status:      req.Status,
		InfoMessage: req.InfoMessage,
	}
	if err := s.messageStore.UpsertResponder(ctx, messageID, resp); err != nil {
		return nil, err
	}

	responders, err := s.messageStore.ListResponders(ctx, messageID)
	if err != nil {
		return nil, err
	}

	s.publisher.PublishRespondersUpdated(msg.GroupID, messageID, responders)
	return responders, nil
}

// Ignore 代某个目标成员忽略一条重要消息
// 仅 Leader 与 Assistant 可执行；对同一目标重复忽略是幂等的。
// 忽略只做展示层标记，不会解除目标成员的发言闸门
func (s *MessageService) Ignore(ctx context.Context, messageID, actorID int64, req *IgnoreRequest) ([]int64, error) {
	msg, err := s.getMessage(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if msg.MessageType == model.MessageTypeNormal {
		return nil, apperrors.ErrInvalidParams
	}

	actor, err := s.requireMember(ctx, msg.GroupID, actorID)
	if err != nil {
		return nil, err
	}
	if err := authz.CheckIgnore(actor.Role); err != nil {
		return nil, err
	}

	if err := s.messageStore.AddIgnore(ctx, messageID, req.UserID); err != nil {
		return nil, err
	}

	ignoredBy, err := s.messageStore.ListIgnores(ctx, messageID)
	if err != nil {
		return nil, err
	}

	s.publisher.PublishMessageIgnored(msg.GroupID, messageID, ignoredBy)
	return ignoredBy, nil
}

// SendDirect 发送单聊消息
func (s *MessageService) SendDirect(ctx context.Context, senderID int64, req *SendDirectRequest) (*model.DirectMessage, error) {
	if req.Text == "" && req.Image == "" {
		return nil, apperrors.ErrEmptyMessage
	}

	msg := &model.DirectMessage{
		ID:         s.node.Generate().Int64(),
		SenderID:   senderID,
		ReceiverID: req.ReceiverID,
		Text:       req.Text,
		Image:      req.Image,
	}
	if err := s.messageStore.CreateDirect(ctx, msg); err != nil {
		return nil, err
	}

	s.publisher.PublishDirectMessage(msg)
	return msg, nil
}

// DirectHistory 查询与某用户的单聊历史
func (s *MessageService) DirectHistory(ctx context.Context, userID, otherID int64) ([]*model.DirectMessage, error) {
	return s.messageStore.ListDirectBetween(ctx, userID, otherID)
}

func (s *MessageService) getMessage(ctx context.Context, messageID int64) (*model.GroupMessage, error) {
	msg, err := s.messageStore.GetByID(ctx, messageID)
	if err != nil {
		if errors.Is(err, repository.ErrMessageNotFound) {
			return nil, apperrors.ErrMessageNotFound
		}
		return nil, err
	}
	return msg, nil
}

// requireGroup 要求群组存在
func (s *MessageService) requireGroup(ctx context.Context, groupID int64) error {
	if _, err := s.groupReader.GetByID(ctx, groupID); err != nil {
		if errors.Is(err, repository.ErrGroupNotFound) {
			return apperrors.ErrGroupNotFound
		}
		return err
	}
	return nil
}

// requireMember 要求用户是群成员
func (s *MessageService) requireMember(ctx context.Context, groupID, userID int64) (*model.GroupMember, error) {
	member, err := s.groupReader.GetMember(ctx, groupID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrGroupMemberNotFound) {
			return nil, apperrors.ErrNotGroupMember
		}
		return nil, err
	}
	return member, nil
}
