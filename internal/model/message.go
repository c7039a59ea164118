package model

import "time"

// MessageType 群消息类型
type MessageType string

const (
	MessageTypeNormal      MessageType = "Normal"      // 普通消息
	MessageTypeShouldReply MessageType = "ShouldReply" // 建议回应的重要消息
	MessageTypeStrictReply MessageType = "StrictReply" // 必须回应的重要消息（阻塞发言）
)

// StrictScope 强制回应的生效范围
type StrictScope string

const (
	ScopeNone        StrictScope = "None"        // 非强制消息
	ScopeMembersOnly StrictScope = "MembersOnly" // 仅普通成员必须回应
	ScopeAll         StrictScope = "All"         // 全员必须回应
)

// ResponseStatus 重要消息回应状态
type ResponseStatus string

const (
	ResponseSuccess ResponseStatus = "Success" // 已完成
	ResponseUnable  ResponseStatus = "Unable"  // 无法完成
)

// Valid 判断回应状态是否合法
func (s ResponseStatus) Valid() bool {
	return s == ResponseSuccess || s == ResponseUnable
}

// DeriveMessageType 按请求的类型推导最终的消息类型与生效范围
// 服务端永远重新推导，不信任客户端提交的组合
func DeriveMessageType(requestedType, requestedScope string) (MessageType, StrictScope) {
	switch requestedType {
	case string(MessageTypeStrictReply):
		if requestedScope == string(ScopeAll) {
			return MessageTypeStrictReply, ScopeAll
		}
		return MessageTypeStrictReply, ScopeMembersOnly
	case string(MessageTypeShouldReply), "NormalImportant":
		return MessageTypeShouldReply, ScopeNone
	default:
		return MessageTypeNormal, ScopeNone
	}
}

// GroupMessage 群消息
type GroupMessage struct {
	ID          int64       `json:"id,string" db:"id"`
	GroupID     int64       `json:"groupId,string" db:"group_id"`
	SenderID    int64       `json:"senderId,string" db:"sender_id"`
	Text        string      `json:"text" db:"text"`
	Image       string      `json:"image" db:"image"`
	MessageType MessageType `json:"messageType" db:"message_type"`
	StrictScope StrictScope `json:"strictScope" db:"strict_scope"`
	CreatedAt   time.Time   `json:"createdAt" db:"created_at"`
}

// Responder 重要消息的单条回应记录
// 每个用户在一条消息上至多一条记录，后写覆盖先写
type Responder struct {
	UserID      int64          `json:"userId,string" db:"user_id"`
	Status      ResponseStatus `json:"status" db:"status"`
	InfoMessage string         `json:"infoMessage" db:"info_message"`
	RespondedAt time.Time      `json:"respondedAt" db:"responded_at"`
}

// MessageSender 消息发送者的展示信息
type MessageSender struct {
	ID          int64  `json:"id,string"`
	Avatar      string `json:"avatar"`
	DisplayName string `json:"displayName"`
}

// GroupMessageView 群消息的完整视图（含发送者展示信息与回应状态）
type GroupMessageView struct {
	ID          int64         `json:"id,string"`
	GroupID     int64         `json:"groupId,string"`
	Sender      MessageSender `json:"sender"`
	Text        string        `json:"text"`
	Image       string        `json:"image"`
	MessageType MessageType   `json:"messageType"`
	StrictScope StrictScope   `json:"strictScope"`
	Responders  []*Responder  `json:"responders"`
	IgnoredBy   []int64       `json:"ignoredBy"`
	CreatedAt   time.Time     `json:"createdAt"`
}

// DirectMessage 单聊消息
type DirectMessage struct {
	ID         int64     `json:"id,string" db:"id"`
	SenderID   int64     `json:"senderId,string" db:"sender_id"`
	ReceiverID int64     `json:"receiverId,string" db:"receiver_id"`
	Text       string    `json:"text" db:"text"`
	Image      string    `json:"image" db:"image"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
}
