package event

import "fmt"

// 事件名，客户端按 event 字段分发
const (
	EventGroupMessage      = "groupMessage"
	EventRoleUpdated       = "groupMemberRoleUpdated"
	EventRespondersUpdated = "importantMessageRespondersUpdated"
	EventMessageIgnored    = "importantMessageIgnored"
	EventNewDirectMessage  = "newMessage"
)

// BuildGroupSubject 群事件主题: im.group.{groupID}.events
func BuildGroupSubject(groupID int64) string {
	return fmt.Sprintf("im.group.%d.events", groupID)
}

// BuildUserSubject 用户事件主题: im.user.{userID}.events
func BuildUserSubject(userID int64) string {
	return fmt.Sprintf("im.user.%d.events", userID)
}
