package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"sudooom.im.groupchat/internal/model"
	"sudooom.im.groupchat/internal/repository"
	"sudooom.im.groupchat/pkg/snowflake"
)

// memberKey 群成员键
type memberKey struct {
	groupID int64
	userID  int64
}

// fakeGroupStore 内存实现的群组存储
type fakeGroupStore struct {
	groups       map[int64]*model.Group
	members      map[memberKey]*model.GroupMember
	handleOwners map[string]int64 // groupID:lower(handle) -> userID
}

func newFakeGroupStore() *fakeGroupStore {
	return &fakeGroupStore{
		groups:       make(map[int64]*model.Group),
		members:      make(map[memberKey]*model.GroupMember),
		handleOwners: make(map[string]int64),
	}
}

func (f *fakeGroupStore) Create(_ context.Context, group *model.Group, creatorID int64, creatorName string) error {
	f.groups[group.ID] = group
	f.members[memberKey{group.ID, creatorID}] = &model.GroupMember{
		GroupID:     group.ID,
		UserID:      creatorID,
		Role:        model.RoleLeader,
		DisplayName: creatorName,
		JoinedAt:    time.Now(),
	}
	return nil
}

func (f *fakeGroupStore) GetByID(_ context.Context, groupID int64) (*model.Group, error) {
	g, ok := f.groups[groupID]
	if !ok {
		return nil, repository.ErrGroupNotFound
	}
	return g, nil
}

func (f *fakeGroupStore) GetMember(_ context.Context, groupID, userID int64) (*model.GroupMember, error) {
	m, ok := f.members[memberKey{groupID, userID}]
	if !ok {
		return nil, repository.ErrGroupMemberNotFound
	}
	return m, nil
}

func (f *fakeGroupStore) GetMembers(_ context.Context, groupID int64) ([]*model.GroupMemberWithUser, error) {
	var out []*model.GroupMemberWithUser
	for k, m := range f.members {
		if k.groupID == groupID {
			out = append(out, &model.GroupMemberWithUser{GroupMember: *m})
		}
	}
	return out, nil
}

func (f *fakeGroupStore) GetUserGroups(_ context.Context, userID int64) ([]*model.GroupWithRole, error) {
	var out []*model.GroupWithRole
	for k, m := range f.members {
		if k.userID == userID {
			out = append(out, &model.GroupWithRole{ID: k.groupID, Name: f.groups[k.groupID].Name, Role: m.Role})
		}
	}
	return out, nil
}

func (f *fakeGroupStore) AddMember(_ context.Context, groupID, userID int64, role model.Role) error {
	key := memberKey{groupID, userID}
	if _, ok := f.members[key]; ok {
		return repository.ErrAlreadyGroupMember
	}
	f.members[key] = &model.GroupMember{GroupID: groupID, UserID: userID, Role: role, JoinedAt: time.Now()}
	return nil
}

func (f *fakeGroupStore) UpdateMemberRole(_ context.Context, groupID, userID int64, role model.Role) error {
	m, ok := f.members[memberKey{groupID, userID}]
	if !ok {
		return repository.ErrGroupMemberNotFound
	}
	// 模拟部分唯一索引：每群至多一个 Assistant
	if role == model.RoleAssistant {
		for k, other := range f.members {
			if k.groupID == groupID && k.userID != userID && other.Role == model.RoleAssistant {
				return repository.ErrAssistantExists
			}
		}
	}
	m.Role = role
	return nil
}

func (f *fakeGroupStore) UpdateMemberIdentity(_ context.Context, groupID, userID int64, displayName, handle string) error {
	m, ok := f.members[memberKey{groupID, userID}]
	if !ok {
		return repository.ErrGroupMemberNotFound
	}
	hk := handleKey(groupID, handle)
	if owner, taken := f.handleOwners[hk]; taken && owner != userID {
		return repository.ErrHandleTaken
	}
	f.handleOwners[hk] = userID
	m.DisplayName = displayName
	m.Handle = handle
	return nil
}

func (f *fakeGroupStore) HasAssistant(_ context.Context, groupID int64) (bool, error) {
	for k, m := range f.members {
		if k.groupID == groupID && m.Role == model.RoleAssistant {
			return true, nil
		}
	}
	return false, nil
}

func handleKey(groupID int64, handle string) string {
	return fmt.Sprintf("%d:%s", groupID, strings.ToLower(handle))
}

// fakeUserReader 内存实现的用户资料查询
type fakeUserReader struct {
	users map[int64]*model.User
}

// newFakeUserReader 预置用户 1-5（张一…张五）与晚加入场景用的 20
func newFakeUserReader() *fakeUserReader {
	f := &fakeUserReader{users: make(map[int64]*model.User)}
	names := []string{"张一", "张二", "张三", "张四", "张五"}
	for i, name := range names {
		id := int64(i + 1)
		f.users[id] = &model.User{
			ID:       id,
			Fullname: name,
			Avatar:   fmt.Sprintf("https://cdn.example.com/avatar/%d.png", id),
		}
	}
	f.users[20] = &model.User{ID: 20, Fullname: "王二十"}
	return f
}

func (f *fakeUserReader) GetByID(_ context.Context, id int64) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return u, nil
}

// fakeMessageStore 内存实现的消息存储，模拟发言闸门查询语义
type fakeMessageStore struct {
	messages   map[int64]*model.GroupMessage
	responders map[memberKey]*model.Responder // messageID/userID
	ignores    map[memberKey]bool
	direct     []*model.DirectMessage
}

func newFakeMessageStore() *fakeMessageStore {
	return &fakeMessageStore{
		messages:   make(map[int64]*model.GroupMessage),
		responders: make(map[memberKey]*model.Responder),
		ignores:    make(map[memberKey]bool),
	}
}

func (f *fakeMessageStore) Create(_ context.Context, msg *model.GroupMessage) error {
	msg.CreatedAt = time.Now()
	f.messages[msg.ID] = msg
	return nil
}

func (f *fakeMessageStore) GetByID(_ context.Context, messageID int64) (*model.GroupMessage, error) {
	m, ok := f.messages[messageID]
	if !ok {
		return nil, repository.ErrMessageNotFound
	}
	return m, nil
}

func (f *fakeMessageStore) ListVisible(_ context.Context, groupID int64, since time.Time) ([]*model.GroupMessageView, error) {
	var out []*model.GroupMessageView
	for _, m := range f.messages {
		if m.GroupID != groupID || m.CreatedAt.Before(since) {
			continue
		}
		out = append(out, &model.GroupMessageView{
			ID:          m.ID,
			GroupID:     m.GroupID,
			Sender:      model.MessageSender{ID: m.SenderID},
			Text:        m.Text,
			MessageType: m.MessageType,
			StrictScope: m.StrictScope,
			CreatedAt:   m.CreatedAt,
		})
	}
	return out, nil
}

func (f *fakeMessageStore) HasUnresolvedStrict(_ context.Context, groupID, userID int64, role model.Role, joinedAt time.Time) (bool, error) {
	for id, m := range f.messages {
		if m.GroupID != groupID || m.MessageType != model.MessageTypeStrictReply {
			continue
		}
		if m.CreatedAt.Before(joinedAt) {
			continue
		}
		if m.StrictScope == model.ScopeMembersOnly && role != model.RoleMember {
			continue
		}
		if _, responded := f.responders[memberKey{id, userID}]; !responded {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeMessageStore) UpsertResponder(_ context.Context, messageID int64, resp *model.Responder) error {
	resp.RespondedAt = time.Now()
	f.responders[memberKey{messageID, resp.UserID}] = resp
	return nil
}

func (f *fakeMessageStore) AddIgnore(_ context.Context, messageID, userID int64) error {
	f.ignores[memberKey{messageID, userID}] = true
	return nil
}

func (f *fakeMessageStore) ListResponders(_ context.Context, messageID int64) ([]*model.Responder, error) {
	var out []*model.Responder
	for k, r := range f.responders {
		if k.groupID == messageID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeMessageStore) ListIgnores(_ context.Context, messageID int64) ([]int64, error) {
	var out []int64
	for k := range f.ignores {
		if k.groupID == messageID {
			out = append(out, k.userID)
		}
	}
	return out, nil
}

func (f *fakeMessageStore) CreateDirect(_ context.Context, msg *model.DirectMessage) error {
	msg.CreatedAt = time.Now()
	f.direct = append(f.direct, msg)
	return nil
}

func (f *fakeMessageStore) ListDirectBetween(_ context.Context, userA, userB int64) ([]*model.DirectMessage, error) {
	var out []*model.DirectMessage
	for _, m := range f.direct {
		if (m.SenderID == userA && m.ReceiverID == userB) || (m.SenderID == userB && m.ReceiverID == userA) {
			out = append(out, m)
		}
	}
	return out, nil
}

// fakePublisher 记录发布的事件
type fakePublisher struct {
	roleEvents      []string
	messageEvents   int
	responderEvents int
	ignoreEvents    int
	directEvents    int
	lastResponders  []*model.Responder
	lastIgnoredBy   []int64
}

func (f *fakePublisher) PublishRoleUpdated(groupID, userID int64, role model.Role) {
	f.roleEvents = append(f.roleEvents, string(role))
}

func (f *fakePublisher) PublishGroupMessage(view *model.GroupMessageView) {
	f.messageEvents++
}

func (f *fakePublisher) PublishRespondersUpdated(groupID, messageID int64, responders []*model.Responder) {
	f.responderEvents++
	f.lastResponders = responders
}

func (f *fakePublisher) PublishMessageIgnored(groupID, messageID int64, ignoredBy []int64) {
	f.ignoreEvents++
	f.lastIgnoredBy = ignoredBy
}

func (f *fakePublisher) PublishDirectMessage(msg *model.DirectMessage) {
	f.directEvents++
}

func newTestNode() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
