package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"sudooom.im.groupchat/internal/database"
	"sudooom.im.groupchat/internal/model"
)

var ErrMessageNotFound = errors.New("message not found")

// MessageRepository 群消息与私聊消息数据访问
type MessageRepository struct {
	db database.DB
}

func NewMessageRepository(db database.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Create(ctx context.Context, msg *model.GroupMessage) error {
	query := `
		INSERT INTO group_messages (id, group_id, sender_id, text, image, message_type, strict_scope, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now())
		RETURNING created_at
	`
	err := r.db.QueryRow(ctx, query,
		msg.ID, msg.GroupID, msg.SenderID, msg.Text, msg.Image, msg.MessageType, msg.StrictScope).
		Scan(&msg.CreatedAt)
	if err != nil {
		return fmt.Errorf("create group message: %w", err)
	}
	return nil
}

func (r *MessageRepository) GetByID(ctx context.Context, messageID int64) (*model.GroupMessage, error) {
	query := `
		SELECT id, group_id, sender_id, text, image, message_type, strict_scope, created_at
		FROM group_messages WHERE id = $1
	`
	msg := &model.GroupMessage{}
	err := r.db.QueryRow(ctx, query, messageID).Scan(
		&msg.ID, &msg.GroupID, &msg.SenderID, &msg.Text, &msg.Image,
		&msg.MessageType, &msg.StrictScope, &msg.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMessageNotFound
		}
		return nil, fmt.Errorf("get group message: %w", err)
	}
	return msg, nil
}

// ListVisible 按时间顺序列出群内某时刻之后的消息，附带发送者资料
// since 用于实现成员入群时间水位线：入群前的消息不可见
func (r *MessageRepository) ListVisible(ctx context.Context, groupID int64, since time.Time) ([]*model.GroupMessageView, error) {
	query := `
		SELECT gm.id, gm.group_id, gm.sender_id, gm.text, gm.image, gm.message_type, gm.strict_scope, gm.created_at,
		       u.avatar, COALESCE(NULLIF(mem.display_name, ''), u.fullname)
		FROM group_messages gm
		JOIN users u ON u.id = gm.sender_id
		LEFT JOIN group_members mem ON mem.group_id = gm.group_id AND mem.user_id = gm.sender_id
		WHERE gm.group_id = $1 AND gm.created_at >= $2
		ORDER BY gm.created_at
	`
	rows, err := r.db.Query(ctx, query, groupID, since)
	if err != nil {
		return nil, fmt.Errorf("list group messages: %w", err)
	}
	defer rows.Close()

	var views []*model.GroupMessageView
	for rows.Next() {
		v := &model.GroupMessageView{}
		if err := rows.Scan(
			&v.ID, &v.GroupID, &v.Sender.ID, &v.Text, &v.Image, &v.MessageType, &v.StrictScope, &v.CreatedAt,
			&v.Sender.Avatar, &v.Sender.DisplayName); err != nil {
			return nil, fmt.Errorf("scan group message: %w", err)
		}
		views = append(views, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.attachResponders(ctx, views); err != nil {
		return nil, err
	}
	if err := r.attachIgnores(ctx, views); err != nil {
		return nil, err
	}
	return views, nil
}

// attachResponders 批量装配回应记录
func (r *MessageRepository) attachResponders(ctx context.Context, views []*model.GroupMessageView) error {
	ids := messageIDs(views)
	if len(ids) == 0 {
		return nil
	}
	query := `
		SELECT message_id, user_id, status, info_message, responded_at
		FROM message_responders WHERE message_id = ANY($1)
		ORDER BY responded_at
	`
	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return fmt.Errorf("list responders: %w", err)
	}
	defer rows.Close()

	byID := viewIndex(views)
	for rows.Next() {
		var messageID int64
		resp := &model.Responder{}
		if err := rows.Scan(&messageID, &resp.UserID, &resp.Status, &resp.InfoMessage, &resp.RespondedAt); err != nil {
			return fmt.Errorf("scan responder: %w", err)
		}
		if v, ok := byID[messageID]; ok {
			v.Responders = append(v.Responders, resp)
		}
	}
	return rows.Err()
}

// attachIgnores 批量装配忽略记录
func (r *MessageRepository) attachIgnores(ctx context.Context, views []*model.GroupMessageView) error {
	ids := messageIDs(views)
	if len(ids) == 0 {
		return nil
	}
	query := `
		SELECT message_id, user_id FROM message_ignores WHERE message_id = ANY($1)
	`
	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return fmt.Errorf("list ignores: %w", err)
	}
	defer rows.Close()

	byID := viewIndex(views)
	for rows.Next() {
		var messageID, userID int64
		if err := rows.Scan(&messageID, &userID); err != nil {
			return fmt.Errorf("scan ignore: %w", err)
		}
		if v, ok := byID[messageID]; ok {
			v.IgnoredBy = append(v.IgnoredBy, userID)
		}
	}
	return rows.Err()
}

func messageIDs(views []*model.GroupMessageView) []int64 {
	ids := make([]int64, 0, len(views))
	for _, v := range views {
		ids = append(ids, v.ID)
	}
	return ids
}

func viewIndex(views []*model.GroupMessageView) map[int64]*model.GroupMessageView {
	byID := make(map[int64]*model.GroupMessageView, len(views))
	for _, v := range views {
		byID[v.ID] = v
	}
	return byID
}

// HasUnresolvedStrict 判断用户在群内是否存在未回应的强制重要消息
// scope=All 对所有人生效（含消息发送者本人），scope=MembersOnly 只对 Member 角色生效。
// joinedAt 之前的消息对该用户不可见，同样不计入闸门
func (r *MessageRepository) HasUnresolvedStrict(ctx context.Context, groupID, userID int64, role model.Role, joinedAt time.Time) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM group_messages gm
			WHERE gm.group_id = $1
			  AND gm.message_type = 'StrictReply'
			  AND gm.created_at >= $4
			  AND (gm.strict_scope = 'All' OR (gm.strict_scope = 'MembersOnly' AND $3 = 'Member'))
			  AND NOT EXISTS(
				SELECT 1 FROM message_responders mr
				WHERE mr.message_id = gm.id AND mr.user_id = $2
			  )
		)
	`
	var exists bool
	if err := r.db.QueryRow(ctx, query, groupID, userID, role, joinedAt).Scan(&exists); err != nil {
		return false, fmt.Errorf("check unresolved strict: %w", err)
	}
	return exists, nil
}

// UpsertResponder 记录回应，重复回应时覆盖旧值
func (r *MessageRepository) UpsertResponder(ctx context.Context, messageID int64, resp *model.Responder) error {
	query := `
		INSERT INTO message_responders (message_id, user_id, status, info_message, responded_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (message_id, user_id) DO UPDATE
		SET status = EXCLUDED.status, info_message = EXCLUDED.info_message, responded_at = now()
	`
	_, err := r.db.Exec(ctx, query, messageID, resp.UserID, resp.Status, resp.InfoMessage)
	if err != nil {
		return fmt.Errorf("upsert responder: %w", err)
	}
	return nil
}

// AddIgnore 记录忽略，重复忽略是幂等的
func (r *MessageRepository) AddIgnore(ctx context.Context, messageID, userID int64) error {
	query := `
		INSERT INTO message_ignores (message_id, user_id, ignored_at)
		VALUES ($1, $2, now())
		ON CONFLICT (message_id, user_id) DO NOTHING
	`
	_, err := r.db.Exec(ctx, query, messageID, userID)
	if err != nil {
		return fmt.Errorf("add ignore: %w", err)
	}
	return nil
}

// ListResponders 列出消息的全部回应记录
func (r *MessageRepository) ListResponders(ctx context.Context, messageID int64) ([]*model.Responder, error) {
	query := `
		SELECT user_id, status, info_message, responded_at
		FROM message_responders WHERE message_id = $1
		ORDER BY responded_at
	`
	rows, err := r.db.Query(ctx, query, messageID)
	if err != nil {
		return nil, fmt.Errorf("list responders: %w", err)
	}
	defer rows.Close()

	var responders []*model.Responder
	for rows.Next() {
		resp := &model.Responder{}
		if err := rows.Scan(&resp.UserID, &resp.Status, &resp.InfoMessage, &resp.RespondedAt); err != nil {
			return nil, fmt.Errorf("scan responder: %w", err)
		}
		responders = append(responders, resp)
	}
	return responders, rows.Err()
}

// ListIgnores 列出消息的全部忽略者
func (r *MessageRepository) ListIgnores(ctx context.Context, messageID int64) ([]int64, error) {
	query := `SELECT user_id FROM message_ignores WHERE message_id = $1 ORDER BY ignored_at`
	rows, err := r.db.Query(ctx, query, messageID)
	if err != nil {
		return nil, fmt.Errorf("list ignores: %w", err)
	}
	defer rows.Close()

	var userIDs []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan ignore: %w", err)
		}
		userIDs = append(userIDs, id)
	}
	return userIDs, rows.Err()
}

// CreateDirect 创建私聊消息
func (r *MessageRepository) CreateDirect(ctx context.Context, msg *model.DirectMessage) error {
	query := `
		INSERT INTO direct_messages (id, sender_id, receiver_id, text, image, created_at)
		VALUES ($1, $2, $3, $4, $5, now())
		RETURNING created_at
	`
	err := r.db.QueryRow(ctx, query, msg.ID, msg.SenderID, msg.ReceiverID, msg.Text, msg.Image).
		Scan(&msg.CreatedAt)
	if err != nil {
		return fmt.Errorf("create direct message: %w", err)
	}
	return nil
}

// ListDirectBetween 列出两用户之间的私聊消息，按时间排序
func (r *MessageRepository) ListDirectBetween(ctx context.Context, userA, userB int64) ([]*model.DirectMessage, error) {
	query := `
		SELECT id, sender_id, receiver_id, text, image, created_at
		FROM direct_messages
		WHERE (sender_id = $1 AND receiver_id = $2) OR (sender_id = $2 AND receiver_id = $1)
		ORDER BY created_at
	`
	rows, err := r.db.Query(ctx, query, userA, userB)
	if err != nil {
		return nil, fmt.Errorf("list direct messages: %w", err)
	}
	defer rows.Close()

	var msgs []*model.DirectMessage
	for rows.Next() {
		msg := &model.DirectMessage{}
		if err := rows.Scan(&msg.ID, &msg.SenderID, &msg.ReceiverID, &msg.Text, &msg.Image, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan direct message: %w", err)
		}
		msgs = append(msgs, msg)
	}
	return msgs, rows.Err()
}
