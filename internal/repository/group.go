package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"sudooom.im.groupchat/internal/database"
	"sudooom.im.groupchat/internal/model"
)

var (
	ErrGroupNotFound       = errors.New("group not found")
	ErrGroupMemberNotFound = errors.New("group member not found")
	ErrAlreadyGroupMember  = errors.New("already a group member")
	ErrHandleTaken         = errors.New("handle already taken in group")
	ErrAssistantExists     = errors.New("group already has an assistant")
)

// GroupRepository 群组数据访问
type GroupRepository struct {
	db database.DB
}

func NewGroupRepository(db database.DB) *GroupRepository {
	return &GroupRepository{db: db}
}

// Create 创建群组并把创建者写入为 Leader，同一事务内完成
// creatorName 写入创建者的群内昵称（建群时取用户全名）
func (r *GroupRepository) Create(ctx context.Context, group *model.Group, creatorID int64, creatorName string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO groups (id, name, created_at) VALUES ($1, $2, now())`,
		group.ID, group.Name)
	if err != nil {
		return fmt.Errorf("insert group: %w", err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO group_members (group_id, user_id, role, display_name, joined_at) VALUES ($1, $2, $3, $4, now())`,
		group.ID, creatorID, model.RoleLeader, creatorName)
	if err != nil {
		return fmt.Errorf("insert creator member: %w", err)
	}

	return tx.Commit(ctx)
}

func (r *GroupRepository) GetByID(ctx context.Context, groupID int64) (*model.Group, error) {
	query := `SELECT id, name, created_at FROM groups WHERE id = $1`
	group := &model.Group{}
	err := r.db.QueryRow(ctx, query, groupID).Scan(&group.ID, &group.Name, &group.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrGroupNotFound
		}
		return nil, fmt.Errorf("get group: %w", err)
	}
	return group, nil
}

// GetMember 查询用户在群中的成员记录
func (r *GroupRepository) GetMember(ctx context.Context, groupID, userID int64) (*model.GroupMember, error) {
	query := `
		SELECT group_id, user_id, role, display_name, handle, joined_at
		FROM group_members WHERE group_id = $1 AND user_id = $2
	`
	m := &model.GroupMember{}
	err := r.db.QueryRow(ctx, query, groupID, userID).Scan(
		&m.GroupID, &m.UserID, &m.Role, &m.DisplayName, &m.Handle, &m.JoinedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrGroupMemberNotFound
		}
		return nil, fmt.Errorf("get group member: %w", err)
	}
	return m, nil
}

// GetMembers 查询群内全部成员，附带用户资料
func (r *GroupRepository) GetMembers(ctx context.Context, groupID int64) ([]*model.GroupMemberWithUser, error) {
	query := `
		SELECT gm.group_id, gm.user_id, gm.role, gm.display_name, gm.handle, gm.joined_at,
		       u.fullname, u.avatar
		FROM group_members gm
		JOIN users u ON u.id = gm.user_id
		WHERE gm.group_id = $1
		ORDER BY gm.joined_at
	`
	rows, err := r.db.Query(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("list group members: %w", err)
	}
	defer rows.Close()

	var members []*model.GroupMemberWithUser
	for rows.Next() {
		m := &model.GroupMemberWithUser{}
		if err := rows.Scan(
			&m.GroupID, &m.UserID, &m.Role, &m.DisplayName, &m.Handle, &m.JoinedAt,
			&m.Fullname, &m.Avatar); err != nil {
			return nil, fmt.Errorf("scan group member: %w", err)
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

// GetUserGroups 查询用户加入的全部群，带用户在群内的角色
func (r *GroupRepository) GetUserGroups(ctx context.Context, userID int64) ([]*model.GroupWithRole, error) {
	query := `
		SELECT g.id, g.name, gm.role
		FROM groups g
		JOIN group_members gm ON gm.group_id = g.id
		WHERE gm.user_id = $1
		ORDER BY g.created_at DESC
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list user groups: %w", err)
	}
	defer rows.Close()

	var groups []*model.GroupWithRole
	for rows.Next() {
		g := &model.GroupWithRole{}
		if err := rows.Scan(&g.ID, &g.Name, &g.Role); err != nil {
			return nil, fmt.Errorf("scan user group: %w", err)
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

// AddMember 添加群成员，已存在时返回 ErrAlreadyGroupMember
func (r *GroupRepository) AddMember(ctx context.Context, groupID, userID int64, role model.Role) error {
	query := `
		INSERT INTO group_members (group_id, user_id, role, joined_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (group_id, user_id) DO NOTHING
	`
	tag, err := r.db.Exec(ctx, query, groupID, userID, role)
	if err != nil {
		return fmt.Errorf("add group member: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAlreadyGroupMember
	}
	return nil
}

// UpdateMemberRole 更新成员角色，唯一索引保证一个群最多一个 Assistant
func (r *GroupRepository) UpdateMemberRole(ctx context.Context, groupID, userID int64, role model.Role) error {
	query := `UPDATE group_members SET role = $1 WHERE group_id = $2 AND user_id = $3`
	tag, err := r.db.Exec(ctx, query, role, groupID, userID)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrAssistantExists
		}
		return fmt.Errorf("update member role: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrGroupMemberNotFound
	}
	return nil
}

// UpdateMemberIdentity 更新成员的群内昵称与 handle，handle 冲突由唯一索引拦截
func (r *GroupRepository) UpdateMemberIdentity(ctx context.Context, groupID, userID int64, displayName, handle string) error {
	query := `
		UPDATE group_members SET display_name = $1, handle = $2
		WHERE group_id = $3 AND user_id = $4
	`
	tag, err := r.db.Exec(ctx, query, displayName, handle, groupID, userID)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrHandleTaken
		}
		return fmt.Errorf("update member identity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrGroupMemberNotFound
	}
	return nil
}

// HasAssistant 判断群内是否已有 Assistant
func (r *GroupRepository) HasAssistant(ctx context.Context, groupID int64) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM group_members WHERE group_id = $1 AND role = $2)`
	var exists bool
	if err := r.db.QueryRow(ctx, query, groupID, model.RoleAssistant).Scan(&exists); err != nil {
		return false, fmt.Errorf("check assistant exists: %w", err)
	}
	return exists, nil
}

// isUniqueViolation 判断是否违反唯一约束
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
