package model

import "time"

// Role 群内角色
type Role string

const (
	RoleLeader    Role = "Leader"    // 队长（创建者初始角色）
	RoleAssistant Role = "Assistant" // 副队长（每个群至多一名）
	RoleOfficer   Role = "Officer"   // 干事
	RoleMember    Role = "Member"    // 普通成员
)

// Valid 判断角色是否合法
func (r Role) Valid() bool {
	switch r {
	case RoleLeader, RoleAssistant, RoleOfficer, RoleMember:
		return true
	}
	return false
}

// Group 群组
type Group struct {
	ID        int64     `json:"id,string" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// GroupMember 群成员
// Handle 是成员在群内自选的唯一ID，区别于系统账号；群内不区分大小写唯一
type GroupMember struct {
	GroupID     int64     `json:"groupId,string" db:"group_id"`
	UserID      int64     `json:"userId,string" db:"user_id"`
	Role        Role      `json:"role" db:"role"`
	DisplayName string    `json:"displayName" db:"display_name"`
	Handle      string    `json:"handle" db:"handle"`
	JoinedAt    time.Time `json:"joinedAt" db:"joined_at"`
}

// GroupWithRole 用户视角的群组（带本人角色）
type GroupWithRole struct {
	ID   int64  `json:"id,string"`
	Name string `json:"name"`
	Role Role   `json:"role"`
}

// GroupDetail 群组详情（含成员列表）
type GroupDetail struct {
	Group
	Members []*GroupMemberWithUser `json:"members"`
}

// GroupMemberWithUser 带用户信息的群成员
type GroupMemberWithUser struct {
	GroupMember
	Fullname string `json:"fullname"`
	Avatar   string `json:"avatar"`
}
