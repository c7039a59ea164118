package model

import "time"

// User 用户模型
type User struct {
	ID           int64     `json:"id,string" db:"id"`
	Email        string    `json:"email" db:"email"`
	Fullname     string    `json:"fullname" db:"fullname"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Avatar       string    `json:"avatar" db:"avatar"`
	Status       int       `json:"status" db:"status"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// UserStatus 用户状态
const (
	UserStatusNormal   = 0 // 正常
	UserStatusDisabled = 1 // 禁用
)
