package errors

import (
	"errors"
	"fmt"
)

// AppError 应用错误类型
// 用于统一管理业务错误，包含错误码和错误消息
type AppError struct {
	Code    int    // 错误码
	Message string // 用户可见的错误消息
	Err     error  // 原始错误（可选，用于调试）
}

// Error 实现 error 接口
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap 支持 errors.Unwrap
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewError 创建新错误
func NewError(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap 包装原始错误
func (e *AppError) Wrap(err error) *AppError {
	return &AppError{
		Code:    e.Code,
		Message: e.Message,
		Err:     err,
	}
}

// Is 判断是否为指定错误
func Is(err error, target *AppError) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == target.Code
	}
	return false
}

// GetCode 获取错误码，如果不是 AppError 返回默认错误码
func GetCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeServerError // 默认返回服务器错误
}

// GetMessage 获取错误消息
func GetMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "服务器内部错误"
}

// ============== 错误码定义 ==============

const (
	CodeSuccess = 0

	// 认证相关 10000-10999
	CodeEmailExists        = 10001
	CodeInvalidCredentials = 10002
	CodeTokenInvalid       = 10003
	CodeTokenExpired       = 10004
	CodePasswordTooShort   = 10005

	// 用户相关 11000-11999
	CodeUserNotFound  = 11001
	CodeInvalidParams = 11002

	// 群组相关 12000-12999
	CodeGroupNotFound   = 12001
	CodeNotGroupMember  = 12002
	CodeForbidden       = 12003
	CodeAlreadyMember   = 12004
	CodeAssistantExists = 12005
	CodeHandleTaken     = 12006
	CodeMemberNotFound  = 12007

	// 消息相关 13000-13999
	CodeMessageNotFound    = 13001
	CodeStrictReplyPending = 13002
	CodeEmptyMessage       = 13003

	// 系统错误 50000-50999
	CodeServerError    = 50001
	CodeDBError        = 50002
	CodeTooManyRequest = 50003
)

// ============== 预定义错误 ==============

// 认证相关
var (
	ErrEmailExists        = NewError(CodeEmailExists, "邮箱已被注册")
	ErrInvalidCredentials = NewError(CodeInvalidCredentials, "邮箱或密码错误")
	ErrTokenInvalid       = NewError(CodeTokenInvalid, "Token 无效")
	ErrTokenExpired       = NewError(CodeTokenExpired, "Token 已过期")
	ErrPasswordTooShort   = NewError(CodePasswordTooShort, "密码至少需要 6 个字符")
)

// 用户相关
var (
	ErrUserNotFound  = NewError(CodeUserNotFound, "用户不存在")
	ErrInvalidParams = NewError(CodeInvalidParams, "参数校验失败")
)

// 群组相关
var (
	ErrGroupNotFound   = NewError(CodeGroupNotFound, "群组不存在")
	ErrNotGroupMember  = NewError(CodeNotGroupMember, "你不是该群组成员")
	ErrForbidden       = NewError(CodeForbidden, "没有权限执行该操作")
	ErrAlreadyMember   = NewError(CodeAlreadyMember, "用户已在群组中")
	ErrAssistantExists = NewError(CodeAssistantExists, "每个群组只允许一名副队长")
	ErrHandleTaken     = NewError(CodeHandleTaken, "该群内昵称ID已被占用")
	ErrMemberNotFound  = NewError(CodeMemberNotFound, "目标成员不在群组中")
)

// 消息相关
var (
	ErrMessageNotFound    = NewError(CodeMessageNotFound, "消息不存在")
	ErrStrictReplyPending = NewError(CodeStrictReplyPending, "请先回应未处理的强制重要消息，才能继续发言")
	ErrEmptyMessage       = NewError(CodeEmptyMessage, "消息内容或图片不能为空")
)

// 系统相关
var (
	ErrServerError    = NewError(CodeServerError, "服务器内部错误")
	ErrDBError        = NewError(CodeDBError, "数据库错误")
	ErrTooManyRequest = NewError(CodeTooManyRequest, "请求过于频繁，请稍后再试")
)
