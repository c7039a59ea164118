package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "sudooom.im.groupchat/pkg/errors"
)

// Response 统一响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// 错误码常量（使用 pkg/errors 包的定义）
const (
	CodeSuccess = apperrors.CodeSuccess

	// 认证相关 10000-10999
	CodeEmailExists        = apperrors.CodeEmailExists
	CodeInvalidCredentials = apperrors.CodeInvalidCredentials
	CodeTokenInvalid       = apperrors.CodeTokenInvalid
	CodeTokenExpired       = apperrors.CodeTokenExpired
	CodePasswordTooShort   = apperrors.CodePasswordTooShort

	// 用户相关 11000-11999
	CodeUserNotFound  = apperrors.CodeUserNotFound
	CodeInvalidParams = apperrors.CodeInvalidParams

	// 群组相关 12000-12999
	CodeGroupNotFound   = apperrors.CodeGroupNotFound
	CodeNotGroupMember  = apperrors.CodeNotGroupMember
	CodeForbidden       = apperrors.CodeForbidden
	CodeAlreadyMember   = apperrors.CodeAlreadyMember
	CodeAssistantExists = apperrors.CodeAssistantExists
	CodeHandleTaken     = apperrors.CodeHandleTaken
	CodeMemberNotFound  = apperrors.CodeMemberNotFound

	// 消息相关 13000-13999
	CodeMessageNotFound    = apperrors.CodeMessageNotFound
	CodeStrictReplyPending = apperrors.CodeStrictReplyPending
	CodeEmptyMessage       = apperrors.CodeEmptyMessage

	// 系统错误 50000-50999
	CodeServerError = apperrors.CodeServerError
	CodeDBError     = apperrors.CodeDBError
)

// 错误信息
var codeMessages = map[int]string{
	CodeSuccess:            "success",
	CodeEmailExists:        "邮箱已被注册",
	CodeInvalidCredentials: "邮箱或密码错误",
	CodeTokenInvalid:       "Token 无效",
	CodeTokenExpired:       "Token 已过期",
	CodePasswordTooShort:   "密码至少需要 6 个字符",
	CodeUserNotFound:       "用户不存在",
	CodeInvalidParams:      "参数校验失败",
	CodeGroupNotFound:      "群组不存在",
	CodeNotGroupMember:     "你不是该群组成员",
	CodeForbidden:          "没有权限执行该操作",
	CodeAlreadyMember:      "用户已在群组中",
	CodeAssistantExists:    "每个群组只允许一名副队长",
	CodeHandleTaken:        "该群内昵称ID已被占用",
	CodeMemberNotFound:     "目标成员不在群组中",
	CodeMessageNotFound:    "消息不存在",
	CodeStrictReplyPending: "请先回应未处理的强制重要消息，才能继续发言",
	CodeEmptyMessage:       "消息内容或图片不能为空",
	CodeServerError:        "服务器内部错误",
	CodeDBError:            "数据库错误",
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    CodeSuccess,
		Message: "success",
		Data:    data,
	})
}

// Error 错误响应
func Error(c *gin.Context, code int) {
	message := codeMessages[code]
	if message == "" {
		message = "unknown error"
	}
	c.JSON(http.StatusOK, Response{
		Code:    code,
		Message: message,
		Data:    nil,
	})
}

// ErrorWithMsg 自定义错误消息
func ErrorWithMsg(c *gin.Context, code int, message string) {
	c.JSON(http.StatusOK, Response{
		Code:    code,
		Message: message,
		Data:    nil,
	})
}

// ErrorFromAppError 从 AppError 生成错误响应
func ErrorFromAppError(c *gin.Context, err error) {
	code := apperrors.GetCode(err)
	message := apperrors.GetMessage(err)
	c.JSON(http.StatusOK, Response{
		Code:    code,
		Message: message,
		Data:    nil,
	})
}

// Unauthorized 未认证
func Unauthorized(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, Response{
		Code:    CodeTokenInvalid,
		Message: codeMessages[CodeTokenInvalid],
		Data:    nil,
	})
}

// TooManyRequests 请求过多
func TooManyRequests(c *gin.Context) {
	c.JSON(http.StatusTooManyRequests, Response{
		Code:    apperrors.CodeTooManyRequest,
		Message: "请求过于频繁，请稍后再试",
		Data:    nil,
	})
}
