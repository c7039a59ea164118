package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sudooom.im.groupchat/internal/service"
	apperrors "sudooom.im.groupchat/pkg/errors"
	"sudooom.im.groupchat/pkg/response"
)

// MockGroupService 模拟群组服务
type MockGroupService struct {
	PromoteFunc func(ctx context.Context, actorID int64, req *service.PromoteRequest) error
}

func (m *MockGroupService) Promote(ctx context.Context, actorID int64, req *service.PromoteRequest) error {
	if m.PromoteFunc != nil {
		return m.PromoteFunc(ctx, actorID, req)
	}
	return nil
}

// setupTestRouter 创建测试用的 gin 路由
func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

// APIResponse 用于解析响应体
type APIResponse struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func doRequest(t *testing.T, router *gin.Engine, method, path string, body any) (*httptest.ResponseRecorder, *APIResponse) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var resp APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w, &resp
}

// 由于 Handler 使用具体类型 *service.GroupService，
// 这里用内联路由加 mock service 的方式直接测试 HTTP 层
func TestPromoteRoute(t *testing.T) {
	newRouter := func(mock *MockGroupService) *gin.Engine {
		router := setupTestRouter()
		router.POST("/groups/promote", func(c *gin.Context) {
			var req service.PromoteRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				response.ErrorWithMsg(c, response.CodeInvalidParams, err.Error())
				return
			}
			if err := mock.Promote(c.Request.Context(), 1, &req); err != nil {
				response.ErrorFromAppError(c, err)
				return
			}
			response.Success(c, nil)
		})
		return router
	}

	t.Run("晋升成功", func(t *testing.T) {
		mock := &MockGroupService{
			PromoteFunc: func(ctx context.Context, actorID int64, req *service.PromoteRequest) error {
				assert.Equal(t, int64(100), req.GroupID)
				assert.Equal(t, int64(4), req.UserID)
				return nil
			},
		}
		w, resp := doRequest(t, newRouter(mock), http.MethodPost, "/groups/promote", gin.H{
			"groupId": "100", "userId": "4", "role": "Officer",
		})
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, response.CodeSuccess, resp.Code)
	})

	t.Run("业务错误映射到响应码", func(t *testing.T) {
		mock := &MockGroupService{
			PromoteFunc: func(ctx context.Context, actorID int64, req *service.PromoteRequest) error {
				return apperrors.ErrAssistantExists
			},
		}
		w, resp := doRequest(t, newRouter(mock), http.MethodPost, "/groups/promote", gin.H{
			"groupId": "100", "userId": "4", "role": "Assistant",
		})
		assert.Equal(t, http.StatusOK, w.Code, "业务错误仍返回 200")
		assert.Equal(t, apperrors.CodeAssistantExists, resp.Code)
		assert.NotEmpty(t, resp.Message)
	})

	t.Run("参数缺失", func(t *testing.T) {
		_, resp := doRequest(t, newRouter(&MockGroupService{}), http.MethodPost, "/groups/promote", gin.H{})
		assert.Equal(t, response.CodeInvalidParams, resp.Code)
	})
}

func TestParseIDRoute(t *testing.T) {
	// parseID 失败时不会触达 service，handler 可以用零值构造
	h := NewMessageHandler(nil)
	router := setupTestRouter()
	router.PUT("/groups/group-messages/:messageId/ignore", h.Ignore)

	_, resp := doRequest(t, router, http.MethodPut, "/groups/group-messages/not-a-number/ignore", nil)
	assert.Equal(t, response.CodeInvalidParams, resp.Code)
}
