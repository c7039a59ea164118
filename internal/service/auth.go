package service

import (
	"context"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"

	"sudooom.im.groupchat/internal/model"
	"sudooom.im.groupchat/internal/repository"
	apperrors "sudooom.im.groupchat/pkg/errors"
	"sudooom.im.groupchat/pkg/jwt"
	"sudooom.im.groupchat/pkg/snowflake"
)

// UserStore 用户存取接口
type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	UpdateAvatar(ctx context.Context, userID int64, avatar string) error
	ListExcept(ctx context.Context, userID int64) ([]*model.User, error)
}

// TokenStore 登录态存取接口
type TokenStore interface {
	SaveToken(ctx context.Context, userInfo *repository.UserTokenInfo, accessToken string, expiration time.Duration) error
	DeleteToken(ctx context.Context, accessToken string) error
	DeleteOldToken(ctx context.Context, userID int64, platform string) error
}

// SignupRequest 注册请求
type SignupRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Fullname string `json:"fullname" binding:"required,min=1,max=100"`
	Password string `json:"password" binding:"required"`
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	DeviceID string `json:"device_id"`
	Platform string `json:"platform"`
}

// LoginResponse 登录响应
type LoginResponse struct {
	User         *model.User `json:"user"`
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	ExpiresAt    int64       `json:"expires_at"`
}

// AuthService 认证服务
type AuthService struct {
	userStore  UserStore
	tokenStore TokenStore
	jwtService *jwt.Service
	node       *snowflake.Node
}

// NewAuthService 创建认证服务
func NewAuthService(userStore UserStore, tokenStore TokenStore, jwtService *jwt.Service, node *snowflake.Node) *AuthService {
	return &AuthService{
		userStore:  userStore,
		tokenStore: tokenStore,
		jwtService: jwtService,
		node:       node,
	}
}

// Signup 用户注册
func (s *AuthService) Signup(ctx context.Context, req *SignupRequest) (*model.User, error) {
	if len(req.Password) < 6 {
		return nil, apperrors.ErrPasswordTooShort
	}

	// 检查邮箱是否已注册
	exists, err := s.userStore.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.ErrEmailExists
	}

	// 密码加密
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		ID:           s.node.Generate().Int64(),
		Email:        req.Email,
		Fullname:     req.Fullname,
		PasswordHash: string(passwordHash),
		Status:       model.UserStatusNormal,
	}

	if err := s.userStore.Create(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// Login 用户登录
func (s *AuthService) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	user, err := s.userStore.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}

	// 验证密码
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, apperrors.ErrInvalidCredentials
	}

	if user.Status != model.UserStatusNormal {
		return nil, apperrors.ErrInvalidCredentials
	}

	platform := req.Platform
	if platform == "" {
		platform = string(jwt.PlatformWeb)
	}

	// 生成 Token
	tokenPair, err := s.jwtService.GenerateTokenPair(user.ID, req.DeviceID, jwt.Platform(platform))
	if err != nil {
		return nil, err
	}

	// 同平台重复登录时清理旧 Token
	if err := s.tokenStore.DeleteOldToken(ctx, user.ID, platform); err != nil {
		return nil, err
	}

	userInfo := &repository.UserTokenInfo{
		UserID:   user.ID,
		Email:    user.Email,
		Fullname: user.Fullname,
		Avatar:   user.Avatar,
		DeviceID: req.DeviceID,
		Platform: platform,
	}
	if err := s.tokenStore.SaveToken(ctx, userInfo, tokenPair.AccessToken, s.jwtService.GetAccessExpire()); err != nil {
		return nil, err
	}

	return &LoginResponse{
		User:         user,
		AccessToken:  tokenPair.AccessToken,
		RefreshToken: tokenPair.RefreshToken,
		ExpiresAt:    tokenPair.ExpiresAt,
	}, nil
}

// Logout 用户登出
func (s *AuthService) Logout(ctx context.Context, accessToken string) error {
	return s.tokenStore.DeleteToken(ctx, accessToken)
}

// GetUser 查询用户资料
func (s *AuthService) GetUser(ctx context.Context, userID int64) (*model.User, error) {
	user, err := s.userStore.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// UpdateAvatar 更新头像
func (s *AuthService) UpdateAvatar(ctx context.Context, userID int64, avatar string) (*model.User, error) {
	if err := s.userStore.UpdateAvatar(ctx, userID, avatar); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, err
	}
	return s.GetUser(ctx, userID)
}

// ListUsers 列出除本人外的用户（用于发起单聊）
func (s *AuthService) ListUsers(ctx context.Context, userID int64) ([]*model.User, error) {
	return s.userStore.ListExcept(ctx, userID)
}
