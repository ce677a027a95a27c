package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/Spinoza1124/emotion-labeling-refactoring/internal/dto"
	"github.com/Spinoza1124/emotion-labeling-refactoring/internal/model"
	"github.com/Spinoza1124/emotion-labeling-refactoring/internal/repository"
	"github.com/Spinoza1124/emotion-labeling-refactoring/pkg/jwt"
	"github.com/Spinoza1124/emotion-labeling-refactoring/pkg/redis"
)

var (
	ErrUserExists         = errors.New("用户名已存在")
	ErrInvalidCredentials = errors.New("用户名或密码错误")
	ErrInvalidToken       = errors.New("token 无效或已失效")
)

// AuthService 认证服务：注册、登录、Token 刷新与注销。
// 注销通过 Redis 黑名单使未过期的 Token 失效；Redis 不可用时
// 注销降级为客户端丢弃 Token。
type AuthService struct {
	repo   *repository.Repository
	jwtMgr *jwt.Manager
	rdb    *redis.Client
	logger *zap.Logger
}

// NewAuthService 创建认证服务
func NewAuthService(repo *repository.Repository, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *AuthService {
	return &AuthService{repo: repo, jwtMgr: jwtMgr, rdb: rdb, logger: logger}
}

// Register 注册新用户，角色固定为 annotator
func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.UserInfo, error) {
	_, err := s.repo.User.GetByUsername(ctx, req.Username)
	if err == nil {
		return nil, ErrUserExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username:     req.Username,
		DisplayName:  req.DisplayName,
		PasswordHash: string(hash),
		Role:         model.RoleAnnotator,
	}
	if err := s.repo.User.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("新用户注册", zap.String("username", user.Username))
	return &dto.UserInfo{
		Username:    user.Username,
		DisplayName: user.DisplayName,
		Role:        user.Role,
	}, nil
}

// Login 密码登录，签发 access / refresh 令牌对
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.repo.User.GetByUsername(ctx, req.Username)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	pair, err := s.issueTokenPair(user.Username, user.Role, req.RememberMe)
	if err != nil {
		return nil, err
	}

	return &dto.LoginResponse{
		TokenPair: *pair,
		User: dto.UserInfo{
			Username:    user.Username,
			DisplayName: user.DisplayName,
			Role:        user.Role,
		},
	}, nil
}

// Profile 返回当前登录用户的基本信息
func (s *AuthService) Profile(ctx context.Context, username string) (*dto.UserInfo, error) {
	user, err := s.repo.User.GetByUsername(ctx, username)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &dto.UserInfo{
		Username:    user.Username,
		DisplayName: user.DisplayName,
		Role:        user.Role,
	}, nil
}

// Refresh 用 refresh token 换取新的令牌对；旧 refresh token 立即拉黑，
// 不允许重复使用
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*dto.TokenPair, error) {
	claims, err := s.jwtMgr.ParseToken(refreshToken)
	if err != nil || claims.TokenType != "refresh" {
		return nil, ErrInvalidToken
	}

	if blacklisted, err := s.isBlacklisted(ctx, claims.ID); err == nil && blacklisted {
		return nil, ErrInvalidToken
	}

	pair, err := s.issueTokenPair(claims.Username, claims.Role, claims.RememberMe)
	if err != nil {
		return nil, err
	}

	s.blacklist(ctx, claims.ID, claims.ExpiresAt.Time)
	return pair, nil
}

// Logout 注销：把 access 与 refresh token 的 JWT ID 加入黑名单
func (s *AuthService) Logout(ctx context.Context, accessToken, refreshToken string) error {
	for _, token := range []string{accessToken, refreshToken} {
		if token == "" {
			continue
		}
		claims, err := s.jwtMgr.ParseToken(token)
		if err != nil {
			continue // 已过期或无效的 token 无需拉黑
		}
		s.blacklist(ctx, claims.ID, claims.ExpiresAt.Time)
	}
	return nil
}

// IsTokenBlacklisted 检查 JWT ID 是否已被拉黑（供认证中间件调用）
func (s *AuthService) IsTokenBlacklisted(ctx context.Context, jti string) bool {
	blacklisted, err := s.isBlacklisted(ctx, jti)
	if err != nil {
		return false
	}
	return blacklisted
}

func (s *AuthService) issueTokenPair(username, role string, rememberMe bool) (*dto.TokenPair, error) {
	access, err := s.jwtMgr.GenerateAccessToken(username, role)
	if err != nil {
		return nil, err
	}
	refresh, err := s.jwtMgr.GenerateRefreshToken(username, role, rememberMe)
	if err != nil {
		return nil, err
	}
	return &dto.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *AuthService) blacklist(ctx context.Context, jti string, expiresAt time.Time) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.BlacklistToken(ctx, jti, time.Until(expiresAt)); err != nil {
		s.logger.Warn("token 拉黑失败", zap.String("jti", jti), zap.Error(err))
	}
}

func (s *AuthService) isBlacklisted(ctx context.Context, jti string) (bool, error) {
	if s.rdb == nil {
		return false, nil
	}
	return s.rdb.IsBlacklisted(ctx, jti)
}
