// services/auth_service.go
package services

import (
	"errors"

	"github.com/wfunc/casino/auth"
	"github.com/wfunc/casino/config"
	"github.com/wfunc/casino/logger"
	"github.com/wfunc/casino/models"
	"github.com/wfunc/casino/persistence"
)

// AuthService 注册与登录, 成功后签发令牌
type AuthService struct {
	db  persistence.Database
	jwt *auth.JWTManager
	cfg config.GameConfig
}

func NewAuthService(db persistence.Database, jwt *auth.JWTManager, cfg config.GameConfig) *AuthService {
	return &AuthService{db: db, jwt: jwt, cfg: cfg}
}

// Register 创建新用户, 初始余额由配置决定
func (s *AuthService) Register(username, password string) (*models.User, string, error) {
	if len(username) < 3 || len(username) > 20 {
		return nil, "", ErrInvalidCredentials
	}
	if len(password) < 6 {
		return nil, "", ErrInvalidCredentials
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, "", err
	}

	user, err := s.db.CreateUser(username, hash, s.cfg.StartingBalance)
	if err != nil {
		return nil, "", err
	}

	token, err := s.jwt.Generate(user.ID, user.Username)
	if err != nil {
		return nil, "", err
	}
	logger.Log.Infof("新用户注册: %s (id=%d)", username, user.ID)
	return user, token, nil
}

// Login 校验密码并签发令牌. 用户不存在和密码错误返回同一个错误
func (s *AuthService) Login(username, password string) (*models.User, string, error) {
	user, err := s.db.UserByName(username)
	if err != nil {
		if errors.Is(err, persistence.ErrRecordNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}
	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, "", ErrInvalidCredentials
	}

	if err := s.db.TouchLastLogin(user.ID); err != nil {
		logger.Log.Warnf("Failed to update last login for user %d: %v", user.ID, err)
	}

	token, err := s.jwt.Generate(user.ID, user.Username)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Verify 解析令牌, 用于 WebSocket 握手和 REST 中间件
func (s *AuthService) Verify(token string) (*auth.Claims, error) {
	return s.jwt.Verify(token)
}
