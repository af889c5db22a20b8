package service

import (
	"context"
	"errors"
	"time"

	"docqa-go/internal/config"
	"docqa-go/pkg/hash"
	"docqa-go/pkg/token"
)

// ErrInvalidAPIKey 表示提交的 API key 与配置的摘要不匹配。
var ErrInvalidAPIKey = errors.New("invalid api key")

// AuthService 负责用 API key 换取访问令牌。
type AuthService interface {
	IssueToken(ctx context.Context, apiKey string) (string, time.Time, error)
}

type authService struct {
	apiKeyHash string
	jwtManager *token.JWTManager
}

// NewAuthService 创建一个新的 AuthService 实例。
func NewAuthService(authCfg config.AuthConfig, jwtManager *token.JWTManager) AuthService {
	return &authService{
		apiKeyHash: authCfg.APIKeyHash,
		jwtManager: jwtManager,
	}
}

// IssueToken 校验 API key 并签发一个带过期时间的访问令牌。
func (s *authService) IssueToken(_ context.Context, apiKey string) (string, time.Time, error) {
	if apiKey == "" || !hash.CheckPasswordHash(apiKey, s.apiKeyHash) {
		return "", time.Time{}, ErrInvalidAPIKey
	}
	return s.jwtManager.GenerateToken("api")
}
