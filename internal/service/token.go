package service

import (
	"strings"
	"time"

	"github.com/pressdesk/internal/config"
	"github.com/pressdesk/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

const defaultTokenTTL = 24 * time.Hour

// JWTClaims 访问令牌声明
// Role 仅作展示，鉴权以服务端用户记录为准；TokenVersion 与用户记录不一致即视为吊销。
type JWTClaims struct {
	UserID       uint   `json:"user_id"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	TokenVersion uint64 `json:"token_version"`
	jwt.RegisteredClaims
}

// IssuedAtTime 签发时间，未携带 iat 时返回零值
func (c *JWTClaims) IssuedAtTime() time.Time {
	if c == nil || c.IssuedAt == nil {
		return time.Time{}
	}
	return c.IssuedAt.Time
}

// TokenIssuer HS256 访问令牌的签发与校验
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	parser *jwt.Parser
}

// NewTokenIssuer 按 JWT 配置创建，expire_hours<=0 时有效期 24 小时
func NewTokenIssuer(cfg config.JWTConfig) *TokenIssuer {
	ttl := defaultTokenTTL
	if cfg.ExpireHours > 0 {
		ttl = time.Duration(cfg.ExpireHours) * time.Hour
	}
	return &TokenIssuer{
		secret: []byte(strings.TrimSpace(cfg.SecretKey)),
		ttl:    ttl,
		parser: jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})),
	}
}

// Configured 是否配置了签名密钥
func (t *TokenIssuer) Configured() bool {
	return t != nil && len(t.secret) > 0
}

// Issue 为用户签发令牌
func (t *TokenIssuer) Issue(user *models.User) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(t.ttl)
	claims := JWTClaims{
		UserID:       user.ID,
		Email:        user.Email,
		Role:         user.Role,
		TokenVersion: user.TokenVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Parse 校验签名与有效期，返回声明
func (t *TokenIssuer) Parse(raw string) (*JWTClaims, error) {
	if !t.Configured() {
		return nil, ErrTokenInvalid
	}
	claims := &JWTClaims{}
	token, err := t.parser.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return t.secret, nil
	})
	if err != nil || !token.Valid || claims.UserID == 0 {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}
