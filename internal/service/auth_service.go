package service

import (
	"context"
	"net/mail"
	"strings"
	"time"

	"github.com/pressdesk/internal/cache"
	"github.com/pressdesk/internal/config"
	"github.com/pressdesk/internal/constants"
	"github.com/pressdesk/internal/logger"
	"github.com/pressdesk/internal/models"
	"github.com/pressdesk/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

// AuthService 账号注册、登录与凭据管理（管理员、作者、读者共用）
type AuthService struct {
	cfg      *config.Config
	tokens   *TokenIssuer
	userRepo repository.UserRepository
}

// NewAuthService 创建认证服务实例
func NewAuthService(cfg *config.Config, userRepo repository.UserRepository) *AuthService {
	return &AuthService{
		cfg:      cfg,
		tokens:   NewTokenIssuer(cfg.JWT),
		userRepo: userRepo,
	}
}

// AuthSession 登录态：账号与新签发的访问令牌
type AuthSession struct {
	User      *models.User
	Token     string
	ExpiresAt time.Time
}

// Tokens 令牌签发器，鉴权中间件共用
func (s *AuthService) Tokens() *TokenIssuer {
	return s.tokens
}

// ParseJWT 校验访问令牌
func (s *AuthService) ParseJWT(raw string) (*JWTClaims, error) {
	return s.tokens.Parse(raw)
}

// ValidatePassword 按安全配置校验密码强度
func (s *AuthService) ValidatePassword(password string) error {
	if s == nil || s.cfg == nil {
		return nil
	}
	return validatePassword(s.cfg.Security.PasswordPolicy, password)
}

// Register 自助注册，新账号角色为 AUTHOR
func (s *AuthService) Register(email, password, name string) (*AuthSession, error) {
	normalized, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if err := s.ValidatePassword(password); err != nil {
		return nil, err
	}
	existing, err := s.userRepo.GetByEmail(normalized)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailExists
	}
	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if name = strings.TrimSpace(name); name == "" {
		name = resolveNameFromEmail(normalized)
	}
	user := &models.User{
		Email:        normalized,
		PasswordHash: hash,
		Name:         name,
		Role:         constants.UserRoleAuthor,
		Status:       constants.UserStatusActive,
		LastLoginAt:  &now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}
	logger.Infow("user_registered", "user_id", user.ID, "email", user.Email)
	return s.openSession(user)
}

// Login 校验凭据；停用账号即使密码正确也拒绝
func (s *AuthService) Login(email, password string) (*AuthSession, error) {
	normalized, err := normalizeEmail(email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	user, err := s.userRepo.GetByEmail(normalized)
	if err != nil {
		return nil, err
	}
	if user == nil || !checkPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	if !strings.EqualFold(user.Status, constants.UserStatusActive) {
		return nil, ErrUserDisabled
	}
	now := time.Now()
	user.LastLoginAt = &now
	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}
	return s.openSession(user)
}

func (s *AuthService) openSession(user *models.User) (*AuthSession, error) {
	token, expiresAt, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}
	s.refreshAuthState(user)
	return &AuthSession{User: user, Token: token, ExpiresAt: expiresAt}, nil
}

// GetUserByID 获取用户，不存在返回 ErrUserNotFound
func (s *AuthService) GetUserByID(id uint) (*models.User, error) {
	if id == 0 {
		return nil, ErrUserNotFound
	}
	user, err := s.userRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// ChangePassword 修改密码，已签发的令牌全部作废
func (s *AuthService) ChangePassword(userID uint, oldPassword, newPassword string) error {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return err
	}
	if !checkPassword(user.PasswordHash, oldPassword) {
		return ErrInvalidCredentials
	}
	if err := s.ValidatePassword(newPassword); err != nil {
		return err
	}
	hash, err := hashPassword(newPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	revokeTokens(user)
	if err := s.userRepo.Update(user); err != nil {
		return err
	}
	s.refreshAuthState(user)
	return nil
}

// ListUsers 后台用户列表
func (s *AuthService) ListUsers(filter repository.UserListFilter) ([]models.User, int64, error) {
	filter.Keyword = strings.TrimSpace(filter.Keyword)
	filter.Role = strings.ToUpper(strings.TrimSpace(filter.Role))
	filter.Status = strings.ToLower(strings.TrimSpace(filter.Status))
	return s.userRepo.List(filter)
}

// UpdateRole 管理员修改账号角色；角色未变时不吊销令牌
func (s *AuthService) UpdateRole(principal *Principal, userID uint, role string) (*models.User, error) {
	if !principal.IsAdmin() {
		return nil, ErrForbidden
	}
	role = strings.ToUpper(strings.TrimSpace(role))
	switch role {
	case constants.UserRoleAdmin, constants.UserRoleAuthor, constants.UserRoleReader:
	default:
		return nil, ErrInvalidRole
	}
	user, err := s.GetUserByID(userID)
	if err != nil {
		return nil, err
	}
	if user.Role == role {
		return user, nil
	}
	user.Role = role
	revokeTokens(user)
	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}
	_ = cache.DelUserAuthState(context.Background(), user.ID)
	logger.Infow("user_role_updated", "user_id", user.ID, "role", role, "actor_id", principal.ActorID())
	return user, nil
}

// refreshAuthState 写回鉴权快照，缓存不可用时下个请求回源数据库
func (s *AuthService) refreshAuthState(user *models.User) {
	if err := cache.SetUserAuthState(context.Background(), cache.BuildUserAuthState(user)); err != nil {
		logger.Debugw("auth_state_cache_write_failed", "user_id", user.ID, "error", err)
	}
}

func revokeTokens(user *models.User) {
	now := time.Now()
	user.TokenVersion++
	user.TokenInvalidBefore = &now
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func checkPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func normalizeEmail(email string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if normalized == "" {
		return "", ErrInvalidEmail
	}
	if _, err := mail.ParseAddress(normalized); err != nil {
		return "", ErrInvalidEmail
	}
	return normalized, nil
}
