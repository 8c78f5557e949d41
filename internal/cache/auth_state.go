package cache

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/pressdesk/internal/constants"
	"github.com/pressdesk/internal/models"
)

const authStateCacheTTL = 10 * time.Minute

var (
	// ErrAccountDisabled 账号已停用
	ErrAccountDisabled = errors.New("account disabled")
	// ErrTokenRevoked 令牌版本落后或签发早于失效时间点
	ErrTokenRevoked = errors.New("token revoked")
)

// UserAuthState JWT 校验所需的用户快照，避免每个请求都查库
// TokenInvalidBefore 为 Unix 秒，0 表示未设置。
type UserAuthState struct {
	UserID             uint   `json:"user_id"`
	Email              string `json:"email"`
	Role               string `json:"role"`
	Status             string `json:"status"`
	TokenVersion       uint64 `json:"token_version"`
	TokenInvalidBefore int64  `json:"token_invalid_before"`
	UpdatedAt          int64  `json:"updated_at"`
}

// Verify 判定持有 (tokenVersion, issuedAt) 的令牌是否仍然有效
// issuedAt 为零值表示令牌未携带 iat。
func (s *UserAuthState) Verify(tokenVersion uint64, issuedAt time.Time) error {
	if s == nil {
		return ErrTokenRevoked
	}
	if !strings.EqualFold(strings.TrimSpace(s.Status), constants.UserStatusActive) {
		return ErrAccountDisabled
	}
	if tokenVersion != s.TokenVersion {
		return ErrTokenRevoked
	}
	if s.TokenInvalidBefore > 0 && (issuedAt.IsZero() || issuedAt.Unix() < s.TokenInvalidBefore) {
		return ErrTokenRevoked
	}
	return nil
}

func userAuthStateKey(userID uint) string {
	return "auth:user:" + strconv.FormatUint(uint64(userID), 10)
}

// BuildUserAuthState 从用户记录生成快照
func BuildUserAuthState(user *models.User) *UserAuthState {
	if user == nil {
		return nil
	}
	state := &UserAuthState{
		UserID:       user.ID,
		Email:        user.Email,
		Role:         user.Role,
		Status:       user.Status,
		TokenVersion: user.TokenVersion,
		UpdatedAt:    time.Now().Unix(),
	}
	if user.TokenInvalidBefore != nil {
		state.TokenInvalidBefore = user.TokenInvalidBefore.Unix()
	}
	return state
}

// GetUserAuthState 读取快照；缓存关闭或未命中时返回 (nil, false, nil)
func GetUserAuthState(ctx context.Context, userID uint) (*UserAuthState, bool, error) {
	if userID == 0 {
		return nil, false, nil
	}
	var state UserAuthState
	hit, err := GetJSON(ctx, userAuthStateKey(userID), &state)
	if err != nil || !hit {
		return nil, false, err
	}
	return &state, true, nil
}

// SetUserAuthState 写入快照
func SetUserAuthState(ctx context.Context, state *UserAuthState) error {
	if state == nil || state.UserID == 0 {
		return nil
	}
	return SetJSON(ctx, userAuthStateKey(state.UserID), state, authStateCacheTTL)
}

// DelUserAuthState 角色、状态或密码变更后调用，下个请求会回源数据库
func DelUserAuthState(ctx context.Context, userID uint) error {
	if userID == 0 {
		return nil
	}
	return Del(ctx, userAuthStateKey(userID))
}
