package public

import (
	"errors"
	"strings"
	"time"

	handlershared "github.com/pressdesk/internal/http/handlers/shared"
	"github.com/pressdesk/internal/http/response"
	"github.com/pressdesk/internal/models"
	"github.com/pressdesk/internal/service"

	"github.com/gin-gonic/gin"
)

type credentials struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type registerRequest struct {
	credentials
	Name string `json:"name"`
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

var (
	registerErrorRules = []handlershared.MappedError{
		{Target: service.ErrInvalidEmail, Code: response.CodeBadRequest, Key: "error.email_invalid"},
		{Target: service.ErrEmailExists, Code: response.CodeConflict, Key: "error.email_exists"},
	}
	loginErrorRules = []handlershared.MappedError{
		{Target: service.ErrInvalidCredentials, Code: response.CodeUnauthorized, Key: "error.invalid_credentials"},
		{Target: service.ErrUserDisabled, Code: response.CodeUnauthorized, Key: "error.user_disabled"},
	}
	passwordErrorRules = []handlershared.MappedError{
		{Target: service.ErrInvalidCredentials, Code: response.CodeBadRequest, Key: "error.password_old_invalid"},
		{Target: service.ErrUserNotFound, Code: response.CodeNotFound, Key: "error.user_not_found"},
	}
)

// UserRegister 注册作者账号，成功后直接返回登录态
func (h *Handler) UserRegister(c *gin.Context) {
	var req registerRequest
	if !bindJSON(c, &req) {
		return
	}
	session, err := h.AuthService.Register(req.Email, req.Password, req.Name)
	switch {
	case err == nil:
		response.Success(c, authPayload(session))
	case errors.Is(err, service.ErrWeakPassword):
		handlershared.RespondPasswordPolicyError(c, err)
	default:
		handlershared.RespondMappedError(c, err, registerErrorRules, response.CodeInternal, "error.register_failed")
	}
}

// UserLogin 邮箱密码登录
func (h *Handler) UserLogin(c *gin.Context) {
	var req credentials
	if !bindJSON(c, &req) {
		return
	}
	session, err := h.AuthService.Login(req.Email, req.Password)
	if err != nil {
		handlershared.RespondMappedError(c, err, loginErrorRules, response.CodeInternal, "error.login_failed")
		return
	}
	requestLog(c).Infow("user_login", "user_id", session.User.ID, "client_ip", c.ClientIP())
	response.Success(c, authPayload(session))
}

// GetCurrentUser 当前登录用户资料
func (h *Handler) GetCurrentUser(c *gin.Context) {
	id, ok := getUserID(c)
	if !ok {
		return
	}
	user, err := h.AuthService.GetUserByID(id)
	if err != nil {
		handlershared.RespondMappedError(c, err, passwordErrorRules[1:], response.CodeInternal, "error.fetch_failed")
		return
	}
	response.Success(c, userProfile(user))
}

// ChangeUserPassword 修改密码，成功后旧令牌全部失效
func (h *Handler) ChangeUserPassword(c *gin.Context) {
	id, ok := getUserID(c)
	if !ok {
		return
	}
	var req changePasswordRequest
	if !bindJSON(c, &req) {
		return
	}
	err := h.AuthService.ChangePassword(id, req.OldPassword, req.NewPassword)
	switch {
	case err == nil:
		response.Success(c, nil)
	case errors.Is(err, service.ErrWeakPassword):
		handlershared.RespondPasswordPolicyError(c, err)
	default:
		handlershared.RespondMappedError(c, err, passwordErrorRules, response.CodeInternal, "error.save_failed")
	}
}

func bindJSON(c *gin.Context, dest interface{}) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		handlershared.RespondError(c, response.CodeBadRequest, "error.bad_request", err)
		return false
	}
	return true
}

func authPayload(session *service.AuthSession) gin.H {
	return gin.H{
		"user":       userProfile(session.User),
		"token":      session.Token,
		"expires_at": session.ExpiresAt.Format(time.RFC3339),
	}
}

func userProfile(user *models.User) gin.H {
	return gin.H{
		"id":            user.ID,
		"email":         user.Email,
		"name":          strings.TrimSpace(user.Name),
		"role":          user.Role,
		"locale":        user.Locale,
		"last_login_at": user.LastLoginAt,
	}
}
