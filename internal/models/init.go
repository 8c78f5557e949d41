package models

import (
	"errors"
	"strings"

	"github.com/pressdesk/internal/constants"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	defaultAdminEmail    = "admin@pressdesk.local"
	defaultAdminPassword = "admin123"
)

// AdminBootstrap 默认管理员初始化结果
type AdminBootstrap string

const (
	AdminExists          AdminBootstrap = "exists"           // 已有 ADMIN 账号，未做任何修改
	AdminPromoted        AdminBootstrap = "promoted"         // 同邮箱账号被提升为 ADMIN
	AdminCreated         AdminBootstrap = "created"          // 使用给定密码新建
	AdminCreatedFallback AdminBootstrap = "created_fallback" // 未给密码，使用内置默认密码新建
)

// EnsureDefaultAdmin 库中没有任何 ADMIN 时创建一个
// email 为空使用 admin@pressdesk.local；同邮箱的普通账号直接提升，不改其密码。
func EnsureDefaultAdmin(db *gorm.DB, email, password string) (AdminBootstrap, error) {
	if db == nil {
		return "", errors.New("db is nil")
	}
	var admins int64
	if err := db.Model(&User{}).Where("role = ?", constants.UserRoleAdmin).Count(&admins).Error; err != nil {
		return "", err
	}
	if admins > 0 {
		return AdminExists, nil
	}

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		email = defaultAdminEmail
	}
	var existing User
	err := db.Where("LOWER(email) = ?", email).First(&existing).Error
	switch {
	case err == nil:
		if err := db.Model(&existing).Update("role", constants.UserRoleAdmin).Error; err != nil {
			return "", err
		}
		return AdminPromoted, nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return "", err
	}

	result := AdminCreated
	if password == "" {
		password = defaultAdminPassword
		result = AdminCreatedFallback
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	admin := User{
		Email:        email,
		PasswordHash: string(hash),
		Name:         "Administrator",
		Role:         constants.UserRoleAdmin,
		Status:       constants.UserStatusActive,
	}
	if err := db.Create(&admin).Error; err != nil {
		return "", err
	}
	return result, nil
}
