package repository

import (
	"strings"
	"time"

	"github.com/pressdesk/internal/constants"
	"github.com/pressdesk/internal/models"

	"gorm.io/gorm"
)

// UserRepository 账号数据访问
type UserRepository interface {
	GetByEmail(email string) (*models.User, error)
	GetByID(id uint) (*models.User, error)
	Create(user *models.User) error
	Update(user *models.User) error
	List(filter UserListFilter) ([]models.User, int64, error)
	ListCreatedSince(since time.Time, excludeRole string, limit int) ([]models.User, error)
	UpdateStatus(id uint, status string) error
}

// GormUserRepository GORM 实现
type GormUserRepository struct {
	db *gorm.DB
}

// NewUserRepository 创建用户仓库
func NewUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// GetByEmail 邮箱不区分大小写；作者与账号按邮箱关联也走这里
func (r *GormUserRepository) GetByEmail(email string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, nil
	}
	return firstOrNil[models.User](r.db.Where("LOWER(email) = ?", email))
}

// GetByID 根据 ID 获取用户
func (r *GormUserRepository) GetByID(id uint) (*models.User, error) {
	if id == 0 {
		return nil, nil
	}
	return firstOrNil[models.User](r.db, id)
}

// Create 创建用户
func (r *GormUserRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

// Update 整行保存
func (r *GormUserRepository) Update(user *models.User) error {
	return r.db.Save(user).Error
}

func (r *GormUserRepository) filtered(filter UserListFilter) *gorm.DB {
	query := r.db.Model(&models.User{}).Scopes(containsAny(filter.Keyword, "email", "name"))
	for column, value := range map[string]string{"role": filter.Role, "status": filter.Status} {
		if value != "" {
			query = query.Where(column+" = ?", value)
		}
	}
	return query.Scopes(createdBetween(filter.CreatedFrom, filter.CreatedTo))
}

// List 后台用户列表，按 ID 倒序
func (r *GormUserRepository) List(filter UserListFilter) ([]models.User, int64, error) {
	var total int64
	if err := r.filtered(filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var users []models.User
	err := r.filtered(filter).
		Scopes(paginate(filter.Page, filter.PageSize)).
		Order("id DESC").
		Find(&users).Error
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// ListCreatedSince 审核队列的新注册用户分组：since 之后注册、排除 excludeRole，新的在前
func (r *GormUserRepository) ListCreatedSince(since time.Time, excludeRole string, limit int) ([]models.User, error) {
	query := r.db.Where("created_at >= ?", since)
	if excludeRole != "" {
		query = query.Where("role <> ?", excludeRole)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	users := make([]models.User, 0)
	if err := query.Order("created_at DESC, id DESC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// UpdateStatus 修改账号状态；停用时递增 token_version 并记录失效时间点，已签发令牌立即作废
func (r *GormUserRepository) UpdateStatus(id uint, status string) error {
	now := time.Now()
	updates := map[string]interface{}{
		"status":     status,
		"updated_at": now,
	}
	if strings.EqualFold(strings.TrimSpace(status), constants.UserStatusDisabled) {
		updates["token_invalid_before"] = now
		updates["token_version"] = gorm.Expr("token_version + 1")
	}
	return r.db.Model(&models.User{}).Where("id = ?", id).Updates(updates).Error
}
