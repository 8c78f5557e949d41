package repository

import (
	"errors"
	"strings"

	"github.com/pressdesk/internal/models"

	"gorm.io/gorm"
)

// AuthorRepository 作者数据访问接口
type AuthorRepository interface {
	GetByID(id uint) (*models.Author, error)
	FindOrCreate(input models.Author) (*models.Author, error)
	ListByEmail(email string) ([]models.Author, error)
	List(filter AuthorListFilter) ([]models.Author, int64, error)
	Update(author *models.Author) error
	WithTx(tx *gorm.DB) AuthorRepository
}

// GormAuthorRepository GORM 实现
type GormAuthorRepository struct {
	db *gorm.DB
}

// NewAuthorRepository 创建作者仓库
func NewAuthorRepository(db *gorm.DB) *GormAuthorRepository {
	return &GormAuthorRepository{db: db}
}

// WithTx 绑定事务
func (r *GormAuthorRepository) WithTx(tx *gorm.DB) AuthorRepository {
	if tx == nil {
		return r
	}
	return &GormAuthorRepository{db: tx}
}

// GetByID 根据 ID 获取作者
func (r *GormAuthorRepository) GetByID(id uint) (*models.Author, error) {
	var author models.Author
	if err := r.db.First(&author, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &author, nil
}

// FindOrCreate 查找或创建作者
// 有邮箱时按邮箱匹配，否则按姓名精确匹配（仅限无邮箱作者）
func (r *GormAuthorRepository) FindOrCreate(input models.Author) (*models.Author, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))

	query := r.db.Model(&models.Author{})
	if input.Email != "" {
		query = query.Where("LOWER(email) = ?", input.Email)
	} else {
		query = query.Where("name = ? AND (email = '' OR email IS NULL)", input.Name)
	}

	var existing models.Author
	err := query.Order("id ASC").First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	input.ID = 0
	if err := r.db.Create(&input).Error; err != nil {
		return nil, err
	}
	return &input, nil
}

// ListByEmail 查询邮箱匹配的作者
func (r *GormAuthorRepository) ListByEmail(email string) ([]models.Author, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	authors := make([]models.Author, 0)
	if email == "" {
		return authors, nil
	}
	if err := r.db.Where("LOWER(email) = ?", email).Order("id ASC").Find(&authors).Error; err != nil {
		return nil, err
	}
	return authors, nil
}

// List 作者列表
func (r *GormAuthorRepository) List(filter AuthorListFilter) ([]models.Author, int64, error) {
	query := r.db.Model(&models.Author{})
	query = query.Scopes(containsAny(filter.Keyword, "name", "email", "affiliation"))

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = query.Scopes(paginate(filter.Page, filter.PageSize))

	authors := make([]models.Author, 0)
	if err := query.Order("name ASC, id ASC").Find(&authors).Error; err != nil {
		return nil, 0, err
	}
	return authors, total, nil
}

// Update 更新作者
func (r *GormAuthorRepository) Update(author *models.Author) error {
	return r.db.Save(author).Error
}
