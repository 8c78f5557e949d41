package service

import (
	"strings"

	"github.com/pressdesk/internal/models"
	"github.com/pressdesk/internal/repository"
)

// TagService 标签服务
type TagService struct {
	repo repository.TagRepository
}

// NewTagService 创建标签服务
func NewTagService(repo repository.TagRepository) *TagService {
	return &TagService{repo: repo}
}

// ListWithCounts 公开标签列表（含已发布内容数）
func (s *TagService) ListWithCounts() ([]repository.TagWithCount, error) {
	return s.repo.ListWithCounts()
}

// AuthorService 作者服务
type AuthorService struct {
	repo     repository.AuthorRepository
	userRepo repository.UserRepository
}

// NewAuthorService 创建作者服务
func NewAuthorService(repo repository.AuthorRepository, userRepo repository.UserRepository) *AuthorService {
	return &AuthorService{repo: repo, userRepo: userRepo}
}

// List 后台作者列表
func (s *AuthorService) List(filter repository.AuthorListFilter) ([]models.Author, int64, error) {
	filter.Keyword = strings.TrimSpace(filter.Keyword)
	return s.repo.List(filter)
}

// AuthorWithUser 作者及其按邮箱匹配到的用户
type AuthorWithUser struct {
	models.Author
	User *models.User `json:"user"`
}

// MatchUser 按邮箱查找作者对应的登录用户，每次调用实时计算
func (s *AuthorService) MatchUser(author *models.Author) (*models.User, error) {
	if author == nil || s.userRepo == nil {
		return nil, nil
	}
	email := strings.TrimSpace(author.Email)
	if email == "" {
		return nil, nil
	}
	return s.userRepo.GetByEmail(email)
}

// GetWithUser 获取作者详情并附带匹配用户
func (s *AuthorService) GetWithUser(id uint) (*AuthorWithUser, error) {
	author, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if author == nil {
		return nil, ErrNotFound
	}
	user, err := s.MatchUser(author)
	if err != nil {
		return nil, err
	}
	return &AuthorWithUser{Author: *author, User: user}, nil
}
