package crossref

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"
)

var (
	ErrConfigInvalid   = errors.New("crossref config invalid")
	ErrRequestFailed   = errors.New("crossref request failed")
	ErrDepositRejected = errors.New("crossref deposit rejected")
	ErrBatchInvalid    = errors.New("crossref batch invalid")
)

const (
	defaultDepositURL = "https://test.crossref.org/servlet/deposit"
	defaultTimeout    = 20 * time.Second
)

var doiPrefixPattern = regexp.MustCompile(`^10\.\d{4,9}$`)

// Config Crossref 登记配置
type Config struct {
	Enabled         bool          `json:"enabled"`
	DepositURL      string        `json:"deposit_url"`       // 登记接口地址
	LoginID         string        `json:"login_id"`          // 账号
	LoginPassword   string        `json:"login_password"`    // 密码
	DOIPrefix       string        `json:"doi_prefix"`        // DOI 前缀，如 10.1234
	DepositorName   string        `json:"depositor_name"`    // 提交方名称
	DepositorEmail  string        `json:"depositor_email"`   // 提交方邮箱
	Registrant      string        `json:"registrant"`        // 注册方
	ResourceBaseURL string        `json:"resource_base_url"` // 内容落地页基础地址
	Timeout         time.Duration `json:"timeout"`
}

// Normalize 归一化配置
func (c *Config) Normalize() {
	c.DepositURL = strings.TrimSpace(c.DepositURL)
	if c.DepositURL == "" {
		c.DepositURL = defaultDepositURL
	}
	c.LoginID = strings.TrimSpace(c.LoginID)
	c.DOIPrefix = strings.TrimRight(strings.TrimSpace(c.DOIPrefix), "/")
	c.DepositorName = strings.TrimSpace(c.DepositorName)
	c.DepositorEmail = strings.TrimSpace(c.DepositorEmail)
	c.Registrant = strings.TrimSpace(c.Registrant)
	c.ResourceBaseURL = strings.TrimRight(strings.TrimSpace(c.ResourceBaseURL), "/")
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.Registrant == "" {
		c.Registrant = c.DepositorName
	}
}

// ValidateConfig 校验配置
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("%w: config is nil", ErrConfigInvalid)
	}
	if !cfg.Enabled {
		return fmt.Errorf("%w: registration disabled", ErrConfigInvalid)
	}
	if _, err := url.ParseRequestURI(strings.TrimSpace(cfg.DepositURL)); err != nil {
		return fmt.Errorf("%w: deposit_url is invalid", ErrConfigInvalid)
	}
	if strings.TrimSpace(cfg.LoginID) == "" || cfg.LoginPassword == "" {
		return fmt.Errorf("%w: login credentials are required", ErrConfigInvalid)
	}
	if !doiPrefixPattern.MatchString(strings.TrimSpace(cfg.DOIPrefix)) {
		return fmt.Errorf("%w: doi_prefix must look like 10.xxxx", ErrConfigInvalid)
	}
	if strings.TrimSpace(cfg.DepositorName) == "" || strings.TrimSpace(cfg.DepositorEmail) == "" {
		return fmt.Errorf("%w: depositor name and email are required", ErrConfigInvalid)
	}
	if strings.TrimSpace(cfg.ResourceBaseURL) == "" {
		return fmt.Errorf("%w: resource_base_url is required", ErrConfigInvalid)
	}
	return nil
}

// BuildDOI 由前缀与 slug 生成 DOI
func BuildDOI(prefix, slug string) string {
	prefix = strings.TrimRight(strings.TrimSpace(prefix), "/")
	slug = strings.Trim(strings.TrimSpace(slug), "/")
	if prefix == "" || slug == "" {
		return ""
	}
	return prefix + "/" + slug
}

// ResourceURL 生成内容落地页地址
func (c *Config) ResourceURL(slug string) string {
	return strings.TrimRight(c.ResourceBaseURL, "/") + "/" + url.PathEscape(strings.TrimSpace(slug))
}

// SplitName 拆分姓名为名与姓（最后一个词作为姓）
func SplitName(name string) (string, string) {
	parts := strings.Fields(name)
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return "", parts[0]
	default:
		return strings.Join(parts[:len(parts)-1], " "), parts[len(parts)-1]
	}
}
