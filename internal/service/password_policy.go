package service

import (
	"unicode"

	"github.com/pressdesk/internal/config"
)

// PasswordPolicyViolation 带 i18n key 的弱密码错误，errors.Is(err, ErrWeakPassword) 成立
type PasswordPolicyViolation struct {
	key  string
	args []interface{}
}

func (v *PasswordPolicyViolation) Error() string        { return v.key }
func (v *PasswordPolicyViolation) Is(target error) bool { return target == ErrWeakPassword }
func (v *PasswordPolicyViolation) Key() string          { return v.key }
func (v *PasswordPolicyViolation) Args() []interface{}  { return v.args }

type charClasses struct {
	upper, lower, digit, special bool
}

func classify(password string) charClasses {
	var c charClasses
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			c.upper = true
		case unicode.IsLower(r):
			c.lower = true
		case unicode.IsDigit(r):
			c.digit = true
		default:
			c.special = true
		}
	}
	return c
}

// validatePassword 按配置顺序检查：长度、大写、小写、数字、特殊字符，返回第一条不满足的规则
func validatePassword(policy config.PasswordPolicyConfig, password string) error {
	if policy.MinLength > 0 && len([]rune(password)) < policy.MinLength {
		return &PasswordPolicyViolation{key: "error.password_min_length", args: []interface{}{policy.MinLength}}
	}
	got := classify(password)
	rules := []struct {
		required bool
		present  bool
		key      string
	}{
		{policy.RequireUpper, got.upper, "error.password_require_upper"},
		{policy.RequireLower, got.lower, "error.password_require_lower"},
		{policy.RequireNumber, got.digit, "error.password_require_number"},
		{policy.RequireSpecial, got.special, "error.password_require_special"},
	}
	for _, rule := range rules {
		if rule.required && !rule.present {
			return &PasswordPolicyViolation{key: rule.key}
		}
	}
	return nil
}
