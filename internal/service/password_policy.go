package service

import (
	"unicode"

	"github.com/stockdesk/internal/config"
)

// PasswordPolicyError 密码不满足策略，Key/Args 对应 i18n 文案
type PasswordPolicyError struct {
	Key  string
	Args []interface{}
}

func (e *PasswordPolicyError) Error() string { return "weak password: " + e.Key }

func (e *PasswordPolicyError) Unwrap() error { return ErrWeakPassword }

type charClass struct {
	required func(config.PasswordPolicyConfig) bool
	match    func(rune) bool
	key      string
}

var passwordCharClasses = []charClass{
	{func(p config.PasswordPolicyConfig) bool { return p.RequireUpper }, unicode.IsUpper, "error.password_require_upper"},
	{func(p config.PasswordPolicyConfig) bool { return p.RequireLower }, unicode.IsLower, "error.password_require_lower"},
	{func(p config.PasswordPolicyConfig) bool { return p.RequireNumber }, unicode.IsDigit, "error.password_require_number"},
	{func(p config.PasswordPolicyConfig) bool { return p.RequireSpecial }, isSpecialRune, "error.password_require_special"},
}

func isSpecialRune(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsDigit(r) && !unicode.IsSpace(r)
}

func validatePassword(policy config.PasswordPolicyConfig, password string) error {
	if policy.MinLength > 0 && len([]rune(password)) < policy.MinLength {
		return &PasswordPolicyError{Key: "error.password_min_length", Args: []interface{}{policy.MinLength}}
	}
	for _, class := range passwordCharClasses {
		if !class.required(policy) {
			continue
		}
		found := false
		for _, r := range password {
			if class.match(r) {
				found = true
				break
			}
		}
		if !found {
			return &PasswordPolicyError{Key: class.key}
		}
	}
	return nil
}
