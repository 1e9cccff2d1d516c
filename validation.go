package authcore

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	htmlTag      = regexp.MustCompile(`<[^>]+>`)
	nameSpecials = regexp.MustCompile(`[^\w\s\-]`)
)

// validatePassword enforces the configured composition policy. It reports
// only pass/fail; which rule failed never reaches callers or logs.
func validatePassword(policy PasswordConfig, password string) bool {
	if len(password) < policy.MinLength {
		return false
	}

	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		default:
			hasSpecial = true
		}
	}

	if policy.RequireUpper && !hasUpper {
		return false
	}
	if policy.RequireLower && !hasLower {
		return false
	}
	if policy.RequireDigit && !hasDigit {
		return false
	}
	if policy.RequireSpecial && !hasSpecial {
		return false
	}
	return true
}

// validateEmail checks address shape and, when configured, the domain
// allow-list.
func validateEmail(cfg EmailConfig, email string) bool {
	if !emailPattern.MatchString(email) {
		return false
	}
	if len(cfg.AllowedDomains) == 0 {
		return true
	}

	at := strings.LastIndex(email, "@")
	domain := strings.ToLower(email[at+1:])
	for _, allowed := range cfg.AllowedDomains {
		if domain == allowed {
			return true
		}
	}
	return false
}

// sanitizeDisplayName strips markup and special characters from a
// user-supplied display name and caps its length.
func sanitizeDisplayName(name string, maxLen int) string {
	name = htmlTag.ReplaceAllString(name, "")
	name = nameSpecials.ReplaceAllString(name, "")
	name = strings.TrimSpace(name)
	if maxLen > 0 && len(name) > maxLen {
		name = name[:maxLen]
	}
	return name
}
