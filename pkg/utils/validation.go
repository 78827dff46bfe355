package utils

import (
	"regexp"
	"strings"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

func ValidateEmail(email string) bool {
	if email == "" || len(email) > 254 {
		return false
	}
	return emailRegex.MatchString(email)
}

// ValidatePassword requires at least 8 characters with a letter and a digit.
func ValidatePassword(password string) bool {
	if len(password) < 8 {
		return false
	}
	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			hasLetter = true
		case r >= '0' && r <= '9':
			hasDigit = true
		}
	}
	return hasLetter && hasDigit
}

func ValidatePlan(plan string) bool {
	switch strings.ToLower(plan) {
	case "solo", "team", "elite":
		return true
	}
	return false
}

func ValidateRole(role string) bool {
	switch role {
	case "Owner", "Manager", "Admin", "Sales Rep":
		return true
	}
	return false
}

func ValidateBillingType(billingType string) bool {
	switch strings.ToLower(billingType) {
	case "stripe", "ghl":
		return true
	}
	return false
}

// ValidateAPIKey rejects keys that are obviously malformed before they reach
// the upstream API.
func ValidateAPIKey(key string) bool {
	key = strings.TrimSpace(key)
	return len(key) >= 20 && !strings.ContainsAny(key, " \t\n")
}

func SanitizeName(name string) string {
	return strings.TrimSpace(name)
}
