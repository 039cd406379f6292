package util

import (
	"regexp"
	"strings"
	"time"
)

const (
	MinPasswordLength = 6
	// bcrypt rejects longer inputs.
	MaxPasswordLength = 72
)

var (
	emailRe    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	currencyRe = regexp.MustCompile(`^[A-Z]{3}$`)
)

func ValidateEmail(email string) bool {
	return emailRe.MatchString(email)
}

// ValidatePassword checks the length in bytes.
func ValidatePassword(password string) bool {
	return len(password) >= MinPasswordLength && len(password) <= MaxPasswordLength
}

// ValidateCurrency accepts ISO 4217 style three letter codes.
func ValidateCurrency(code string) bool {
	return currencyRe.MatchString(code)
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ParseDate accepts a calendar date (2006-01-02) or an RFC 3339 timestamp.
// Calendar dates are taken as midnight in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.ParseInLocation("2006-01-02", s, loc); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}
