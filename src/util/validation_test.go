package util

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateEmail(t *testing.T) {
	assert.True(t, ValidateEmail("tasmir@finhealth.com"))
	assert.True(t, ValidateEmail("a.b+tag@sub.example.org"))
	assert.False(t, ValidateEmail("no-at-sign"))
	assert.False(t, ValidateEmail("a@b"))
	assert.False(t, ValidateEmail(""))
}

func TestValidatePassword(t *testing.T) {
	assert.False(t, ValidatePassword("12345"))
	assert.True(t, ValidatePassword("123456"))
	assert.True(t, ValidatePassword(strings.Repeat("a", 72)))
	assert.False(t, ValidatePassword(strings.Repeat("a", 73)))
}

func TestValidateCurrency(t *testing.T) {
	assert.True(t, ValidateCurrency("EUR"))
	assert.False(t, ValidateCurrency("eur"))
	assert.False(t, ValidateCurrency("EURO"))
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "me@x.io", NormalizeEmail("  Me@X.io "))
}

func TestParseDate(t *testing.T) {
	got, err := ParseDate("2025-10-15", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, time.October, 15, 0, 0, 0, 0, time.UTC), got)

	got, err = ParseDate("2025-10-15T08:30:00Z", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, 8, got.Hour())

	_, err = ParseDate("15/10/2025", time.UTC)
	assert.Error(t, err)
}
