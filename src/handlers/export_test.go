package handlers

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

func init() {
	bcryptCost = bcrypt.MinCost
}

// SetNow pins the handlers' clock and returns a restore func.
func SetNow(t time.Time) func() {
	prev := now
	now = func() time.Time { return t }
	return func() { now = prev }
}
