package entity

import (
	"database/sql"
	"time"
)

type Account struct {
	ID                  uint64
	Email               string
	DisplayName         string
	PasswordHash        string
	IsActive            bool
	IsVerified          bool
	VerificationToken   sql.NullString
	ResetToken          sql.NullString
	ResetTokenExpiresAt sql.NullTime
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// HasValidResetToken reports whether the account carries a reset token that
// has not yet expired. Expiry is checked lazily at use time.
func (a *Account) HasValidResetToken(now time.Time) bool {
	return a.ResetToken.Valid && a.ResetTokenExpiresAt.Valid && a.ResetTokenExpiresAt.Time.After(now)
}
