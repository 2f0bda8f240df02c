package specification

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

type ByEmail struct {
	Email string
}

func (s ByEmail) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("email = ?", strings.ToLower(strings.TrimSpace(s.Email)))
}

// ByToken matches a one-time code from the verification or reset tables.
type ByToken struct {
	Token string
}

func (s ByToken) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("token = ?", s.Token)
}

// NotExpired compares against the caller's clock so tests can pin it.
type NotExpired struct {
	Now time.Time
}

func (s NotExpired) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("expires_at > ?", s.Now)
}

type UnusedToken struct{}

func (s UnusedToken) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("used = ?", false)
}
