package dto

import (
	"time"

	"github.com/google/uuid"
)

type UserProfileResponse struct {
	Id            uuid.UUID `json:"id"`
	Email         string    `json:"email"`
	FullName      string    `json:"full_name"`
	Role          string    `json:"role"`
	Status        string    `json:"status"`
	EmailVerified bool      `json:"email_verified"`
	CreatedAt     time.Time `json:"created_at"`
}

// UsageResponse is returned by GET /api/user/usage
type UsageResponse struct {
	UploadsCount          int `json:"uploads_count"`
	RepliesGeneratedCount int `json:"replies_generated_count"`
}
