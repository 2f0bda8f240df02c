package service

import "errors"

var (
	ErrSessionNotFound      = errors.New("chat session not found")
	ErrActivityNotFound     = errors.New("activity not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrEmailAlreadyExists   = errors.New("email already registered")
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrEmailNotVerified     = errors.New("email not verified")
	ErrAccountBlocked       = errors.New("account blocked")
	ErrInvalidOrExpiredCode = errors.New("invalid or expired code")
)
