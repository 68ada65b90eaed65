package domain

import "errors"

// Sentinel errors returned by services. Handlers map these onto the HTTP
// taxonomy with errors.Is, so raw storage errors never leak into responses.
var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNotVerified        = errors.New("please verify your email first")
	ErrAlreadyVerified    = errors.New("user is already verified")
	ErrAlreadyExists      = errors.New("already exists")
	ErrNotFound           = errors.New("not found")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrInvalidOTP         = errors.New("invalid OTP")
	ErrExpiredOTP         = errors.New("OTP expired, please request a new one")
	ErrMailDelivery       = errors.New("failed to send OTP email")
)
