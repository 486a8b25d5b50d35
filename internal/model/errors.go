package model

import "errors"

// Common errors used across the application
var (
	// Credential and session errors
	ErrNoCredentials   = errors.New("no stored credentials")
	ErrInvalidToken    = errors.New("token is invalid or expired")
	ErrNoRefreshToken  = errors.New("no refresh token available")
	ErrUnauthenticated = errors.New("not authenticated")

	// API errors
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")

	// Realtime errors
	ErrNotConnected = errors.New("realtime channel not connected")
)
