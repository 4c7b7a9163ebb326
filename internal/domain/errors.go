package domain

import "errors"

var (
	ErrSessionNotFound    = errors.New("session not found")
	ErrTrendNotFound      = errors.New("trend not found")
	ErrDraftNotFound      = errors.New("draft not found")
	ErrCredentialNotFound = errors.New("credential blob not found")
	ErrPlatformUnknown    = errors.New("platform has no registered adapter")
	ErrLoginInProgress    = errors.New("interactive login already in progress for platform")
	ErrSessionExpired     = errors.New("session expired")
)
