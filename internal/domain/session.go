package domain

import "time"

type Platform string

const (
	PlatformXiaohongshu Platform = "xiaohongshu"
)

type SessionID string

type SessionStatus string

const (
	SessionStatusPending SessionStatus = "pending"
	SessionStatusActive  SessionStatus = "active"
	SessionStatusExpired SessionStatus = "expired"
	SessionStatusFailed  SessionStatus = "failed"
)

// Session is a persisted, reusable authenticated context for one platform
// account. CredentialRef points at the credential blob in the credential
// store; the session manager owns the blob, everything else only reads it.
type Session struct {
	ID              SessionID
	Platform        Platform
	AccountName     string
	CredentialRef   string
	Status          SessionStatus
	CreatedAt       time.Time
	LastValidatedAt time.Time
}
