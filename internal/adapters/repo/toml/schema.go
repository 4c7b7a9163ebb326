package toml

import (
	"fmt"
	"time"

	"trendpress/internal/domain"
)

const currentSchemaVersion = 1

type fileSchema struct {
	Version  int             `toml:"version"`
	Sessions []sessionSchema `toml:"sessions"`
}

func (s *fileSchema) applyDefaults() {
	if s.Version == 0 {
		s.Version = currentSchemaVersion
	}
}

func (s fileSchema) validateVersion() error {
	if s.Version > currentSchemaVersion {
		return fmt.Errorf("unsupported sessions schema version %d (current %d)", s.Version, currentSchemaVersion)
	}

	return nil
}

type sessionSchema struct {
	ID              string `toml:"id"`
	Platform        string `toml:"platform"`
	AccountName     string `toml:"account_name"`
	CredentialRef   string `toml:"credential_ref"`
	Status          string `toml:"status"`
	CreatedAt       string `toml:"created_at"`
	LastValidatedAt string `toml:"last_validated_at,omitempty"`
}

func toSchema(session domain.Session) sessionSchema {
	return sessionSchema{
		ID:              string(session.ID),
		Platform:        string(session.Platform),
		AccountName:     session.AccountName,
		CredentialRef:   session.CredentialRef,
		Status:          string(session.Status),
		CreatedAt:       formatTime(session.CreatedAt),
		LastValidatedAt: formatTime(session.LastValidatedAt),
	}
}

func fromSchema(session sessionSchema) domain.Session {
	return domain.Session{
		ID:              domain.SessionID(session.ID),
		Platform:        domain.Platform(session.Platform),
		AccountName:     session.AccountName,
		CredentialRef:   session.CredentialRef,
		Status:          domain.SessionStatus(session.Status),
		CreatedAt:       parseTime(session.CreatedAt),
		LastValidatedAt: parseTime(session.LastValidatedAt),
	}
}

func parseTime(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}

	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}
	}

	return parsed
}

func formatTime(value time.Time) string {
	if value.IsZero() {
		return ""
	}

	return value.Format(time.RFC3339)
}
