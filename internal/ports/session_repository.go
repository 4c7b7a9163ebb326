package ports

import (
	"context"

	"trendpress/internal/domain"
)

type SessionRepository interface {
	GetByID(ctx context.Context, id domain.SessionID) (domain.Session, error)
	List(ctx context.Context) ([]domain.Session, error)
	Save(ctx context.Context, session domain.Session) error
	// Delete removes the session record. It reports whether a record
	// existed; deleting a missing session is not an error.
	Delete(ctx context.Context, id domain.SessionID) (bool, error)
}
