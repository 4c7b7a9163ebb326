package ports

import (
	"context"

	"trendpress/internal/domain"
)

// PublishLogRepository is the append-only audit log of publish attempts.
type PublishLogRepository interface {
	Append(ctx context.Context, record domain.PublishRecord) error
	List(ctx context.Context) ([]domain.PublishRecord, error)
}
