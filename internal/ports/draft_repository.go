package ports

import (
	"context"

	"trendpress/internal/domain"
)

type DraftRepository interface {
	Insert(ctx context.Context, draft domain.Draft) (int64, error)
	GetByID(ctx context.Context, id int64) (domain.Draft, error)
	List(ctx context.Context) ([]domain.Draft, error)
	Update(ctx context.Context, draft domain.Draft) error
}
