package ports

import (
	"context"

	"trendpress/internal/domain"
)

type TrendRepository interface {
	// Insert stores the trend and reports whether it was new; trends with
	// a URL already present are skipped.
	Insert(ctx context.Context, trend domain.Trend) (bool, error)
	GetByID(ctx context.Context, id int64) (domain.Trend, error)
	List(ctx context.Context, offset, limit int) ([]domain.Trend, error)
	Count(ctx context.Context) (int, error)
	MarkUsed(ctx context.Context, id int64) error
}

// TrendSource is one harvesting target (a hot list on some site). Sources
// are stateless and read-only.
type TrendSource interface {
	Name() string
	Fetch(ctx context.Context) ([]domain.Trend, error)
}
