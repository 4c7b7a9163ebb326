package ports

import (
	"context"

	"trendpress/internal/domain"
)

type GeneratedPost struct {
	Title string
	Body  string
	Tags  []string
}

// Generator turns a trend into a title/body/tags draft.
type Generator interface {
	Generate(ctx context.Context, trend domain.Trend) (GeneratedPost, error)
}
