package domain

import "time"

type DraftStatus string

const (
	DraftStatusDraft     DraftStatus = "draft"
	DraftStatusApproved  DraftStatus = "approved"
	DraftStatusPublished DraftStatus = "published"
)

// Draft is a generated post waiting for review and publication.
type Draft struct {
	ID        int64
	TrendID   int64
	Title     string
	Body      string
	Tags      []string
	Platform  Platform
	Status    DraftStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}
