package domain

import "time"

// Trend is a harvested trending topic.
type Trend struct {
	ID        int64
	Title     string
	Source    string
	Score     int
	URL       string
	Used      bool
	CreatedAt time.Time
}
