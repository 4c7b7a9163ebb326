package domain

import "time"

// MediaRef is a local path or caller-provided handle to a media asset.
type MediaRef string

type Content struct {
	Title string
	Body  string
	Tags  []string
	Media []MediaRef
}

// PublishRequest is immutable once submitted.
type PublishRequest struct {
	SessionID SessionID
	Content   Content
}

type OutcomeStatus string

const (
	OutcomeSuccess OutcomeStatus = "success"
	OutcomeFailed  OutcomeStatus = "failed"
	// OutcomeIndeterminate means the confirmation signal never arrived in
	// time; the server-side effect is unknown and the attempt must not be
	// blindly retried.
	OutcomeIndeterminate OutcomeStatus = "indeterminate"
)

// PublishOutcome is created exactly once per publish attempt and never
// mutated after return.
type PublishOutcome struct {
	Status      OutcomeStatus
	RemoteRef   string
	Diagnostic  string
	ErrorDetail string
}

// PublishRecord is the audit entry persisted for every publish attempt.
type PublishRecord struct {
	ID          int64
	SessionID   SessionID
	Platform    Platform
	Status      OutcomeStatus
	RemoteRef   string
	ErrorDetail string
	CreatedAt   time.Time
}
