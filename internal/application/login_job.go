package application

import (
	"context"
	"sync"

	"trendpress/internal/domain"
)

type LoginErrorKind string

const (
	LoginTimedOut     LoginErrorKind = "timed_out"
	LoginSurfaceError LoginErrorKind = "surface_error"
)

// LoginError is the terminal failure of an interactive login. No session is
// created when a login fails.
type LoginError struct {
	Kind   LoginErrorKind
	Detail string
}

func (e *LoginError) Error() string {
	if e.Detail == "" {
		return string(e.Kind)
	}
	return string(e.Kind) + ": " + e.Detail
}

type JobState string

const (
	JobStateRunning   JobState = "running"
	JobStateSucceeded JobState = "succeeded"
	JobStateFailed    JobState = "failed"
)

// LoginJob is the handle returned by BeginInteractiveLogin. The login runs
// in the background; callers poll Snapshot or block on Wait.
type LoginJob struct {
	ID       string
	Platform domain.Platform

	mu       sync.Mutex
	state    JobState
	session  domain.Session
	loginErr *LoginError
	done     chan struct{}
}

type LoginJobSnapshot struct {
	ID       string
	Platform domain.Platform
	State    JobState
	Session  *domain.Session
	Err      *LoginError
}

func newLoginJob(id string, p domain.Platform) *LoginJob {
	return &LoginJob{
		ID:       id,
		Platform: p,
		state:    JobStateRunning,
		done:     make(chan struct{}),
	}
}

func (j *LoginJob) Snapshot() LoginJobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()

	snapshot := LoginJobSnapshot{
		ID:       j.ID,
		Platform: j.Platform,
		State:    j.state,
		Err:      j.loginErr,
	}
	if j.state == JobStateSucceeded {
		session := j.session
		snapshot.Session = &session
	}
	return snapshot
}

// Wait blocks until the job reaches a terminal state or the context is
// cancelled. On failure the returned error is a *LoginError.
func (j *LoginJob) Wait(ctx context.Context) (domain.Session, error) {
	select {
	case <-j.done:
	case <-ctx.Done():
		return domain.Session{}, ctx.Err()
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	if j.loginErr != nil {
		return domain.Session{}, j.loginErr
	}
	return j.session, nil
}

func (j *LoginJob) succeed(session domain.Session) {
	j.mu.Lock()
	j.state = JobStateSucceeded
	j.session = session
	j.mu.Unlock()
	close(j.done)
}

func (j *LoginJob) fail(err *LoginError) {
	j.mu.Lock()
	j.state = JobStateFailed
	j.loginErr = err
	j.mu.Unlock()
	close(j.done)
}
