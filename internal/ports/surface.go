package ports

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrControlNotFound is returned by Locate when none of the candidate
	// selectors resolve to a visible control.
	ErrControlNotFound = errors.New("control not found")
	// ErrWaitTimeout is returned by the wait operations when the condition
	// does not appear within the given timeout.
	ErrWaitTimeout = errors.New("timed out waiting for condition")
)

// Control is an opaque handle to a located page element.
type Control interface {
	Fill(ctx context.Context, text string) error
	SetFiles(ctx context.Context, paths []string) error
	Click(ctx context.Context) error
}

// Surface drives one remote browser instance. A surface is never shared
// across concurrent logical operations and must be closed on every exit
// path.
type Surface interface {
	Navigate(ctx context.Context, url string) error
	Location(ctx context.Context) (string, error)
	InjectCredentials(ctx context.Context, blob []byte) error
	CaptureCredentials(ctx context.Context) ([]byte, error)
	WaitForLocation(ctx context.Context, pattern string, timeout time.Duration) error
	WaitForText(ctx context.Context, text string, timeout time.Duration) error
	// Locate tries each selector in order and returns a handle to the
	// first one that resolves, or ErrControlNotFound.
	Locate(ctx context.Context, selectors ...string) (Control, error)
	// CaptureDiagnostic saves a screenshot-equivalent artifact and returns
	// a reference to it.
	CaptureDiagnostic(ctx context.Context) (string, error)
	Close() error
}

type SurfaceOptions struct {
	// Headless hides the browser window. Interactive login needs a headed
	// surface so the user can scan the QR code.
	Headless bool
	// CleanState starts from an empty profile with no inherited cookies.
	CleanState bool
}

type SurfaceFactory interface {
	Open(ctx context.Context, opts SurfaceOptions) (Surface, error)
}
