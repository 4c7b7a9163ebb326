// Package platform holds the per-platform publishing descriptors. An
// Adapter is pure configuration: where the auth and publish pages live, how
// to find the standard controls, and what signals success. Adding a platform
// means registering a new Adapter value.
package platform

import (
	"sort"
	"time"

	"trendpress/internal/domain"
)

type Adapter struct {
	Platform domain.Platform

	// AuthURL is the authentication entry point opened for interactive
	// login. AuthenticatedPattern matches the location reached only after
	// a successful login; UnauthenticatedPattern matches the location a
	// stale session is bounced to.
	AuthURL                string
	PublishURL             string
	AuthenticatedPattern   string
	UnauthenticatedPattern string

	// Locator chains, tried in order. Target markup drifts, so every
	// control carries fallbacks.
	UploadLocators []string
	TitleLocators  []string
	BodyLocators   []string
	SubmitLocators []string

	// SuccessText is the confirmation signal awaited after submission.
	SuccessText    string
	MediaSettle    time.Duration
	ConfirmTimeout time.Duration
}

type Registry struct {
	adapters map[domain.Platform]Adapter
}

func NewRegistry(adapters ...Adapter) *Registry {
	r := &Registry{adapters: make(map[domain.Platform]Adapter, len(adapters))}
	for _, adapter := range adapters {
		r.adapters[adapter.Platform] = adapter
	}
	return r
}

// Default returns a registry with every built-in adapter.
func Default() *Registry {
	return NewRegistry(Xiaohongshu())
}

func (r *Registry) Lookup(p domain.Platform) (Adapter, bool) {
	adapter, ok := r.adapters[p]
	return adapter, ok
}

func (r *Registry) Platforms() []domain.Platform {
	platforms := make([]domain.Platform, 0, len(r.adapters))
	for p := range r.adapters {
		platforms = append(platforms, p)
	}
	sort.Slice(platforms, func(i, j int) bool { return platforms[i] < platforms[j] })
	return platforms
}
