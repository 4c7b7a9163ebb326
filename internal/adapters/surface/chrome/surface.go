// Package chrome drives publishing surfaces through a locally managed
// Chrome instance over the DevTools protocol.
package chrome

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/google/uuid"

	"trendpress/internal/platform"
	"trendpress/internal/ports"
)

const (
	locationPollInterval = 500 * time.Millisecond
	locateTimeout        = 3 * time.Second
)

type Factory struct {
	artifactsDir string
}

var _ ports.SurfaceFactory = (*Factory)(nil)

func NewFactory(artifactsDir string) *Factory {
	return &Factory{artifactsDir: artifactsDir}
}

func (f *Factory) Open(ctx context.Context, opts ports.SurfaceOptions) (ports.Surface, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	allocOpts := append([]chromedp.ExecAllocatorOption{},
		chromedp.DefaultExecAllocatorOptions[:]...)
	allocOpts = append(allocOpts,
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.WindowSize(1280, 960),
	)

	profileDir := ""
	if opts.CleanState {
		dir, err := os.MkdirTemp("", "trendpress-profile-*")
		if err != nil {
			return nil, fmt.Errorf("create browser profile: %w", err)
		}
		profileDir = dir
		allocOpts = append(allocOpts, chromedp.UserDataDir(dir))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	tabCtx, cancelTab := chromedp.NewContext(allocCtx)

	// Starting the browser eagerly surfaces launch failures here instead
	// of on the first navigation.
	if err := chromedp.Run(tabCtx); err != nil {
		cancelTab()
		cancelAlloc()
		removeProfile(profileDir)
		return nil, fmt.Errorf("start browser: %w", err)
	}

	return &Surface{
		ctx:          tabCtx,
		cancelTab:    cancelTab,
		cancelAlloc:  cancelAlloc,
		profileDir:   profileDir,
		artifactsDir: f.artifactsDir,
	}, nil
}

type Surface struct {
	ctx          context.Context
	cancelTab    context.CancelFunc
	cancelAlloc  context.CancelFunc
	profileDir   string
	artifactsDir string
}

var _ ports.Surface = (*Surface)(nil)

func (s *Surface) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := chromedp.Run(s.ctx, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("navigate to %s: %w", url, err)
	}
	return nil
}

func (s *Surface) Location(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var location string
	if err := chromedp.Run(s.ctx, chromedp.Location(&location)); err != nil {
		return "", fmt.Errorf("read location: %w", err)
	}
	return location, nil
}

// storedCookie is the on-disk credential format. It mirrors the common
// browser-export shape so blobs captured elsewhere keep working.
type storedCookie struct {
	Name     string  `json:"name"`
	Value    string  `json:"value"`
	Domain   string  `json:"domain"`
	Path     string  `json:"path"`
	Expires  float64 `json:"expires,omitempty"`
	HTTPOnly bool    `json:"httpOnly"`
	Secure   bool    `json:"secure"`
	SameSite string  `json:"sameSite,omitempty"`
}

func (s *Surface) InjectCredentials(ctx context.Context, blob []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var cookies []storedCookie
	if err := json.Unmarshal(blob, &cookies); err != nil {
		return fmt.Errorf("decode credential blob: %w", err)
	}

	params := make([]*network.CookieParam, 0, len(cookies))
	for _, c := range cookies {
		param := &network.CookieParam{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			HTTPOnly: c.HTTPOnly,
			Secure:   c.Secure,
		}
		if c.Expires > 0 {
			expires := cdp.TimeSinceEpoch(time.Unix(int64(c.Expires), 0))
			param.Expires = &expires
		}
		if c.SameSite != "" {
			param.SameSite = network.CookieSameSite(c.SameSite)
		}
		params = append(params, param)
	}

	err := chromedp.Run(s.ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		return network.SetCookies(params).Do(ctx)
	}))
	if err != nil {
		return fmt.Errorf("inject credentials: %w", err)
	}
	return nil
}

func (s *Surface) CaptureCredentials(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var cookies []*network.Cookie
	err := chromedp.Run(s.ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		cookies, err = network.GetCookies().Do(ctx)
		return err
	}))
	if err != nil {
		return nil, fmt.Errorf("capture credentials: %w", err)
	}

	stored := make([]storedCookie, 0, len(cookies))
	for _, c := range cookies {
		stored = append(stored, storedCookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Expires:  c.Expires,
			HTTPOnly: c.HTTPOnly,
			Secure:   c.Secure,
			SameSite: string(c.SameSite),
		})
	}

	blob, err := json.Marshal(stored)
	if err != nil {
		return nil, fmt.Errorf("encode credential blob: %w", err)
	}
	return blob, nil
}

func (s *Surface) WaitForLocation(ctx context.Context, pattern string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(locationPollInterval)
	defer ticker.Stop()

	for {
		location, err := s.Location(ctx)
		if err == nil && platform.MatchLocation(pattern, location) {
			return nil
		}
		if time.Now().After(deadline) {
			return ports.ErrWaitTimeout
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.ctx.Done():
			return fmt.Errorf("wait for location: %w", s.ctx.Err())
		case <-ticker.C:
		}
	}
}

func (s *Surface) WaitForText(ctx context.Context, text string, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	waitCtx, cancel := context.WithTimeout(s.ctx, timeout)
	defer cancel()

	xpath := fmt.Sprintf(`//*[contains(text(), %q)]`, text)
	err := chromedp.Run(waitCtx, chromedp.WaitVisible(xpath, chromedp.BySearch))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return ports.ErrWaitTimeout
		}
		return fmt.Errorf("wait for text: %w", err)
	}
	return nil
}

func (s *Surface) Locate(ctx context.Context, selectors ...string) (ports.Control, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for _, selector := range selectors {
		probeCtx, cancel := context.WithTimeout(s.ctx, locateTimeout)
		var nodes []*cdp.Node
		err := chromedp.Run(probeCtx,
			chromedp.Nodes(selector, &nodes, chromedp.ByQueryAll, chromedp.AtLeast(0)))
		cancel()
		if err == nil && len(nodes) > 0 {
			return &control{surface: s, selector: selector}, nil
		}
	}
	return nil, ports.ErrControlNotFound
}

func (s *Surface) CaptureDiagnostic(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var shot []byte
	if err := chromedp.Run(s.ctx, chromedp.FullScreenshot(&shot, 90)); err != nil {
		return "", fmt.Errorf("capture screenshot: %w", err)
	}

	if err := os.MkdirAll(s.artifactsDir, 0o700); err != nil {
		return "", fmt.Errorf("create artifacts directory: %w", err)
	}
	path := filepath.Join(s.artifactsDir, fmt.Sprintf("diag-%s.png", uuid.NewString()))
	if err := os.WriteFile(path, shot, 0o600); err != nil {
		return "", fmt.Errorf("write screenshot: %w", err)
	}
	return path, nil
}

func (s *Surface) Close() error {
	s.cancelTab()
	s.cancelAlloc()
	removeProfile(s.profileDir)
	return nil
}

type control struct {
	surface  *Surface
	selector string
}

var _ ports.Control = (*control)(nil)

func (c *control) Fill(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := chromedp.Run(c.surface.ctx,
		chromedp.Click(c.selector, chromedp.ByQuery),
		chromedp.SendKeys(c.selector, text, chromedp.ByQuery),
	)
	if err != nil {
		return fmt.Errorf("fill %s: %w", c.selector, err)
	}
	return nil
}

func (c *control) SetFiles(ctx context.Context, paths []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := chromedp.Run(c.surface.ctx,
		chromedp.SetUploadFiles(c.selector, paths, chromedp.ByQuery))
	if err != nil {
		return fmt.Errorf("set files on %s: %w", c.selector, err)
	}
	return nil
}

func (c *control) Click(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := chromedp.Run(c.surface.ctx, chromedp.Click(c.selector, chromedp.ByQuery)); err != nil {
		return fmt.Errorf("click %s: %w", c.selector, err)
	}
	return nil
}

func removeProfile(dir string) {
	if dir != "" {
		_ = os.RemoveAll(dir)
	}
}
