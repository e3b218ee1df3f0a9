// Package browser manages the Chrome rasterizer handle: one lazily
// launched browser per process, shared by every capture, closed once at
// shutdown. The first caller launches Chrome; concurrent callers await
// that launch instead of racing to create duplicates.
package browser

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// Config configures the browser handle.
type Config struct {
	// RemoteURL is the WebSocket URL of an external Chrome instance.
	// Empty = launch a local Chrome via the rod launcher.
	RemoteURL string

	// Headless hides the browser window. One-shot exports run headless;
	// the interactive surface needs a visible window.
	Headless bool

	Logger *slog.Logger
}

func (c *Config) defaults() {
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Handle is the process-scoped browser resource.
type Handle struct {
	cfg     Config
	mu      sync.Mutex
	browser *rod.Browser
	lnch    *launcher.Launcher
	closed  bool
}

// NewHandle creates a Handle. Chrome is not launched until Browser is
// first called.
func NewHandle(cfg Config) *Handle {
	cfg.defaults()
	return &Handle{cfg: cfg}
}

// Browser returns the shared rod browser, launching Chrome on first call.
func (h *Handle) Browser(ctx context.Context) (*rod.Browser, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, fmt.Errorf("browser: handle is closed")
	}
	if h.browser != nil {
		return h.browser, nil
	}

	b, err := h.launch(ctx)
	if err != nil {
		return nil, err
	}
	h.browser = b
	return b, nil
}

// NewPage opens a page at url and waits for it to load.
func (h *Handle) NewPage(ctx context.Context, url string) (*rod.Page, error) {
	b, err := h.Browser(ctx)
	if err != nil {
		return nil, err
	}

	page, err := b.Page(proto.TargetCreateTarget{URL: url})
	if err != nil {
		return nil, fmt.Errorf("browser: create page: %w", err)
	}
	if err := page.Context(ctx).WaitLoad(); err != nil {
		h.cfg.Logger.Warn("browser: wait load", "url", url, "error", err)
	}
	return page, nil
}

// Close shuts down Chrome. The handle cannot be reused afterwards.
func (h *Handle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true

	if h.browser != nil {
		h.browser.Close()
		h.browser = nil
	}
	if h.lnch != nil {
		h.lnch.Cleanup()
		h.lnch = nil
	}
	return nil
}

func (h *Handle) launch(_ context.Context) (*rod.Browser, error) {
	log := h.cfg.Logger

	var wsURL string
	if h.cfg.RemoteURL != "" {
		wsURL = h.cfg.RemoteURL
		log.Info("browser: connecting to remote", "url", wsURL)
	} else {
		l := launcher.New().Headless(h.cfg.Headless)
		u, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("browser: launch: %w", err)
		}
		wsURL = u
		h.lnch = l
		log.Info("browser: launched local chrome", "url", wsURL, "headless", h.cfg.Headless)
	}

	b := rod.New().ControlURL(wsURL)
	if err := b.Connect(); err != nil {
		return nil, fmt.Errorf("browser: connect: %w", err)
	}
	return b, nil
}

// CaptureElement rasterizes the element matched by selector at the given
// device scale with a transparent capture background, returning PNG bytes.
// Only the element's box is captured, so surrounding page furniture never
// appears in the image.
func CaptureElement(ctx context.Context, page *rod.Page, selector string, scale float64) ([]byte, error) {
	p := page.Context(ctx)

	el, err := p.Element(selector)
	if err != nil {
		return nil, fmt.Errorf("browser: element %s: %w", selector, err)
	}
	if err := el.ScrollIntoView(); err != nil {
		return nil, fmt.Errorf("browser: scroll to %s: %w", selector, err)
	}
	shape, err := el.Shape()
	if err != nil {
		return nil, fmt.Errorf("browser: shape of %s: %w", selector, err)
	}
	box := shape.Box()
	if box == nil {
		return nil, fmt.Errorf("browser: element %s has no box", selector)
	}

	// Transparent capture background; restored after the screenshot.
	_ = proto.EmulationSetDefaultBackgroundColorOverride{
		Color: &proto.DOMRGBA{R: 0, G: 0, B: 0, A: new(float64)},
	}.Call(p)
	defer func() {
		_ = proto.EmulationSetDefaultBackgroundColorOverride{}.Call(p)
	}()

	bin, err := p.Screenshot(false, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
		Clip: &proto.PageViewport{
			X:      box.X,
			Y:      box.Y,
			Width:  box.Width,
			Height: box.Height,
			Scale:  scale,
		},
		FromSurface: true,
	})
	if err != nil {
		return nil, fmt.Errorf("browser: capture %s: %w", selector, err)
	}
	return bin, nil
}
