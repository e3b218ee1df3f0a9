// Package surface manages the single presentation surface: a loopback
// HTTP server that serves the composed card document to a rod-controlled
// browser page and receives the page's export messages.
//
// One surface exists per process. A second capture while the page is open
// refreshes it in place and reveals it instead of opening a duplicate.
package surface

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-rod/rod"

	"github.com/hazyhaar/codesnap/browser"
	"github.com/hazyhaar/codesnap/export"
	"github.com/hazyhaar/codesnap/shield"
)

// cardScale is the device scale factor for captures.
const cardScale = 2

// maxMessageBody bounds the POST /message body. A 2x PNG of a large
// snippet round-trips through base64, so this is generous.
const maxMessageBody = 64 << 20

// Sink receives decoded export requests and user notifications.
type Sink interface {
	SavePNG(ctx context.Context, png []byte, suggestedName string) (string, error)
	NotifyUser(msg string)
	NotifyError(msg string)
}

// Config configures the Surface.
type Config struct {
	// Addr is the loopback listen address. Default: 127.0.0.1:0.
	Addr string

	Browser *browser.Handle
	Sink    Sink
	Logger  *slog.Logger
}

// page abstracts the browser page so surface logic is testable without
// Chrome.
type page interface {
	Navigate(url string) error
	Activate() error
	Capture(ctx context.Context, selector string, scale float64) ([]byte, error)
	Close() error
}

type rodCardPage struct{ p *rod.Page }

func (r rodCardPage) Navigate(url string) error { return r.p.Navigate(url) }

func (r rodCardPage) Activate() error {
	_, err := r.p.Activate()
	return err
}

func (r rodCardPage) Capture(ctx context.Context, selector string, scale float64) ([]byte, error) {
	return browser.CaptureElement(ctx, r.p, selector, scale)
}

func (r rodCardPage) Close() error { return r.p.Close() }

// Surface is the single reusable visual container for capture sessions.
type Surface struct {
	logger *slog.Logger
	sink   Sink
	handle *browser.Handle
	addr   string

	// openPage creates the browser page; replaced in tests.
	openPage func(ctx context.Context, url string) (page, error)

	mu      sync.Mutex
	srv     *http.Server
	baseURL string
	doc     []byte
	name    string
	page    page
}

// New creates a Surface. The HTTP server and browser page start lazily on
// the first Show.
func New(cfg Config) *Surface {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	s := &Surface{
		logger: cfg.Logger,
		sink:   cfg.Sink,
		handle: cfg.Browser,
		addr:   cfg.Addr,
	}
	s.openPage = func(ctx context.Context, url string) (page, error) {
		p, err := s.handle.NewPage(ctx, url)
		if err != nil {
			return nil, err
		}
		return rodCardPage{p: p}, nil
	}
	return s
}

// Show presents doc on the surface. If a page is already open it is
// refreshed in place and revealed; otherwise a new page is opened.
// suggestedName is the default export file name for this capture.
func (s *Surface) Show(ctx context.Context, doc []byte, suggestedName string) error {
	// Page operations happen outside the lock: loading the document makes
	// the page request GET /, whose handler needs the same mutex.
	s.mu.Lock()
	s.doc = doc
	s.name = suggestedName
	if err := s.ensureServerLocked(); err != nil {
		s.mu.Unlock()
		return err
	}
	url := s.baseURL
	p := s.page
	s.mu.Unlock()

	if p != nil {
		if err := p.Navigate(url); err != nil {
			// Page was closed behind our back; replace it below.
			s.logger.Warn("surface: refresh failed, reopening", "error", err)
			_ = p.Close()
			s.setPage(nil)
		} else {
			if err := p.Activate(); err != nil {
				s.logger.Debug("surface: reveal failed", "error", err)
			}
			return nil
		}
	}

	np, err := s.openPage(ctx, url)
	if err != nil {
		return fmt.Errorf("surface: open page: %w", err)
	}
	s.setPage(np)
	return nil
}

func (s *Surface) setPage(p page) {
	s.mu.Lock()
	s.page = p
	s.mu.Unlock()
}

// Rasterize returns the PNG of the card currently on the surface.
func (s *Surface) Rasterize(ctx context.Context) ([]byte, error) {
	s.mu.Lock()
	p := s.page
	s.mu.Unlock()

	if p == nil {
		return nil, fmt.Errorf("surface: nothing is shown")
	}
	return p.Capture(ctx, "#card", cardScale)
}

// Close shuts down the page and the loopback server.
func (s *Surface) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.page != nil {
		_ = s.page.Close()
		s.page = nil
	}
	if s.srv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = s.srv.Shutdown(ctx)
		s.srv = nil
	}
	return nil
}

func (s *Surface) ensureServerLocked() error {
	if s.srv != nil {
		return nil
	}

	addr := s.addr
	if addr == "" {
		addr = "127.0.0.1:0"
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("surface: listen %s: %w", addr, err)
	}
	s.baseURL = "http://" + ln.Addr().String() + "/"
	s.srv = &http.Server{Handler: s.routes()}

	go func(srv *http.Server) {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("surface: server", "error", err)
		}
	}(s.srv)

	s.logger.Info("surface: listening", "url", s.baseURL)
	return nil
}

func (s *Surface) routes() http.Handler {
	r := chi.NewRouter()
	for _, mw := range shield.Stack(maxMessageBody) {
		r.Use(mw)
	}
	r.Get("/", s.handleCard)
	r.Get("/raster", s.handleRaster)
	r.Post("/message", s.handleMessage)
	return r
}

func (s *Surface) handleCard(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	doc := s.doc
	s.mu.Unlock()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(doc)
}

func (s *Surface) handleRaster(w http.ResponseWriter, r *http.Request) {
	png, err := s.Rasterize(r.Context())
	if err != nil {
		s.logger.Error("surface: rasterize", "error", err)
		http.Error(w, "rasterize failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(png)
}

func (s *Surface) handleMessage(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxMessageBody))
	if err != nil {
		http.Error(w, "read body", http.StatusBadRequest)
		return
	}

	msg, err := DecodeMessage(body)
	if err != nil {
		s.logger.Warn("surface: bad message", "error", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	switch m := msg.(type) {
	case SaveMessage:
		s.handleSave(r.Context(), w, m)
	case CopyMessage:
		s.sink.NotifyUser("image copied to clipboard")
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	case ErrorMessage:
		s.sink.NotifyError(m.Text)
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	default:
		// DecodeMessage only produces the three variants above.
		http.Error(w, "unhandled message", http.StatusInternalServerError)
	}
}

func (s *Surface) handleSave(ctx context.Context, w http.ResponseWriter, m SaveMessage) {
	png, err := export.DecodeDataURL(m.Data)
	if err != nil {
		s.sink.NotifyError(err.Error())
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	name := m.FileName
	if name == "" {
		s.mu.Lock()
		name = s.name
		s.mu.Unlock()
	}
	if !strings.HasSuffix(strings.ToLower(name), ".png") {
		name += ".png"
	}

	path, err := s.sink.SavePNG(ctx, png, name)
	switch {
	case errors.Is(err, export.ErrCancelled):
		writeJSON(w, http.StatusOK, map[string]any{"path": ""})
	case err != nil:
		s.sink.NotifyError(err.Error())
		http.Error(w, "save failed", http.StatusInternalServerError)
	default:
		writeJSON(w, http.StatusOK, map[string]any{"path": path})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
