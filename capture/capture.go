// Package capture orchestrates a capture end to end: highlight the
// selection, compose the card document, and hand it to the surface or
// rasterize it straight to a file.
package capture

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hazyhaar/codesnap/compose"
	"github.com/hazyhaar/codesnap/export"
	"github.com/hazyhaar/codesnap/highlight"
	"github.com/hazyhaar/codesnap/idgen"
	"github.com/hazyhaar/codesnap/theme"
)

// Surface presents composed documents and rasterizes the shown card.
type Surface interface {
	Show(ctx context.Context, doc []byte, suggestedName string) error
	Rasterize(ctx context.Context) ([]byte, error)
}

// Service turns capture requests into cards.
type Service struct {
	opts    Options
	outDir  string
	logger  *slog.Logger
	surface Surface
	adapter *highlight.Adapter
	sink    *export.Sink
	history *export.History // optional

	// nonce mints the per-capture script token. Replaced in tests to pin
	// document bytes.
	nonce func() string
}

// NewService wires a Service. sink and history may be nil when the
// corresponding flows (interactive export, one-shot history) are unused.
func NewService(cfg *Config, surface Surface, sink *export.Sink, history *export.History, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		opts:    cfg.Options(),
		outDir:  cfg.OutputDir,
		logger:  logger,
		surface: surface,
		adapter: highlight.Acquire(),
		sink:    sink,
		history: history,
		nonce:   idgen.Nonce,
	}
}

// CaptureSelection renders req onto the surface.
func (s *Service) CaptureSelection(ctx context.Context, req Request) error {
	doc, name, info, err := s.render(req)
	if err != nil {
		return err
	}
	if s.sink != nil {
		s.sink.SetCapture(info)
	}
	if err := s.surface.Show(ctx, doc, name); err != nil {
		return err
	}
	s.logger.Info("capture: shown",
		"name", name, "theme", info.Theme, "language", info.Language, "lines", info.LineCount)
	return nil
}

// CaptureFile renders a line range of the file at path. startLine and
// endLine are 1-based inclusive; both zero means the whole file.
func (s *Service) CaptureFile(ctx context.Context, path string, startLine, endLine int) error {
	req, err := FileRequest(path, startLine, endLine)
	if err != nil {
		return err
	}
	return s.CaptureSelection(ctx, req)
}

// Export renders req and writes the rasterized PNG to outPath without any
// prompt. An empty outPath derives the name from the request and places it
// under the configured output directory, or the working directory.
// Returns the path written.
func (s *Service) Export(ctx context.Context, req Request, outPath string) (string, error) {
	doc, name, info, err := s.render(req)
	if err != nil {
		return "", err
	}
	if err := s.surface.Show(ctx, doc, name); err != nil {
		return "", err
	}
	png, err := s.surface.Rasterize(ctx)
	if err != nil {
		return "", fmt.Errorf("capture: rasterize: %w", err)
	}

	if outPath == "" {
		outPath = filepath.Join(s.outDir, name)
	}
	if !strings.HasSuffix(strings.ToLower(outPath), ".png") {
		outPath += ".png"
	}
	if err := os.WriteFile(outPath, png, 0o644); err != nil {
		return "", fmt.Errorf("capture: write %s: %w", outPath, err)
	}
	s.logger.Info("capture: exported", "path", outPath, "bytes", len(png))

	if s.history != nil {
		err := s.history.Record(ctx, export.Entry{
			FileName:  filepath.Base(outPath),
			Path:      outPath,
			Theme:     info.Theme,
			Language:  info.Language,
			LineCount: info.LineCount,
			CreatedAt: time.Now().Unix(),
		})
		if err != nil {
			s.logger.Warn("capture: history record failed", "error", err)
		}
	}
	return outPath, nil
}

// Themes lists the available theme names.
func (s *Service) Themes() []string {
	return theme.Names()
}

// Recent returns the latest recorded exports, newest first.
func (s *Service) Recent(ctx context.Context, limit int) ([]export.Entry, error) {
	if s.history == nil {
		return nil, fmt.Errorf("capture: history is not configured")
	}
	return s.history.Recent(ctx, limit)
}

func (s *Service) render(req Request) (doc []byte, name string, info export.CaptureInfo, err error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, "", info, ErrEmptySelection
	}

	language := req.Language
	if language == "" && req.DisplayName != "" {
		language = highlight.DetectLanguage(req.DisplayName)
	}

	profile := theme.Resolve(s.opts.Theme)
	res := s.adapter.Highlight(req.Text, language, profile.HighlighterTheme)

	name = SuggestedFileName(req.DisplayName)
	card := compose.Card{
		Code:            res.HTML,
		CSS:             res.CSS,
		Title:           req.DisplayName,
		SuggestedName:   name,
		LineCount:       compose.LineCount(req.Text),
		StartLine:       req.StartLine,
		Profile:         profile,
		ShowLineNumbers: s.opts.ShowLineNumbers,
		WindowControls:  s.opts.WindowControls,
		Shadow:          s.opts.Shadow,
	}
	doc, err = compose.Compose(card, compose.ScriptContext{Nonce: s.nonce()})
	if err != nil {
		return nil, "", info, err
	}

	info = export.CaptureInfo{
		Theme:     s.opts.Theme,
		Language:  language,
		LineCount: card.LineCount,
	}
	return doc, name, info, nil
}

// FileRequest reads a 1-based inclusive line range of the file at path.
// startLine and endLine both zero selects the whole file.
func FileRequest(path string, startLine, endLine int) (Request, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Request{}, fmt.Errorf("capture: read %s: %w", path, err)
	}
	text := string(data)

	if startLine == 0 && endLine == 0 {
		return Request{Text: text, DisplayName: filepath.Base(path), StartLine: 1}, nil
	}
	if startLine < 1 || endLine < startLine {
		return Request{}, fmt.Errorf("capture: invalid line range %d:%d", startLine, endLine)
	}

	lines := strings.Split(strings.TrimSuffix(text, "\n"), "\n")
	if endLine > len(lines) {
		return Request{}, fmt.Errorf("capture: line range %d:%d exceeds %d lines", startLine, endLine, len(lines))
	}
	return Request{
		Text:        strings.Join(lines[startLine-1:endLine], "\n"),
		DisplayName: filepath.Base(path),
		StartLine:   startLine,
	}, nil
}

// SuggestedFileName derives the default export name from a display name:
// the stem plus a "-codesnap.png" suffix.
func SuggestedFileName(displayName string) string {
	stem := strings.TrimSuffix(displayName, filepath.Ext(displayName))
	if stem == "" {
		stem = "snippet"
	}
	return stem + "-codesnap.png"
}
