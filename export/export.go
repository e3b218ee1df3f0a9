// Package export persists capture artifacts: it decodes the base64 PNG
// payload posted by the card page, picks a destination path, writes the
// file, and records the export in the history store.
package export

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ErrCancelled is returned when the path prompter declines to pick a path.
// A cancelled save is not a failure; nothing is written.
var ErrCancelled = errors.New("export: save cancelled")

// DecodeDataURL extracts raw bytes from a base64 data URL
// ("data:image/png;base64,…"). Bare base64 without the data: prefix is
// accepted too.
func DecodeDataURL(s string) ([]byte, error) {
	payload := s
	if strings.HasPrefix(s, "data:") {
		i := strings.Index(s, ",")
		if i < 0 {
			return nil, fmt.Errorf("export: malformed data URL")
		}
		if !strings.HasSuffix(s[:i], ";base64") {
			return nil, fmt.Errorf("export: data URL is not base64-encoded")
		}
		payload = s[i+1:]
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("export: decode payload: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("export: empty payload")
	}
	return data, nil
}

// PathPrompter picks the destination path for a suggested file name.
// ok=false means the user declined and the export is abandoned.
type PathPrompter interface {
	PromptSavePath(suggestedName string) (path string, ok bool)
}

// DirPrompter is the non-interactive prompter. Directory precedence:
// the configured directory, else the working directory, else the user's
// home. The suggested name is made collision-free with a numeric suffix.
type DirPrompter struct {
	Dir string
}

// PromptSavePath implements PathPrompter.
func (p DirPrompter) PromptSavePath(suggestedName string) (string, bool) {
	dir := p.Dir
	if dir == "" {
		if wd, err := os.Getwd(); err == nil {
			dir = wd
		}
	}
	if dir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			dir = home
		}
	}
	if dir == "" {
		return "", false
	}

	name := filepath.Base(suggestedName)
	if name == "" || name == "." || name == string(filepath.Separator) {
		name = "codesnap.png"
	}
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)

	path := filepath.Join(dir, name)
	for i := 2; i < 1000; i++ {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return path, true
		}
		path = filepath.Join(dir, fmt.Sprintf("%s-%d%s", stem, i, ext))
	}
	return "", false
}

// CaptureInfo describes the capture currently on the surface, recorded
// alongside each export.
type CaptureInfo struct {
	Theme     string
	Language  string
	LineCount int
}

// Sink writes PNG bytes to disk and reports outcomes to the user.
type Sink struct {
	prompter PathPrompter
	history  *History // optional
	logger   *slog.Logger
	info     CaptureInfo
}

// NewSink creates a Sink. history may be nil to disable recording.
func NewSink(prompter PathPrompter, history *History, logger *slog.Logger) *Sink {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sink{prompter: prompter, history: history, logger: logger}
}

// SetCapture records which capture is currently on the surface so that
// saves are attributed correctly in the history.
func (s *Sink) SetCapture(info CaptureInfo) {
	s.info = info
}

// SavePNG prompts for a path and writes png there. Returns the final path,
// or ErrCancelled when the prompter declines.
func (s *Sink) SavePNG(ctx context.Context, png []byte, suggestedName string) (string, error) {
	path, ok := s.prompter.PromptSavePath(suggestedName)
	if !ok {
		return "", ErrCancelled
	}
	if err := os.WriteFile(path, png, 0o644); err != nil {
		return "", fmt.Errorf("export: write %s: %w", path, err)
	}
	s.logger.Info("export: saved", "path", path, "bytes", len(png))

	if s.history != nil {
		// A failing history store never blocks the export itself.
		err := s.history.Record(ctx, Entry{
			FileName:  filepath.Base(path),
			Path:      path,
			Theme:     s.info.Theme,
			Language:  s.info.Language,
			LineCount: s.info.LineCount,
			CreatedAt: time.Now().Unix(),
		})
		if err != nil {
			s.logger.Warn("export: history record failed", "error", err)
		}
	}
	return path, nil
}

// NotifyUser surfaces an informational message.
func (s *Sink) NotifyUser(msg string) {
	s.logger.Info("export: " + msg)
}

// NotifyError surfaces an error message. Export errors are never fatal;
// the surface stays open for a retry.
func (s *Sink) NotifyError(msg string) {
	s.logger.Error("export: " + msg)
}
