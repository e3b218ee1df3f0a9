// Package highlight adapts the chroma syntax highlighter for card
// rendering. The adapter is a process-scoped singleton: Acquire creates it
// on first use (concurrent callers share one initialization), Release
// drops it at shutdown.
//
// Highlight never fails. Unknown languages, tokeniser errors, and lexer
// panics all degrade to escaped plain text in a minimal code block, so the
// pipeline always has renderable markup to work with.
package highlight

import (
	"bytes"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/microcosm-cc/bluemonday"

	"github.com/hazyhaar/codesnap/compose"
)

// Result is self-contained highlighter output: markup plus the stylesheet
// it needs. Neither contains unescaped input text.
type Result struct {
	HTML string
	CSS  string
}

// Adapter converts raw source text into styled markup. Safe for concurrent
// use; all mutable lexer registration inside chroma is idempotent.
type Adapter struct {
	formatter *html.Formatter
	policy    *bluemonday.Policy
	logger    *slog.Logger
}

var (
	mu     sync.Mutex
	shared *Adapter
)

// Acquire returns the process-wide adapter, creating it on first call.
func Acquire() *Adapter {
	mu.Lock()
	defer mu.Unlock()
	if shared == nil {
		shared = newAdapter()
	}
	return shared
}

// Release drops the process-wide adapter. Call once at process shutdown;
// a later Acquire re-initialises.
func Release() {
	mu.Lock()
	shared = nil
	mu.Unlock()
}

func newAdapter() *Adapter {
	// Class-based output keeps markup and colors separate: the stylesheet
	// is emitted once per document and the markup carries only class names.
	formatter := html.New(html.WithClasses(true), html.TabWidth(4))

	// The policy admits exactly the structure chroma emits. Anything else
	// smuggled into the markup is stripped.
	policy := bluemonday.NewPolicy()
	policy.AllowElements("pre", "code", "span")
	policy.AllowAttrs("class").OnElements("pre", "code", "span")

	return &Adapter{
		formatter: formatter,
		policy:    policy,
		logger:    slog.Default(),
	}
}

// Highlight renders text as styled markup for the given language tag and
// chroma style name. On any failure it returns the escaped-plain-text
// fallback instead of an error.
func (a *Adapter) Highlight(text, language, styleID string) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Debug("highlight: lexer panic recovered", "language", language, "panic", r)
			res = a.fallback(text, styleID)
		}
	}()

	// An explicit language tag must resolve to a lexer; content analysis is
	// only a guess for untagged captures, never a substitute for a tag the
	// registry does not know.
	var lexer chroma.Lexer
	if language != "" {
		lexer = lexers.Get(language)
	} else {
		lexer = lexers.Analyse(text)
	}
	if lexer == nil {
		return a.fallback(text, styleID)
	}
	lexer = chroma.Coalesce(lexer)

	iterator, err := lexer.Tokenise(nil, text)
	if err != nil {
		a.logger.Debug("highlight: tokenise failed", "language", language, "error", err)
		return a.fallback(text, styleID)
	}

	style := styles.Get(styleID)
	var buf bytes.Buffer
	if err := a.formatter.Format(&buf, style, iterator); err != nil {
		a.logger.Debug("highlight: format failed", "language", language, "error", err)
		return a.fallback(text, styleID)
	}

	return Result{
		HTML: a.policy.Sanitize(buf.String()),
		CSS:  a.css(style),
	}
}

// fallback wraps the escaped input in a minimal code block styled like the
// highlighted output, so failed captures still render.
func (a *Adapter) fallback(text, styleID string) Result {
	return Result{
		HTML: `<pre class="chroma"><code>` + compose.EscapeHTML(text) + `</code></pre>`,
		CSS:  a.css(styles.Get(styleID)),
	}
}

func (a *Adapter) css(style *chroma.Style) string {
	var buf bytes.Buffer
	if err := a.formatter.WriteCSS(&buf, style); err != nil {
		a.logger.Debug("highlight: write css failed", "error", err)
		return ""
	}
	return buf.String()
}

// DetectLanguage maps a file name to a language tag via chroma's filename
// matching. Returns "" when no lexer claims the file.
func DetectLanguage(filename string) string {
	lexer := lexers.Match(filepath.Base(filename))
	if lexer == nil {
		return ""
	}
	return lexer.Config().Name
}
