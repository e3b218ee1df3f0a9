package highlight

import (
	"strings"
	"sync"
	"testing"
)

func TestAcquireSharesOneInstance(t *testing.T) {
	t.Cleanup(Release)

	const n = 16
	adapters := make([]*Adapter, n)
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			adapters[i] = Acquire()
		}()
	}
	wg.Wait()

	for i := 1; i < n; i++ {
		if adapters[i] != adapters[0] {
			t.Fatal("Acquire returned distinct instances under concurrency")
		}
	}
}

func TestReleaseAllowsReacquire(t *testing.T) {
	a := Acquire()
	Release()
	b := Acquire()
	t.Cleanup(Release)
	if a == b {
		t.Error("expected a fresh adapter after Release")
	}
}

func TestHighlightKnownLanguage(t *testing.T) {
	a := Acquire()
	t.Cleanup(Release)

	res := a.Highlight("const x = 1;", "typescript", "onedark")
	if res.HTML == "" {
		t.Fatal("empty markup")
	}
	if !strings.Contains(res.HTML, "<span") {
		t.Errorf("expected token spans in markup: %s", res.HTML)
	}
	if !strings.Contains(res.HTML, "const") {
		t.Errorf("source text missing from markup: %s", res.HTML)
	}
	if res.CSS == "" {
		t.Error("expected stylesheet for highlighted markup")
	}
}

func TestHighlightUnknownLanguageFallsBack(t *testing.T) {
	a := Acquire()
	t.Cleanup(Release)

	src := `if a < b && c > "d" { 'e' }`
	res := a.Highlight(src, "definitely-not-a-language-xyz", "dark")
	if res.HTML == "" {
		t.Fatal("fallback produced empty markup")
	}
	// The fully escaped original must be present and the raw metacharacters
	// must not leak into markup context.
	if !strings.Contains(res.HTML, "&lt; b &amp;&amp; c &gt; &quot;d&quot;") {
		t.Errorf("escaped source missing from fallback: %s", res.HTML)
	}
	if strings.Contains(res.HTML, `> "d"`) {
		t.Errorf("unescaped source leaked into markup: %s", res.HTML)
	}
}

func TestHighlightNeverReturnsScript(t *testing.T) {
	a := Acquire()
	t.Cleanup(Release)

	src := `</pre><script>alert(1)</script>`
	for _, lang := range []string{"", "html", "nope"} {
		res := a.Highlight(src, lang, "dark")
		if strings.Contains(res.HTML, "<script>") {
			t.Errorf("lang %q: script element survived: %s", lang, res.HTML)
		}
	}
}

func TestHighlightEmptyText(t *testing.T) {
	a := Acquire()
	t.Cleanup(Release)

	res := a.Highlight("", "go", "dark")
	if res.HTML == "" {
		t.Error("expected minimal markup even for empty input")
	}
}

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"main.go", "Go"},
		{"/tmp/deep/path/app.py", "Python"},
		{"noext", ""},
	}
	for _, tt := range tests {
		if got := DetectLanguage(tt.filename); got != tt.want {
			t.Errorf("DetectLanguage(%q) = %q, want %q", tt.filename, got, tt.want)
		}
	}
}
