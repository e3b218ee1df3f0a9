// Package compose assembles the self-contained HTML document for one
// capture: themed card, optional window chrome and line-number gutter,
// the highlighted code block, and the embedded export script.
//
// Compose is a pure function of its arguments — identical inputs
// (including the ScriptContext) produce identical bytes. The per-capture
// randomness lives in ScriptContext so callers regenerate it per
// invocation while tests can pin it.
package compose

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"

	"github.com/hazyhaar/codesnap/theme"
)

//go:embed card.tmpl
var cardTmpl string

//go:embed card.js
var cardJS string

var tmpl = template.Must(template.New("card").Parse(cardTmpl))

// Card is everything the composer needs to render one capture.
type Card struct {
	// Code is the highlighter's markup. It must already be escaped; the
	// composer embeds it verbatim.
	Code string

	// CSS is the stylesheet matching Code, inlined into the document.
	CSS string

	// Title is the display name shown in the window chrome. Raw; the
	// composer escapes it.
	Title string

	// SuggestedName is the default export file name. Raw; escaped into a
	// data attribute the export script reads back.
	SuggestedName string

	LineCount int
	StartLine int

	Profile theme.Profile

	ShowLineNumbers bool
	WindowControls  bool
	Shadow          bool
}

// ScriptContext carries the single-use token shared between the document's
// script/style fragments and its Content-Security-Policy declaration.
// Regenerate it for every capture.
type ScriptContext struct {
	Nonce string
}

type docData struct {
	Nonce            string
	Title            template.HTML
	NameAttr         template.HTMLAttr
	Code             template.HTML
	HighlightCSS     template.CSS
	Script           template.JS
	Lines            []int
	Background       template.CSS
	HeaderBackground template.CSS
	LineNumber       template.CSS
	Border           template.CSS
	TitleColor       template.CSS
	ShowLineNumbers  bool
	WindowControls   bool
	Shadow           bool
}

// Compose renders the document for card under sctx.
func Compose(card Card, sctx ScriptContext) ([]byte, error) {
	if sctx.Nonce == "" {
		return nil, fmt.Errorf("compose: script context nonce is required")
	}

	start := card.StartLine
	if start < 1 {
		start = 1
	}
	var lines []int
	if card.ShowLineNumbers {
		lines = make([]int, card.LineCount)
		for i := range lines {
			lines[i] = start + i
		}
	}

	data := docData{
		Nonce:            sctx.Nonce,
		Title:            template.HTML(EscapeHTML(card.Title)),
		NameAttr:         template.HTMLAttr(` data-name="` + EscapeHTML(card.SuggestedName) + `"`),
		Code:             template.HTML(card.Code),
		HighlightCSS:     template.CSS(card.CSS),
		Script:           template.JS(cardJS),
		Lines:            lines,
		Background:       template.CSS(card.Profile.Background),
		HeaderBackground: template.CSS(card.Profile.HeaderBackground),
		LineNumber:       template.CSS(card.Profile.LineNumberColor),
		Border:           template.CSS(card.Profile.BorderColor),
		TitleColor:       template.CSS(card.Profile.TitleColor),
		ShowLineNumbers:  card.ShowLineNumbers,
		WindowControls:   card.WindowControls,
		Shadow:           card.Shadow,
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("compose: %w", err)
	}
	return buf.Bytes(), nil
}
