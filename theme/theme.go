// Package theme maps theme names to the fixed color palette a card is
// rendered with. Resolution is total: unknown names fall back to the dark
// profile, so callers never handle a lookup failure.
package theme

import "sort"

// Profile is one named palette plus the highlighter style it pairs with.
// All color values are CSS colors; HighlighterTheme is a chroma style name.
type Profile struct {
	Background       string
	HeaderBackground string
	LineNumberColor  string
	BorderColor      string
	TitleColor       string
	HighlighterTheme string
}

// DefaultName is the profile used when a theme name is not recognised.
const DefaultName = "dark"

// profiles is the complete theme table. Adding a theme means adding a row
// here, nothing else.
var profiles = map[string]Profile{
	"dark": {
		Background:       "#282c34",
		HeaderBackground: "#21252b",
		LineNumberColor:  "#636d83",
		BorderColor:      "#3e4451",
		TitleColor:       "#abb2bf",
		HighlighterTheme: "onedark",
	},
	"light": {
		Background:       "#ffffff",
		HeaderBackground: "#f3f3f3",
		LineNumberColor:  "#9d9d9d",
		BorderColor:      "#e1e4e8",
		TitleColor:       "#24292e",
		HighlighterTheme: "github",
	},
	"monokai": {
		Background:       "#272822",
		HeaderBackground: "#1e1f1c",
		LineNumberColor:  "#90908a",
		BorderColor:      "#414339",
		TitleColor:       "#f8f8f2",
		HighlighterTheme: "monokai",
	},
	"nord": {
		Background:       "#2e3440",
		HeaderBackground: "#272c36",
		LineNumberColor:  "#4c566a",
		BorderColor:      "#434c5e",
		TitleColor:       "#d8dee9",
		HighlighterTheme: "nord",
	},
	"dracula": {
		Background:       "#282a36",
		HeaderBackground: "#21222c",
		LineNumberColor:  "#6272a4",
		BorderColor:      "#44475a",
		TitleColor:       "#f8f8f2",
		HighlighterTheme: "dracula",
	},
}

// Resolve returns the profile for name, or the dark profile when name is
// not in the table.
func Resolve(name string) Profile {
	if p, ok := profiles[name]; ok {
		return p
	}
	return profiles[DefaultName]
}

// Names returns the known theme names, sorted.
func Names() []string {
	out := make([]string, 0, len(profiles))
	for n := range profiles {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
