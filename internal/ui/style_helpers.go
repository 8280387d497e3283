package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// BgStyle paints runs of styled text over one shared background color.
// Lipgloss emits an ANSI reset after every Render call, so concatenating
// segments styled with different foregrounds leaves unpainted gaps at the
// spaces between them; the header and command bar would show the terminal
// background bleeding through. BgStyle re-styles each word and every space
// with the same background so the bar reads as one solid strip.
// (https://github.com/charmbracelet/lipgloss/discussions/78)
type BgStyle struct {
	bg    lipgloss.Color
	space string // a pre-rendered space, reused between words
}

// NewBgStyle builds a painter for the given background color.
func NewBgStyle(bgColor string) BgStyle {
	bg := lipgloss.Color(bgColor)
	return BgStyle{
		bg:    bg,
		space: lipgloss.NewStyle().Background(bg).Render(" "),
	}
}

// Render styles text word by word so the spaces carry the background too.
func (b BgStyle) Render(text string, style lipgloss.Style) string {
	if text == "" {
		return ""
	}

	if !strings.Contains(text, " ") {
		return style.Background(b.bg).Render(text)
	}

	wordStyle := style.Background(b.bg)
	words := strings.Split(text, " ")
	result := make([]string, 0, len(words))
	for _, w := range words {
		if w != "" {
			result = append(result, wordStyle.Render(w))
		} else {
			// Empty entries keep runs of consecutive spaces intact.
			result = append(result, "")
		}
	}
	return strings.Join(result, b.space)
}

// Space returns one painted space.
func (b BgStyle) Space() string {
	return b.space
}

// Spaces returns n painted spaces.
func (b BgStyle) Spaces(n int) string {
	return lipgloss.NewStyle().Background(b.bg).Render(strings.Repeat(" ", n))
}

// Sep paints a separator string.
func (b BgStyle) Sep(sep string) string {
	return lipgloss.NewStyle().Background(b.bg).Render(sep)
}

// Join joins parts with a painted separator.
func (b BgStyle) Join(parts []string, sep string) string {
	return strings.Join(parts, b.Sep(sep))
}
