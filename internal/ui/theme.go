package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/bamsammich/fdlab/internal/config"
)

// Palette, overridable from the [theme] config section.
var (
	ColorData = lipgloss.Color("#a6e3a1")
	ColorHole = lipgloss.Color("#5a6278")
	ColorOK   = lipgloss.Color("#a6e3a1")
	ColorFail = lipgloss.Color("#f38ba8")
)

var (
	styleData lipgloss.Style
	styleHole lipgloss.Style
	styleOK   lipgloss.Style
	styleFail lipgloss.Style
)

func init() {
	rebuildStyles()
}

func rebuildStyles() {
	styleData = lipgloss.NewStyle().Foreground(ColorData)
	styleHole = lipgloss.NewStyle().Foreground(ColorHole)
	styleOK = lipgloss.NewStyle().Bold(true).Foreground(ColorOK)
	styleFail = lipgloss.NewStyle().Bold(true).Foreground(ColorFail)
}

// ApplyTheme overrides palette colors set in cfg.
func ApplyTheme(cfg config.ThemeConfig) {
	for _, o := range []struct {
		val *string
		dst *lipgloss.Color
	}{
		{cfg.Data, &ColorData},
		{cfg.Hole, &ColorHole},
		{cfg.OK, &ColorOK},
		{cfg.Fail, &ColorFail},
	} {
		if o.val != nil {
			*o.dst = lipgloss.Color(*o.val)
		}
	}
	rebuildStyles()
}

func paint(style lipgloss.Style, s string, styled bool) string {
	if !styled {
		return s
	}
	return style.Render(s)
}
