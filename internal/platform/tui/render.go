package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/castlechain/internal/core"
)

// ansiCodes maps core colors to their terminal palette entries. Styles
// are derived once at startup so render runs stay allocation-light.
var ansiCodes = map[core.Color]string{
	core.ColorRed:           "1",
	core.ColorGreen:         "2",
	core.ColorYellow:        "3",
	core.ColorBlue:          "4",
	core.ColorMagenta:       "5",
	core.ColorCyan:          "6",
	core.ColorWhite:         "7",
	core.ColorBrightRed:     "9",
	core.ColorBrightGreen:   "10",
	core.ColorBrightYellow:  "11",
	core.ColorBrightBlue:    "12",
	core.ColorBrightMagenta: "13",
	core.ColorBrightCyan:    "14",
	core.ColorBrightWhite:   "15",
	core.ColorOrange:        "208",
	core.ColorGray:          "245",
}

var colorStyles = func() map[core.Color]lipgloss.Style {
	styles := make(map[core.Color]lipgloss.Style, len(ansiCodes))
	for c, code := range ansiCodes {
		styles[c] = lipgloss.NewStyle().Foreground(lipgloss.Color(code))
	}
	return styles
}()

// RenderScreen converts a Screen buffer to a styled string. Cells are
// written in same-color runs so each row emits at most one escape
// sequence per color change, and default-colored runs carry none.
func RenderScreen(s *core.Screen) string {
	var sb strings.Builder
	sb.Grow(s.Width()*s.Height()*2 + s.Height())

	for y := range s.Height() {
		if y > 0 {
			sb.WriteRune('\n')
		}
		flushRow(&sb, s, y)
	}
	return sb.String()
}

// flushRow writes row y as styled same-color runs.
func flushRow(sb *strings.Builder, s *core.Screen, y int) {
	width := s.Width()
	for x := 0; x < width; {
		color := s.GetCell(x, y).Color

		var run strings.Builder
		for x < width {
			cell := s.GetCell(x, y)
			if cell.Color != color {
				break
			}
			run.WriteRune(cell.Rune)
			x++
		}

		style, styled := colorStyles[color]
		if !styled {
			// Default and unknown colors pass through unstyled
			sb.WriteString(run.String())
			continue
		}
		sb.WriteString(style.Render(run.String()))
	}
}
