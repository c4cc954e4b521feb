package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Layout constants
const (
	DefaultWidth  = 120
	DefaultHeight = 40
	MinWidth      = 60
	MaxWidth      = 160

	PaddingMedium = 2
)

// Layout holds layout calculations for the current terminal size.
type Layout struct {
	Width  int
	Height int

	// Calculated regions
	ContentWidth  int
	ContentHeight int
}

// NewLayout creates a new layout for the given terminal size.
func NewLayout(width, height int) Layout {
	if width < MinWidth {
		width = MinWidth
	}
	if width > MaxWidth {
		width = MaxWidth
	}

	l := Layout{
		Width:  width,
		Height: height,
	}

	// Content area: full width minus padding
	l.ContentWidth = width - (PaddingMedium * 2) - 2 // 2 for border

	// Height: leave room for tab bar, filter line, status line, footer
	l.ContentHeight = height - 9
	if l.ContentHeight < 5 {
		l.ContentHeight = 5
	}

	return l
}

// TableRows returns how many record rows fit in the content area.
func (l Layout) TableRows() int {
	// Header and separator take two lines.
	rows := l.ContentHeight - 2
	if rows < 1 {
		rows = 1
	}
	return rows
}

// ChartHeight returns the height of one traffic graph, two stacked per page.
func (l Layout) ChartHeight() int {
	h := (l.ContentHeight - 6) / 2
	if h < 3 {
		h = 3
	}
	return h
}

// JoinVertical joins strings vertically with the specified gap.
func JoinVertical(gap int, parts ...string) string {
	spacer := strings.Repeat("\n", gap)
	var nonEmpty []string
	for _, p := range parts {
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, spacer)
}

// JoinHorizontal joins rendered blocks side by side, top aligned.
func JoinHorizontal(gap int, parts ...string) string {
	var nonEmpty []string
	for _, p := range parts {
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	if len(nonEmpty) == 0 {
		return ""
	}
	spacer := strings.Repeat(" ", gap)
	joined := nonEmpty[0]
	for _, p := range nonEmpty[1:] {
		joined = lipgloss.JoinHorizontal(lipgloss.Top, joined, spacer, p)
	}
	return joined
}
