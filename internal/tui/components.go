package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// SectionBox renders a titled box with content.
//
//	╭─ TITLE ──────────────────────────╮
//	│  content line 1                  │
//	│  content line 2                  │
//	╰──────────────────────────────────╯
func SectionBox(title, content string, width int, s Styles) string {
	if width < 20 {
		width = 60
	}

	// Build title bar: ─ TITLE ──────
	titleText := " " + title + " "
	titleLen := lipgloss.Width(titleText)
	remainingWidth := width - 4 - titleLen // 4 for corners and initial dash
	if remainingWidth < 0 {
		remainingWidth = 0
	}

	titleBar := "─" + s.Header.Render(titleText) + strings.Repeat("─", remainingWidth)

	box := lipgloss.NewStyle().
		Border(lipgloss.Border{
			Top:         "",
			Bottom:      "─",
			Left:        "│",
			Right:       "│",
			TopLeft:     "╭",
			TopRight:    "╮",
			BottomLeft:  "╰",
			BottomRight: "╯",
		}).
		BorderForeground(DefaultTheme.Border).
		Width(width - 2). // Account for border
		Padding(0, 1)

	// Build the full box manually for the custom top border
	contentBox := box.Render(content)
	lines := strings.Split(contentBox, "\n")

	var result strings.Builder
	result.WriteString("╭" + titleBar + "╮\n")
	for i := 1; i < len(lines); i++ {
		result.WriteString(lines[i])
		if i < len(lines)-1 {
			result.WriteString("\n")
		}
	}

	return result.String()
}

// Table renders a data table with headers and rows.
type Table struct {
	Headers  []string
	Rows     [][]string
	Widths   []int // Column widths (0 = auto)
	Selected int   // Highlighted row index, -1 for none
}

// Render renders the table.
func (t Table) Render(width int, s Styles) string {
	if len(t.Headers) == 0 {
		return ""
	}

	// Calculate column widths
	colWidths := make([]int, len(t.Headers))
	for i, h := range t.Headers {
		if i < len(t.Widths) && t.Widths[i] > 0 {
			colWidths[i] = t.Widths[i]
		} else {
			colWidths[i] = lipgloss.Width(h)
		}
	}
	for _, row := range t.Rows {
		for i, cell := range row {
			if i < len(colWidths) {
				w := lipgloss.Width(cell)
				if w > colWidths[i] && (i >= len(t.Widths) || t.Widths[i] == 0) {
					colWidths[i] = w
				}
			}
		}
	}

	var b strings.Builder

	// Header row
	for i, h := range t.Headers {
		cell := padRight(h, colWidths[i])
		b.WriteString(s.SectionName.Render(cell))
		if i < len(t.Headers)-1 {
			b.WriteString("  ")
		}
	}
	b.WriteString("\n")

	// Separator
	totalWidth := 0
	for i, w := range colWidths {
		totalWidth += w
		if i < len(colWidths)-1 {
			totalWidth += 2 // spacing
		}
	}
	b.WriteString(s.Muted.Render(strings.Repeat("─", totalWidth)))
	b.WriteString("\n")

	// Data rows
	for ri, row := range t.Rows {
		var line strings.Builder
		for i := 0; i < len(t.Headers); i++ {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			line.WriteString(padRight(cell, colWidths[i]))
			if i < len(t.Headers)-1 {
				line.WriteString("  ")
			}
		}
		if ri == t.Selected {
			b.WriteString(s.Cursor.Render(line.String()))
		} else {
			b.WriteString(line.String())
		}
		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n")
}

// StatusBadge renders a colored status indicator with label.
//
//	● Capturing
func StatusBadge(status, label string, s Styles) string {
	icon := StatusIcon(status, s)
	var style lipgloss.Style
	switch status {
	case "ok", "done", "stopped":
		style = s.Success
	case "error", "failed":
		style = s.Error
	case "warning":
		style = s.Warning
	case "running", "capturing":
		style = s.Running
	default:
		style = s.Dim
	}
	return icon + " " + style.Render(label)
}

// TabBar renders a horizontal tab bar.
//
//	┌────────┬─────────┬────────┐
//	│ Active │  Tab 2  │ Tab 3  │
//	└────────┴─────────┴────────┘
func TabBar(tabs []string, selected int, s Styles) string {
	if len(tabs) == 0 {
		return ""
	}

	// Calculate tab widths (minimum 8 chars)
	tabWidths := make([]int, len(tabs))
	for i, tab := range tabs {
		w := lipgloss.Width(tab) + 2 // padding
		if w < 8 {
			w = 8
		}
		tabWidths[i] = w
	}

	var top, mid, bot strings.Builder

	for i, tab := range tabs {
		w := tabWidths[i]

		if i == 0 {
			top.WriteString("┌")
		} else {
			top.WriteString("┬")
		}
		top.WriteString(strings.Repeat("─", w))

		mid.WriteString("│")
		content := padCenter(tab, w)
		if i == selected {
			mid.WriteString(s.Selected.Render(content))
		} else {
			mid.WriteString(s.Dim.Render(content))
		}

		if i == 0 {
			bot.WriteString("└")
		} else {
			bot.WriteString("┴")
		}
		bot.WriteString(strings.Repeat("─", w))
	}

	top.WriteString("┐")
	mid.WriteString("│")
	bot.WriteString("┘")

	return top.String() + "\n" + mid.String() + "\n" + bot.String()
}

// KeyHints renders a row of keyboard shortcuts.
//
//	[space] Capture    [/] Filter    [q] Quit
func KeyHints(hints []KeyHint, s Styles) string {
	var parts []string
	for _, h := range hints {
		key := s.KeyBinding.Render("[" + h.Key + "]")
		label := s.KeyHint.Render(h.Label)
		parts = append(parts, key+" "+label)
	}
	return strings.Join(parts, "    ")
}

// KeyHint represents a keyboard shortcut hint.
type KeyHint struct {
	Key   string
	Label string
}

// InputField renders a styled input field.
//
//	Filter   │ dest_port == 443█           │
func InputField(label, value string, active bool, width int, s Styles) string {
	labelWidth := 8
	inputWidth := width - labelWidth - 5 // Account for separator and padding
	if inputWidth < 10 {
		inputWidth = 20
	}

	labelStr := padRight(label, labelWidth)

	displayValue := value
	if active {
		displayValue = value + "█"
	}

	if lipgloss.Width(displayValue) > inputWidth {
		displayValue = displayValue[lipgloss.Width(displayValue)-inputWidth:]
	}
	displayValue = padRight(displayValue, inputWidth)

	var valueStyle lipgloss.Style
	if active {
		valueStyle = s.Focused
	} else {
		valueStyle = s.Base
	}

	return s.Dim.Render(labelStr) + " │ " + valueStyle.Render(displayValue) + " │"
}

// Divider renders a horizontal divider line.
func Divider(width int, s Styles) string {
	return s.Muted.Render(strings.Repeat("─", width))
}

// Helper functions

func padRight(s string, width int) string {
	w := lipgloss.Width(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}

func padCenter(s string, width int) string {
	w := lipgloss.Width(s)
	if w >= width {
		return s
	}
	left := (width - w) / 2
	right := width - w - left
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", right)
}

// truncateString truncates a string to max length, adding "..." if truncated.
func truncateString(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
