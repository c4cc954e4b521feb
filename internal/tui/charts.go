package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Sparkline renders a mini line chart using braille characters.
func Sparkline(values []float64, width int, s Styles) string {
	if len(values) == 0 || width < 1 {
		return ""
	}

	// Braille patterns for 4 vertical levels (bottom to top)
	blocks := []rune{'⣀', '⣤', '⣶', '⣿'}

	maxVal := 0.0
	for _, v := range values {
		if v > maxVal {
			maxVal = v
		}
	}
	if maxVal == 0 {
		maxVal = 1
	}

	sampled := sampleValues(values, width)

	var result strings.Builder
	for _, v := range sampled {
		normalized := v / maxVal
		level := int(normalized * float64(len(blocks)-1))
		if level < 0 {
			level = 0
		}
		if level >= len(blocks) {
			level = len(blocks) - 1
		}
		result.WriteRune(blocks[level])
	}

	return s.Info.Render(result.String())
}

// TrafficGraph renders a scrolling traffic graph.
type TrafficGraph struct {
	Title   string
	Values  []float64
	Width   int
	Height  int
	MaxVal  float64
	ShowMax bool
	Color   lipgloss.Color // Optional color for the graph
}

// Render renders the traffic graph.
func (t TrafficGraph) Render(s Styles) string {
	if t.Width < 10 {
		t.Width = 40
	}
	if t.Height < 3 {
		t.Height = 6
	}

	// Find max value
	maxVal := t.MaxVal
	if maxVal == 0 {
		for _, v := range t.Values {
			if v > maxVal {
				maxVal = v
			}
		}
	}
	if maxVal == 0 {
		maxVal = 100
	}

	// Graph characters (braille dots)
	blocks := []string{"⠀", "⣀", "⣤", "⣶", "⣿"}

	graphWidth := t.Width - 2 // Border
	sampled := sampleValues(t.Values, graphWidth)

	graphStyle := s.Info
	if t.Color != "" {
		graphStyle = lipgloss.NewStyle().Foreground(t.Color)
	}

	var rows []string

	titleLine := t.Title
	if t.ShowMax {
		titleLine += fmt.Sprintf(" (max: %s)", formatNumber(maxVal))
	}
	rows = append(rows, s.Header.Render(titleLine))

	// Graph rows (top to bottom)
	for row := t.Height - 1; row >= 0; row-- {
		var rowStr strings.Builder
		rowStr.WriteString("│")

		rowTop := float64(row+1) / float64(t.Height)
		rowBot := float64(row) / float64(t.Height)

		for _, v := range sampled {
			normalized := v / maxVal
			if normalized > 1 {
				normalized = 1
			}

			if normalized >= rowTop {
				// Full block
				rowStr.WriteString(graphStyle.Render(blocks[4]))
			} else if normalized > rowBot {
				// Partial block
				level := int((normalized - rowBot) / (rowTop - rowBot) * float64(len(blocks)-1))
				if level >= len(blocks) {
					level = len(blocks) - 1
				}
				rowStr.WriteString(graphStyle.Render(blocks[level]))
			} else {
				rowStr.WriteString(" ")
			}
		}
		rowStr.WriteString("│")
		rows = append(rows, rowStr.String())
	}

	// Bottom border
	rows = append(rows, "└"+strings.Repeat("─", graphWidth)+"┘")

	return strings.Join(rows, "\n")
}

// sampleValues resamples a slice to the target width, keeping the most
// recent values and left-padding with zeros when there are too few.
func sampleValues(values []float64, width int) []float64 {
	sampled := make([]float64, width)
	if len(values) == 0 {
		return sampled
	}
	if len(values) >= width {
		offset := len(values) - width
		for i := 0; i < width; i++ {
			sampled[i] = values[offset+i]
		}
	} else {
		offset := width - len(values)
		for i := 0; i < width; i++ {
			if i < offset {
				sampled[i] = 0
			} else {
				sampled[i] = values[i-offset]
			}
		}
	}
	return sampled
}

// formatNumber formats a number with K/M/B suffix.
func formatNumber(n float64) string {
	switch {
	case n >= 1_000_000_000:
		return fmt.Sprintf("%.1fB", n/1_000_000_000)
	case n >= 1_000_000:
		return fmt.Sprintf("%.1fM", n/1_000_000)
	case n >= 1_000:
		return fmt.Sprintf("%.1fK", n/1_000)
	default:
		return fmt.Sprintf("%.0f", n)
	}
}

// formatBytes formats a byte count in a compact form.
func formatBytes(n float64) string {
	switch {
	case n >= 1<<30:
		return fmt.Sprintf("%.1fGiB", n/(1<<30))
	case n >= 1<<20:
		return fmt.Sprintf("%.1fMiB", n/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1fKiB", n/(1<<10))
	default:
		return fmt.Sprintf("%.0fB", n)
	}
}

// formatDuration formats a duration in a compact form.
func formatDuration(seconds float64) string {
	if seconds < 60 {
		return fmt.Sprintf("%.0fs", seconds)
	}
	if seconds < 3600 {
		return fmt.Sprintf("%.0fm", seconds/60)
	}
	return fmt.Sprintf("%.1fh", seconds/3600)
}
