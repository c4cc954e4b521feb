package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/hareinweed/ipview/internal/capture"
)

// InterfacePicker is an overlay list for choosing a capture interface.
type InterfacePicker struct {
	Entries  []capture.Interface
	Cursor   int
	Selected string
	Status   string
	Loaded   bool
}

func NewInterfacePicker() *InterfacePicker {
	return &InterfacePicker{}
}

// Load fetches the IPv4-capable interfaces from the system.
func (p *InterfacePicker) Load() error {
	entries, err := capture.Interfaces()
	if err != nil {
		p.Status = fmt.Sprintf("Error: %v", err)
		return err
	}
	p.Entries = entries
	p.Loaded = true
	p.Cursor = 0
	return nil
}

// Update handles input for the picker. The bool result signals that the
// picker should close; Selected is non-empty only when enter was pressed.
func (p *InterfacePicker) Update(msg tea.KeyMsg) bool {
	switch msg.String() {
	case "esc":
		return true
	case "up", "k":
		if p.Cursor > 0 {
			p.Cursor--
		}
	case "down", "j":
		if p.Cursor < len(p.Entries)-1 {
			p.Cursor++
		}
	case "g", "home":
		p.Cursor = 0
	case "G", "end":
		p.Cursor = len(p.Entries) - 1
	case "enter":
		if len(p.Entries) > 0 {
			p.Selected = p.Entries[p.Cursor].Name
			return true
		}
	}
	return false
}

func (p *InterfacePicker) View(width int, s Styles) string {
	var b strings.Builder

	b.WriteString(s.Header.Render("Select Capture Interface"))
	b.WriteString("\n")
	b.WriteString(strings.Repeat("─", min(width-4, 70)))
	b.WriteString("\n\n")

	if !p.Loaded {
		b.WriteString(s.Dim.Render("Loading interfaces..."))
		b.WriteString("\n")
		return s.BoxFocused.Render(b.String())
	}

	if len(p.Entries) == 0 {
		b.WriteString(s.Dim.Render("No IPv4-capable interfaces found"))
		b.WriteString("\n")
		return s.BoxFocused.Render(b.String())
	}

	maxVisible := 12
	start := 0
	if p.Cursor >= maxVisible {
		start = p.Cursor - maxVisible + 1
	}
	end := start + maxVisible
	if end > len(p.Entries) {
		end = len(p.Entries)
	}

	for i := start; i < end; i++ {
		entry := p.Entries[i]
		prefix := "  "
		if i == p.Cursor {
			prefix = "> "
		}

		name := entry.Description
		if name == "" {
			name = entry.Name
		}
		if len(name) > 25 {
			name = name[:22] + "..."
		}

		state := "[--]"
		if entry.Up {
			state = "[up]"
		}

		addrs := strings.Join(entry.Addrs, ", ")
		line := fmt.Sprintf("%s%-25s %s %s", prefix, name, state, addrs)
		if i == p.Cursor {
			b.WriteString(s.Selected.Render(line))
		} else {
			b.WriteString(line)
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(s.Dim.Render("enter select · esc cancel"))
	if p.Status != "" {
		b.WriteString("\n")
		b.WriteString(s.Error.Render(p.Status))
	}

	return s.BoxFocused.Render(b.String())
}
