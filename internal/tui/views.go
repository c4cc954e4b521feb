package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

var recordHeaders = []string{
	"Time", "Src IP", "Src Port", "Dest IP", "Dest Port",
	"Len", "IP Payload", "Trans Proto", "Trans Payload", "App Proto",
}

func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	if m.picker != nil {
		return m.picker.View(m.layout.Width, m.styles)
	}

	var content string
	switch m.tab {
	case TabRecords:
		content = m.viewRecords()
	case TabPlot:
		content = m.viewPlot()
	case TabStats:
		content = m.viewStats()
	case TabAbout:
		content = m.viewAbout()
	}

	parts := []string{
		m.viewHeader(),
		TabBar(tabNames, int(m.tab), m.styles),
		m.viewFilterLine(),
		content,
		m.viewFooter(),
	}
	return JoinVertical(1, parts...)
}

func (m *Model) viewHeader() string {
	s := m.styles

	badge := StatusBadge("stopped", "stopped", s)
	if m.sess.Capturing() {
		badge = StatusBadge("capturing", "capturing", s)
	}

	iface := m.iface
	if iface == "" {
		iface = "(none)"
	}

	left := s.Title.Render("ipview") + "  " + badge
	// Mini traffic line while the full chart is on another tab.
	if m.tab != TabPlot {
		if packets, _ := m.sess.Series().Points(); len(packets) > 1 {
			left += "  " + Sparkline(packets, 16, s)
		}
	}
	right := fmt.Sprintf("iface %s · %d packets · %s",
		iface, m.packetsTotal, formatBytes(float64(m.bytesTotal)))
	if m.sess.FilterText() != "" {
		right += fmt.Sprintf(" · %d shown", m.sess.VisibleLen())
	}

	gap := m.layout.Width - lipgloss.Width(left) - len(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + s.Dim.Render(right)
}

func (m *Model) viewFilterLine() string {
	s := m.styles
	value := m.sess.FilterText()
	if m.editingFilter {
		value = m.filterDraft
	}

	line := InputField("Filter", value, m.editingFilter, m.layout.ContentWidth, s)
	if m.editingFilter && m.filterStatus != "" {
		if m.filterBad {
			line += "  " + s.Error.Render(m.filterStatus)
		} else {
			line += "  " + s.Dim.Render(m.filterStatus)
		}
	}
	return line
}

func (m *Model) viewRecords() string {
	rows := m.layout.TableRows()
	total := m.sess.VisibleLen()

	start := 0
	if m.selected >= rows {
		start = m.selected - rows + 1
	}
	end := start + rows
	if end > total {
		end = total
	}

	table := Table{
		Headers:  recordHeaders,
		Rows:     make([][]string, 0, end-start),
		Selected: m.selected - start,
	}
	for i := start; i < end; i++ {
		row := m.sess.VisibleRow(i)
		table.Rows = append(table.Rows, row[:])
	}
	if total == 0 {
		table.Selected = -1
	}

	body := table.Render(m.layout.ContentWidth, m.styles)
	pos := fmt.Sprintf("%d-%d of %d", start+1, end, total)
	if total == 0 {
		pos = "no records"
	}
	return body + "\n" + m.styles.Dim.Render(pos)
}

func (m *Model) viewPlot() string {
	packets, bytes := m.sess.Series().Points()
	width := m.layout.ContentWidth - 4
	height := m.layout.ChartHeight()

	interval := m.sess.Series().Interval()
	pg := TrafficGraph{
		Title:   fmt.Sprintf("Packets per %s", interval),
		Values:  packets,
		Width:   width,
		Height:  height,
		ShowMax: true,
		Color:   DefaultTheme.Accent,
	}
	bg := TrafficGraph{
		Title:   fmt.Sprintf("Bytes per %s", interval),
		Values:  bytes,
		Width:   width,
		Height:  height,
		ShowMax: true,
		Color:   DefaultTheme.Success,
	}

	span := m.sess.Series().End().Sub(m.sess.Series().Start())
	info := fmt.Sprintf("%d buckets · span %s",
		len(m.sess.Series().Buckets()), formatDuration(span.Seconds()))

	return JoinVertical(1,
		pg.Render(m.styles),
		bg.Render(m.styles),
		m.styles.Dim.Render(info),
	)
}

func (m *Model) viewStats() string {
	s := m.styles
	st := m.sess.Stats()
	width := m.layout.ContentWidth

	net := st.NetworkRow()
	netTable := Table{
		Headers:  []string{"Packets", "Bytes"},
		Rows:     [][]string{net[:]},
		Selected: -1,
	}

	transTable := Table{
		Headers:  []string{"Protocol", "Packets", "IP Payload Bytes", "Total Bytes"},
		Selected: -1,
	}
	for _, row := range st.TransportRows() {
		transTable.Rows = append(transTable.Rows, row[:])
	}

	appTable := Table{
		Headers:  []string{"Protocol", "Packets", "App Bytes", "IP Payload Bytes", "Total Bytes"},
		Selected: -1,
	}
	for _, row := range st.AppRows() {
		appTable.Rows = append(appTable.Rows, row[:])
	}

	return JoinVertical(1,
		SectionBox("NETWORK", netTable.Render(width-4, s), width, s),
		SectionBox("TRANSPORT", transTable.Render(width-4, s), width, s),
		SectionBox("APPLICATION", appTable.Render(width-4, s), width, s),
	)
}

func (m *Model) viewAbout() string {
	s := m.styles
	var b strings.Builder
	b.WriteString(s.Header.Render("ipview"))
	b.WriteString("\n\n")
	b.WriteString("Live IPv4 capture with filtering, statistics and traffic plots.\n\n")
	b.WriteString(s.SectionName.Render("Filter fields"))
	b.WriteString("\n")
	b.WriteString("  time, src_ip, dest_ip, src_port, dest_port,\n")
	b.WriteString("  len, ip_payload_len, trans_payload_len, trans_proto, app_proto\n\n")
	b.WriteString(s.SectionName.Render("Example"))
	b.WriteString("\n")
	b.WriteString("  (dest_port == 80) || (dest_port == 443)\n\n")
	if !m.sess.StartTime().IsZero() {
		b.WriteString(s.Dim.Render("capture started " + m.sess.StartTime().Format(time.RFC3339)))
		b.WriteString("\n")
	}
	return SectionBox("ABOUT", b.String(), m.layout.ContentWidth, s)
}

func (m *Model) viewFooter() string {
	s := m.styles

	hints := []KeyHint{
		{Key: "space", Label: "capture"},
		{Key: "/", Label: "filter"},
		{Key: "i", Label: "interface"},
		{Key: "tab", Label: "view"},
		{Key: "c", Label: "copy"},
		{Key: "r", Label: "clear"},
		{Key: "q", Label: "quit"},
	}
	if m.editingFilter {
		hints = []KeyHint{
			{Key: "enter", Label: "apply"},
			{Key: "esc", Label: "cancel"},
		}
	}

	footer := KeyHints(hints, s)
	if m.lastErr != "" {
		footer += "\n" + s.Error.Render(truncateString(m.lastErr, m.layout.Width-2))
	} else if m.status != "" {
		footer += "\n" + s.Dim.Render(m.status)
	}
	return s.Footer.Render(footer)
}
