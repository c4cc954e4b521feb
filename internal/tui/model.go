package tui

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/hareinweed/ipview/internal/capture"
	"github.com/hareinweed/ipview/internal/config"
	uferrors "github.com/hareinweed/ipview/internal/errors"
	"github.com/hareinweed/ipview/internal/filter"
	"github.com/hareinweed/ipview/internal/logging"
	"github.com/hareinweed/ipview/internal/record"
	"github.com/hareinweed/ipview/internal/session"
)

// Tab identifies the active view.
type Tab int

const (
	TabRecords Tab = iota
	TabPlot
	TabStats
	TabAbout
	tabCount
)

var tabNames = []string{"Records", "Plot", "Stats", "About"}

// pollMsg drains the capture channel; chartMsg advances the plot clock.
type pollMsg time.Time
type chartMsg time.Time

const pollInterval = 10 * time.Millisecond

// Model is the top-level bubbletea model.
type Model struct {
	cfg    *config.Config
	log    *logging.Logger
	styles Styles
	layout Layout
	tab    Tab

	sess  *session.Session
	cap   *capture.Capture // nil while idle
	iface string

	captureStart time.Time
	packetsTotal int
	bytesTotal   uint64

	// filter prompt state
	editingFilter bool
	filterDraft   string
	filterStatus  string
	filterBad     bool

	selected int
	follow   bool

	picker *InterfacePicker // non-nil while the overlay is open

	status  string
	lastErr string

	quitting bool
}

func NewModel(cfg *config.Config, log *logging.Logger) *Model {
	interval := time.Duration(cfg.Display.SamplingIntervalMs) * time.Millisecond
	sess := session.New(interval, cfg.Display.HistoryCap)
	if cfg.Display.Filter != "" {
		// Validated at config load, so this cannot fail.
		_ = sess.SetFilter(cfg.Display.Filter, time.Now())
	}
	return &Model{
		cfg:    cfg,
		log:    log,
		styles: DefaultStyles,
		layout: NewLayout(DefaultWidth, DefaultHeight),
		sess:   sess,
		iface:  cfg.Capture.Interface,
		follow: true,
		status: "idle",
	}
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(pollTick(), chartTick(m.refreshInterval()))
}

func pollTick() tea.Cmd {
	return tea.Tick(pollInterval, func(t time.Time) tea.Msg {
		return pollMsg(t)
	})
}

func chartTick(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return chartMsg(t)
	})
}

func (m *Model) refreshInterval() time.Duration {
	return time.Duration(m.cfg.Display.ChartRefreshMs) * time.Millisecond
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = NewLayout(msg.Width, msg.Height)
		return m, nil

	case pollMsg:
		if m.cap != nil {
			m.drainRecords()
			m.checkDuration(time.Time(msg))
		}
		if m.quitting {
			return m, tea.Quit
		}
		return m, pollTick()

	case chartMsg:
		if m.sess.Capturing() {
			now := time.Time(msg)
			m.sess.Series().Update(nil, &now)
		}
		return m, chartTick(m.refreshInterval())

	case clipboardCopyMsg:
		if msg.success {
			m.status = "row copied to clipboard"
		} else {
			m.lastErr = "clipboard: " + msg.err.Error()
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// The picker overlay swallows all keys while open.
	if m.picker != nil {
		if done := m.picker.Update(msg); done {
			if m.picker.Selected != "" {
				m.iface = m.picker.Selected
				m.status = "interface: " + m.iface
			}
			m.picker = nil
		}
		return m, nil
	}

	if m.editingFilter {
		return m.handleFilterKey(msg)
	}

	switch msg.String() {
	case "q", "ctrl+c":
		m.shutdown()
		return m, tea.Quit

	case "tab":
		m.tab = (m.tab + 1) % tabCount
	case "shift+tab":
		m.tab = (m.tab + tabCount - 1) % tabCount
	case "1":
		m.tab = TabRecords
	case "2":
		m.tab = TabPlot
	case "3":
		m.tab = TabStats
	case "4":
		m.tab = TabAbout

	case " ", "s":
		if m.cap == nil {
			m.startCapture()
		} else {
			m.stopCapture(time.Now())
		}

	case "r":
		if m.cap == nil {
			m.sess.Reset()
			m.packetsTotal = 0
			m.bytesTotal = 0
			m.selected = 0
			m.follow = true
			m.status = "session cleared"
		}

	case "i":
		if m.cap == nil {
			p := NewInterfacePicker()
			if err := p.Load(); err != nil {
				m.lastErr = err.Error()
			}
			m.picker = p
		}

	case "/":
		m.editingFilter = true
		m.filterDraft = m.sess.FilterText()
		m.previewFilter()

	case "up", "k":
		m.moveSelection(-1)
	case "down", "j":
		m.moveSelection(1)
	case "pgup":
		m.moveSelection(-m.layout.TableRows())
	case "pgdown":
		m.moveSelection(m.layout.TableRows())
	case "home", "g":
		m.selected = 0
		m.follow = false
	case "end", "G":
		m.selected = m.sess.VisibleLen() - 1
		m.follow = true

	case "c":
		if m.tab == TabRecords && m.sess.VisibleLen() > 0 {
			row := m.sess.VisibleRow(m.selected)
			return m, copyToClipboard(strings.Join(row[:], "\t"))
		}

	case "esc":
		m.lastErr = ""
	}
	return m, nil
}

func (m *Model) handleFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.editingFilter = false
		m.filterStatus = ""
		m.filterBad = false

	case tea.KeyEnter:
		if err := m.sess.SetFilter(m.filterDraft, time.Now()); err != nil {
			m.filterStatus = filterReason(err, m.filterDraft)
			m.filterBad = true
			return m, nil
		}
		m.editingFilter = false
		m.filterStatus = ""
		m.filterBad = false
		m.clampSelection()

	case tea.KeyBackspace:
		if len(m.filterDraft) > 0 {
			_, size := utf8.DecodeLastRuneInString(m.filterDraft)
			m.filterDraft = m.filterDraft[:len(m.filterDraft)-size]
		}
		m.previewFilter()

	case tea.KeyRunes:
		m.filterDraft += string(msg.Runes)
		m.previewFilter()

	case tea.KeySpace:
		m.filterDraft += " "
		m.previewFilter()
	}
	return m, nil
}

// previewFilter recompiles the draft on every keystroke so the prompt
// shows a diagnosis before the user commits.
func (m *Model) previewFilter() {
	if strings.TrimSpace(m.filterDraft) == "" {
		m.filterStatus = "empty expression shows all records"
		m.filterBad = false
		return
	}
	if _, err := filter.Compile(m.filterDraft); err != nil {
		m.filterStatus = filterReason(err, m.filterDraft)
		m.filterBad = true
		return
	}
	m.filterStatus = "ok"
	m.filterBad = false
}

func filterReason(err error, expr string) string {
	wrapped := uferrors.WrapFilterError(err, expr)
	if ufe, ok := wrapped.(uferrors.UserFriendlyError); ok {
		return ufe.Reason
	}
	return err.Error()
}

// loadRecords seeds the session with a replayed history, closed out at
// the last record's timestamp.
func (m *Model) loadRecords(records []record.Record) {
	m.sess.StartCapture(records[0].Time)
	for _, r := range records {
		m.packetsTotal++
		m.bytesTotal += uint64(r.Len)
		m.sess.Append(r)
	}
	m.sess.StopCapture(records[len(records)-1].Time)
	m.selected = m.sess.VisibleLen() - 1
	if m.selected < 0 {
		m.selected = 0
	}
	m.status = fmt.Sprintf("loaded %d records", len(records))
}

func (m *Model) startCapture() {
	if m.iface == "" {
		m.lastErr = "no interface selected, press i to choose one"
		return
	}
	opts := capture.Options{
		Interface:   m.iface,
		Snaplen:     m.cfg.Capture.Snaplen,
		Promiscuous: m.cfg.Capture.Promiscuous,
		DumpPath:    m.cfg.Capture.DumpPath,
	}
	c, err := capture.Start(opts)
	if err != nil {
		m.lastErr = uferrors.WrapCaptureError(err, m.iface).Error()
		return
	}
	m.cap = c
	m.captureStart = time.Now()
	m.packetsTotal = 0
	m.bytesTotal = 0
	m.selected = 0
	m.follow = true
	m.lastErr = ""
	m.sess.StartCapture(m.captureStart)
	m.status = "capturing on " + m.iface
	m.log.Info("capture started on %s", m.iface)
}

func (m *Model) stopCapture(now time.Time) {
	if m.cap != nil {
		m.cap.Stop()
		m.cap = nil
	}
	m.sess.StopCapture(now)
	m.status = "stopped"
	m.log.LogCapture(m.iface, m.packetsTotal, m.bytesTotal, now.Sub(m.captureStart), nil)
}

func (m *Model) shutdown() {
	if m.cap != nil {
		m.stopCapture(time.Now())
	}
	m.quitting = true
}

// drainRecords moves everything the capture goroutine has buffered into
// the session, bounded per tick so the UI stays responsive.
func (m *Model) drainRecords() {
drain:
	for i := 0; i < 1024; i++ {
		select {
		case p, ok := <-m.cap.Packets():
			if !ok {
				m.stopCapture(time.Now())
				return
			}
			m.packetsTotal++
			m.bytesTotal += uint64(p.Record.Len)
			m.sess.Append(p.Record)
		default:
			break drain
		}
	}
	if m.follow && m.sess.VisibleLen() > 0 {
		m.selected = m.sess.VisibleLen() - 1
	}
}

func (m *Model) checkDuration(now time.Time) {
	if m.cfg.Capture.DurationMs <= 0 || m.cap == nil {
		return
	}
	limit := time.Duration(m.cfg.Capture.DurationMs) * time.Millisecond
	if now.Sub(m.captureStart) >= limit {
		m.stopCapture(now)
		m.status = "stopped (duration reached)"
	}
}

func (m *Model) moveSelection(delta int) {
	m.selected += delta
	m.follow = false
	m.clampSelection()
	if m.sess.VisibleLen() > 0 && m.selected == m.sess.VisibleLen()-1 {
		m.follow = true
	}
}

func (m *Model) clampSelection() {
	if m.selected < 0 {
		m.selected = 0
	}
	if n := m.sess.VisibleLen(); m.selected >= n {
		m.selected = n - 1
		if m.selected < 0 {
			m.selected = 0
		}
	}
}
