// Package session owns the state of one capture session: the append-only
// record history, the active compiled filter, and the statistics and
// time-series aggregates derived from them. Everything here is accessed
// from the single UI control-flow goroutine; no locking.
package session

import (
	"time"

	"github.com/hareinweed/ipview/internal/filter"
	"github.com/hareinweed/ipview/internal/plot"
	"github.com/hareinweed/ipview/internal/record"
	"github.com/hareinweed/ipview/internal/stats"
)

// DefaultHistoryCap bounds how many records one session retains.
const DefaultHistoryCap = 1 << 20

// Session holds one capture session.
type Session struct {
	interval   time.Duration
	historyCap int

	records []record.Record
	visible []int // indices into records matching the active filter

	filterText string
	pred       filter.Pred // nil when no filter is installed

	capturing bool
	startTime time.Time
	endTime   time.Time

	stats  *stats.Stats
	series *plot.Series
}

// New creates an idle session with the given plot sampling interval.
func New(interval time.Duration, historyCap int) *Session {
	if historyCap <= 0 {
		historyCap = DefaultHistoryCap
	}
	return &Session{
		interval:   interval,
		historyCap: historyCap,
		stats:      stats.New(),
		series:     plot.New(interval),
	}
}

// StartCapture clears the previous session's history and aggregates and
// anchors a new one at now.
func (s *Session) StartCapture(now time.Time) {
	s.records = s.records[:0]
	s.visible = s.visible[:0]
	s.capturing = true
	s.startTime = now
	s.endTime = time.Time{}
	s.stats.Clear()
	s.series = plot.New(s.interval)
	s.series.Reset(now)
}

// Reset drops the history and every derived aggregate, returning the
// session to the idle state. The installed filter stays.
func (s *Session) Reset() {
	s.records = s.records[:0]
	s.visible = s.visible[:0]
	s.capturing = false
	s.startTime = time.Time{}
	s.endTime = time.Time{}
	s.stats.Clear()
	s.series = plot.New(s.interval)
}

// StopCapture ends the session, recording its wall-clock end and flushing
// the trailing partial plot bucket.
func (s *Session) StopCapture(now time.Time) {
	if !s.capturing {
		return
	}
	s.capturing = false
	s.endTime = now
	s.series.CommitRest()
}

// Capturing reports whether a capture is in progress.
func (s *Session) Capturing() bool {
	return s.capturing
}

// StartTime returns the session start, zero before the first capture.
func (s *Session) StartTime() time.Time {
	return s.startTime
}

// EndTime returns the session end, zero while capturing.
func (s *Session) EndTime() time.Time {
	return s.endTime
}

// Matches applies the active filter; with no filter every record matches.
func (s *Session) Matches(r *record.Record) bool {
	if s.pred == nil {
		return true
	}
	return filter.Eval(s.pred, r)
}

// Append adds one captured record to the history and, when it passes the
// active filter, to the statistics, the plot series, and the visible row
// list. Reports whether the record passed the filter.
func (s *Session) Append(r record.Record) bool {
	if len(s.records) >= s.historyCap {
		s.trimHistory()
	}
	s.records = append(s.records, r)
	if !s.Matches(&r) {
		return false
	}
	s.visible = append(s.visible, len(s.records)-1)
	s.stats.Update(&r)
	s.series.Update(s.records[len(s.records)-1:], nil)
	return true
}

// trimHistory drops the oldest eighth of the history when the cap is
// reached. The cumulative aggregates keep their session totals; only the
// replayable history and the visible rows shrink.
func (s *Session) trimHistory() {
	drop := s.historyCap / 8
	if drop < 1 {
		drop = 1
	}
	s.records = append(s.records[:0], s.records[drop:]...)
	kept := s.visible[:0]
	for _, idx := range s.visible {
		if idx >= drop {
			kept = append(kept, idx-drop)
		}
	}
	s.visible = kept
}

// FilterText returns the currently installed filter expression.
func (s *Session) FilterText() string {
	return s.filterText
}

// SetFilter compiles and installs a new filter expression and rebuilds
// the aggregates from the filtered history. An empty expression removes
// the filter. On a compile error the previous filter stays installed and
// nothing is rebuilt.
func (s *Session) SetFilter(text string, now time.Time) error {
	if text == "" {
		s.pred = nil
		s.filterText = ""
		s.Rebuild(now)
		return nil
	}
	pred, err := filter.Compile(text)
	if err != nil {
		return err
	}
	s.pred = pred
	s.filterText = text
	s.Rebuild(now)
	return nil
}

// Rebuild recomputes the visible rows, statistics, and plot series from
// the full history through the active filter. The plot covers the session
// range up to its recorded end, or now while still capturing.
func (s *Session) Rebuild(now time.Time) {
	s.visible = s.visible[:0]
	filtered := make([]record.Record, 0, len(s.records))
	for i := range s.records {
		if s.Matches(&s.records[i]) {
			s.visible = append(s.visible, i)
			filtered = append(filtered, s.records[i])
		}
	}

	s.stats.Clear()
	s.stats.UpdateAll(filtered)

	end := s.endTime
	if end.IsZero() {
		end = now
	}
	s.series = plot.Build(s.interval, filtered, s.startTime, end)
	if !s.capturing {
		s.series.CommitRest()
	}
}

// Len returns the total history length.
func (s *Session) Len() int {
	return len(s.records)
}

// VisibleLen returns how many records pass the active filter.
func (s *Session) VisibleLen() int {
	return len(s.visible)
}

// VisibleRecord returns the i-th filtered record.
func (s *Session) VisibleRecord(i int) *record.Record {
	return &s.records[s.visible[i]]
}

// VisibleRow renders the i-th filtered record's display columns.
func (s *Session) VisibleRow(i int) [10]string {
	return s.records[s.visible[i]].StringRow()
}

// Stats returns the three-level aggregate.
func (s *Session) Stats() *stats.Stats {
	return s.stats
}

// Series returns the bucketed plot series.
func (s *Session) Series() *plot.Series {
	return s.series
}
