// Package plot builds the fixed-interval time series behind the traffic
// chart. Records fold into an in-progress "open" bucket for the current
// window; crossing a window boundary closes the bucket and zero-pads any
// skipped windows, so the closed sequence plus the open bucket covers
// every elapsed window with no gaps.
package plot

import (
	"time"

	"github.com/hareinweed/ipview/internal/record"
)

// DefaultInterval is the sampling interval used when none is configured.
const DefaultInterval = 200 * time.Millisecond

// Bucket holds the network-layer totals of one sampling window.
type Bucket struct {
	Packets uint64
	Bytes   uint64
}

func (b Bucket) empty() bool {
	return b.Packets == 0 && b.Bytes == 0
}

// Series is the bucketed time series. It supports both incremental updates
// (one record at a time during capture) and bulk replay (the whole history
// after a filter change); both produce identical buckets for the same
// input.
type Series struct {
	interval time.Duration

	start time.Time // earliest known session time, zero until anchored
	end   time.Time // right edge of the covered range

	windowStart time.Time // left edge of the open bucket's window
	open        Bucket
	closed      []Bucket
}

// New returns an empty series with the given sampling interval.
func New(interval time.Duration) *Series {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Series{interval: interval}
}

// Interval returns the sampling interval.
func (s *Series) Interval() time.Duration {
	return s.interval
}

// Start returns the series' anchor time; zero when nothing has anchored it.
func (s *Series) Start() time.Time {
	return s.start
}

// End returns the right edge of the covered range.
func (s *Series) End() time.Time {
	return s.end
}

// Reset clears the series and anchors both edges to t. Used at capture
// start so the chart's time axis begins at the session start.
func (s *Series) Reset(t time.Time) {
	s.start = t
	s.end = t
	s.windowStart = t
	s.open = Bucket{}
	s.closed = nil
}

// Update folds records into the series in timestamp order. A non-nil
// endHint extends the covered range to the hinted time, closing and
// zero-padding windows as needed even past the last record; a nil hint
// with no records is a no-op.
func (s *Series) Update(records []record.Record, endHint *time.Time) {
	if len(records) == 0 && endHint == nil {
		return
	}
	if s.windowStart.IsZero() {
		var anchor time.Time
		if len(records) > 0 {
			anchor = records[0].Time
		} else {
			anchor = *endHint
		}
		s.windowStart = anchor
		if s.start.IsZero() || anchor.Before(s.start) {
			s.start = anchor
		}
	}

	for i := range records {
		s.fold(records[i].Time, 1, uint64(records[i].Len))
	}
	if endHint != nil {
		// Zero-valued marker: advances the window cursor without
		// contributing to any bucket.
		s.fold(*endHint, 0, 0)
	}
	s.end = s.windowStart
}

// fold advances the window cursor to the window containing t, closing the
// open bucket and appending explicit zero buckets for skipped windows,
// then adds the contribution to the open bucket.
func (s *Series) fold(t time.Time, packets, bytes uint64) {
	for !t.Before(s.windowStart.Add(s.interval)) {
		s.closed = append(s.closed, s.open)
		s.open = Bucket{}
		s.windowStart = s.windowStart.Add(s.interval)
	}
	s.open.Packets += packets
	s.open.Bytes += bytes
}

// CommitRest closes the trailing partial bucket, if it holds anything,
// when capture stops. Calling it again is a no-op.
func (s *Series) CommitRest() {
	if s.open.empty() {
		return
	}
	s.closed = append(s.closed, s.open)
	s.open = Bucket{}
}

// Build constructs a series from scratch over a full record history,
// anchored at start; used to rebuild the chart when the filter changes.
// The covered range is extended to end when that is later than the last
// record's window.
func Build(interval time.Duration, records []record.Record, start, end time.Time) *Series {
	s := New(interval)
	if !start.IsZero() {
		s.Reset(start)
	}
	var hint *time.Time
	if !end.IsZero() {
		hint = &end
	}
	s.Update(records, hint)
	if !end.IsZero() && s.end.Before(end) {
		s.end = end
	}
	return s
}

// Buckets returns the closed buckets followed by the open bucket.
func (s *Series) Buckets() []Bucket {
	out := make([]Bucket, 0, len(s.closed)+1)
	out = append(out, s.closed...)
	out = append(out, s.open)
	return out
}

// ClosedCount reports how many buckets have been finalized.
func (s *Series) ClosedCount() int {
	return len(s.closed)
}

// Points returns the packet and byte series, closed buckets plus the open
// one, as chart-ready values.
func (s *Series) Points() (packets, bytes []float64) {
	buckets := s.Buckets()
	packets = make([]float64, len(buckets))
	bytes = make([]float64, len(buckets))
	for i, b := range buckets {
		packets[i] = float64(b.Packets)
		bytes[i] = float64(b.Bytes)
	}
	return packets, bytes
}
