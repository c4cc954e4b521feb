package plot

import (
	"reflect"
	"testing"
	"time"

	"github.com/hareinweed/ipview/internal/record"
)

var t0 = time.Date(2024, 3, 5, 12, 0, 0, 0, time.Local)

func recAt(t time.Time, length uint16) record.Record {
	return record.Record{Time: t, Len: length, TransProto: record.TCP}
}

func TestBucketBoundaries(t *testing.T) {
	records := []record.Record{
		recAt(t0, 100),
		recAt(t0.Add(50*time.Millisecond), 200),
		recAt(t0.Add(250*time.Millisecond), 400),
	}

	s := Build(200*time.Millisecond, records, t0, t0.Add(250*time.Millisecond))
	s.CommitRest()

	want := []Bucket{
		{Packets: 2, Bytes: 300}, // [t0, t0+200ms)
		{Packets: 1, Bytes: 400}, // [t0+200ms, t0+400ms)
	}
	if s.ClosedCount() != len(want) {
		t.Fatalf("closed buckets = %d, want %d", s.ClosedCount(), len(want))
	}
	got := s.Buckets()[:s.ClosedCount()]
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("buckets = %+v, want %+v", got, want)
	}
}

func TestBulkMatchesIncremental(t *testing.T) {
	records := []record.Record{
		recAt(t0, 100),
		recAt(t0.Add(50*time.Millisecond), 200),
		recAt(t0.Add(250*time.Millisecond), 400),
		recAt(t0.Add(1300*time.Millisecond), 60),
		recAt(t0.Add(1310*time.Millisecond), 60),
	}

	bulk := Build(200*time.Millisecond, records, t0, time.Time{})
	bulk.CommitRest()

	incremental := New(200 * time.Millisecond)
	incremental.Reset(t0)
	for i := range records {
		incremental.Update(records[i:i+1], nil)
	}
	incremental.CommitRest()

	if !reflect.DeepEqual(bulk.Buckets(), incremental.Buckets()) {
		t.Fatalf("bulk and incremental disagree:\nbulk %+v\nincr %+v", bulk.Buckets(), incremental.Buckets())
	}
}

func TestZeroPaddingAcrossGaps(t *testing.T) {
	records := []record.Record{
		recAt(t0, 100),
		recAt(t0.Add(1050*time.Millisecond), 50), // five windows later
	}
	s := New(200 * time.Millisecond)
	s.Reset(t0)
	s.Update(records, nil)

	// Windows 0 through 4 are closed; window 5 holds the second record.
	if s.ClosedCount() != 5 {
		t.Fatalf("closed buckets = %d, want 5", s.ClosedCount())
	}
	buckets := s.Buckets()
	if buckets[0].Packets != 1 || buckets[0].Bytes != 100 {
		t.Errorf("first bucket = %+v", buckets[0])
	}
	for i := 1; i < 5; i++ {
		if !buckets[i].empty() {
			t.Errorf("gap bucket %d = %+v, want zero", i, buckets[i])
		}
	}
	if last := buckets[len(buckets)-1]; last.Packets != 1 || last.Bytes != 50 {
		t.Errorf("open bucket = %+v", last)
	}
}

func TestMonotonicBucketCount(t *testing.T) {
	s := New(200 * time.Millisecond)
	s.Reset(t0)
	prev := 0
	for i := 0; i < 50; i++ {
		r := recAt(t0.Add(time.Duration(i*70)*time.Millisecond), 64)
		s.Update([]record.Record{r}, nil)
		if s.ClosedCount() < prev {
			t.Fatalf("closed count decreased from %d to %d at record %d", prev, s.ClosedCount(), i)
		}
		prev = s.ClosedCount()
	}
}

func TestCommitRestIdempotent(t *testing.T) {
	s := New(200 * time.Millisecond)
	s.Reset(t0)
	s.Update([]record.Record{recAt(t0.Add(30*time.Millisecond), 120)}, nil)

	s.CommitRest()
	n := s.ClosedCount()
	s.CommitRest()
	if s.ClosedCount() != n {
		t.Fatalf("second CommitRest added a bucket: %d -> %d", n, s.ClosedCount())
	}
}

func TestCommitRestSkipsEmptyOpenBucket(t *testing.T) {
	s := New(200 * time.Millisecond)
	s.Reset(t0)
	s.CommitRest()
	if s.ClosedCount() != 0 {
		t.Fatalf("empty open bucket should not be committed")
	}
}

func TestEndHintFlushesPastLastRecord(t *testing.T) {
	s := New(200 * time.Millisecond)
	s.Reset(t0)
	end := t0.Add(900 * time.Millisecond)
	s.Update([]record.Record{recAt(t0, 100)}, &end)

	// The hint closes windows 0..3 and leaves the cursor in window 4.
	if s.ClosedCount() != 4 {
		t.Fatalf("closed buckets = %d, want 4", s.ClosedCount())
	}
	if s.Buckets()[0].Packets != 1 {
		t.Errorf("first bucket should hold the record, got %+v", s.Buckets()[0])
	}
	for i, b := range s.Buckets()[1:] {
		if !b.empty() {
			t.Errorf("bucket %d should be a zero pad, got %+v", i+1, b)
		}
	}
	if got := s.End(); !got.Equal(t0.Add(800 * time.Millisecond)) {
		t.Errorf("end = %v, want window cursor at t0+800ms", got)
	}
}

func TestEmptyUpdateWithoutHintIsNoOp(t *testing.T) {
	s := New(200 * time.Millisecond)
	s.Reset(t0)
	before := s.End()
	s.Update(nil, nil)
	if s.ClosedCount() != 0 || !s.End().Equal(before) {
		t.Fatalf("empty update advanced the series")
	}
}

func TestBuildExtendsEndTimeWhenFilteredEmpty(t *testing.T) {
	// Filtering removed every record; the series still covers the
	// session's wall-clock range.
	end := t0.Add(1 * time.Second)
	s := Build(200*time.Millisecond, nil, t0, end)
	if s.End().Before(end) {
		t.Fatalf("end = %v, want at least %v", s.End(), end)
	}
	for _, b := range s.Buckets() {
		if !b.empty() {
			t.Errorf("series built from no records should be all zeros, got %+v", b)
		}
	}
}

func TestAnchorLowersStartTime(t *testing.T) {
	s := New(200 * time.Millisecond)
	early := t0.Add(-time.Second)
	s.Update([]record.Record{recAt(early, 10)}, nil)
	if !s.Start().Equal(early) {
		t.Fatalf("start = %v, want %v", s.Start(), early)
	}
}
