// Package stats maintains running traffic totals at three granularities:
// the whole network layer, per transport protocol, and per application
// protocol.
package stats

import (
	"sort"
	"strconv"

	"github.com/hareinweed/ipview/internal/record"
)

// NetworkStat is the whole-capture total.
type NetworkStat struct {
	Packets uint64
	Bytes   uint64 // sum of total packet lengths
}

// TransportStat aggregates records of one transport protocol. Bytes counts
// the network-layer payload; NetworkBytes counts the full packet length.
type TransportStat struct {
	Packets      uint64
	Bytes        uint64
	NetworkBytes uint64
}

// AppStat aggregates records of one application protocol. Bytes counts the
// transport-layer payload; TransportBytes the network-layer payload;
// NetworkBytes the full packet length. Payload lengths are non-increasing
// outward: Bytes <= TransportBytes <= NetworkBytes.
type AppStat struct {
	Packets        uint64
	Bytes          uint64
	TransportBytes uint64
	NetworkBytes   uint64
}

// Stats is the three-level aggregate. It has no filter awareness: callers
// rebuilding from history pre-filter the records they feed it.
type Stats struct {
	Network   NetworkStat
	Transport map[string]*TransportStat
	App       map[string]*AppStat
}

// New returns an empty aggregate.
func New() *Stats {
	s := &Stats{}
	s.Clear()
	return s
}

// Clear resets all three aggregates to empty.
func (s *Stats) Clear() {
	s.Network = NetworkStat{}
	s.Transport = make(map[string]*TransportStat)
	s.App = make(map[string]*AppStat)
}

// Update adds one record's contribution. The network total is
// unconditional; the transport table only counts records that carry a
// network-layer payload, and the application table only records that carry
// a transport-layer payload.
func (s *Stats) Update(r *record.Record) {
	s.Network.Packets++
	s.Network.Bytes += uint64(r.Len)

	if !r.IPPayloadLen.OK {
		return
	}
	key := r.TransProto.Name()
	ts := s.Transport[key]
	if ts == nil {
		ts = &TransportStat{}
		s.Transport[key] = ts
	}
	ts.Packets++
	ts.Bytes += uint64(r.IPPayloadLen.V)
	ts.NetworkBytes += uint64(r.Len)

	if !r.TransPayloadLen.OK {
		return
	}
	appKey := r.AppProto.String()
	as := s.App[appKey]
	if as == nil {
		as = &AppStat{}
		s.App[appKey] = as
	}
	as.Packets++
	as.Bytes += uint64(r.TransPayloadLen.V)
	as.TransportBytes += uint64(r.IPPayloadLen.V)
	as.NetworkBytes += uint64(r.Len)
}

// UpdateAll applies Update to each record in order.
func (s *Stats) UpdateAll(records []record.Record) {
	for i := range records {
		s.Update(&records[i])
	}
}

// NetworkRow renders the network total as display columns.
func (s *Stats) NetworkRow() [2]string {
	return [2]string{
		strconv.FormatUint(s.Network.Packets, 10),
		strconv.FormatUint(s.Network.Bytes, 10),
	}
}

// TransportRows renders the transport table sorted by protocol name.
func (s *Stats) TransportRows() [][4]string {
	keys := sortedKeys(s.Transport)
	rows := make([][4]string, 0, len(keys))
	for _, k := range keys {
		ts := s.Transport[k]
		rows = append(rows, [4]string{
			k,
			strconv.FormatUint(ts.Packets, 10),
			strconv.FormatUint(ts.Bytes, 10),
			strconv.FormatUint(ts.NetworkBytes, 10),
		})
	}
	return rows
}

// AppRows renders the application table sorted by protocol name.
func (s *Stats) AppRows() [][5]string {
	keys := sortedKeys(s.App)
	rows := make([][5]string, 0, len(keys))
	for _, k := range keys {
		as := s.App[k]
		rows = append(rows, [5]string{
			k,
			strconv.FormatUint(as.Packets, 10),
			strconv.FormatUint(as.Bytes, 10),
			strconv.FormatUint(as.TransportBytes, 10),
			strconv.FormatUint(as.NetworkBytes, 10),
		})
	}
	return rows
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
