package record

// Record model for captured IPv4 packets

import (
	"math"
	"net/netip"
	"strconv"
	"time"
)

// TimeLayout is the display format for record timestamps.
const TimeLayout = "2006-01-02 15:04:05.000000"

// OptU16 is an optional 16-bit value. The zero value is "absent".
type OptU16 struct {
	V  uint16
	OK bool
}

// U16 wraps a value as a present OptU16.
func U16(v uint16) OptU16 {
	return OptU16{V: v, OK: true}
}

// SatU16 saturates an integer to the 16-bit maximum.
func SatU16(v int) uint16 {
	if v > math.MaxUint16 {
		return math.MaxUint16
	}
	if v < 0 {
		return 0
	}
	return uint16(v)
}

// Record summarizes one observed IPv4 packet. Absent fields mean the field
// is inapplicable or unparsable for this packet: a record without a valid
// IPv4 header has no addresses, a non-TCP/UDP record has no ports and no
// application protocol. Records are created once by the capture layer and
// never mutated afterwards.
type Record struct {
	Time            time.Time
	SrcIP           netip.Addr // zero value when absent
	SrcPort         OptU16
	DestIP          netip.Addr
	DestPort        OptU16
	Len             uint16 // total packet length, saturating
	IPPayloadLen    OptU16
	TransProto      TransProtocol
	TransPayloadLen OptU16
	AppProto        AppProtocol
}

// StringRow renders the record as the ten display columns used by the
// record table: time, source IP/port, destination IP/port, total length,
// IP payload length, transport protocol, transport payload length,
// application protocol. Absent fields render as empty strings, and the
// application protocol column is only shown for TCP/UDP records.
func (r *Record) StringRow() [10]string {
	var row [10]string
	row[0] = r.Time.Format(TimeLayout)
	if r.SrcIP.IsValid() {
		row[1] = r.SrcIP.String()
	}
	row[2] = optString(r.SrcPort)
	if r.DestIP.IsValid() {
		row[3] = r.DestIP.String()
	}
	row[4] = optString(r.DestPort)
	row[5] = strconv.Itoa(int(r.Len))
	row[6] = optString(r.IPPayloadLen)
	row[7] = r.TransProto.String()
	row[8] = optString(r.TransPayloadLen)
	if r.TransProto == TCP || r.TransProto == UDP {
		row[9] = r.AppProto.String()
	}
	return row
}

func optString(v OptU16) string {
	if !v.OK {
		return ""
	}
	return strconv.Itoa(int(v.V))
}
