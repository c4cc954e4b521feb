package capture

import (
	"encoding/binary"
	"fmt"
	"io"
	"net/netip"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"

	"github.com/hareinweed/ipview/internal/record"
)

// Datagram extracts the raw IPv4 datagram bytes from a captured frame.
// A frame whose IPv4 header failed to decode is still returned through
// the link-layer payload so ParseRecord can attempt recovery.
func Datagram(packet gopacket.Packet) ([]byte, bool) {
	if l := packet.Layer(layers.LayerTypeIPv4); l != nil {
		ip := l.(*layers.IPv4)
		buf := make([]byte, 0, len(ip.Contents)+len(ip.Payload))
		buf = append(buf, ip.Contents...)
		return append(buf, ip.Payload...), true
	}
	if l := packet.Layer(layers.LayerTypeEthernet); l != nil {
		eth := l.(*layers.Ethernet)
		if eth.EthernetType == layers.EthernetTypeIPv4 {
			return eth.Payload, true
		}
		return nil, false
	}
	// Raw IP link types deliver the datagram directly.
	if data := packet.Data(); len(data) > 0 && data[0]>>4 == 4 {
		return data, true
	}
	return nil, false
}

// ParseRecord decodes one IPv4 datagram into a record stamped with the
// capture time. A datagram whose header cannot be decoded still produces
// a record carrying the time and raw length; a header claiming a total
// length below the 20-byte minimum is recovered by substituting the raw
// datagram length and decoding again.
func ParseRecord(at time.Time, datagram []byte) record.Record {
	r := record.Record{
		Time: at,
		Len:  record.SatU16(len(datagram)),
	}

	var ip layers.IPv4
	if err := ip.DecodeFromBytes(datagram, gopacket.NilDecodeFeedback); err != nil {
		if len(datagram) <= 4 || datagram[0]>>4 != 4 {
			return r
		}
		patched := make([]byte, len(datagram))
		copy(patched, datagram)
		binary.BigEndian.PutUint16(patched[2:4], record.SatU16(len(datagram)))
		if err := ip.DecodeFromBytes(patched, gopacket.NilDecodeFeedback); err != nil {
			return r
		}
	}

	if addr, ok := netip.AddrFromSlice(ip.SrcIP); ok {
		r.SrcIP = addr.Unmap()
	}
	if addr, ok := netip.AddrFromSlice(ip.DstIP); ok {
		r.DestIP = addr.Unmap()
	}
	r.TransProto = record.TransProtocolFromCode(uint8(ip.Protocol))

	payload := ip.Payload
	r.IPPayloadLen = record.U16(record.SatU16(len(payload)))
	if len(payload) == 0 {
		return r
	}

	switch ip.Protocol {
	case layers.IPProtocolTCP:
		var tcp layers.TCP
		if err := tcp.DecodeFromBytes(payload, gopacket.NilDecodeFeedback); err == nil {
			r.SrcPort = record.U16(uint16(tcp.SrcPort))
			r.DestPort = record.U16(uint16(tcp.DstPort))
			r.TransPayloadLen = record.U16(record.SatU16(len(tcp.Payload)))
			r.AppProto = record.AppProtocolFromPorts(uint16(tcp.SrcPort), uint16(tcp.DstPort))
		}
	case layers.IPProtocolUDP:
		var udp layers.UDP
		if err := udp.DecodeFromBytes(payload, gopacket.NilDecodeFeedback); err == nil {
			r.SrcPort = record.U16(uint16(udp.SrcPort))
			r.DestPort = record.U16(uint16(udp.DstPort))
			r.TransPayloadLen = record.U16(record.SatU16(len(udp.Payload)))
			r.AppProto = record.AppProtocolFromPorts(uint16(udp.SrcPort), uint16(udp.DstPort))
		}
	}
	return r
}

// WriteHexDump writes data as rows of 16 space-separated hex bytes with
// an extra gap after the eighth column.
func WriteHexDump(w io.Writer, data []byte) error {
	for i, b := range data {
		if _, err := fmt.Fprintf(w, "%02x ", b); err != nil {
			return err
		}
		switch i % 16 {
		case 7:
			if _, err := fmt.Fprint(w, " "); err != nil {
				return err
			}
		case 15:
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
	}
	if len(data)%16 != 0 {
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	return nil
}
