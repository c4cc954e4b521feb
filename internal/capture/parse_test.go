package capture

import (
	"bytes"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"

	"github.com/hareinweed/ipview/internal/record"
)

var parseT0 = time.Date(2026, 5, 2, 18, 40, 7, 123456000, time.Local)

func serialize(t *testing.T, ls ...gopacket.SerializableLayer) []byte {
	t.Helper()
	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{FixLengths: true, ComputeChecksums: true}
	if err := gopacket.SerializeLayers(buf, opts, ls...); err != nil {
		t.Fatalf("serialize: %v", err)
	}
	return buf.Bytes()
}

func tcpDatagram(t *testing.T, srcPort, dstPort uint16, payload []byte) []byte {
	t.Helper()
	ip := &layers.IPv4{
		Version:  4,
		IHL:      5,
		TTL:      64,
		Protocol: layers.IPProtocolTCP,
		SrcIP:    net.IPv4(192, 168, 1, 10),
		DstIP:    net.IPv4(93, 184, 216, 34),
	}
	tcp := &layers.TCP{
		SrcPort:    layers.TCPPort(srcPort),
		DstPort:    layers.TCPPort(dstPort),
		DataOffset: 5,
	}
	if err := tcp.SetNetworkLayerForChecksum(ip); err != nil {
		t.Fatalf("checksum layer: %v", err)
	}
	return serialize(t, ip, tcp, gopacket.Payload(payload))
}

func TestParseTCPRecord(t *testing.T) {
	payload := []byte("GET / HTTP/1.1\r\n")
	datagram := tcpDatagram(t, 51234, 80, payload)

	r := ParseRecord(parseT0, datagram)
	if !r.Time.Equal(parseT0) {
		t.Errorf("time = %v, want %v", r.Time, parseT0)
	}
	if got := int(r.Len); got != len(datagram) {
		t.Errorf("len = %d, want %d", got, len(datagram))
	}
	if r.SrcIP.String() != "192.168.1.10" || r.DestIP.String() != "93.184.216.34" {
		t.Errorf("addresses = %v -> %v", r.SrcIP, r.DestIP)
	}
	if !r.SrcPort.OK || r.SrcPort.V != 51234 {
		t.Errorf("src port = %+v", r.SrcPort)
	}
	if !r.DestPort.OK || r.DestPort.V != 80 {
		t.Errorf("dest port = %+v", r.DestPort)
	}
	if !r.IPPayloadLen.OK || int(r.IPPayloadLen.V) != 20+len(payload) {
		t.Errorf("ip payload len = %+v", r.IPPayloadLen)
	}
	if !r.TransPayloadLen.OK || int(r.TransPayloadLen.V) != len(payload) {
		t.Errorf("trans payload len = %+v", r.TransPayloadLen)
	}
	if r.TransProto != record.TCP {
		t.Errorf("trans proto = %v", r.TransProto)
	}
	if r.AppProto != record.AppHTTP {
		t.Errorf("app proto = %v", r.AppProto)
	}
}

func TestParseUDPRecord(t *testing.T) {
	ip := &layers.IPv4{
		Version:  4,
		IHL:      5,
		TTL:      64,
		Protocol: layers.IPProtocolUDP,
		SrcIP:    net.IPv4(10, 0, 0, 5),
		DstIP:    net.IPv4(8, 8, 8, 8),
	}
	udp := &layers.UDP{SrcPort: 40000, DstPort: 53}
	if err := udp.SetNetworkLayerForChecksum(ip); err != nil {
		t.Fatalf("checksum layer: %v", err)
	}
	datagram := serialize(t, ip, udp, gopacket.Payload([]byte{0x12, 0x34}))

	r := ParseRecord(parseT0, datagram)
	if r.TransProto != record.UDP {
		t.Errorf("trans proto = %v", r.TransProto)
	}
	if !r.DestPort.OK || r.DestPort.V != 53 {
		t.Errorf("dest port = %+v", r.DestPort)
	}
	if r.AppProto != record.AppDNS {
		t.Errorf("app proto = %v", r.AppProto)
	}
	if !r.TransPayloadLen.OK || r.TransPayloadLen.V != 2 {
		t.Errorf("trans payload len = %+v", r.TransPayloadLen)
	}
}

func TestParseNonTransportProtocol(t *testing.T) {
	ip := &layers.IPv4{
		Version:  4,
		IHL:      5,
		TTL:      64,
		Protocol: layers.IPProtocolICMPv4,
		SrcIP:    net.IPv4(10, 0, 0, 5),
		DstIP:    net.IPv4(10, 0, 0, 6),
	}
	datagram := serialize(t, ip, gopacket.Payload(make([]byte, 8)))

	r := ParseRecord(parseT0, datagram)
	if got := r.TransProto.Name(); got != "ICMP" {
		t.Errorf("trans proto = %q, want ICMP", got)
	}
	if r.SrcPort.OK || r.DestPort.OK || r.TransPayloadLen.OK {
		t.Errorf("transport fields set for ICMP: %+v", r)
	}
	if !r.IPPayloadLen.OK || r.IPPayloadLen.V != 8 {
		t.Errorf("ip payload len = %+v", r.IPPayloadLen)
	}
}

func TestParseHeaderOnlyDatagram(t *testing.T) {
	ip := &layers.IPv4{
		Version:  4,
		IHL:      5,
		TTL:      64,
		Protocol: layers.IPProtocolTCP,
		SrcIP:    net.IPv4(10, 0, 0, 5),
		DstIP:    net.IPv4(10, 0, 0, 6),
	}
	datagram := serialize(t, ip)

	r := ParseRecord(parseT0, datagram)
	if !r.IPPayloadLen.OK || r.IPPayloadLen.V != 0 {
		t.Errorf("ip payload len = %+v, want present zero", r.IPPayloadLen)
	}
	if r.SrcPort.OK || r.DestPort.OK {
		t.Errorf("ports set without payload: %+v", r)
	}
}

func TestRecoverCorruptTotalLength(t *testing.T) {
	datagram := tcpDatagram(t, 51234, 443, []byte("hello"))
	// Smash the total length field below the header minimum.
	datagram[2], datagram[3] = 0, 5

	r := ParseRecord(parseT0, datagram)
	if got := int(r.Len); got != len(datagram) {
		t.Errorf("len = %d, want %d", got, len(datagram))
	}
	if !r.SrcPort.OK || r.SrcPort.V != 51234 {
		t.Errorf("recovery lost src port: %+v", r.SrcPort)
	}
	if r.AppProto != record.AppHTTPS {
		t.Errorf("app proto = %v, want HTTPS", r.AppProto)
	}
	if !r.IPPayloadLen.OK || int(r.IPPayloadLen.V) != len(datagram)-20 {
		t.Errorf("ip payload len = %+v", r.IPPayloadLen)
	}
}

func TestParseGarbageDatagram(t *testing.T) {
	datagram := []byte{0x60, 0xde, 0xad, 0xbe, 0xef, 0x01}

	r := ParseRecord(parseT0, datagram)
	if got := int(r.Len); got != len(datagram) {
		t.Errorf("len = %d, want %d", got, len(datagram))
	}
	if r.SrcIP.IsValid() || r.DestIP.IsValid() {
		t.Errorf("addresses set for garbage: %+v", r)
	}
	if r.IPPayloadLen.OK {
		t.Errorf("ip payload len set for garbage: %+v", r.IPPayloadLen)
	}
	if r.TransProto.Named {
		t.Errorf("trans proto = %v, want unnamed", r.TransProto)
	}
}

func TestDatagramFromEthernetFrame(t *testing.T) {
	inner := tcpDatagram(t, 51234, 80, []byte("x"))
	eth := &layers.Ethernet{
		SrcMAC:       net.HardwareAddr{0x02, 0, 0, 0, 0, 1},
		DstMAC:       net.HardwareAddr{0x02, 0, 0, 0, 0, 2},
		EthernetType: layers.EthernetTypeIPv4,
	}
	frame := serialize(t, eth, gopacket.Payload(inner))

	packet := gopacket.NewPacket(frame, layers.LinkTypeEthernet, gopacket.Default)
	datagram, ok := Datagram(packet)
	if !ok {
		t.Fatal("no datagram extracted from frame")
	}
	if !bytes.Equal(datagram, inner) {
		t.Errorf("datagram mismatch:\n got %x\nwant %x", datagram, inner)
	}
}

func TestDatagramFromFrameWithCorruptHeader(t *testing.T) {
	inner := tcpDatagram(t, 51234, 80, []byte("x"))
	inner[2], inner[3] = 0, 5
	eth := &layers.Ethernet{
		SrcMAC:       net.HardwareAddr{0x02, 0, 0, 0, 0, 1},
		DstMAC:       net.HardwareAddr{0x02, 0, 0, 0, 0, 2},
		EthernetType: layers.EthernetTypeIPv4,
	}
	frame := serialize(t, eth, gopacket.Payload(inner))

	packet := gopacket.NewPacket(frame, layers.LinkTypeEthernet, gopacket.Default)
	datagram, ok := Datagram(packet)
	if !ok {
		t.Fatal("corrupt datagram not recovered from link payload")
	}
	r := ParseRecord(parseT0, datagram)
	if !r.SrcPort.OK {
		t.Errorf("recovery through frame path lost ports: %+v", r)
	}
}

func TestDatagramSkipsNonIPv4(t *testing.T) {
	eth := &layers.Ethernet{
		SrcMAC:       net.HardwareAddr{0x02, 0, 0, 0, 0, 1},
		DstMAC:       net.HardwareAddr{0x02, 0, 0, 0, 0, 2},
		EthernetType: layers.EthernetTypeARP,
	}
	arp := &layers.ARP{
		AddrType:          layers.LinkTypeEthernet,
		Protocol:          layers.EthernetTypeIPv4,
		HwAddressSize:     6,
		ProtAddressSize:   4,
		Operation:         layers.ARPRequest,
		SourceHwAddress:   []byte{0x02, 0, 0, 0, 0, 1},
		SourceProtAddress: []byte{10, 0, 0, 1},
		DstHwAddress:      make([]byte, 6),
		DstProtAddress:    []byte{10, 0, 0, 2},
	}
	frame := serialize(t, eth, arp)

	packet := gopacket.NewPacket(frame, layers.LinkTypeEthernet, gopacket.Default)
	if _, ok := Datagram(packet); ok {
		t.Error("ARP frame produced a datagram")
	}
}

func TestWriteHexDump(t *testing.T) {
	data := make([]byte, 17)
	for i := range data {
		data[i] = byte(i)
	}
	var buf bytes.Buffer
	if err := WriteHexDump(&buf, data); err != nil {
		t.Fatalf("WriteHexDump: %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(lines))
	}
	want := "00 01 02 03 04 05 06 07  08 09 0a 0b 0c 0d 0e 0f "
	if lines[0] != want {
		t.Errorf("row = %q, want %q", lines[0], want)
	}
	if lines[1] != "10 " {
		t.Errorf("tail row = %q", lines[1])
	}
}
