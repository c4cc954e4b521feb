// Package capture reads IPv4 traffic from a network interface and turns
// each datagram into a display record. Live capture goes through libpcap;
// captured traffic can also be dumped to and replayed from pcap files.
package capture

import (
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/pcap"
	"github.com/google/gopacket/pcapgo"

	"github.com/hareinweed/ipview/internal/record"
)

// DefaultSnaplen captures whole packets.
const DefaultSnaplen = 65535

// Options configures a live capture.
type Options struct {
	Interface   string
	Snaplen     int
	Promiscuous bool
	// DumpPath, when set, writes every captured frame to a pcap file.
	DumpPath string
	// KeepData retains the raw datagram bytes on each delivered packet.
	KeepData bool
}

// Packet pairs a decoded record with its raw datagram. Data is nil unless
// the capture was started with KeepData.
type Packet struct {
	Record record.Record
	Data   []byte
}

// Capture is a running live capture session.
type Capture struct {
	handle   *pcap.Handle
	writer   *pcapgo.Writer
	file     *os.File
	keepData bool
	packets  chan Packet
	stopChan chan struct{}
	stopOnce sync.Once
}

// Start opens a live capture on the given interface and begins decoding
// IPv4 datagrams into records in a background goroutine.
func Start(opts Options) (*Capture, error) {
	if opts.Snaplen <= 0 {
		opts.Snaplen = DefaultSnaplen
	}

	handle, err := pcap.OpenLive(opts.Interface, int32(opts.Snaplen), opts.Promiscuous, pcap.BlockForever)
	if err != nil {
		return nil, fmt.Errorf("open live capture: %w", err)
	}

	// Only IPv4 traffic reaches the decoder.
	if err := handle.SetBPFFilter("ip"); err != nil {
		handle.Close()
		return nil, fmt.Errorf("set BPF filter: %w", err)
	}

	c := &Capture{
		handle:   handle,
		keepData: opts.KeepData,
		packets:  make(chan Packet, 256),
		stopChan: make(chan struct{}),
	}

	if opts.DumpPath != "" {
		file, err := os.Create(opts.DumpPath)
		if err != nil {
			handle.Close()
			return nil, fmt.Errorf("create pcap file: %w", err)
		}
		writer := pcapgo.NewWriter(file)
		if err := writer.WriteFileHeader(uint32(opts.Snaplen), handle.LinkType()); err != nil {
			file.Close()
			handle.Close()
			return nil, fmt.Errorf("write pcap header: %w", err)
		}
		c.file = file
		c.writer = writer
	}

	go c.loop()

	return c, nil
}

// Packets returns the channel of decoded packets. It is closed when the
// capture stops.
func (c *Capture) Packets() <-chan Packet {
	return c.packets
}

// loop runs the capture loop in background.
func (c *Capture) loop() {
	defer close(c.packets)

	packetSource := gopacket.NewPacketSource(c.handle, c.handle.LinkType())
	for {
		select {
		case <-c.stopChan:
			return
		case packet, ok := <-packetSource.Packets():
			if !ok {
				return
			}
			if packet == nil {
				continue
			}
			if c.writer != nil {
				ci := packet.Metadata().CaptureInfo
				if err := c.writer.WritePacket(ci, packet.Data()); err != nil {
					fmt.Fprintf(os.Stderr, "Warning: failed to write packet: %v\n", err)
				}
			}
			datagram, ok := Datagram(packet)
			if !ok {
				continue
			}
			at := packet.Metadata().Timestamp
			if at.IsZero() {
				at = time.Now()
			}
			p := Packet{Record: ParseRecord(at, datagram)}
			if c.keepData {
				p.Data = datagram
			}
			select {
			case c.packets <- p:
			case <-c.stopChan:
				return
			}
		}
	}
}

// Stop stops the capture and closes resources (idempotent).
func (c *Capture) Stop() error {
	c.stopOnce.Do(func() {
		close(c.stopChan)
		time.Sleep(100 * time.Millisecond) // Give capture loop time to stop

		if c.file != nil {
			c.file.Close()
			c.file = nil
		}
		if c.handle != nil {
			c.handle.Close()
			c.handle = nil
		}
	})
	return nil
}

// Replay reads a pcap file and decodes every IPv4 datagram in it, in file
// order, with the original capture timestamps.
func Replay(path string) ([]record.Record, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pcap file: %w", err)
	}
	defer file.Close()

	reader, err := pcapgo.NewReader(file)
	if err != nil {
		return nil, fmt.Errorf("read pcap header: %w", err)
	}

	var records []record.Record
	for {
		data, ci, err := reader.ReadPacketData()
		if err != nil {
			break
		}
		packet := gopacket.NewPacket(data, reader.LinkType(), gopacket.Default)
		datagram, ok := Datagram(packet)
		if !ok {
			continue
		}
		records = append(records, ParseRecord(ci.Timestamp, datagram))
	}
	return records, nil
}

// Interface describes a capture device that carries at least one IPv4
// address.
type Interface struct {
	Name        string
	Description string
	Addrs       []string
	Up          bool
}

// Interfaces lists IPv4-capable capture devices, sorted by description.
func Interfaces() ([]Interface, error) {
	devices, err := pcap.FindAllDevs()
	if err != nil {
		return nil, fmt.Errorf("find network devices: %w", err)
	}

	var ifaces []Interface
	for _, device := range devices {
		var addrs []string
		for _, addr := range device.Addresses {
			if ip4 := addr.IP.To4(); ip4 != nil {
				addrs = append(addrs, ip4.String())
			}
		}
		if len(addrs) == 0 {
			continue
		}
		ifaces = append(ifaces, Interface{
			Name:        device.Name,
			Description: device.Description,
			Addrs:       addrs,
			Up:          device.Flags&pcapIfUp != 0,
		})
	}

	sort.Slice(ifaces, func(i, j int) bool {
		a, b := ifaces[i], ifaces[j]
		if a.Description != b.Description {
			return a.Description < b.Description
		}
		return a.Name < b.Name
	})
	return ifaces, nil
}

// pcapIfUp mirrors libpcap's PCAP_IF_UP flag bit.
const pcapIfUp = 0x2
