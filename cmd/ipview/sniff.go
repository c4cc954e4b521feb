package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/hareinweed/ipview/internal/capture"
	uferrors "github.com/hareinweed/ipview/internal/errors"
)

func newSniffCmd() *cobra.Command {
	var (
		iface       string
		snaplen     int
		promiscuous bool
		dumpPath    string
		durationMs  int
		wholePacket bool
		payload     bool
		flush       bool
	)

	cmd := &cobra.Command{
		Use:   "sniff",
		Short: "Print captured packets to stdout",
		RunE: func(cmd *cobra.Command, args []string) error {
			if iface == "" {
				selected, err := pickInterface()
				if err != nil {
					return err
				}
				iface = selected
			}

			c, err := capture.Start(capture.Options{
				Interface:   iface,
				Snaplen:     snaplen,
				Promiscuous: promiscuous,
				DumpPath:    dumpPath,
				KeepData:    true,
			})
			if err != nil {
				return uferrors.WrapCaptureError(err, iface)
			}
			defer c.Stop()

			// Set up context with cancellation
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			// Handle signals
			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
			go func() {
				<-sigChan
				fmt.Fprintf(os.Stderr, "\nReceived interrupt, stopping capture...\n")
				cancel()
			}()

			if durationMs > 0 {
				var timeoutCancel context.CancelFunc
				ctx, timeoutCancel = context.WithTimeout(ctx, time.Duration(durationMs)*time.Millisecond)
				defer timeoutCancel()
			}

			out := bufio.NewWriter(os.Stdout)
			defer out.Flush()

			for {
				select {
				case <-ctx.Done():
					return nil
				case p, ok := <-c.Packets():
					if !ok {
						return nil
					}
					printPacket(out, p, wholePacket, payload)
					if flush {
						out.Flush()
					}
				}
			}
		},
	}

	cmd.Flags().StringVarP(&iface, "interface", "i", "", "Capture interface")
	cmd.Flags().IntVar(&snaplen, "snaplen", capture.DefaultSnaplen, "Capture snapshot length")
	cmd.Flags().BoolVar(&promiscuous, "promiscuous", true, "Capture in promiscuous mode")
	cmd.Flags().StringVarP(&dumpPath, "dump", "d", "", "Write captured frames to a pcap file")
	cmd.Flags().IntVar(&durationMs, "duration", 0, "Stop after this many milliseconds (0 = run until interrupted)")
	cmd.Flags().BoolVarP(&wholePacket, "packet", "p", false, "Print the whole IP packet as hex")
	cmd.Flags().BoolVarP(&payload, "load", "l", false, "Print the IP payload as hex")
	cmd.Flags().BoolVarP(&flush, "flush", "f", false, "Flush stdout after each packet")

	return cmd
}

func printPacket(w io.Writer, p capture.Packet, wholePacket, payload bool) {
	r := p.Record
	fmt.Fprintf(w, "read %d bytes:\n", len(p.Data))

	if !r.SrcIP.IsValid() {
		fmt.Fprintln(w, "corrupted ipv4 packet")
		capture.WriteHexDump(w, p.Data)
		fmt.Fprintln(w)
		return
	}

	fmt.Fprintf(w, "transport layer protocol: %s\n", r.TransProto)
	if r.SrcPort.OK {
		fmt.Fprintf(w, "application layer protocol: %s\n", r.AppProto)
		fmt.Fprintf(w, "source: %s:%d\n", r.SrcIP, r.SrcPort.V)
		fmt.Fprintf(w, "destination: %s:%d\n", r.DestIP, r.DestPort.V)
	} else {
		fmt.Fprintf(w, "source: %s\n", r.SrcIP)
		fmt.Fprintf(w, "destination: %s\n", r.DestIP)
	}

	if wholePacket {
		fmt.Fprintln(w, "whole packet:")
		capture.WriteHexDump(w, p.Data)
	}

	load := ipPayload(p)
	if payload {
		fmt.Fprintf(w, "ip packet payload, %d bytes:\n", len(load))
		capture.WriteHexDump(w, load)
	} else {
		fmt.Fprintf(w, "ip packet payload: %d bytes\n", len(load))
	}
	fmt.Fprintln(w)
}

// ipPayload carves the IP payload out of the raw datagram using the
// decoded payload length.
func ipPayload(p capture.Packet) []byte {
	if !p.Record.IPPayloadLen.OK {
		return nil
	}
	n := int(p.Record.IPPayloadLen.V)
	if n > len(p.Data) {
		return nil
	}
	return p.Data[len(p.Data)-n:]
}
