package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/hareinweed/ipview/internal/capture"
	uferrors "github.com/hareinweed/ipview/internal/errors"
	"github.com/hareinweed/ipview/internal/filter"
	"github.com/hareinweed/ipview/internal/plot"
	"github.com/hareinweed/ipview/internal/record"
	"github.com/hareinweed/ipview/internal/stats"
)

func newReplayCmd() *cobra.Command {
	var (
		filterExpr string
		showStats  bool
		plotMs     int
	)

	cmd := &cobra.Command{
		Use:   "replay <file.pcap>",
		Short: "Decode a pcap file into record, statistic and plot tables",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := capture.Replay(args[0])
			if err != nil {
				return err
			}

			total := len(records)
			if filterExpr != "" {
				pred, err := filter.Compile(filterExpr)
				if err != nil {
					return uferrors.WrapFilterError(err, filterExpr)
				}
				kept := records[:0]
				for i := range records {
					if filter.Eval(pred, &records[i]) {
						kept = append(kept, records[i])
					}
				}
				records = kept
			}

			w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
			fmt.Fprintln(w, "Time\tSrc IP\tSrc Port\tDest IP\tDest Port\tLen\tIP Payload\tTrans Proto\tTrans Payload\tApp Proto")
			for i := range records {
				row := records[i].StringRow()
				for j, cell := range row {
					if j > 0 {
						fmt.Fprint(w, "\t")
					}
					fmt.Fprint(w, cell)
				}
				fmt.Fprintln(w)
			}
			w.Flush()

			if filterExpr != "" {
				fmt.Fprintf(os.Stdout, "\n%d of %d records match %q\n", len(records), total, filterExpr)
			}

			if showStats {
				printStats(records)
			}
			if plotMs > 0 && len(records) > 0 {
				printPlot(records, time.Duration(plotMs)*time.Millisecond)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&filterExpr, "filter", "f", "", "Filter expression applied to the decoded records")
	cmd.Flags().BoolVarP(&showStats, "stats", "s", false, "Print per-protocol statistics")
	cmd.Flags().IntVar(&plotMs, "plot", 0, "Bucket traffic into intervals of this many milliseconds")

	return cmd
}

func printStats(records []record.Record) {
	st := stats.New()
	st.UpdateAll(records)

	net := st.NetworkRow()
	fmt.Fprintf(os.Stdout, "\nNetwork: %s packets, %s bytes\n", net[0], net[1])

	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "\nProtocol\tPackets\tIP Payload Bytes\tTotal Bytes")
	for _, row := range st.TransportRows() {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", row[0], row[1], row[2], row[3])
	}
	w.Flush()

	w = tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "\nProtocol\tPackets\tApp Bytes\tIP Payload Bytes\tTotal Bytes")
	for _, row := range st.AppRows() {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", row[0], row[1], row[2], row[3], row[4])
	}
	w.Flush()
}

func printPlot(records []record.Record, interval time.Duration) {
	series := plot.Build(interval, records, records[0].Time, records[len(records)-1].Time)

	fmt.Fprintf(os.Stdout, "\n%d buckets of %s:\n", len(series.Buckets()), interval)
	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "Bucket\tPackets\tBytes")
	for i, b := range series.Buckets() {
		fmt.Fprintf(w, "%d\t%d\t%d\n", i, b.Packets, b.Bytes)
	}
	w.Flush()
}
