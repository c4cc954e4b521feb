package main

import (
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/hareinweed/ipview/internal/capture"
	"github.com/hareinweed/ipview/internal/config"
	"github.com/hareinweed/ipview/internal/logging"
	"github.com/hareinweed/ipview/internal/tui"
)

func newLiveCmd() *cobra.Command {
	var (
		configPath string
		iface      string
		filterExpr string
		dumpPath   string
		readPath   string
	)

	cmd := &cobra.Command{
		Use:   "live",
		Short: "Capture packets in the interactive viewer",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath, true)
			if err != nil {
				return err
			}

			// Flags override the config file.
			if iface != "" {
				cfg.Capture.Interface = iface
			}
			if filterExpr != "" {
				cfg.Display.Filter = filterExpr
			}
			if dumpPath != "" {
				cfg.Capture.DumpPath = dumpPath
			}
			if err := config.Validate(cfg); err != nil {
				return err
			}

			if readPath == "" && cfg.Capture.Interface == "" {
				selected, err := pickInterface()
				if err != nil {
					return err
				}
				cfg.Capture.Interface = selected
			}

			level, _ := logging.ParseLevel(cfg.Logging.Level)
			log, err := logging.NewLoggerWithOptions(level, cfg.Logging.File, cfg.Logging.Format, cfg.Logging.LogEvery)
			if err != nil {
				return err
			}
			defer log.Close()

			log.LogStartup(cfg.Capture.Interface, cfg.Capture.Snaplen, cfg.Capture.Promiscuous,
				cfg.Display.SamplingIntervalMs, cfg.Display.ChartRefreshMs, configPath)

			if readPath != "" {
				records, err := capture.Replay(readPath)
				if err != nil {
					return err
				}
				return tui.RunOffline(cfg, log, records)
			}
			return tui.Run(cfg, log)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "ipview.yaml", "Path to the config file")
	cmd.Flags().StringVarP(&iface, "interface", "i", "", "Capture interface (overrides config)")
	cmd.Flags().StringVarP(&filterExpr, "filter", "f", "", "Initial filter expression (overrides config)")
	cmd.Flags().StringVarP(&dumpPath, "dump", "d", "", "Write captured frames to a pcap file")
	cmd.Flags().StringVarP(&readPath, "read", "r", "", "Load a pcap file instead of capturing live")

	return cmd
}

// pickInterface prompts for a capture interface when neither the config
// file nor the flags name one.
func pickInterface() (string, error) {
	ifaces, err := capture.Interfaces()
	if err != nil {
		return "", err
	}
	if len(ifaces) == 0 {
		return "", fmt.Errorf("no IPv4-capable interfaces found")
	}

	options := make([]huh.Option[string], 0, len(ifaces))
	for _, entry := range ifaces {
		label := entry.Name
		if entry.Description != "" {
			label = entry.Description
		}
		state := "down"
		if entry.Up {
			state = "up"
		}
		label = fmt.Sprintf("%s (%s) %v", label, state, entry.Addrs)
		options = append(options, huh.NewOption(label, entry.Name))
	}

	var selected string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Capture interface").
				Description("Interfaces without an IPv4 address are not listed.").
				Options(options...).
				Value(&selected),
		),
	)
	if err := form.Run(); err != nil {
		return "", err
	}
	return selected, nil
}
