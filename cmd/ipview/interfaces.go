package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hareinweed/ipview/internal/capture"
)

func newInterfacesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "interfaces",
		Short: "List IPv4-capable capture interfaces",
		RunE: func(cmd *cobra.Command, args []string) error {
			ifaces, err := capture.Interfaces()
			if err != nil {
				return err
			}

			fmt.Fprintf(os.Stdout, " # %-40s%-45s%-6s%s\n", "name", "description", "up", "ip list")
			for i, entry := range ifaces {
				fmt.Fprintf(os.Stdout, "%2d %-40s%-45s%-6v[%s]\n",
					i, entry.Name, entry.Description, entry.Up, strings.Join(entry.Addrs, ", "))
			}
			return nil
		},
	}
}
