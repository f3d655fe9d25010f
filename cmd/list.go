/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/allbin/polydaq"
	"github.com/allbin/polydaq/internal/tui/components"
	"github.com/allbin/polydaq/internal/tui/styles"
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List serial ports the board may be on",
	Long: `List serial ports that can be opened right now.

Each port matching a serial device name (ttyACM*, ttyUSB*, ttyS*, ttyAMA*
and other platform ports) is opened and closed again; ports that are
missing, busy or not permitted are left out. Use --all to skip that check.

Virtual terminals and pseudo-terminals are excluded from the listing.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		all, _ := cmd.Flags().GetBool("all")
		filterType, _ := cmd.Flags().GetString("filter")
		tableFormat, _ := cmd.Flags().GetBool("table")

		var ports []string
		if all {
			var err error
			if ports, err = polydaq.ListPorts(); err != nil {
				return fmt.Errorf("listing ports: %w", err)
			}
		} else {
			ports = polydaq.ListCandidatePorts()
		}

		filtered, err := filterPorts(ports, filterType)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(filtered) == 0 {
			if filterType != "" && filterType != "all" {
				fmt.Fprintf(out, "No serial ports found matching filter: %s\n", filterType)
			} else {
				fmt.Fprintln(out, "No serial ports found")
			}
			return nil
		}

		if tableFormat {
			renderTable(out, filtered)
		} else {
			renderSimple(out, filtered)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringP("filter", "f", "", "Filter by port type: usb, standard, arm, all")
	listCmd.Flags().BoolP("table", "t", false, "Display output in a styled table format")
	listCmd.Flags().BoolP("all", "a", false, "Include ports that cannot be opened")
}

// filterPorts filters the port list based on the specified filter type
func filterPorts(ports []string, filterType string) ([]string, error) {
	kind := strings.ToLower(filterType)
	switch kind {
	case "", "all":
		return ports, nil
	case "usb", "standard", "arm":
	default:
		return nil, fmt.Errorf("unknown filter %q (want usb, standard, arm or all)", filterType)
	}

	var filtered []string
	for _, port := range ports {
		if portKind(port) == kind {
			filtered = append(filtered, port)
		}
	}
	return filtered, nil
}

// portKind groups a port path into the filter categories
func portKind(path string) string {
	name := strings.ToLower(path[strings.LastIndex(path, "/")+1:])
	switch {
	case strings.HasPrefix(name, "ttyusb"), strings.HasPrefix(name, "ttyacm"):
		return "usb"
	case strings.HasPrefix(name, "ttyama"):
		return "arm"
	case strings.HasPrefix(name, "ttys") && !strings.HasPrefix(name, "ttysac"):
		return "standard"
	default:
		return "other"
	}
}

// renderTable renders the port list with USB details
func renderTable(w io.Writer, ports []string) {
	fmt.Fprintf(w, "%s\n", styles.InfoStyle.Render(fmt.Sprintf("Found %d serial port(s):", len(ports))))

	infos := make([]*polydaq.PortInfo, 0, len(ports))
	for _, port := range ports {
		info, err := polydaq.GetPortInfo(port)
		if err != nil {
			info = &polydaq.PortInfo{Path: port, Description: "Unknown"}
		}
		infos = append(infos, info)
	}
	fmt.Fprintln(w, components.NewPortTable(infos).View())
}

// renderSimple renders the port list in simple text format
func renderSimple(w io.Writer, ports []string) {
	for _, port := range ports {
		fmt.Fprintln(w, port)
	}
}
