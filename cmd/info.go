/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/allbin/polydaq"
	"github.com/allbin/polydaq/internal/tui/colors"
	"github.com/allbin/polydaq/internal/tui/styles"
)

// infoCmd represents the info command
var infoCmd = &cobra.Command{
	Use:   "info [port]",
	Short: "Display detailed information about a serial port",
	Long: `Display detailed information about a serial port including USB metadata.

Examples:
  polydaq info
  polydaq info /dev/ttyACM0

For USB devices, this displays vendor/product IDs, the serial number, bus
and device numbers, manufacturer and product strings.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		info, err := polydaq.GetPortInfo(portArg(args, 0))
		if err != nil {
			return fmt.Errorf("getting port info: %w", err)
		}
		printPortInfo(cmd.OutOrStdout(), info)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

var labelStyle = lipgloss.NewStyle().
	Foreground(colors.Subtext0).
	Width(14)

func printPortInfo(w io.Writer, info *polydaq.PortInfo) {
	field := func(label, value string) {
		if value != "" {
			fmt.Fprintf(w, "  %s %s\n", labelStyle.Render(label+":"), value)
		}
	}

	fmt.Fprintf(w, "%s\n\n", styles.InfoStyle.Render("Port Information: "+info.Path))
	field("Name", info.Name)
	field("Description", info.Description)

	if !info.IsUSB {
		return
	}

	fmt.Fprintf(w, "\n%s\n", styles.InfoStyle.Render("USB Device Information:"))
	field("Vendor ID", info.VendorID)
	field("Product ID", info.ProductID)
	field("Serial", info.SerialNumber)
	field("Bus", info.BusNumber)
	field("Device", info.DeviceNumber)
	field("Manufacturer", info.Manufacturer)
	field("Product", info.Product)
}
