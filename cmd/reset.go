/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/allbin/polydaq"
	"github.com/allbin/polydaq/internal/tui/styles"
)

// resetCmd represents the reset command
var resetCmd = &cobra.Command{
	Use:   "reset [port]",
	Short: "Reset the board over USB",
	Long: `Perform a USB-level reset of the board. This recovers a board that
stopped answering without unplugging the cable.

The board re-enumerates after the reset, so the port path may change
(e.g., /dev/ttyACM0 might become /dev/ttyACM1). Use the serial number to
find it again.

Requirements:
- usbreset utility must be installed (from usbutils package)
- Root/sudo permissions required for USB operations

Examples:
  sudo polydaq reset /dev/ttyACM0          # Reset by port path
  sudo polydaq reset --serial 3776345A3337  # Reset by serial number`,
	Args: func(cmd *cobra.Command, args []string) error {
		serialFlag, _ := cmd.Flags().GetString("serial")
		if serialFlag != "" && len(args) > 0 {
			return errors.New("cannot specify both port path and --serial flag")
		}
		return cobra.MaximumNArgs(1)(cmd, args)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if !polydaq.IsUSBResetAvailable() {
			return errors.New("usbreset utility not available (install with: sudo apt-get install usbutils)")
		}

		out := cmd.OutOrStdout()
		serialFlag, _ := cmd.Flags().GetString("serial")

		var err error
		if serialFlag != "" {
			fmt.Fprintf(out, "Resetting USB device with serial: %s\n", serialFlag)
			err = polydaq.ResetUSBDeviceBySerial(cmd.Context(), serialFlag)
		} else {
			portPath := portArg(args, 0)
			fmt.Fprintf(out, "Resetting USB device: %s\n", portPath)
			err = polydaq.ResetUSBDevice(cmd.Context(), portPath)
		}

		if errors.Is(err, polydaq.ErrUSBInfoNotAvailable) {
			return fmt.Errorf("%w: the port does not appear to be a USB device", err)
		}
		if err != nil {
			return err
		}

		fmt.Fprintln(out, styles.StatusConnectedStyle.Render("✓ USB device reset"))
		fmt.Fprintln(out, "Device will re-enumerate (port path may change)")
		fmt.Fprintln(out, "\nUse 'polydaq list --table' to see the updated port list")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(resetCmd)

	resetCmd.Flags().StringP("serial", "s", "", "Reset device by serial number")
}
