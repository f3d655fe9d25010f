/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/allbin/polydaq"
)

// versionRequest asks the firmware for its banner
const versionRequest = 'v'

// firmwareCmd represents the firmware command
var firmwareCmd = &cobra.Command{
	Use:   "firmware [port]",
	Short: "Print the board's firmware version",
	Long: `Ask the board for its firmware version and print the reply.

Example usage:
  polydaq firmware
  polydaq firmware /dev/ttyACM1 --timeout 1s`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		timeout, _ := cmd.Flags().GetDuration("timeout")

		reply, err := query(cmd.Context(), portArg(args, 0), polydaq.NewExchange(polydaq.NoChannel, versionRequest), timeout)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), reply)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(firmwareCmd)

	addSerialFlags(firmwareCmd)
	firmwareCmd.Flags().DurationP("timeout", "t", 2*time.Second, "How long to wait for the reply")
}
