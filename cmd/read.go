/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/allbin/polydaq"
)

// readCmd represents the read command
var readCmd = &cobra.Command{
	Use:   "read <channel> [port]",
	Short: "Read one analog channel and print the reply",
	Long: `Send a single channel request to the board and print its reply.

The channel is 0-15, given in decimal or as the console key (0-9, a-f).
The command fails if the port cannot be opened or no line-feed arrives
within --timeout.

Example usage:
  polydaq read 5
  polydaq read 12 /dev/ttyACM1
  polydaq read c --timeout 500ms`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		channel, err := parseChannel(args[0])
		if err != nil {
			return err
		}
		timeout, _ := cmd.Flags().GetDuration("timeout")

		request, err := polydaq.RequestByte(channel, settings.Console.UppercaseRequests)
		if err != nil {
			return err
		}

		reply, err := query(cmd.Context(), portArg(args, 1), polydaq.NewExchange(channel, request), timeout)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), reply)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(readCmd)

	addSerialFlags(readCmd)
	readCmd.Flags().DurationP("timeout", "t", 2*time.Second, "How long to wait for the reply")
	readCmd.Flags().Bool("uppercase", false, "Send A-F for channels 10-15")
}

// parseChannel accepts 0-15 in decimal or a single console key
func parseChannel(s string) (int, error) {
	s = strings.TrimSpace(s)
	if len(s) == 1 {
		if a := polydaq.Dispatch(rune(s[0])); a.Kind == polydaq.ActionReadChannel {
			return a.Channel, nil
		}
	}

	n, err := strconv.Atoi(s)
	if err != nil || n < 0 || n > polydaq.MaxChannel {
		return 0, fmt.Errorf("%w: %q", polydaq.ErrInvalidChannel, s)
	}
	return n, nil
}

// query opens path, runs one exchange and releases the port
func query(ctx context.Context, path string, ex *polydaq.Exchange, timeout time.Duration) (string, error) {
	link, err := newLink(path)
	if err != nil {
		return "", err
	}
	if err := link.Open(); err != nil {
		return "", err
	}
	defer link.Close()

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	return polydaq.Query(ctx, link, ex, settings.Console.PollInterval)
}
