/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/allbin/portbrain/internal/tui/components"
)

// sendCmd represents the send command
var sendCmd = &cobra.Command{
	Use:   "send <port> <command>",
	Short: "Send a raw command to a PortBrain and print the reply",
	Long: `Send one raw command and print the device's reply.

The configured terminator is appended to the command, and the reply is read
up to the next terminator. If no complete reply arrives within --timeout,
whatever bytes did arrive are printed with the error.

Example usage:
  portbrain send /dev/ttyUSB0 VER
  portbrain send /dev/ttyUSB0 PRTWR10 --timeout 1s
  portbrain send /dev/ttyUSB0 --hex 564552
  portbrain send /dev/ttyUSB0 ADC0 --show-hex`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		hexMode, _ := cmd.Flags().GetBool("hex")
		showHex, _ := cmd.Flags().GetBool("show-hex")

		raw := strings.Join(args[1:], " ")
		data := []byte(raw)
		if hexMode {
			var err error
			if data, err = components.ParseHex(raw); err != nil {
				return fmt.Errorf("invalid hex data: %w", err)
			}
		}

		s, err := openSession(cmd, args[0])
		if err != nil {
			return err
		}
		defer s.Close()

		resp, sendErr := s.ch.SendCommand(data)

		formatter := components.NewExchangeFormatter(showHex, true)
		fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatExchange(components.Exchange{
			Timestamp: time.Now(),
			Command:   data,
			Response:  resp,
			Err:       sendErr,
		}))
		return sendErr
	},
}

func init() {
	rootCmd.AddCommand(sendCmd)

	sendCmd.Flags().BoolP("hex", "x", false, "Interpret the command as hexadecimal (e.g., '564552' for 'VER')")
	sendCmd.Flags().Bool("show-hex", false, "Show command and reply bytes in hex as well")
}
