/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// infoCmd represents the info command
var infoCmd = &cobra.Command{
	Use:   "info <port>",
	Short: "Display detailed information about a serial port",
	Long: `Display detailed information about a serial port including USB metadata.

Examples:
  portbrain info /dev/ttyUSB0
  portbrain info /dev/ttyACM0

For USB adapters, this displays vendor/product IDs, serial numbers, interface
numbers, and other USB-specific metadata. The serial number is what
'portbrain reset --serial' expects.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		info, err := portInfo(args[0])
		if err != nil {
			return fmt.Errorf("getting port info: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Port Information: %s\n\n", info.Path)
		fmt.Fprintf(out, "  Name:        %s\n", info.Name)
		fmt.Fprintf(out, "  Description: %s\n", info.Description)

		if !info.IsUSB() {
			return nil
		}

		fmt.Fprintln(out, "\nUSB Device Information:")
		fields := []struct {
			label string
			value string
		}{
			{"Vendor ID:   ", info.VendorID},
			{"Product ID:  ", info.ProductID},
			{"Serial:      ", info.SerialNumber},
			{"Interface:   ", info.InterfaceNumber},
			{"Bus:         ", info.BusNumber},
			{"Device:      ", info.DeviceNumber},
			{"Manufacturer:", info.Manufacturer},
			{"Product:     ", info.Product},
		}
		for _, f := range fields {
			if f.value != "" {
				fmt.Fprintf(out, "  %s %s\n", f.label, f.value)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
