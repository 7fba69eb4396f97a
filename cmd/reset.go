/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/allbin/portbrain/serial"
)

// USB reset hooks; tests replace them
var (
	usbResetAvailable = serial.IsUSBResetAvailable
	resetByPath       = serial.ResetUSBDevice
	resetBySerial     = serial.ResetUSBDeviceBySerial
)

// resetCmd represents the reset command
var resetCmd = &cobra.Command{
	Use:   "reset <port|serial>",
	Short: "Reset the USB serial adapter of a PortBrain",
	Long: `Perform a USB-level reset on a serial adapter. This can recover a
PortBrain link that stopped answering without physically unplugging it.

The adapter will re-enumerate after reset, which may cause the port path
to change (e.g., /dev/ttyUSB0 might become /dev/ttyUSB1). Use serial
numbers to reliably identify adapters after reset.

Requirements:
- usbreset utility must be installed (from usbutils package)
- Root/sudo permissions required for USB operations

Examples:
  sudo portbrain reset /dev/ttyUSB0         # Reset by port path
  sudo portbrain reset --serial NC7ILXW1    # Reset by serial number`,
	Args: func(cmd *cobra.Command, args []string) error {
		serialFlag, _ := cmd.Flags().GetString("serial")
		if serialFlag == "" && len(args) != 1 {
			return errors.New("requires either a port path argument or --serial flag")
		}
		if serialFlag != "" && len(args) > 0 {
			return errors.New("cannot specify both port path and --serial flag")
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		if !usbResetAvailable() {
			fmt.Fprintln(cmd.ErrOrStderr(), "Install with: sudo apt-get install usbutils")
			return serial.ErrUSBResetNotAvailable
		}

		serialFlag, _ := cmd.Flags().GetString("serial")

		var err error
		if serialFlag != "" {
			fmt.Fprintf(out, "Resetting USB device with serial: %s\n", serialFlag)
			err = resetBySerial(serialFlag)
		} else {
			fmt.Fprintf(out, "Resetting USB device: %s\n", args[0])
			err = resetByPath(args[0])
		}

		if err != nil {
			if errors.Is(err, serial.ErrUSBInfoNotAvailable) {
				fmt.Fprintln(cmd.ErrOrStderr(), "This device does not appear to be a USB device")
			}
			return err
		}

		fmt.Fprintln(out, "USB device reset successfully")
		fmt.Fprintln(out, "Device will re-enumerate (port path may change)")
		fmt.Fprintln(out, "\nUse 'portbrain list --table' to see updated device list")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(resetCmd)

	resetCmd.Flags().StringP("serial", "s", "", "Reset device by serial number")
}
