/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/allbin/portbrain"
	"github.com/allbin/portbrain/internal/tui/styles"
)

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version <port>",
	Short: "Query the firmware version of a PortBrain",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd, args[0])
		if err != nil {
			return err
		}
		defer s.Close()

		if !s.ctrl.CheckForDevice() {
			return fmt.Errorf("no PortBrain answering on %s", args[0])
		}

		info := s.ctrl.DeviceInfo()
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n",
			styles.LabelStyle.Render(info.ChannelName+":"),
			styles.ValueStyle.Render(info.Version))
		return nil
	},
}

// readCmd represents the read command
var readCmd = &cobra.Command{
	Use:   "read port|adc|dir <port> <n>",
	Short: "Read a digital port, analog input or port direction",
	Long: `Read one value from a PortBrain.

  port  digital port n (PRTRD)
  adc   analog input n (ADC)
  dir   direction bits of digital port n (DIRRD)

Examples:
  portbrain read port /dev/ttyUSB0 0
  portbrain read adc /dev/ttyUSB0 3`,
	Args:      cobra.ExactArgs(3),
	ValidArgs: []string{"port", "adc", "dir"},
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := parseIndex(args[2])
		if err != nil {
			return err
		}

		var read func(*portbrain.Controller, int) (int, error)
		switch args[0] {
		case "port":
			read = (*portbrain.Controller).ReadPort
		case "adc":
			read = (*portbrain.Controller).ReadAnalogInput
		case "dir":
			read = (*portbrain.Controller).PortDirection
		default:
			return fmt.Errorf("unknown target %q (want port, adc or dir)", args[0])
		}

		s, err := openSession(cmd, args[1])
		if err != nil {
			return err
		}
		defer s.Close()

		v, err := read(s.ctrl, n)
		if err != nil {
			return err
		}

		if args[0] == "adc" {
			fmt.Fprintln(cmd.OutOrStdout(), v)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "%d %s\n", v, styles.MutedStyle.Render(fmt.Sprintf("(%08b)", v)))
		}
		return nil
	},
}

// writeCmd represents the write command
var writeCmd = &cobra.Command{
	Use:   "write port|dir <port> <n> <value>",
	Short: "Write a digital port or its direction bits",
	Long: `Write one value to a PortBrain.

  port  set digital port n to value (PRTWR)
  dir   set the direction bits of digital port n (DIRWR)

Values may be decimal, 0x hex or 0b binary.

Examples:
  portbrain write port /dev/ttyUSB0 1 0x0f
  portbrain write dir /dev/ttyUSB0 1 0b11110000`,
	Args:      cobra.ExactArgs(4),
	ValidArgs: []string{"port", "dir"},
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := parseIndex(args[2])
		if err != nil {
			return err
		}
		value, err := strconv.ParseInt(args[3], 0, 32)
		if err != nil {
			return fmt.Errorf("invalid value %q: %w", args[3], err)
		}

		var write func(*portbrain.Controller, int, int) error
		switch args[0] {
		case "port":
			write = (*portbrain.Controller).WritePort
		case "dir":
			write = (*portbrain.Controller).SetPortDirection
		default:
			return fmt.Errorf("unknown target %q (want port or dir)", args[0])
		}

		s, err := openSession(cmd, args[1])
		if err != nil {
			return err
		}
		defer s.Close()

		if err := write(s.ctrl, n, int(value)); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), styles.SuccessStyle.Render("✓")+" OK")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(readCmd)
	rootCmd.AddCommand(writeCmd)
}

func parseIndex(arg string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("invalid index %q: %w", arg, err)
	}
	return n, nil
}
