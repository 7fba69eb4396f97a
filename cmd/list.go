/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/allbin/portbrain/internal/tui/styles"
	"github.com/allbin/portbrain/serial"
)

// Port sources of the list command; tests replace them
var (
	listAllPorts       = serial.ListPorts
	listAvailablePorts = serial.AvailablePorts
	portInfo           = serial.GetPortInfo
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List serial ports a PortBrain could be attached to",
	Long: `List the serial ports that can be opened right now.

Candidates include:
- USB serial adapters (ttyUSB*)
- USB CDC/ACM devices (ttyACM*)
- Standard serial ports (ttyS*)
- ARM/Raspberry Pi ports (ttyAMA*)
- And other platform-specific serial devices

Every candidate is briefly opened to check that it is usable; ports held by
another program or without permission are left out. Use --all to list every
candidate without opening it. Virtual terminals and pseudo-terminals are
never listed.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		all, _ := cmd.Flags().GetBool("all")
		filterType, _ := cmd.Flags().GetString("filter")
		tableFormat, _ := cmd.Flags().GetBool("table")
		out := cmd.OutOrStdout()

		lister := listAvailablePorts
		if all {
			lister = listAllPorts
		}

		ports, err := lister()
		if err != nil {
			return fmt.Errorf("listing ports: %w", err)
		}

		filteredPorts := filterPorts(ports, filterType)
		if len(filteredPorts) == 0 {
			if filterType != "" {
				fmt.Fprintf(out, "No serial ports found matching filter: %s\n", filterType)
			} else {
				fmt.Fprintln(out, "No serial ports found")
			}
			return nil
		}

		if tableFormat {
			renderTable(out, filteredPorts)
		} else {
			renderSimple(out, filteredPorts)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().BoolP("all", "a", false, "List every candidate port without probing it")
	listCmd.Flags().StringP("filter", "f", "", "Filter by port type: usb, standard, arm, all")
	listCmd.Flags().BoolP("table", "t", false, "Display output in a styled table format")
}

// filterPorts filters the port list based on the specified filter type
func filterPorts(ports []string, filterType string) []string {
	filterType = strings.ToLower(filterType)
	if filterType == "" || filterType == "all" {
		return ports
	}

	var filtered []string
	for _, port := range ports {
		name := strings.ToLower(port[strings.LastIndex(port, "/")+1:])
		switch filterType {
		case "usb":
			if strings.HasPrefix(name, "ttyusb") || strings.HasPrefix(name, "ttyacm") {
				filtered = append(filtered, port)
			}
		case "standard":
			if strings.HasPrefix(name, "ttys") && !strings.HasPrefix(name, "ttysac") {
				filtered = append(filtered, port)
			}
		case "arm":
			if strings.HasPrefix(name, "ttyama") {
				filtered = append(filtered, port)
			}
		}
	}
	return filtered
}

// renderTable renders the port list in a styled static table format
func renderTable(out io.Writer, ports []string) {
	fmt.Fprintf(out, "Found %d serial port(s):\n\n", len(ports))

	portWidth := 15
	typeWidth := 20
	descWidth := 30

	cellStyle := lipgloss.NewStyle().PaddingRight(2)

	header := fmt.Sprintf("%-*s %-*s %-*s",
		portWidth, "Port",
		typeWidth, "Type",
		descWidth, "Description")
	fmt.Fprintln(out, styles.HeaderStyle.Render(header))

	for _, port := range ports {
		info, err := portInfo(port)
		if err != nil {
			row := fmt.Sprintf("%-*s %-*s %-*s",
				portWidth, port,
				typeWidth, "Unknown",
				descWidth, fmt.Sprintf("Error: %v", err))
			fmt.Fprintln(out, cellStyle.Render(row))
			continue
		}

		description := info.Description
		if info.IsUSB() {
			description = fmt.Sprintf("%s (%s:%s)", description, info.VendorID, info.ProductID)
		}
		row := fmt.Sprintf("%-*s %-*s %-*s",
			portWidth, info.Name,
			typeWidth, getPortType(info.Name),
			descWidth, description)
		fmt.Fprintln(out, cellStyle.Render(row))
	}
}

// renderSimple renders the port list in simple text format
func renderSimple(out io.Writer, ports []string) {
	for _, port := range ports {
		fmt.Fprintln(out, port)
	}
}

// getPortType returns a more specific type classification for the port
func getPortType(name string) string {
	name = strings.ToLower(name)
	switch {
	case strings.HasPrefix(name, "ttyusb"):
		return "USB Serial"
	case strings.HasPrefix(name, "ttyacm"):
		return "USB CDC/ACM"
	case strings.HasPrefix(name, "ttyama"):
		return "ARM Serial"
	case strings.HasPrefix(name, "ttymxc"):
		return "i.MX Serial"
	case strings.HasPrefix(name, "ttysac"):
		return "Samsung Serial"
	case strings.HasPrefix(name, "ttyths"):
		return "Tegra Serial"
	case strings.HasPrefix(name, "ttyo"):
		return "OMAP Serial"
	case strings.HasPrefix(name, "ttys"):
		return "Standard Serial"
	default:
		return "Serial Port"
	}
}
