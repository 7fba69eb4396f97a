package serial

import (
	"log/slog"
	"path/filepath"
	"strings"
)

// excludedNameFragments marks port names that enumerate but misbehave when
// probed, such as Bluetooth virtual ports
var excludedNameFragments = []string{"Bluetooth"}

// PortInfo holds detailed information about a serial port
type PortInfo struct {
	Name            string
	Path            string
	Description     string
	VendorID        string
	ProductID       string
	SerialNumber    string
	InterfaceNumber string
	BusNumber       string
	DeviceNumber    string
	Manufacturer    string
	Product         string
}

// IsUSB reports whether USB metadata was found for the port
func (i *PortInfo) IsUSB() bool {
	return i.VendorID != "" || i.ProductID != ""
}

// GetPortInfo returns detailed information about a specific port
func GetPortInfo(portPath string) (*PortInfo, error) {
	if !portExists(portPath) {
		return nil, ErrDeviceNotFound
	}

	name := filepath.Base(portPath)
	info := &PortInfo{
		Name:        name,
		Path:        portPath,
		Description: getPortDescription(name),
	}

	enrichUSBInfo(info)

	return info, nil
}

// AvailablePorts lists candidate ports that can actually be acquired.
// Excluded names are dropped, and every remaining port is probe-opened and
// closed again; ports that fail the probe are left out.
func AvailablePorts() ([]string, error) {
	ports, err := ListPorts()
	if err != nil {
		return nil, err
	}
	return filterAvailable(ports, probePort, slog.Default()), nil
}

// probePort opens and immediately closes a port
func probePort(path string) error {
	p, err := Open(path)
	if err != nil {
		return err
	}
	return p.Close()
}

func filterAvailable(ports []string, probe func(string) error, logger *slog.Logger) []string {
	var result []string
	for _, path := range ports {
		if isExcludedName(path) {
			logger.Debug("skipping excluded port", slog.String("port", path))
			continue
		}
		if err := probe(path); err != nil {
			logger.Debug("port not available", slog.String("port", path), slog.Any("error", err))
			continue
		}
		result = append(result, path)
	}
	return result
}

func isExcludedName(path string) bool {
	for _, fragment := range excludedNameFragments {
		if strings.Contains(path, fragment) {
			return true
		}
	}
	return false
}

// getPortDescription provides human-readable descriptions for different port types
func getPortDescription(name string) string {
	switch {
	case strings.HasPrefix(name, "ttyUSB"):
		return "USB Serial Port"
	case strings.HasPrefix(name, "ttyACM"):
		return "USB CDC/ACM Device"
	case strings.HasPrefix(name, "ttyAMA"):
		return "ARM Serial Port"
	case strings.HasPrefix(name, "ttymxc"):
		return "i.MX Serial Port"
	case strings.HasPrefix(name, "ttySAC"):
		return "Samsung Serial Port"
	case strings.HasPrefix(name, "ttyTHS"):
		return "Tegra Serial Port"
	case strings.HasPrefix(name, "ttyO"):
		return "OMAP Serial Port"
	case strings.HasPrefix(name, "ttyS"):
		return "Standard Serial Port"
	case strings.HasPrefix(name, "tty.usbserial"), strings.HasPrefix(name, "cu.usbserial"):
		return "USB Serial Port"
	case strings.HasPrefix(name, "tty.usbmodem"), strings.HasPrefix(name, "cu.usbmodem"):
		return "USB CDC/ACM Device"
	case strings.HasPrefix(name, "COM"):
		return "COM Port"
	default:
		return "Serial Port"
	}
}
