//go:build linux

package serial

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// devDir and sysfsRoot are variables so tests can point them at fixtures
var (
	devDir    = "/dev"
	sysfsRoot = "/sys/class/tty"
)

// Regular expressions for different types of serial devices
var serialPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^ttyUSB\d+$`), // USB serial adapters
	regexp.MustCompile(`^ttyACM\d+$`), // USB CDC/ACM devices
	regexp.MustCompile(`^ttyS\d+$`),   // Standard serial ports
	regexp.MustCompile(`^ttyAMA\d+$`), // ARM/Raspberry Pi serial
	regexp.MustCompile(`^ttymxc\d+$`), // i.MX serial ports
	regexp.MustCompile(`^ttyO\d+$`),   // OMAP serial ports
	regexp.MustCompile(`^ttySAC\d+$`), // Samsung serial ports
	regexp.MustCompile(`^ttyTHS\d+$`), // Tegra serial ports
}

// Exclude patterns for virtual terminals and other non-serial devices
var excludePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^tty\d+$`),  // Virtual terminals (tty1, tty2, etc.)
	regexp.MustCompile(`^console$`), // Console
	regexp.MustCompile(`^ptmx$`),    // Pseudo-terminal multiplexer
	regexp.MustCompile(`^pty.*$`),   // Pseudo-terminals
	regexp.MustCompile(`^pts/.*$`),  // Pseudo-terminal slaves
}

// ListPorts returns a list of candidate serial ports on the system.
// Filters for communication-capable devices and excludes virtual terminals.
func ListPorts() ([]string, error) {
	var ports []string

	entries, err := os.ReadDir(devDir)
	if err != nil {
		return nil, err
	}

	for _, entry := range entries {
		name := entry.Name()

		if matchesExcludePattern(name) || !matchesSerialPattern(name) {
			continue
		}

		fullPath := filepath.Join(devDir, name)

		// Verify it's a character device (not a directory or regular file)
		if isCharacterDevice(fullPath) {
			ports = append(ports, fullPath)
		}
	}

	// Sort the ports for consistent ordering
	sort.Strings(ports)

	return ports, nil
}

func matchesSerialPattern(name string) bool {
	for _, pattern := range serialPatterns {
		if pattern.MatchString(name) {
			return true
		}
	}
	return false
}

func matchesExcludePattern(name string) bool {
	for _, pattern := range excludePatterns {
		if pattern.MatchString(name) {
			return true
		}
	}
	return false
}

// isCharacterDevice checks if the given path is a character device
func isCharacterDevice(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}

	return info.Mode()&os.ModeCharDevice != 0
}

func portExists(path string) bool {
	return isCharacterDevice(path)
}

// enrichUSBInfo fills USB metadata from sysfs. The tty's device link points
// at the USB interface (ttyACM) or at a child of it (ttyUSB); walking up from
// there finds bInterfaceNumber first and then the USB device directory with
// idVendor, busnum and friends.
func enrichUSBInfo(info *PortInfo) {
	devicePath, err := filepath.EvalSymlinks(filepath.Join(sysfsRoot, info.Name, "device"))
	if err != nil {
		return
	}

	for dir := devicePath; dir != "/" && dir != "." && dir != ""; dir = filepath.Dir(dir) {
		if info.InterfaceNumber == "" {
			info.InterfaceNumber = readSysfsFile(filepath.Join(dir, "bInterfaceNumber"))
		}

		vendor := readSysfsFile(filepath.Join(dir, "idVendor"))
		if vendor == "" {
			continue
		}

		info.VendorID = vendor
		info.ProductID = readSysfsFile(filepath.Join(dir, "idProduct"))
		info.SerialNumber = readSysfsFile(filepath.Join(dir, "serial"))
		info.BusNumber = readSysfsFile(filepath.Join(dir, "busnum"))
		info.DeviceNumber = readSysfsFile(filepath.Join(dir, "devnum"))
		info.Manufacturer = readSysfsFile(filepath.Join(dir, "manufacturer"))
		info.Product = readSysfsFile(filepath.Join(dir, "product"))
		if info.Product != "" {
			info.Description = info.Product
		}
		return
	}
}

// readSysfsFile returns the trimmed contents of a sysfs attribute, or "" if
// it cannot be read
func readSysfsFile(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}
