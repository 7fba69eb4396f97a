package serial

import (
	"fmt"
	"os/exec"
	"strconv"
	"time"
)

// usbResetSettle is how long to wait for a device to re-enumerate
var usbResetSettle = 2 * time.Second

// ResetUSBDevice performs a USB-level reset of the device behind portPath.
// This can recover an adapter that stopped answering without unplugging it.
//
// Requirements:
// - usbreset utility must be installed (from usbutils package)
// - Requires appropriate permissions (typically root/sudo)
//
// Returns:
// - nil if reset successful
// - ErrUSBResetNotAvailable if usbreset utility not found
// - ErrUSBInfoNotAvailable if device is not USB or metadata unavailable
// - error if reset fails
func ResetUSBDevice(portPath string) error {
	info, err := GetPortInfo(portPath)
	if err != nil {
		return fmt.Errorf("failed to get port info: %w", err)
	}

	if info.BusNumber == "" || info.DeviceNumber == "" {
		return ErrUSBInfoNotAvailable
	}

	if !IsUSBResetAvailable() {
		return ErrUSBResetNotAvailable
	}

	usbPath, err := usbDevicePath(info)
	if err != nil {
		return err
	}

	cmd := exec.Command("usbreset", usbPath)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("usbreset failed: %w (output: %s)", err, string(output))
	}

	time.Sleep(usbResetSettle)

	return nil
}

// ResetUSBDeviceBySerial resets a USB device by its serial number
// Useful when device paths change after reboot or when multiple devices are connected
func ResetUSBDeviceBySerial(serialNumber string) error {
	ports, err := ListPorts()
	if err != nil {
		return err
	}

	for _, portPath := range ports {
		info, err := GetPortInfo(portPath)
		if err != nil {
			continue
		}

		if info.SerialNumber == serialNumber {
			return ResetUSBDevice(portPath)
		}
	}

	return fmt.Errorf("%w: no device with serial %s", ErrDeviceNotFound, serialNumber)
}

// IsUSBResetAvailable checks if usbreset utility is available in PATH
func IsUSBResetAvailable() bool {
	_, err := exec.LookPath("usbreset")
	return err == nil
}

// usbDevicePath formats bus and device numbers the way usbreset expects
// them: zero-padded, "BBB/DDD"
func usbDevicePath(info *PortInfo) (string, error) {
	bus, err := strconv.Atoi(info.BusNumber)
	if err != nil {
		return "", fmt.Errorf("%w: bus number %q", ErrUSBInfoNotAvailable, info.BusNumber)
	}
	dev, err := strconv.Atoi(info.DeviceNumber)
	if err != nil {
		return "", fmt.Errorf("%w: device number %q", ErrUSBInfoNotAvailable, info.DeviceNumber)
	}
	return fmt.Sprintf("%03d/%03d", bus, dev), nil
}
