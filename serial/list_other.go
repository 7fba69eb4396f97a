//go:build !linux

package serial

import (
	"sort"

	bugst "go.bug.st/serial"
	"go.bug.st/serial/enumerator"
)

// ListPorts returns the serial ports reported by the operating system
func ListPorts() ([]string, error) {
	ports, err := bugst.GetPortsList()
	if err != nil {
		return nil, err
	}
	sort.Strings(ports)
	return ports, nil
}

func portExists(path string) bool {
	ports, err := bugst.GetPortsList()
	if err != nil {
		return false
	}
	for _, p := range ports {
		if p == path {
			return true
		}
	}
	return false
}

// enrichUSBInfo fills USB metadata from the platform enumerator
func enrichUSBInfo(info *PortInfo) {
	details, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return
	}

	for _, d := range details {
		if d.Name != info.Path || !d.IsUSB {
			continue
		}
		info.VendorID = d.VID
		info.ProductID = d.PID
		info.SerialNumber = d.SerialNumber
		info.Product = d.Product
		if d.Product != "" {
			info.Description = d.Product
		}
		return
	}
}
