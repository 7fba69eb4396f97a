package serial

import (
	"errors"
	"io"
	"log/slog"
	"reflect"
	"testing"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestFilterAvailable(t *testing.T) {
	ports := []string{
		"/dev/ttyUSB0",
		"/dev/ttyUSB1",
		"/dev/tty.Bluetooth-Incoming-Port",
		"/dev/ttyACM0",
	}

	var probed []string
	probe := func(path string) error {
		probed = append(probed, path)
		if path == "/dev/ttyUSB1" {
			return ErrDeviceInUse
		}
		return nil
	}

	got := filterAvailable(ports, probe, discardLogger())
	want := []string{"/dev/ttyUSB0", "/dev/ttyACM0"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("filterAvailable = %v, expected %v", got, want)
	}

	for _, p := range probed {
		if isExcludedName(p) {
			t.Errorf("excluded port %s was probed", p)
		}
	}
	if len(probed) != 3 {
		t.Errorf("expected 3 probes, got %d", len(probed))
	}
}

func TestFilterAvailableAllFail(t *testing.T) {
	probe := func(string) error { return errors.New("nope") }
	if got := filterAvailable([]string{"/dev/ttyS0", "/dev/ttyS1"}, probe, discardLogger()); len(got) != 0 {
		t.Errorf("expected no ports, got %v", got)
	}
}

func TestIsExcludedName(t *testing.T) {
	tests := map[string]bool{
		"/dev/tty.Bluetooth-Incoming-Port": true,
		"/dev/cu.Bluetooth-Modem":          true,
		"/dev/ttyUSB0":                     false,
		"COM3":                             false,
	}
	for name, want := range tests {
		if got := isExcludedName(name); got != want {
			t.Errorf("isExcludedName(%q) = %v, expected %v", name, got, want)
		}
	}
}

func TestGetPortDescription(t *testing.T) {
	tests := []struct {
		name     string
		expected string
	}{
		{"ttyUSB0", "USB Serial Port"},
		{"ttyACM0", "USB CDC/ACM Device"},
		{"ttyS0", "Standard Serial Port"},
		{"ttyAMA0", "ARM Serial Port"},
		{"ttymxc0", "i.MX Serial Port"},
		{"ttyO0", "OMAP Serial Port"},
		{"ttySAC0", "Samsung Serial Port"},
		{"ttyTHS0", "Tegra Serial Port"},
		{"cu.usbserial-1410", "USB Serial Port"},
		{"tty.usbmodem14201", "USB CDC/ACM Device"},
		{"COM4", "COM Port"},
		{"unknown", "Serial Port"},
	}

	for _, test := range tests {
		result := getPortDescription(test.name)
		if result != test.expected {
			t.Errorf("getPortDescription(%s) = %s, expected %s", test.name, result, test.expected)
		}
	}
}

func TestPortInfoIsUSB(t *testing.T) {
	if (&PortInfo{Name: "ttyS0"}).IsUSB() {
		t.Error("ttyS0 without metadata should not be USB")
	}
	if !(&PortInfo{Name: "ttyUSB0", VendorID: "0403"}).IsUSB() {
		t.Error("port with vendor id should be USB")
	}
}

func TestGetPortInfoNonExistent(t *testing.T) {
	_, err := GetPortInfo("/dev/nonexistent")
	if !errors.Is(err, ErrDeviceNotFound) {
		t.Errorf("Expected ErrDeviceNotFound, got %v", err)
	}
}

func TestListPortsIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ports, err := ListPorts()
	if err != nil {
		t.Fatalf("ListPorts failed: %v", err)
	}

	t.Logf("Found %d serial ports:", len(ports))
	for i, port := range ports {
		info, err := GetPortInfo(port)
		if err != nil {
			t.Logf("  %d. %s (error getting info: %v)", i+1, port, err)
		} else {
			t.Logf("  %d. %s (%s)", i+1, port, info.Description)
		}
	}
}

func BenchmarkListPorts(b *testing.B) {
	for i := 0; i < b.N; i++ {
		if _, err := ListPorts(); err != nil {
			b.Errorf("ListPorts failed: %v", err)
		}
	}
}
