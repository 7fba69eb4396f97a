//go:build linux

package serial

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSerialPatterns(t *testing.T) {
	tests := []struct {
		name        string
		shouldMatch bool
	}{
		{"ttyUSB0", true},
		{"ttyUSB12", true},
		{"ttyACM0", true},
		{"ttyS0", true},
		{"ttyAMA0", true},
		{"ttymxc1", true},
		{"ttyO2", true},
		{"ttySAC3", true},
		{"ttyTHS0", true},
		{"tty0", false},
		{"tty1", false},
		{"console", false},
		{"ptmx", false},
		{"ttyUSB", false},
		{"sda", false},
	}

	for _, tt := range tests {
		matched := matchesSerialPattern(tt.name) && !matchesExcludePattern(tt.name)
		if matched != tt.shouldMatch {
			t.Errorf("Device %s: expected match=%v, got match=%v", tt.name, tt.shouldMatch, matched)
		}
	}
}

func TestExcludePatterns(t *testing.T) {
	for _, name := range []string{"tty0", "tty63", "console", "ptmx", "ptyp0"} {
		if !matchesExcludePattern(name) {
			t.Errorf("%s should be excluded", name)
		}
	}
	if matchesExcludePattern("ttyUSB0") {
		t.Error("ttyUSB0 should not be excluded")
	}
}

func TestListPortsSkipsRegularFiles(t *testing.T) {
	tmpDir := t.TempDir()
	for _, name := range []string{"ttyUSB0", "ttyACM0", "tty1"} {
		if err := os.WriteFile(filepath.Join(tmpDir, name), nil, 0644); err != nil {
			t.Fatalf("Setup failed: %v", err)
		}
	}

	saved := devDir
	devDir = tmpDir
	defer func() { devDir = saved }()

	ports, err := ListPorts()
	if err != nil {
		t.Fatalf("ListPorts failed: %v", err)
	}
	if len(ports) != 0 {
		t.Errorf("regular files should not be listed, got %v", ports)
	}
}

func TestReadSysfsFile(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name     string
		content  string
		expected string
	}{
		{"plain", "0403", "0403"},
		{"trailing newline", "FT123456\n", "FT123456"},
		{"surrounding whitespace", "  FTDI  \n", "FTDI"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testFile := filepath.Join(tmpDir, tt.name)
			if err := os.WriteFile(testFile, []byte(tt.content), 0644); err != nil {
				t.Fatalf("Setup failed: %v", err)
			}

			result := readSysfsFile(testFile)
			if result != tt.expected {
				t.Errorf("readSysfsFile() = %q, expected %q", result, tt.expected)
			}
		})
	}

	if got := readSysfsFile(filepath.Join(tmpDir, "missing")); got != "" {
		t.Errorf("missing file should read as empty, got %q", got)
	}
}

// buildSysfs creates a fake sysfs tree rooted at dir:
//
//	dir/devices/usb5/5-2.3.1/                      USB device attributes
//	dir/devices/usb5/5-2.3.1/5-2.3.1:1.0/          interface attributes
//	dir/devices/usb5/5-2.3.1/5-2.3.1:1.0/<tty>     tty node
//	dir/class/tty/<tty>/device -> tty node, or the interface when ttyLeaf is false
func buildSysfs(t *testing.T, dir, tty string, ttyLeaf bool) {
	t.Helper()

	devicePath := filepath.Join(dir, "devices", "usb5", "5-2.3.1")
	interfacePath := filepath.Join(devicePath, "5-2.3.1:1.0")
	ttyPath := filepath.Join(interfacePath, tty)
	classTtyPath := filepath.Join(dir, "class", "tty", tty)

	for _, p := range []string{ttyPath, classTtyPath} {
		if err := os.MkdirAll(p, 0755); err != nil {
			t.Fatalf("Failed to create %s: %v", p, err)
		}
	}

	deviceFiles := map[string]string{
		"idVendor":     "0403",
		"idProduct":    "6010",
		"serial":       "FT123456",
		"manufacturer": "FTDI",
		"product":      "FT2232C Dual USB-UART",
		"busnum":       "5",
		"devnum":       "7",
	}
	for filename, content := range deviceFiles {
		if err := os.WriteFile(filepath.Join(devicePath, filename), []byte(content+"\n"), 0644); err != nil {
			t.Fatalf("Failed to write %s: %v", filename, err)
		}
	}
	if err := os.WriteFile(filepath.Join(interfacePath, "bInterfaceNumber"), []byte("00\n"), 0644); err != nil {
		t.Fatalf("Failed to write interface number: %v", err)
	}

	target := ttyPath
	if !ttyLeaf {
		target = interfacePath
	}
	if err := os.Symlink(target, filepath.Join(classTtyPath, "device")); err != nil {
		t.Fatalf("Failed to create symlink: %v", err)
	}
}

func TestEnrichUSBInfo(t *testing.T) {
	for _, tc := range []struct {
		tty     string
		ttyLeaf bool
	}{
		{"ttyUSB0", true},
		{"ttyACM0", false},
	} {
		t.Run(tc.tty, func(t *testing.T) {
			tmpDir := t.TempDir()
			buildSysfs(t, tmpDir, tc.tty, tc.ttyLeaf)

			saved := sysfsRoot
			sysfsRoot = filepath.Join(tmpDir, "class", "tty")
			defer func() { sysfsRoot = saved }()

			info := &PortInfo{Name: tc.tty, Path: "/dev/" + tc.tty}
			enrichUSBInfo(info)

			tests := []struct {
				name     string
				got      string
				expected string
			}{
				{"VendorID", info.VendorID, "0403"},
				{"ProductID", info.ProductID, "6010"},
				{"SerialNumber", info.SerialNumber, "FT123456"},
				{"InterfaceNumber", info.InterfaceNumber, "00"},
				{"BusNumber", info.BusNumber, "5"},
				{"DeviceNumber", info.DeviceNumber, "7"},
				{"Manufacturer", info.Manufacturer, "FTDI"},
				{"Product", info.Product, "FT2232C Dual USB-UART"},
				{"Description", info.Description, "FT2232C Dual USB-UART"},
			}
			for _, tt := range tests {
				if tt.got != tt.expected {
					t.Errorf("%s = %q, expected %q", tt.name, tt.got, tt.expected)
				}
			}
			if !info.IsUSB() {
				t.Error("expected IsUSB")
			}
		})
	}
}

func TestEnrichUSBInfoGracefulFailure(t *testing.T) {
	saved := sysfsRoot
	sysfsRoot = t.TempDir()
	defer func() { sysfsRoot = saved }()

	info := &PortInfo{Name: "ttyUSB999", Path: "/dev/ttyUSB999"}
	enrichUSBInfo(info)

	if info.VendorID != "" || info.ProductID != "" || info.SerialNumber != "" {
		t.Errorf("USB fields should be empty, got %+v", info)
	}
}
