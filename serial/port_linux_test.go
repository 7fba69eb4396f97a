//go:build linux

package serial

import (
	"errors"
	"testing"

	"golang.org/x/sys/unix"
)

func TestBaudRateConversion(t *testing.T) {
	tests := []struct {
		input    int
		hasError bool
	}{
		{115200, false},
		{9600, false},
		{57600, false},
		{4000000, false},
		{123456, true},
	}

	for _, test := range tests {
		result, err := getBaudRate(test.input)
		if test.hasError {
			if !errors.Is(err, ErrInvalidBaudRate) {
				t.Errorf("Expected ErrInvalidBaudRate for %d, got %v", test.input, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("Unexpected error for baud rate %d: %v", test.input, err)
		}
		if result == 0 {
			t.Errorf("Got zero result for valid baud rate %d", test.input)
		}
	}
}

func TestStandardBaudRatesAreSupported(t *testing.T) {
	for rate := range standardBaudRates {
		if _, err := getBaudRate(rate); err != nil {
			t.Errorf("standard rate %d not mapped: %v", rate, err)
		}
	}
}

func TestOpenNonExistentDevice(t *testing.T) {
	_, err := Open("/dev/nonexistent")
	if err == nil {
		t.Fatal("Expected error when opening non-existent device")
	}
	if !errors.Is(err, ErrDeviceNotFound) {
		t.Errorf("Expected ErrDeviceNotFound, got %v", err)
	}
}

func TestOpenRejectsInvalidOptions(t *testing.T) {
	_, err := Open("/dev/nonexistent", WithDataBits(12))
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig, got %v", err)
	}
}

func TestClosedPort(t *testing.T) {
	p := &port{fd: -1, closed: true}

	if _, err := p.Read(make([]byte, 1)); !errors.Is(err, ErrPortClosed) {
		t.Errorf("Read: expected ErrPortClosed, got %v", err)
	}
	if _, err := p.Write([]byte("x")); !errors.Is(err, ErrPortClosed) {
		t.Errorf("Write: expected ErrPortClosed, got %v", err)
	}
	if err := p.Close(); !errors.Is(err, ErrPortClosed) {
		t.Errorf("Close: expected ErrPortClosed, got %v", err)
	}
}

func TestLineFlags(t *testing.T) {
	config := DefaultConfig()
	config.BaudRate = 115200
	config.DataBits = 7
	config.StopBits = 2
	config.Parity = ParityEven

	cflag, err := lineFlags(config)
	if err != nil {
		t.Fatalf("lineFlags: %v", err)
	}

	want := []struct {
		name string
		bits uint32
	}{
		{"CS7", unix.CS7},
		{"CSTOPB", unix.CSTOPB},
		{"PARENB", unix.PARENB},
		{"CREAD", unix.CREAD},
		{"CLOCAL", unix.CLOCAL},
	}
	for _, w := range want {
		if cflag&w.bits != w.bits {
			t.Errorf("%s not set in %#x", w.name, cflag)
		}
	}
	if cflag&unix.PARODD != 0 {
		t.Errorf("PARODD set for even parity")
	}
	if cflag&unix.CBAUD != unix.B115200 {
		t.Errorf("baud bits = %#x, want B115200", cflag&unix.CBAUD)
	}

	config.BaudRate = 12345
	if _, err := lineFlags(config); !errors.Is(err, ErrInvalidBaudRate) {
		t.Errorf("Expected ErrInvalidBaudRate, got %v", err)
	}
}
