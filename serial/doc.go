// Package serial provides serial port access for PortBrain channels.
//
// On Linux ports are driven directly through termios (golang.org/x/sys/unix);
// other platforms use go.bug.st/serial behind the same Port interface.
//
// # Basic Usage
//
// Open a port with a settings string and hand it to a channel:
//
//	ch := serial.NewChannel(logger)
//	err := ch.Open(channel.Settings{
//	    TransportName:     "/dev/ttyUSB0",
//	    TransportSettings: "baud=115200,databits=8,parity=N,stopbits=1",
//	    ReadTerminator:    []byte("\r"),
//	    CmdTerminator:     []byte("\r"),
//	})
//
// Or use the port directly with functional options:
//
//	port, err := serial.Open("/dev/ttyUSB0",
//	    serial.WithBaudRate(115200),
//	    serial.WithReadTimeout(200*time.Millisecond),
//	)
//
// # Port Discovery
//
// ListPorts returns every candidate port. AvailablePorts additionally drops
// Bluetooth virtual ports and anything that cannot be opened:
//
//	ports, err := serial.AvailablePorts()
//	for _, path := range ports {
//	    info, _ := serial.GetPortInfo(path)
//	    fmt.Printf("%s: %s (VID=%s PID=%s)\n", info.Path, info.Description, info.VendorID, info.ProductID)
//	}
//
// # Error Handling
//
// Open failures are classified so callers can tell an absent device from a
// configuration problem:
//
//	if errors.Is(err, serial.ErrDeviceNotFound) {
//	    // nothing plugged in
//	}
//
// # USB Device Management (Linux)
//
// ResetUSBDevice and ResetUSBDeviceBySerial reset hung USB adapters through
// the usbreset utility (usbutils package); root permissions are required.
//
// # Default Configuration
//
//   - BaudRate: 9600
//   - DataBits: 8
//   - StopBits: 1
//   - Parity: None
//   - ReadTimeout: 200ms
//   - WriteMode: Buffered
package serial
