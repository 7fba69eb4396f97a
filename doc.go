// Package portbrain talks to PortBrain I/O controllers: small devices that
// answer short ASCII commands such as VER, ADC<n> and PRTRD<n> over a serial
// line.
//
// A Controller is layered on an already opened channel.Channel and turns the
// command set into typed calls:
//
//	ch := serial.NewChannel(logger)
//	err := ch.Open(channel.Settings{
//		TransportName:     "/dev/ttyUSB0",
//		TransportSettings: portbrain.DefaultPortSettings,
//		ReadTerminator:    portbrain.Terminator,
//		CmdTerminator:     portbrain.Terminator,
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer ch.Close()
//
//	ctrl := portbrain.NewController(ch)
//	if !ctrl.CheckForDevice() {
//		log.Fatal("no PortBrain on /dev/ttyUSB0")
//	}
//	value, err := ctrl.ReadAnalogInput(3)
//
// Discover scans the available serial ports and returns one Controller per
// responding device, each bound to its own open channel. Close them with
// CloseAll.
package portbrain
