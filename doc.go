// Package groundlink links a ground station to a vehicle over a serial radio
// carrying newline-delimited JSON telemetry and commands.
//
// The radio is half-duplex and noisy: frames arrive split across reads, wrapped
// in garbage bytes or not at all. The package reassembles frames, decodes the
// ones it understands, debounces link health from heartbeats and serializes
// outbound commands on a single transmit lock.
//
// # Basic Usage
//
// Start a session on an auto-detected port with default settings
// (9600 baud, 200ms read timeout, 500ms write timeout):
//
//	cfg := groundlink.DefaultConfig()
//	ctl := groundlink.NewController(cfg, groundlink.DefaultWatchdogConfig())
//	ctl.Register(groundlink.ObserverFuncs{
//	    Battery: func(percent, voltage float64) error {
//	        fmt.Printf("battery %.0f%%\n", percent)
//	        return nil
//	    },
//	    LinkState: func(up bool) error {
//	        fmt.Println("link up:", up)
//	        return nil
//	    },
//	})
//
//	if err := ctl.Start(); err != nil { // connect + ON
//	    log.Fatal(err)
//	}
//	if err := ctl.StartReceiving(); err != nil {
//	    log.Fatal(err)
//	}
//	defer ctl.Stop() // link-down, join, OFF, close
//
// # Configuration Options
//
//	cfg, err := groundlink.NewConfig(
//	    groundlink.WithPort("/dev/ttyUSB0"),
//	    groundlink.WithBaudRate(57600),
//	    groundlink.WithDriver(groundlink.DriverNative),
//	)
//
// Three drivers are available: go.bug.st/serial (default), tarm/serial and a
// Linux-only termios driver.
//
// # Missions
//
//	n, err := ctl.Transmitter().UploadMission([]map[string]any{
//	    {"x": 1.0, "y": 2.0},          // z defaults to 3.5
//	    {"x": 4.0, "y": 5.0, "z": 10.0},
//	})
//
// # Wire Protocol
//
// Inbound lines are parsed from the first '{' to the last '}'. Recognized
// keys: hb, x/y/z, lat/lon/alt, battery (object or number), percent,
// voltage/volt, speed/vel. Battery percentages <= 1.0 are fractions.
//
// Outbound lines are ON, OFF, {"cmd":"land"}, {"cmd":"offboard"} and
// {"waypoints":[{"x":..,"y":..,"z":..}]}.
//
// # Error Handling
//
// Nothing in the package panics or exits. Connection and I/O failures are
// logged and returned as *LinkError; use errors.Is with the sentinel errors
// and IsRetryable to decide whether to try again:
//
//	if err := link.Connect(); groundlink.IsRetryable(err) {
//	    // port may appear later
//	}
package groundlink
