// Package polydaq talks to a PolyDAQ data-acquisition board over a serial
// link and keeps that link usable while the board is unplugged, reset or
// re-enumerated.
//
// The board answers single-character requests: '0' through '9' and 'a'
// through 'f' ask for one reading of analog channel 0 through 15, and the
// reply is a human readable line terminated by a line-feed.
//
// # Link
//
// A Link owns the serial port and is either Closed or Open. Every
// operation on it returns immediately:
//
//	link := polydaq.NewLink("/dev/ttyACM0")
//	if err := link.Open(); err != nil {
//	    // still Closed, try again later
//	}
//	if err := link.TryWrite([]byte{'5'}); err != nil {
//	    // the link dropped back to Closed
//	}
//	data, err := link.TryRead() // possibly empty
//
// A read or write failure closes the port exactly once and leaves the Link
// Closed, ready for the next Open attempt.
//
// # Exchanges
//
// An Exchange collects the reply to one request until its line-feed:
//
//	ex := polydaq.NewExchange(5, '5')
//	done, rest := ex.Feed(data)
//	if done {
//	    fmt.Println(ex.Response())
//	}
//
// Query wraps the same steps for one-shot use with a context deadline.
//
// # Commands
//
// Dispatch maps an operator keystroke to an Action: a channel read, help,
// quit or an unknown key.
//
// # Port Discovery
//
// ListPorts scans /dev for serial device names, ListCandidatePorts keeps the
// ones that can actually be opened, and GetPortInfo adds USB metadata:
//
//	for _, path := range polydaq.ListCandidatePorts() {
//	    info, _ := polydaq.GetPortInfo(path)
//	    fmt.Printf("%s: %s (VID=%s PID=%s)\n",
//	        info.Path, info.Description, info.VendorID, info.ProductID)
//	}
//
// # Platform Support
//
// The port implementation uses Linux termios ioctls. USB metadata comes from
// sysfs and USB resets need the usbreset utility from usbutils.
//
// # Default Configuration
//
//   - BaudRate: 115200
//   - DataBits: 8
//   - StopBits: 1
//   - Parity: None
//   - WriteTimeout: 500ms
//   - WriteMode: Buffered
package polydaq
