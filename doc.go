// Package quaddisplay controls a 4-digit seven-segment display module.
//
// The module chains four 8-bit shift registers, one per digit, behind a
// strobe (latch) input. A write shifts 32 bits in, most significant bit first,
// then pulses the strobe so all four digits change at once. The glyph
// encoding lives in the segment sub-package.
//
// # Hardware Connection
//
// The module can be driven by a hardware SPI port (Burst) or by any two GPIO
// lines (BitBang). The strobe is always a GPIO line:
//
//	Module Pin → System Pin
//	GND        → GND
//	V          → 3.3V or 5V
//	DI         → SPI MOSI, or any GPIO with BitBang
//	CLK        → SPI SCLK, or any GPIO with BitBang
//	CS/STR     → GPIO (any available pin)
//
// # Basic Usage
//
//	package main
//
//	import (
//		"periph.io/x/conn/v3/gpio/gpioreg"
//		"periph.io/x/conn/v3/spi/spireg"
//		"github.com/flavioheleno/quaddisplay"
//		"periph.io/x/host/v3"
//	)
//
//	func main() {
//		// Initialize periph.io
//		host.Init()
//
//		// Open SPI bus
//		spiBus, _ := spireg.Open("")
//
//		// Get strobe GPIO pin
//		str := gpioreg.ByName("GPIO25")
//
//		// Create device
//		dev, _ := quaddisplay.New(str, &quaddisplay.Opts{
//			Transport: quaddisplay.Burst{Port: spiBus},
//		})
//		defer dev.Halt()
//
//		// Show " 3.14"
//		dev.SetFloat(3.14159, 2, false)
//	}
//
// # Bit-banged Transport
//
// Any two GPIO lines can replace the SPI port:
//
//	dev, _ := quaddisplay.New(str, &quaddisplay.Opts{
//		Transport: quaddisplay.BitBang{
//			Data:  gpioreg.ByName("GPIO17"),
//			Clock: gpioreg.ByName("GPIO27"),
//		},
//	})
//
// The pulse widths are whatever the host's pin writes take. On hosts that
// toggle pins faster than the module's shift registers accept, set
// Opts.Settle.
//
// # Polarity
//
// Common-anode modules (the default) light a segment on a low output and
// common-cathode modules on a high output. The buffer given to SetSegments
// and read back by Segments always uses 1 for a lit segment; the driver
// inverts it on the wire when needed.
//
// # Values
//
//	dev.SetInt(-42, false, 0)      // " -42"
//	dev.SetTemperatureC(23, false) // "23°C"
//	dev.SetHumidity(45, false)     // "45°o"
//	dev.SetScore(9, 5, true)       // "09:05" with a blinking colon
//	dev.SetIPOctet(42)             // "_. 42"
//	dev.SetText("HI")              // "HI  "
//
// Values wider than the display lose their leftmost digits, like a fixed
// width display would show them; nothing is reported.
//
// # Raw Segments
//
// SetDigits, SetSegments and PushSegment bypass the encoders. PixelState
// reads back single bits of the last committed buffer.
package quaddisplay
