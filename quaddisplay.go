// Package quaddisplay controls a 4-digit seven-segment display module built
// from shift registers behind a strobe (latch) line.
//
// See the examples for how to use this package.
package quaddisplay

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/flavioheleno/quaddisplay/segment"
	"github.com/jonboulle/clockwork"
	"periph.io/x/conn/v3/gpio"
)

const packageName = "quaddisplay"

// ErrHalted is returned by every operation after Halt.
var ErrHalted = errors.New("quaddisplay: halted")

// Polarity is how the module's LEDs are wired.
type Polarity uint8

const (
	// CommonAnode modules light a segment when its output is low. The buffer
	// is inverted before it is sent.
	CommonAnode Polarity = iota
	// CommonCathode modules light a segment when its output is high.
	CommonCathode
)

func (p Polarity) String() string {
	switch p {
	case CommonAnode:
		return "common-anode"
	case CommonCathode:
		return "common-cathode"
	}
	return fmt.Sprintf("Polarity(%d)", uint8(p))
}

// Opts is the configuration for the display module.
type Opts struct {
	// Transport is Burst or BitBang (required).
	Transport Transport
	// Polarity of the LEDs (default: CommonAnode).
	Polarity Polarity
	// Clock drives the blinking colon of SetScore (default: real clock).
	Clock clockwork.Clock
	// Settle is held after each edge of the clock and strobe pulses. Zero
	// relies on the latency of the pin writes, which is enough on most hosts.
	Settle time.Duration
}

// Dev is the device handle for the display module.
type Dev struct {
	mu sync.Mutex

	// Communication
	strobe gpio.PinIO
	s      shifter
	settle time.Duration
	name   string

	uptime uptime

	// Last committed display state
	buf uint32

	halted bool
}

// New claims the strobe line and the transport and returns a ready display.
//
// The display content is left untouched until the first write.
func New(strobe gpio.PinIO, opts *Opts) (*Dev, error) {
	if strobe == nil {
		return nil, errors.New("quaddisplay: strobe pin is required")
	}
	if opts == nil || opts.Transport == nil {
		return nil, errors.New("quaddisplay: transport is required")
	}
	if opts.Polarity > CommonCathode {
		return nil, fmt.Errorf("quaddisplay: invalid polarity %d", uint8(opts.Polarity))
	}

	s, err := opts.Transport.shifter(opts.Polarity == CommonAnode, opts.Settle)
	if err != nil {
		return nil, err
	}

	clk := opts.Clock
	if clk == nil {
		clk = clockwork.NewRealClock()
	}

	d := &Dev{
		strobe: strobe,
		s:      s,
		settle: opts.Settle,
		name:   fmt.Sprintf("%s, %s", transportName(opts.Transport), opts.Polarity),
		uptime: uptime{clk: clk, start: clk.Now()},
	}
	// The strobe goes first so a failure leaves the transport unclaimed.
	if err := d.strobe.Out(gpio.Low); err != nil {
		return nil, wrap(err)
	}
	if err := d.s.claim(); err != nil {
		return nil, err
	}
	return d, nil
}

// SetDigits shows four segment codes, leftmost first.
func (d *Dev) SetDigits(d1, d2, d3, d4 segment.Code) error {
	return d.show(segment.Digits{d1, d2, d3, d4})
}

// SetSegments shows a raw display buffer. Bits 31 to 24 drive digit 1.
func (d *Dev) SetSegments(buf uint32) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.commit(buf)
}

// Clear blanks all four digits.
func (d *Dev) Clear() error {
	return d.show(segment.Digits{segment.Blank, segment.Blank, segment.Blank, segment.Blank})
}

// SetInt shows an integer. See segment.Int.
func (d *Dev) SetInt(v int, padZeros bool, dots uint8) error {
	return d.show(segment.Int(v, padZeros, dots))
}

// SetFloat shows a number with precision decimals. See segment.Float.
func (d *Dev) SetFloat(v float64, precision int, padZeros bool) error {
	return d.show(segment.Float(v, precision, padZeros))
}

// SetTemperatureC shows a two digit temperature followed by "°C".
func (d *Dev) SetTemperatureC(v int, padZeros bool) error {
	return d.show(segment.TemperatureC(v, padZeros))
}

// SetHumidity shows a two digit relative humidity followed by a percent sign.
func (d *Dev) SetHumidity(v int, padZeros bool) error {
	return d.show(segment.Humidity(v, padZeros))
}

// SetScore shows "HH:MM". With blink set, the colon state follows the
// device clock at the time of the call, so callers refresh periodically to
// animate it.
func (d *Dev) SetScore(hour, minute int, blink bool) error {
	return d.show(segment.Score(hour, minute, blink, &d.uptime))
}

// SetIPOctet shows the last octet of an IP address as "_. 42".
func (d *Dev) SetIPOctet(v uint8) error {
	return d.show(segment.IPOctet(v))
}

// SetText shows up to four characters. See segment.Text.
func (d *Dev) SetText(s string) error {
	return d.show(segment.Text(s))
}

// PushSegment shifts the display buffer left by one bit, sets the lowest bit
// to on and shows the result.
func (d *Dev) PushSegment(on bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	buf := d.buf << 1
	if on {
		buf |= 1
	}
	return d.commit(buf)
}

// PixelState reports whether bit i (0-31) of the display buffer is set.
func (d *Dev) PixelState(i int) bool {
	if i < 0 || i > 31 {
		return false
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.buf&(1<<uint(i)) != 0
}

// Segments returns the display buffer.
func (d *Dev) Segments() uint32 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.buf
}

// Digits returns the display buffer split into digits.
func (d *Dev) Digits() segment.Digits {
	return segment.Unpack(d.Segments())
}

// Halt drives all lines low and releases them as floating inputs.
// The device cannot be used afterwards. A failed Halt may be retried.
func (d *Dev) Halt() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.halted {
		return nil
	}

	lines := append([]gpio.PinIO{d.strobe}, d.s.lines()...)
	for _, l := range lines {
		if err := l.Out(gpio.Low); err != nil {
			return wrap(err)
		}
	}
	for _, l := range lines {
		if err := l.In(gpio.Float, gpio.NoEdge); err != nil {
			return wrap(err)
		}
	}
	d.halted = true
	return nil
}

// String returns a string representation of the device.
func (d *Dev) String() string {
	return fmt.Sprintf("quaddisplay.Dev{%s}", d.name)
}

func (d *Dev) show(g segment.Digits) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.commit(g.Pack())
}

// commit shifts buf out and latches it. d.mu must be held.
func (d *Dev) commit(buf uint32) error {
	if d.halted {
		return ErrHalted
	}
	if err := d.strobe.Out(gpio.Low); err != nil {
		return wrap(err)
	}
	if err := d.s.shift(buf); err != nil {
		return err
	}
	if err := pulse(d.strobe, d.settle); err != nil {
		return err
	}
	d.buf = buf
	return nil
}

// uptime counts milliseconds since the device was created.
type uptime struct {
	clk   clockwork.Clock
	start time.Time
}

// Millis implements segment.Clock. It wraps after about 49 days.
func (u *uptime) Millis() uint32 {
	return uint32(u.clk.Since(u.start).Milliseconds())
}

func transportName(t Transport) string {
	switch t.(type) {
	case Burst, *Burst:
		return "burst"
	case BitBang, *BitBang:
		return "bit-bang"
	}
	return "unknown"
}

func wrap(err error) error {
	if err == nil || strings.HasPrefix(err.Error(), packageName) {
		return err
	}
	return fmt.Errorf("%s: %w", packageName, err)
}
