// Package rpiohost exposes Raspberry Pi GPIO and SPI through go-rpio as
// periph.io pins and ports.
//
// It is an alternative to periph.io/x/host for systems where go-rpio is
// already in use. Call Open before using any pin or port and Close when done.
package rpiohost

import (
	"errors"
	"fmt"
	"time"

	"github.com/stianeikeland/go-rpio/v4"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/pin"
	"periph.io/x/conn/v3/spi"
)

// ErrNotImplemented is returned for features go-rpio does not offer.
var ErrNotImplemented = errors.New("rpiohost: not implemented")

// Open maps the GPIO registers.
func Open() error {
	if err := rpio.Open(); err != nil {
		return fmt.Errorf("rpiohost: %w", err)
	}
	return nil
}

// Close unmaps the GPIO registers.
func Close() error {
	if err := rpio.Close(); err != nil {
		return fmt.Errorf("rpiohost: %w", err)
	}
	return nil
}

// Pin is a BCM numbered GPIO line. It implements gpio.PinIO.
type Pin struct {
	p    rpio.Pin
	fn   string
	pull gpio.Pull
}

// NewPin returns the GPIO line with the given BCM number.
func NewPin(bcm int) *Pin {
	return &Pin{p: rpio.Pin(bcm), pull: gpio.PullNoChange}
}

// String implements conn.Resource.
func (p *Pin) String() string {
	return p.Name()
}

// Halt implements conn.Resource.
func (p *Pin) Halt() error {
	return nil
}

// Name implements pin.Pin.
func (p *Pin) Name() string {
	return fmt.Sprintf("GPIO%d", int(p.p))
}

// Number implements pin.Pin.
func (p *Pin) Number() int {
	return int(p.p)
}

// Function implements pin.Pin.
func (p *Pin) Function() string {
	return p.fn
}

// In implements gpio.PinIn. Edge detection is not supported.
func (p *Pin) In(pull gpio.Pull, edge gpio.Edge) error {
	if edge != gpio.NoEdge {
		return ErrNotImplemented
	}
	p.p.Input()
	switch pull {
	case gpio.Float:
		p.p.PullOff()
	case gpio.PullDown:
		p.p.PullDown()
	case gpio.PullUp:
		p.p.PullUp()
	}
	if pull != gpio.PullNoChange {
		p.pull = pull
	}
	p.fn = string(gpio.IN)
	return nil
}

// Read implements gpio.PinIn.
func (p *Pin) Read() gpio.Level {
	return gpio.Level(p.p.Read() == rpio.High)
}

// WaitForEdge implements gpio.PinIn. It always reports a timeout.
func (p *Pin) WaitForEdge(timeout time.Duration) bool {
	return false
}

// Pull implements gpio.PinIn.
func (p *Pin) Pull() gpio.Pull {
	return p.pull
}

// DefaultPull implements gpio.PinIn.
func (p *Pin) DefaultPull() gpio.Pull {
	return gpio.PullNoChange
}

// Out implements gpio.PinOut.
func (p *Pin) Out(l gpio.Level) error {
	p.p.Output()
	p.p.Write(state(l))
	p.fn = string(gpio.OUT)
	return nil
}

// PWM implements gpio.PinOut.
func (p *Pin) PWM(duty gpio.Duty, f physic.Frequency) error {
	return ErrNotImplemented
}

func state(l gpio.Level) rpio.State {
	if l {
		return rpio.High
	}
	return rpio.Low
}

// Port is a hardware SPI controller. It implements spi.PortCloser.
type Port struct {
	dev   rpio.SpiDev
	limit physic.Frequency
	open  bool
}

// OpenSPI claims the pins of the given SPI controller.
func OpenSPI(dev rpio.SpiDev) (*Port, error) {
	if err := rpio.SpiBegin(dev); err != nil {
		return nil, fmt.Errorf("rpiohost: %w", err)
	}
	return &Port{dev: dev, open: true}, nil
}

func (p *Port) String() string {
	return fmt.Sprintf("rpio-spi%d", int(p.dev))
}

// Close implements spi.PortCloser.
func (p *Port) Close() error {
	if p.open {
		rpio.SpiEnd(p.dev)
		p.open = false
	}
	return nil
}

// LimitSpeed implements spi.PortCloser.
func (p *Port) LimitSpeed(f physic.Frequency) error {
	if f <= 0 {
		return errors.New("rpiohost: invalid speed")
	}
	p.limit = f
	return nil
}

// Connect implements spi.Port. Only 8 bit words are supported.
func (p *Port) Connect(f physic.Frequency, mode spi.Mode, bits int) (spi.Conn, error) {
	if !p.open {
		return nil, errors.New("rpiohost: port closed")
	}
	if bits != 8 {
		return nil, fmt.Errorf("rpiohost: unsupported word size %d", bits)
	}
	if p.limit != 0 && (f == 0 || p.limit < f) {
		f = p.limit
	}
	if f != 0 {
		rpio.SpiSpeed(int(f / physic.Hertz))
	}
	rpio.SpiMode(cpol(mode), cpha(mode))
	return &spiConn{port: p}, nil
}

func cpol(m spi.Mode) uint8 {
	if m&spi.Mode2 != 0 {
		return 1
	}
	return 0
}

func cpha(m spi.Mode) uint8 {
	if m&spi.Mode1 != 0 {
		return 1
	}
	return 0
}

type spiConn struct {
	port *Port
}

func (c *spiConn) String() string {
	return c.port.String()
}

func (c *spiConn) Duplex() conn.Duplex {
	return conn.Full
}

// Tx writes w; when r is set it also reads len(r) bytes back.
func (c *spiConn) Tx(w, r []byte) error {
	if len(r) == 0 {
		rpio.SpiTransmit(w...)
		return nil
	}
	if len(r) != len(w) {
		return errors.New("rpiohost: read and write buffers must be the same length")
	}
	copy(r, w)
	rpio.SpiExchange(r)
	return nil
}

func (c *spiConn) TxPackets(p []spi.Packet) error {
	return ErrNotImplemented
}

var (
	_ gpio.PinIO     = &Pin{}
	_ pin.Pin        = &Pin{}
	_ spi.PortCloser = &Port{}
	_ spi.Conn       = &spiConn{}
)
