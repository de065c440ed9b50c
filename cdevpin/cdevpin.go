// Package cdevpin exposes Linux GPIO character device lines as periph.io pins.
//
// Lines are requested through go-gpiocdev, so any gpiochip the kernel knows
// about can drive the display, not only the ones periph.io/x/host detects.
package cdevpin

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/warthog618/go-gpiocdev"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
)

// ErrNotImplemented is returned for features this package does not offer.
var ErrNotImplemented = errors.New("cdevpin: not implemented")

// line is the part of *gpiocdev.Line used by Pin.
type line interface {
	SetValue(value int) error
	Value() (int, error)
	Reconfigure(options ...gpiocdev.LineConfigOption) error
	Close() error
}

// Pin is a requested GPIO line. It implements gpio.PinIO.
type Pin struct {
	mu     sync.Mutex
	l      line
	chip   string
	offset int
	out    bool
	pull   gpio.Pull
	closed bool
}

// Request claims line offset of chip (e.g. "gpiochip0") as an output driven
// low.
func Request(chip string, offset int) (*Pin, error) {
	l, err := gpiocdev.RequestLine(chip, offset, gpiocdev.AsOutput(0))
	if err != nil {
		return nil, fmt.Errorf("cdevpin: request %s:%d: %w", chip, offset, err)
	}
	return &Pin{l: l, chip: chip, offset: offset, out: true, pull: gpio.PullNoChange}, nil
}

// String implements conn.Resource.
func (p *Pin) String() string {
	return fmt.Sprintf("%s(%d)", p.Name(), p.offset)
}

// Halt implements conn.Resource. It releases the line.
func (p *Pin) Halt() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	return p.l.Close()
}

// Name implements pin.Pin.
func (p *Pin) Name() string {
	return fmt.Sprintf("%s:%d", p.chip, p.offset)
}

// Number implements pin.Pin.
func (p *Pin) Number() int {
	return p.offset
}

// Function implements pin.Pin.
func (p *Pin) Function() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.out {
		return string(gpio.OUT)
	}
	return string(gpio.IN)
}

// In implements gpio.PinIn. Edge detection is not supported.
func (p *Pin) In(pull gpio.Pull, edge gpio.Edge) error {
	if edge != gpio.NoEdge {
		return ErrNotImplemented
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	opts := []gpiocdev.LineConfigOption{gpiocdev.AsInput}
	if b := bias(pull); b != nil {
		opts = append(opts, b)
	}
	if err := p.l.Reconfigure(opts...); err != nil {
		return fmt.Errorf("cdevpin: %w", err)
	}
	p.out = false
	if pull != gpio.PullNoChange {
		p.pull = pull
	}
	return nil
}

// Read implements gpio.PinIn. Read errors report Low.
func (p *Pin) Read() gpio.Level {
	p.mu.Lock()
	defer p.mu.Unlock()
	v, err := p.l.Value()
	return gpio.Level(err == nil && v != 0)
}

// WaitForEdge implements gpio.PinIn. It always reports a timeout.
func (p *Pin) WaitForEdge(timeout time.Duration) bool {
	return false
}

// Pull implements gpio.PinIn.
func (p *Pin) Pull() gpio.Pull {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pull
}

// DefaultPull implements gpio.PinIn.
func (p *Pin) DefaultPull() gpio.Pull {
	return gpio.PullNoChange
}

// Out implements gpio.PinOut. It switches an input line back to output.
func (p *Pin) Out(l gpio.Level) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	v := 0
	if l {
		v = 1
	}
	if !p.out {
		if err := p.l.Reconfigure(gpiocdev.AsOutput(v)); err != nil {
			return fmt.Errorf("cdevpin: %w", err)
		}
		p.out = true
		return nil
	}
	if err := p.l.SetValue(v); err != nil {
		return fmt.Errorf("cdevpin: %w", err)
	}
	return nil
}

// PWM implements gpio.PinOut.
func (p *Pin) PWM(duty gpio.Duty, f physic.Frequency) error {
	return ErrNotImplemented
}

func bias(pull gpio.Pull) gpiocdev.LineConfigOption {
	switch pull {
	case gpio.Float:
		return gpiocdev.WithBiasDisabled
	case gpio.PullDown:
		return gpiocdev.WithPullDown
	case gpio.PullUp:
		return gpiocdev.WithPullUp
	}
	return nil
}

var _ gpio.PinIO = &Pin{}
