package quaddisplay

import (
	"encoding/binary"
	"errors"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

// Transport selects how the display buffer is shifted into the module.
//
// It is implemented by Burst and BitBang.
type Transport interface {
	shifter(invert bool, settle time.Duration) (shifter, error)
}

// Burst shifts the buffer out through a hardware SPI port, one byte at a time.
//
// The module's data and clock inputs are wired to the port's MOSI and SCLK
// lines.
type Burst struct {
	Port spi.Port
	// Freq is the maximum SPI clock (default: 4MHz).
	Freq physic.Frequency
}

// BitBang shifts the buffer out by toggling two GPIO lines, one bit at a time.
type BitBang struct {
	Data  gpio.PinIO
	Clock gpio.PinIO
}

// shifter moves a 32-bit buffer into the module's shift registers. Latching
// is done by the caller.
type shifter interface {
	claim() error
	shift(buf uint32) error
	// lines returns the data and clock lines to release on Halt, if known.
	lines() []gpio.PinIO
}

func (t Burst) shifter(invert bool, _ time.Duration) (shifter, error) {
	if t.Port == nil {
		return nil, errors.New("quaddisplay: burst transport requires a SPI port")
	}
	f := t.Freq
	if f == 0 {
		f = 4 * physic.MegaHertz
	}
	return &burstShifter{port: t.Port, freq: f, invert: invert}, nil
}

func (t BitBang) shifter(invert bool, settle time.Duration) (shifter, error) {
	if t.Data == nil || t.Clock == nil {
		return nil, errors.New("quaddisplay: bit-bang transport requires data and clock pins")
	}
	return &bitBangShifter{data: t.Data, clk: t.Clock, invert: invert, settle: settle}, nil
}

type burstShifter struct {
	port   spi.Port
	freq   physic.Frequency
	invert bool

	c    spi.Conn
	pins []gpio.PinIO
}

func (s *burstShifter) claim() error {
	c, err := s.port.Connect(s.freq, spi.Mode0, 8)
	if err != nil {
		return wrap(err)
	}
	s.c = c
	if p, ok := c.(spi.Pins); ok {
		for _, l := range []gpio.PinOut{p.MOSI(), p.CLK()} {
			if pin, ok := l.(gpio.PinIO); ok && pin != gpio.INVALID {
				s.pins = append(s.pins, pin)
			}
		}
	}
	return nil
}

func (s *burstShifter) shift(buf uint32) error {
	if s.invert {
		buf = ^buf
	}
	var w [4]byte
	binary.BigEndian.PutUint32(w[:], buf)
	return wrap(s.c.Tx(w[:], nil))
}

func (s *burstShifter) lines() []gpio.PinIO {
	return s.pins
}

type bitBangShifter struct {
	data   gpio.PinIO
	clk    gpio.PinIO
	invert bool
	settle time.Duration
}

func (s *bitBangShifter) claim() error {
	if err := s.data.Out(gpio.Low); err != nil {
		return wrap(err)
	}
	return wrap(s.clk.Out(gpio.Low))
}

func (s *bitBangShifter) shift(buf uint32) error {
	if err := s.clk.Out(gpio.Low); err != nil {
		return wrap(err)
	}
	for mask := uint32(1) << 31; mask != 0; mask >>= 1 {
		lit := buf&mask != 0
		if err := s.data.Out(gpio.Level(lit != s.invert)); err != nil {
			return wrap(err)
		}
		if err := pulse(s.clk, s.settle); err != nil {
			return err
		}
	}
	return nil
}

func (s *bitBangShifter) lines() []gpio.PinIO {
	return []gpio.PinIO{s.data, s.clk}
}

// pulse drives p high then low, holding each level for settle.
func pulse(p gpio.PinOut, settle time.Duration) error {
	if err := p.Out(gpio.High); err != nil {
		return wrap(err)
	}
	if settle > 0 {
		time.Sleep(settle)
	}
	if err := p.Out(gpio.Low); err != nil {
		return wrap(err)
	}
	if settle > 0 {
		time.Sleep(settle)
	}
	return nil
}
