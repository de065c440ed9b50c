package quaddisplay

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spitest"
)

// trace collects pin writes in call order, e.g. "CLK=High" or "STR=In".
type trace struct {
	ops []string
}

func (t *trace) reset() {
	t.ops = nil
}

type tracePin struct {
	*gpiotest.Pin
	t *trace
}

func newTracePin(t *trace, name string) *tracePin {
	return &tracePin{Pin: &gpiotest.Pin{N: name}, t: t}
}

func (p *tracePin) Out(l gpio.Level) error {
	p.t.ops = append(p.t.ops, p.N+"="+l.String())
	return p.Pin.Out(l)
}

func (p *tracePin) In(pull gpio.Pull, edge gpio.Edge) error {
	p.t.ops = append(p.t.ops, p.N+"=In")
	return p.Pin.In(pull, edge)
}

// shifted replays a bit-banged trace and returns the word seen by the shift
// registers along with the number of clock pulses.
func shifted(ops []string) (word uint32, clocks int) {
	data := false
	for _, op := range ops {
		switch op {
		case "DI=High":
			data = true
		case "DI=Low":
			data = false
		case "CLK=High":
			word <<= 1
			if data {
				word |= 1
			}
			clocks++
		}
	}
	return word, clocks
}

// fakePort is a spi.Port whose connection exposes its MOSI and CLK lines.
type fakePort struct {
	mosi, clk gpio.PinIO

	freq physic.Frequency
	mode spi.Mode
	bits int
	ops  [][]byte
}

func (p *fakePort) String() string {
	return "fake"
}

func (p *fakePort) Connect(f physic.Frequency, mode spi.Mode, bits int) (spi.Conn, error) {
	p.freq, p.mode, p.bits = f, mode, bits
	return &fakeConn{p: p}, nil
}

type fakeConn struct {
	p *fakePort
}

func (c *fakeConn) String() string { return "fake" }
func (c *fakeConn) Duplex() conn.Duplex { return conn.Half }
func (c *fakeConn) TxPackets(p []spi.Packet) error { return errors.New("fake: not implemented") }
func (c *fakeConn) CLK() gpio.PinOut { return c.p.clk }
func (c *fakeConn) MOSI() gpio.PinOut { return c.p.mosi }
func (c *fakeConn) MISO() gpio.PinIn { return gpio.INVALID }
func (c *fakeConn) CS() gpio.PinOut { return gpio.INVALID }
func (c *fakeConn) Tx(w, r []byte) error {
	c.p.ops = append(c.p.ops, append([]byte(nil), w...))
	return nil
}

func TestBurstShift(t *testing.T) {
	tests := []struct {
		name     string
		polarity Polarity
		buf      uint32
		want     []byte
	}{
		{"cathode", CommonCathode, 0x9F0CCCB6, []byte{0x9F, 0x0C, 0xCC, 0xB6}},
		{"anode inverts", CommonAnode, 0x9F0CCCB6, []byte{0x60, 0xF3, 0x33, 0x49}},
		{"anode blank", CommonAnode, 0, []byte{0xFF, 0xFF, 0xFF, 0xFF}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &spitest.Record{}
			str := &gpiotest.Pin{N: "STR"}
			dev, err := New(str, &Opts{Transport: Burst{Port: rec}, Polarity: tt.polarity})
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}

			if err := dev.SetSegments(tt.buf); err != nil {
				t.Fatalf("SetSegments() error = %v", err)
			}
			if len(rec.Ops) != 1 {
				t.Fatalf("got %d SPI transfers, want 1", len(rec.Ops))
			}
			if !bytes.Equal(rec.Ops[0].W, tt.want) {
				t.Errorf("SPI wrote % X, want % X", rec.Ops[0].W, tt.want)
			}
			if str.Read() != gpio.Low {
				t.Error("strobe should idle low after a write")
			}
		})
	}
}

func TestBurstStrobe(t *testing.T) {
	tr := &trace{}
	dev, err := New(newTracePin(tr, "STR"), &Opts{Transport: Burst{Port: &spitest.Record{}}})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if want := []string{"STR=Low"}; strings.Join(tr.ops, " ") != strings.Join(want, " ") {
		t.Errorf("claim = %v, want %v", tr.ops, want)
	}

	tr.reset()
	if err := dev.Clear(); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	want := "STR=Low STR=High STR=Low"
	if got := strings.Join(tr.ops, " "); got != want {
		t.Errorf("write = %q, want %q", got, want)
	}
}

func TestBurstConnect(t *testing.T) {
	tests := []struct {
		name string
		freq physic.Frequency
		want physic.Frequency
	}{
		{"default", 0, 4 * physic.MegaHertz},
		{"custom", 500 * physic.KiloHertz, 500 * physic.KiloHertz},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &fakePort{}
			if _, err := New(&gpiotest.Pin{N: "STR"}, &Opts{Transport: Burst{Port: p, Freq: tt.freq}}); err != nil {
				t.Fatalf("New() error = %v", err)
			}
			if p.freq != tt.want || p.mode != spi.Mode0 || p.bits != 8 {
				t.Errorf("Connect(%s, %s, %d), want (%s, %s, 8)", p.freq, p.mode, p.bits, tt.want, spi.Mode0)
			}
		})
	}
}

func TestBurstConnectOnce(t *testing.T) {
	rec := &spitest.Record{}
	if _, err := New(&gpiotest.Pin{N: "STR"}, &Opts{Transport: Burst{Port: rec}}); err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if !rec.Initialized {
		t.Error("New() should connect to the SPI port")
	}
	// spitest.Record refuses a second Connect.
	if _, err := New(&gpiotest.Pin{N: "STR"}, &Opts{Transport: Burst{Port: rec}}); err == nil {
		t.Error("second New() on the same port should fail")
	}
}

func TestBitBangShift(t *testing.T) {
	tests := []struct {
		name     string
		polarity Polarity
		buf      uint32
		want     uint32
	}{
		{"cathode", CommonCathode, 0x9F0CCCB6, 0x9F0CCCB6},
		{"anode inverts", CommonAnode, 0x9F0CCCB6, 0x60F33349},
		{"msb first", CommonCathode, 0x80000001, 0x80000001},
		{"anode blank", CommonAnode, 0, 0xFFFFFFFF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev, tr := newBitBang(t, tt.polarity)
			tr.reset()
			if err := dev.SetSegments(tt.buf); err != nil {
				t.Fatalf("SetSegments() error = %v", err)
			}
			word, clocks := shifted(tr.ops)
			if clocks != 32 {
				t.Errorf("got %d clock pulses, want 32", clocks)
			}
			if word != tt.want {
				t.Errorf("shifted 0x%08X, want 0x%08X", word, tt.want)
			}
		})
	}
}

func TestBitBangSequence(t *testing.T) {
	dev, tr := newBitBang(t, CommonCathode)
	if want := "STR=Low DI=Low CLK=Low"; strings.Join(tr.ops, " ") != want {
		t.Errorf("claim = %q, want %q", strings.Join(tr.ops, " "), want)
	}

	tr.reset()
	if err := dev.SetSegments(0x00000001); err != nil {
		t.Fatalf("SetSegments() error = %v", err)
	}
	ops := tr.ops
	if len(ops) != 2+32*3+2 {
		t.Fatalf("got %d pin writes, want %d", len(ops), 2+32*3+2)
	}
	if got := strings.Join(ops[:5], " "); got != "STR=Low CLK=Low DI=Low CLK=High CLK=Low" {
		t.Errorf("write starts with %q", got)
	}
	if got := strings.Join(ops[len(ops)-5:], " "); got != "DI=High CLK=High CLK=Low STR=High STR=Low" {
		t.Errorf("write ends with %q", got)
	}
}

func TestCommitRepeatable(t *testing.T) {
	dev, tr := newBitBang(t, CommonAnode)
	tr.reset()
	if err := dev.SetSegments(0xDEADBEEF); err != nil {
		t.Fatalf("SetSegments() error = %v", err)
	}
	first := strings.Join(tr.ops, " ")
	tr.reset()
	if err := dev.SetSegments(0xDEADBEEF); err != nil {
		t.Fatalf("SetSegments() error = %v", err)
	}
	if second := strings.Join(tr.ops, " "); second != first {
		t.Errorf("second write differs:\n%s\n%s", first, second)
	}
}

func TestHaltBitBang(t *testing.T) {
	dev, tr := newBitBang(t, CommonAnode)
	tr.reset()
	if err := dev.Halt(); err != nil {
		t.Fatalf("Halt() error = %v", err)
	}
	want := "STR=Low DI=Low CLK=Low STR=In DI=In CLK=In"
	if got := strings.Join(tr.ops, " "); got != want {
		t.Errorf("Halt() = %q, want %q", got, want)
	}

	tr.reset()
	if err := dev.Halt(); err != nil {
		t.Errorf("second Halt() error = %v", err)
	}
	if len(tr.ops) != 0 {
		t.Errorf("second Halt() touched pins: %v", tr.ops)
	}
}

func TestHaltBurst(t *testing.T) {
	tests := []struct {
		name string
		port spi.Port
		want string
	}{
		{"port without pins", &spitest.Record{}, "STR=Low STR=In"},
		{"port with pins", nil, "STR=Low MOSI=Low SCLK=Low STR=In MOSI=In SCLK=In"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := &trace{}
			port := tt.port
			if port == nil {
				port = &fakePort{mosi: newTracePin(tr, "MOSI"), clk: newTracePin(tr, "SCLK")}
			}
			dev, err := New(newTracePin(tr, "STR"), &Opts{Transport: Burst{Port: port}})
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			tr.reset()
			if err := dev.Halt(); err != nil {
				t.Fatalf("Halt() error = %v", err)
			}
			if got := strings.Join(tr.ops, " "); got != tt.want {
				t.Errorf("Halt() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTransportValidation(t *testing.T) {
	pin := &gpiotest.Pin{N: "P"}
	tests := []struct {
		name   string
		strobe gpio.PinIO
		opts   *Opts
	}{
		{"nil strobe", nil, &Opts{Transport: BitBang{Data: pin, Clock: pin}}},
		{"nil options", pin, nil},
		{"no transport", pin, &Opts{}},
		{"burst without port", pin, &Opts{Transport: Burst{}}},
		{"bit-bang without data", pin, &Opts{Transport: BitBang{Clock: pin}}},
		{"bit-bang without clock", pin, &Opts{Transport: BitBang{Data: pin}}},
		{"invalid polarity", pin, &Opts{Transport: BitBang{Data: pin, Clock: pin}, Polarity: 7}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev, err := New(tt.strobe, tt.opts)
			if err == nil {
				t.Fatalf("New() = %v, want error", dev)
			}
			if !strings.HasPrefix(err.Error(), "quaddisplay: ") {
				t.Errorf("error %q lacks the package prefix", err)
			}
		})
	}
}

func newBitBang(t *testing.T, polarity Polarity) (*Dev, *trace) {
	t.Helper()
	tr := &trace{}
	dev, err := New(newTracePin(tr, "STR"), &Opts{
		Transport: BitBang{Data: newTracePin(tr, "DI"), Clock: newTracePin(tr, "CLK")},
		Polarity:  polarity,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return dev, tr
}
