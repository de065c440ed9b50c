package segment

import "math"

// Clock is a free-running millisecond counter. It may wrap.
type Clock interface {
	Millis() uint32
}

// ClockFunc adapts a plain function to Clock.
type ClockFunc func() uint32

// Millis implements Clock.
func (f ClockFunc) Millis() uint32 {
	return f()
}

// blinkHalfPeriod is how long, in milliseconds, the colon stays in each state
// while blinking.
const blinkHalfPeriod = 500

// Int renders v right-aligned.
//
// Zero renders as a single "0". A negative value gets a minus sign right
// before its first digit; when the digits use all four positions the sign
// replaces the leftmost one. Values wider than the display lose their leading
// digits. Unused positions hold "0" when padZeros is set and are blank
// otherwise.
//
// Bits 3 to 0 of dots light the decimal point of digits 1 to 4.
func Int(v int, padZeros bool, dots uint8) Digits {
	f := fill(padZeros)
	d := Digits{f, f, f, f}
	putSigned(d[:], v)
	for i := range d {
		if dots&(0b1000>>i) != 0 {
			d[i] |= Dot
		}
	}
	return d
}

// Float renders v with precision decimals.
//
// v is scaled by 10^precision and truncated toward zero, then rendered by Int
// with the decimal point on digit 4-precision. The same left truncation
// applies when the scaled value does not fit; no point is shown once
// precision reaches 4.
func Float(v float64, precision int, padZeros bool) Digits {
	if precision < 0 {
		precision = 0
	}
	// Once v is zero, infinite or NaN more scaling changes nothing.
	for p := precision; p > 0 && v != 0 && !math.IsInf(v, 0) && !math.IsNaN(v); p-- {
		v *= 10
	}
	dots := uint(1) << uint(precision)
	return Int(truncate(v), padZeros, uint8(dots&0x0F))
}

// TemperatureC renders v in the two leftmost positions followed by "°C".
func TemperatureC(v int, padZeros bool) Digits {
	f := fill(padZeros)
	d := Digits{f, f, Degree, C}
	putSigned(d[:2], v)
	return d
}

// Humidity renders v in the two leftmost positions followed by a percent-like
// pair of circles.
func Humidity(v int, padZeros bool) Digits {
	f := fill(padZeros)
	d := Digits{f, f, Degree, UnderDegree}
	putSigned(d[:2], v)
	return d
}

// Score renders a clock-style "HH:MM", both fields zero-padded. The colon is
// the decimal point of digit 2.
//
// The hour keeps its two low digits. A minute wider than two digits runs on
// into the hour positions, overwriting them from the right.
//
// When blink is set the colon toggles every 500ms of clk. A nil clk keeps it
// lit.
func Score(hour, minute int, blink bool, clk Clock) Digits {
	d := Digits{Zero, Zero, Zero, Zero}
	putDigits(d[:2], magnitude(hour))
	putDigits(d[:], magnitude(minute))
	if !blink || clk == nil || (clk.Millis()/blinkHalfPeriod)&1 == 0 {
		d[1] |= Dot
	}
	return d
}

// IPOctet renders the last octet of an address, "_. 42" for 42: a marker on
// digit 1 and the octet right-aligned without leading zeros.
func IPOctet(v uint8) Digits {
	d := Digits{Underscore | Dot, Blank, Blank, Blank}
	if v == 0 {
		d[3] = Zero
		return d
	}
	putDigits(d[1:], uint64(v))
	return d
}

// Text renders up to four characters, left-aligned. A '.' lights the decimal
// point of the preceding character; runes without a glyph render blank.
func Text(s string) Digits {
	var d Digits
	n := 0
	for _, r := range s {
		if r == '.' && n > 0 && d[n-1]&Dot == 0 {
			d[n-1] |= Dot
			continue
		}
		if n == len(d) {
			break
		}
		if r == '.' {
			d[n] = Dot
		} else {
			d[n], _ = Glyph(r)
		}
		n++
	}
	return d
}

func fill(padZeros bool) Code {
	if padZeros {
		return Zero
	}
	return Blank
}

// putDigits writes u right-aligned into field, stopping when u runs out of
// digits or the field is full. It returns the index left of the last digit
// written, which is -1 when the field is full.
func putDigits(field []Code, u uint64) int {
	i := len(field) - 1
	for ; i >= 0 && u != 0; i-- {
		field[i] = Numerals[u%10]
		u /= 10
	}
	return i
}

func putSigned(field []Code, v int) {
	if v == 0 {
		field[len(field)-1] = Zero
		return
	}
	i := putDigits(field, magnitude(v))
	if v < 0 {
		field[max(i, 0)] = Minus
	}
}

func magnitude(v int) uint64 {
	if v < 0 {
		return uint64(-(v + 1)) + 1
	}
	return uint64(v)
}

// truncate converts v to an int, clamping to the int32 range.
func truncate(v float64) int {
	switch {
	case math.IsNaN(v):
		return 0
	case v >= math.MaxInt32:
		return math.MaxInt32
	case v <= math.MinInt32:
		return math.MinInt32
	}
	return int(v)
}
