// Package segment encodes values into seven-segment glyphs for a 4-digit display.
//
// A Code holds one digit position. Bits 7 to 1 drive segments g, f, e, d, c, b
// and a; bit 0 drives the decimal point. A set bit means the segment is lit.
package segment

import "strings"

// Code is the segment pattern for one digit position.
type Code uint8

// Building blocks.
const (
	Blank       Code = 0b00000000
	Dot         Code = 0b00000001
	Minus       Code = 0b10000000
	Underscore  Code = 0b00010000
	Degree      Code = 0b11000110
	UnderDegree Code = 0b10111000
)

// Digits.
const (
	Zero  Code = 0b01111110
	One   Code = 0b00001100
	Two   Code = 0b10110110
	Three Code = 0b10011110
	Four  Code = 0b11001100
	Five  Code = 0b11011010
	Six   Code = 0b11111010
	Seven Code = 0b00001110
	Eight Code = 0b11111110
	Nine  Code = 0b11011110
)

// Letters that a seven-segment digit can render legibly.
const (
	A  Code = 0b11101110
	La Code = 0b10111110
	B  Code = 0b11111000 // lowercase b
	C  Code = 0b01110010
	Lc Code = 0b10110000
	D  Code = 0b10111100 // lowercase d
	E  Code = 0b11110010
	F  Code = 0b11100010
	H  Code = 0b11101100
	Lh Code = 0b11101000
	I  Code = One
	J  Code = 0b00011100
	K  Code = H
	L  Code = 0b01110000
	M  Code = 0b00101010
	N  Code = 0b10101000 // lowercase n
	Lo Code = 0b10111000
	O  Code = Zero
	P  Code = 0b11100110
	R  Code = 0b10100000 // lowercase r
	S  Code = Five
	T  Code = 0b11110000 // lowercase t
	Lu Code = 0b00111000
	U  Code = 0b01111100
	Y  Code = 0b11011100
)

// Numerals maps a decimal digit to its glyph.
var Numerals = [10]Code{Zero, One, Two, Three, Four, Five, Six, Seven, Eight, Nine}

// glyphs is ordered so that reverse lookups prefer digits over look-alike
// letters.
var glyphs = []struct {
	r rune
	c Code
}{
	{'0', Zero}, {'1', One}, {'2', Two}, {'3', Three}, {'4', Four},
	{'5', Five}, {'6', Six}, {'7', Seven}, {'8', Eight}, {'9', Nine},
	{' ', Blank}, {'-', Minus}, {'_', Underscore}, {'°', Degree},
	{'A', A}, {'a', La}, {'b', B}, {'B', B}, {'C', C}, {'c', Lc},
	{'d', D}, {'D', D}, {'E', E}, {'e', E}, {'F', F}, {'f', F},
	{'H', H}, {'h', Lh}, {'I', I}, {'i', I}, {'J', J}, {'j', J},
	{'K', K}, {'k', K}, {'L', L}, {'l', L}, {'M', M}, {'m', M},
	{'n', N}, {'N', N}, {'o', Lo}, {'O', O}, {'P', P}, {'p', P},
	{'r', R}, {'R', R}, {'S', S}, {'s', S}, {'t', T}, {'T', T},
	{'u', Lu}, {'U', U}, {'Y', Y}, {'y', Y},
}

var (
	byRune = make(map[rune]Code, len(glyphs))
	byCode = make(map[Code]rune, len(glyphs))
)

func init() {
	for _, g := range glyphs {
		if _, ok := byRune[g.r]; !ok {
			byRune[g.r] = g.c
		}
		if _, ok := byCode[g.c]; !ok {
			byCode[g.c] = g.r
		}
	}
}

// Glyph returns the code rendering r, if any.
func Glyph(r rune) (Code, bool) {
	c, ok := byRune[r]
	return c, ok
}

// String renders the code back to text. The decimal point is appended as '.'
// and unknown patterns render as '?'.
func (c Code) String() string {
	r, ok := byCode[c&^Dot]
	if !ok {
		r = '?'
	}
	if c&Dot != 0 {
		return string(r) + "."
	}
	return string(r)
}

// Digits holds the four positions of the display, leftmost first.
type Digits [4]Code

// Pack packs the digits into a display buffer, digit 1 in the most
// significant byte.
func (d Digits) Pack() uint32 {
	return uint32(d[0])<<24 | uint32(d[1])<<16 | uint32(d[2])<<8 | uint32(d[3])
}

// Unpack splits a display buffer into its four digits.
func Unpack(buf uint32) Digits {
	return Digits{Code(buf >> 24), Code(buf >> 16), Code(buf >> 8), Code(buf)}
}

// String renders the digits as text, e.g. " 3.14".
func (d Digits) String() string {
	var b strings.Builder
	for _, c := range d {
		b.WriteString(c.String())
	}
	return b.String()
}
