// Package segment provides the glyph encoding for a 4-digit seven-segment display.
//
// Each position is one byte. The most significant bit drives segment g and the
// least significant bit drives the decimal point:
//
//	            a
//	         -----
//	     f /     / b
//	      /  g  /
//	      -----
//	  e /     / c
//	   /  d  /
//	   -----    • dp
//
//	Bit:   7 6 5 4 3 2 1 0
//	       g f e d c b a dp
//
// Encoding "3.142":
//
//	3.  10011111  0x9F
//	1   00001100  0x0C
//	4   11001100  0xCC
//	2   10110110  0xB6
//
//	segment.Int(3142, false, 0b1000).Pack() == 0x9F0CCCB6
//
// This package provides:
//
// - Code: one position, with named glyphs for digits, letters and symbols
// - Digits: the four positions of a display and their packed 32-bit form
// - Int, Float, TemperatureC, Humidity, Score, IPOctet and Text encoders
//
// Encoders never fail. Values that do not fit lose their leftmost digits,
// the way a fixed-width display would show them.
package segment
