package layout

import (
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// measureFace is the fixed bitmap face used for text measurement. Layout
// needs stable metrics independent of any rasterizer or platform font
// stack, so one bundled face serves every text node; declared font sizes
// scale its metrics linearly.
var measureFace font.Face = basicfont.Face7x13

// baseLineHeight is the natural line height of measureFace in pixels.
const baseLineHeight = 13

// MeasureText returns the size one line of text occupies at the given
// font size. Empty text still reserves the line height so an empty text
// node keeps its vertical slot.
func MeasureText(text string, fontSize float64) Size {
	if fontSize <= 0 {
		fontSize = baseLineHeight
	}
	scale := fontSize / baseLineHeight
	advance := font.MeasureString(measureFace, text)
	return Size{
		Width:  fixedToFloat(advance) * scale,
		Height: fontSize,
	}
}

// fixedToFloat converts a 26.6 fixed-point value to float64 pixels.
func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}
