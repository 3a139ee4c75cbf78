// Package colorutil provides RGB/HSV conversions using the OpenCV 8-bit conventions.
package colorutil

import (
	"image/color"
	"math"
)

// RGBToHSV converts RGB (0-255) to HSV (OpenCV convention: H 0-180, S 0-255, V 0-255).
func RGBToHSV(r, g, b float64) (h, s, v float64) {
	r /= 255.0
	g /= 255.0
	b /= 255.0

	maxC := math.Max(r, math.Max(g, b))
	minC := math.Min(r, math.Min(g, b))
	diff := maxC - minC

	v = maxC * 255.0

	if maxC == 0 {
		s = 0
	} else {
		s = (diff / maxC) * 255.0
	}

	if diff == 0 {
		h = 0
	} else if maxC == r {
		h = 60 * math.Mod((g-b)/diff, 6)
	} else if maxC == g {
		h = 60 * ((b-r)/diff + 2)
	} else {
		h = 60 * ((r-g)/diff + 4)
	}

	if h < 0 {
		h += 360
	}

	h = h / 2

	return h, s, v
}

// HSVToRGB is the inverse of RGBToHSV. hueMax is the top of the hue scale
// (180 for the default conversion, 256 for the full-range conversion).
func HSVToRGB(h, s, v, hueMax float64) color.NRGBA {
	deg := math.Mod(h*360/hueMax, 360)
	if deg < 0 {
		deg += 360
	}
	sf := s / 255
	vf := v / 255

	c := vf * sf
	x := c * (1 - math.Abs(math.Mod(deg/60, 2)-1))
	m := vf - c

	var r, g, b float64
	switch {
	case deg < 60:
		r, g, b = c, x, 0
	case deg < 120:
		r, g, b = x, c, 0
	case deg < 180:
		r, g, b = 0, c, x
	case deg < 240:
		r, g, b = 0, x, c
	case deg < 300:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}

	return color.NRGBA{
		R: uint8(math.Round((r + m) * 255)),
		G: uint8(math.Round((g + m) * 255)),
		B: uint8(math.Round((b + m) * 255)),
		A: 255,
	}
}
