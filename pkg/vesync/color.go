package vesync

import "math"

// HSV holds a color as hue (0-360), saturation (0-100) and value (0-100).
type HSV struct {
	Hue        float64 `json:"hue"`
	Saturation float64 `json:"saturation"`
	Value      float64 `json:"value"`
}

// RGB holds a color as red, green and blue components, each 0-255.
type RGB struct {
	Red   float64 `json:"red"`
	Green float64 `json:"green"`
	Blue  float64 `json:"blue"`
}

// Color carries a color in both spaces. Construct it through NewColorHSV or
// NewColorRGB, which clamp out-of-range inputs and derive the other space.
type Color struct {
	HSV HSV
	RGB RGB
}

// NewColorHSV builds a Color from hue (0-360), saturation and value (0-100).
func NewColorHSV(hue, saturation, value float64) Color {
	h := clamp(hue, 0, 360)
	s := clamp(saturation, 0, 100)
	v := clamp(value, 0, 100)
	return Color{
		HSV: HSV{Hue: round2(h), Saturation: round2(s), Value: round2(v)},
		RGB: HSVToRGB(h, s, v),
	}
}

// NewColorRGB builds a Color from red, green and blue components (0-255).
func NewColorRGB(red, green, blue float64) Color {
	r := clamp(red, 0, 255)
	g := clamp(green, 0, 255)
	b := clamp(blue, 0, 255)
	return Color{
		RGB: RGB{Red: round2(r), Green: round2(g), Blue: round2(b)},
		HSV: RGBToHSV(r, g, b),
	}
}

// HSVToRGB converts hue (0-360), saturation and value (0-100) to RGB with
// components rounded to whole numbers.
func HSVToRGB(hue, saturation, value float64) RGB {
	h := clamp(hue, 0, 360) / 360
	s := clamp(saturation, 0, 100) / 100
	v := clamp(value, 0, 100) / 100

	var r, g, b float64
	if s == 0 {
		r, g, b = v, v, v
	} else {
		i := int(h * 6)
		f := h*6 - float64(i)
		p := v * (1 - s)
		q := v * (1 - s*f)
		t := v * (1 - s*(1-f))
		switch i % 6 {
		case 0:
			r, g, b = v, t, p
		case 1:
			r, g, b = q, v, p
		case 2:
			r, g, b = p, v, t
		case 3:
			r, g, b = p, q, v
		case 4:
			r, g, b = t, p, v
		case 5:
			r, g, b = v, p, q
		}
	}

	return RGB{
		Red:   math.Round(r * 255),
		Green: math.Round(g * 255),
		Blue:  math.Round(b * 255),
	}
}

// RGBToHSV converts red, green and blue (0-255) to HSV with hue and
// saturation rounded to two decimals and value to a whole number.
func RGBToHSV(red, green, blue float64) HSV {
	r := clamp(red, 0, 255) / 255
	g := clamp(green, 0, 255) / 255
	b := clamp(blue, 0, 255) / 255

	maxc := math.Max(r, math.Max(g, b))
	minc := math.Min(r, math.Min(g, b))
	v := maxc

	if maxc == minc {
		return HSV{Hue: 0, Saturation: 0, Value: math.Round(v * 100)}
	}

	s := (maxc - minc) / maxc
	rc := (maxc - r) / (maxc - minc)
	gc := (maxc - g) / (maxc - minc)
	bc := (maxc - b) / (maxc - minc)

	var h float64
	switch maxc {
	case r:
		h = bc - gc
	case g:
		h = 2 + rc - bc
	default:
		h = 4 + gc - rc
	}
	h = math.Mod(h/6, 1)
	if h < 0 {
		h++
	}

	return HSV{
		Hue:        round2(h * 360),
		Saturation: round2(s * 100),
		Value:      math.Round(v * 100),
	}
}

// clamp bounds value to [min, max]. NaN collapses to max, mirroring the
// vendor app's treatment of unparsable color components.
func clamp(value, min, max float64) float64 {
	if math.IsNaN(value) {
		return max
	}
	return math.Max(min, math.Min(max, value))
}

func round2(value float64) float64 {
	return math.Round(value*100) / 100
}
