package plot

import "fmt"

// rgb is one palette control point
type rgb struct {
	r, g, b uint8
}

// Anchor colors of the supported ramps, sampled at 0, 0.25, 0.5, 0.75, 1.
// These are the published control points of the colormaps of the same
// names.
var paletteAnchors = map[string][]rgb{
	"viridis": {
		{0x44, 0x01, 0x54},
		{0x3b, 0x52, 0x8b},
		{0x21, 0x91, 0x8c},
		{0x5e, 0xc9, 0x62},
		{0xfd, 0xe7, 0x25},
	},
	"plasma": {
		{0x0d, 0x08, 0x87},
		{0x7e, 0x03, 0xa8},
		{0xcc, 0x47, 0x78},
		{0xf8, 0x95, 0x40},
		{0xf0, 0xf9, 0x21},
	},
	"magma": {
		{0x00, 0x00, 0x04},
		{0x51, 0x12, 0x7c},
		{0xb7, 0x37, 0x79},
		{0xfc, 0x89, 0x61},
		{0xfc, 0xfd, 0xbf},
	},
}

const defaultPalette = "viridis"

// Colors returns n fill colors evenly sampled along the named ramp as hex
// strings. Unknown palette names fall back to viridis.
func Colors(name string, n int) []string {
	if n <= 0 {
		return nil
	}
	anchors, ok := paletteAnchors[name]
	if !ok {
		anchors = paletteAnchors[defaultPalette]
	}

	colors := make([]string, n)
	for i := range colors {
		t := 0.5
		if n > 1 {
			t = float64(i) / float64(n-1)
		}
		colors[i] = sampleRamp(anchors, t)
	}
	return colors
}

// sampleRamp interpolates linearly between the two anchors surrounding t
func sampleRamp(anchors []rgb, t float64) string {
	if t <= 0 {
		return hex(anchors[0])
	}
	if t >= 1 {
		return hex(anchors[len(anchors)-1])
	}

	segments := float64(len(anchors) - 1)
	pos := t * segments
	idx := int(pos)
	frac := pos - float64(idx)

	a, b := anchors[idx], anchors[idx+1]
	return hex(rgb{
		r: lerpByte(a.r, b.r, frac),
		g: lerpByte(a.g, b.g, frac),
		b: lerpByte(a.b, b.b, frac),
	})
}

func lerpByte(a, b uint8, t float64) uint8 {
	return uint8(float64(a) + (float64(b)-float64(a))*t + 0.5)
}

func hex(c rgb) string {
	return fmt.Sprintf("#%02x%02x%02x", c.r, c.g, c.b)
}
