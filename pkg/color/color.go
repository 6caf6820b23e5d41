// Package color assigns display colors to reagents and blends well contents.
//
// Known reagents use a fixed table. Any other name gets a hue derived from the
// 64-bit xxHash of its bytes, so a name maps to the same color in every run
// and in every implementation that uses the same hash.
package color

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/lucasb-eyer/go-colorful"
)

// Empty is the color of a well with no (or zero volume) contents.
const Empty = "#f0f0f0"

// Lightness and saturation of hashed hues.
const (
	hashedSaturation = 0.7
	hashedLightness  = 0.6
)

// Palette maps reagent names to "#rrggbb" colors.
type Palette map[string]string

// Default is the built-in reagent table.
var Default = Palette{
	"red_dye":    "#e74c3c",
	"green_dye":  "#2ecc71",
	"blue_dye":   "#3498db",
	"yellow_dye": "#f1c40f",
	"water":      "#d4e6f1",
	"pbs":        "#c8dce6",
	"dmso":       "#dcd0ff",
	"media":      "#ffe0b2",
	"serum":      "#fff3cd",
	"trypsin":    "#e8f5e9",
}

// Assign returns the color for name using the Default palette.
func Assign(name string) string {
	return Default.Assign(name)
}

// Assign returns the palette color for name, falling back to a hashed hue.
func (p Palette) Assign(name string) string {
	if c, ok := p[name]; ok {
		return c
	}
	return Hashed(name)
}

// Hashed derives a color for name from its xxHash.
func Hashed(name string) string {
	hue := float64(xxhash.Sum64String(name) % 360)
	return colorful.Hsl(hue, hashedSaturation, hashedLightness).Clamped().Hex()
}

// Portion is one dispensed volume of a reagent.
type Portion struct {
	Reagent  string
	VolumeUL float64
}

// Blend averages the channels of each portion's color weighted by its share
// of the total volume, truncating each channel. It returns Empty when there
// is nothing in the well.
func Blend(portions []Portion) string {
	return Default.Blend(portions)
}

// Blend is Blend using the receiver palette.
func (p Palette) Blend(portions []Portion) string {
	var total float64
	for _, f := range portions {
		total += f.VolumeUL
	}
	if len(portions) == 0 || total == 0 {
		return Empty
	}

	var r, g, b float64
	for _, f := range portions {
		cr, cg, cb := channels(p.Assign(f.Reagent))
		w := f.VolumeUL / total
		r += float64(cr) * w
		g += float64(cg) * w
		b += float64(cb) * w
	}
	return fmt.Sprintf("#%02x%02x%02x", clamp(r), clamp(g), clamp(b))
}

func channels(hex string) (uint8, uint8, uint8) {
	c, err := colorful.Hex(hex)
	if err != nil {
		c, _ = colorful.Hex(Empty)
	}
	return c.RGB255()
}

func clamp(v float64) int {
	switch {
	case v < 0:
		return 0
	case v > 255:
		return 255
	}
	return int(v)
}
