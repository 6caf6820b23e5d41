// Package reagent names the liquids that can be dispensed into wells.
package reagent

// Reagent is a named liquid. Any non-empty name is valid; the built-ins below
// carry a fixed display color.
type Reagent string

const (
	RedDye    Reagent = "red_dye"
	GreenDye  Reagent = "green_dye"
	BlueDye   Reagent = "blue_dye"
	YellowDye Reagent = "yellow_dye"
	Water     Reagent = "water"
	PBS       Reagent = "pbs"     // buffer
	DMSO      Reagent = "dmso"    // solvent
	Media     Reagent = "media"   // culture media
	Serum     Reagent = "serum"   // serum supplement
	Trypsin   Reagent = "trypsin" // enzyme
)

// Builtin lists the reagents shipped with the client, in display order.
var Builtin = []Reagent{RedDye, GreenDye, BlueDye, YellowDye, Water, PBS, DMSO, Media, Serum, Trypsin}

// Name returns the wire name of the reagent.
func (r Reagent) Name() string { return string(r) }

func (r Reagent) String() string { return string(r) }
