package ops

import (
	"fmt"
	"math"

	"github.com/aretw0/biocompute/pkg/reagent"
)

// Kind is the discriminator of an operation.
type Kind string

const (
	KindFill  Kind = "fill"
	KindMix   Kind = "mix"
	KindImage Kind = "image"
)

// Op is the closed set of well operations. Only this package can add variants.
type Op interface {
	Kind() Kind
	Well() int
	isOp()
}

// Fill dispenses VolumeUL microliters of Reagent into a well.
type Fill struct {
	WellIdx  int
	Reagent  reagent.Reagent
	VolumeUL float64
}

// Mix agitates the contents of a well.
type Mix struct {
	WellIdx int
}

// Image captures a picture of a well.
type Image struct {
	WellIdx int
}

func (Fill) Kind() Kind  { return KindFill }
func (Mix) Kind() Kind   { return KindMix }
func (Image) Kind() Kind { return KindImage }

func (o Fill) Well() int  { return o.WellIdx }
func (o Mix) Well() int   { return o.WellIdx }
func (o Image) Well() int { return o.WellIdx }

func (Fill) isOp()  {}
func (Mix) isOp()   {}
func (Image) isOp() {}

func (o Fill) String() string {
	return fmt.Sprintf("fill(well=%d, %s, %gµL)", o.WellIdx, o.Reagent, o.VolumeUL)
}
func (o Mix) String() string   { return fmt.Sprintf("mix(well=%d)", o.WellIdx) }
func (o Image) String() string { return fmt.Sprintf("image(well=%d)", o.WellIdx) }

// Validate checks the constraints every operation must satisfy.
func Validate(op Op) error {
	if op == nil {
		return &InvalidOperationError{Reason: "nil operation"}
	}
	if op.Well() < 0 {
		return &InvalidOperationError{Op: op, Reason: "negative well index"}
	}
	switch o := op.(type) {
	case Fill:
		if o.Reagent == "" {
			return &InvalidOperationError{Op: op, Reason: "empty reagent name"}
		}
		if math.IsNaN(o.VolumeUL) || math.IsInf(o.VolumeUL, 0) {
			return &InvalidOperationError{Op: op, Reason: "volume must be finite"}
		}
		if o.VolumeUL < 0 {
			return &InvalidOperationError{Op: op, Reason: "negative volume"}
		}
	case Mix, Image:
	default:
		return &InvalidOperationError{Op: op, Reason: "unknown operation variant"}
	}
	return nil
}
