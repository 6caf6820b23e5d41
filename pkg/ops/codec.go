package ops

import (
	"fmt"
	"math"

	"github.com/aretw0/biocompute/pkg/reagent"
	"github.com/mitchellh/mapstructure"
)

// Record is the JSON-compatible form of one operation.
type Record map[string]any

// Keys shared by every schema.
const (
	WellKey    = "well_idx"
	ReagentKey = "reagent"
)

// Schema pins the record key names expected by a job service deployment.
type Schema struct {
	Name      string
	KindKey   string
	VolumeKey string
}

var (
	// SchemaV1 is the original payload shape ("op", "volume").
	SchemaV1 = Schema{Name: "v1", KindKey: "op", VolumeKey: "volume"}
	// SchemaV2 is the current payload shape ("type", "volume_ul").
	SchemaV2 = Schema{Name: "v2", KindKey: "type", VolumeKey: "volume_ul"}
)

// DefaultSchema is used when a deployment does not pin one.
var DefaultSchema = SchemaV2

// SchemaByName resolves a configured schema name. Empty selects DefaultSchema.
func SchemaByName(name string) (Schema, error) {
	switch name {
	case "":
		return DefaultSchema, nil
	case SchemaV1.Name:
		return SchemaV1, nil
	case SchemaV2.Name:
		return SchemaV2, nil
	}
	return Schema{}, fmt.Errorf("unknown wire schema %q", name)
}

// Encode converts an operation into a record.
func (s Schema) Encode(op Op) Record {
	switch o := op.(type) {
	case Fill:
		return Record{
			s.KindKey:   string(KindFill),
			WellKey:     o.WellIdx,
			ReagentKey:  o.Reagent.Name(),
			s.VolumeKey: o.VolumeUL,
		}
	case Mix:
		return Record{s.KindKey: string(KindMix), WellKey: o.WellIdx}
	case Image:
		return Record{s.KindKey: string(KindImage), WellKey: o.WellIdx}
	}
	panic(fmt.Sprintf("ops: unhandled operation variant %T", op))
}

// wireOp is the canonical intermediate form a record is decoded into.
type wireOp struct {
	Kind    string   `mapstructure:"kind"`
	Well    *float64 `mapstructure:"well"`
	Reagent string   `mapstructure:"reagent"`
	Volume  *float64 `mapstructure:"volume"`
}

// Decode converts a record into an operation. well is the index implied by the
// record's position; a record carrying a different well_idx is rejected.
func (s Schema) Decode(rec Record, well int) (Op, error) {
	raw, ok := rec[s.KindKey]
	if !ok {
		return nil, malformed("", "missing %q key", s.KindKey)
	}
	kind, ok := raw.(string)
	if !ok {
		return nil, malformed(fmt.Sprint(raw), "kind is %T, want string", raw)
	}

	var w wireOp
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &w,
	})
	if err != nil {
		return nil, err
	}
	canonical := map[string]any{"kind": kind}
	if v, ok := rec[WellKey]; ok {
		canonical["well"] = v
	}
	if v, ok := rec[ReagentKey]; ok {
		canonical["reagent"] = v
	}
	if v, ok := rec[s.VolumeKey]; ok {
		canonical["volume"] = v
	}
	if err := dec.Decode(canonical); err != nil {
		return nil, malformed(kind, "%v", err)
	}

	if w.Well != nil {
		if *w.Well < 0 || math.Trunc(*w.Well) != *w.Well {
			return nil, malformed(kind, "well_idx %v is not a non-negative integer", *w.Well)
		}
		if int(*w.Well) != well {
			return nil, malformed(kind, "well_idx %d recorded under well %d", int(*w.Well), well)
		}
	}

	var op Op
	switch Kind(kind) {
	case KindFill:
		if w.Volume == nil {
			return nil, malformed(kind, "missing %q key", s.VolumeKey)
		}
		op = Fill{WellIdx: well, Reagent: reagent.Reagent(w.Reagent), VolumeUL: *w.Volume}
	case KindMix:
		op = Mix{WellIdx: well}
	case KindImage:
		op = Image{WellIdx: well}
	default:
		return nil, malformed(kind, "unrecognized operation kind")
	}
	if err := Validate(op); err != nil {
		if inv, ok := err.(*InvalidOperationError); ok {
			return nil, malformed(kind, "%s", inv.Reason)
		}
		return nil, err
	}
	return op, nil
}

func malformed(kind, format string, args ...any) *MalformedOperationError {
	return &MalformedOperationError{Well: -1, Position: -1, Kind: kind, Reason: fmt.Sprintf(format, args...)}
}
