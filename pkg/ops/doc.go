/*
Package ops defines the atomic well operations recorded while a protocol runs.

An operation is one of three closed variants: Fill, Mix and Image. Every
consumer (wire encoding, slide synthesis) switches over the concrete type and
treats anything else as malformed, so adding a variant means visiting each of
those switches.

Operations travel to the job service as flat records. The key names of those
records are owned by the service contract and are selected through a Schema
rather than guessed:

	rec := ops.SchemaV2.Encode(ops.Mix{WellIdx: 3})
	// map[string]any{"type": "mix", "well_idx": 3}
*/
package ops
