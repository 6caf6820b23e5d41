package experiment

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/aretw0/biocompute/pkg/ops"
)

// Payload is the submission body: one record list per well.
type Payload struct {
	Experiments [][]ops.Record `json:"experiments"`
}

// ParsePayload reads either a Payload object or a bare array of experiments.
func ParsePayload(data []byte) ([][]ops.Record, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty experiments payload")
	}
	if trimmed[0] == '[' {
		var wire [][]ops.Record
		if err := json.Unmarshal(trimmed, &wire); err != nil {
			return nil, fmt.Errorf("failed to parse experiments: %w", err)
		}
		return wire, nil
	}
	var p Payload
	if err := json.Unmarshal(trimmed, &p); err != nil {
		return nil, fmt.Errorf("failed to parse experiments payload: %w", err)
	}
	if p.Experiments == nil {
		return nil, fmt.Errorf("payload has no \"experiments\" field")
	}
	return p.Experiments, nil
}
