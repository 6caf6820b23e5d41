package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/biocompute/pkg/experiment"
	"github.com/aretw0/biocompute/pkg/ops"
	"github.com/aretw0/biocompute/pkg/protocol"
)

// Input is a loaded FILE argument.
type Input struct {
	Name        string
	Experiments []experiment.Experiment
	// Protocol is set when the input was a YAML protocol.
	Protocol *protocol.Protocol
}

// LoadInput reads a YAML protocol (.yaml, .yml) or a JSON experiments payload
// (.json) in the given wire schema.
func LoadInput(ctx context.Context, path string, schema ops.Schema) (*Input, error) {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		file, err := protocol.LoadFile(path)
		if err != nil {
			return nil, err
		}
		p, err := file.Capture(ctx)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		if p.Name != "" {
			name = p.Name
		}
		return &Input{Name: name, Experiments: p.Experiments(), Protocol: p}, nil
	case ".json":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read experiments: %w", err)
		}
		wire, err := experiment.ParsePayload(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		exps, err := experiment.Decode(wire, schema)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return &Input{Name: name, Experiments: exps}, nil
	}
	return nil, fmt.Errorf("%s: unsupported file type, want .yaml, .yml or .json", path)
}

// OperationCount is the number of operations in the input.
func (in *Input) OperationCount() int {
	n := 0
	for _, e := range in.Experiments {
		n += len(e)
	}
	return n
}
