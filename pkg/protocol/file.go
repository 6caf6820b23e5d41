package protocol

import (
	"context"
	"fmt"
	"os"

	"github.com/aretw0/biocompute/pkg/reagent"
	"gopkg.in/yaml.v3"
)

// File is a declarative protocol read from YAML:
//
//	name: dilution
//	groups:
//	  - count: 4
//	    steps:
//	      - fill: {reagent: water, volume: 100}
//	      - gradient: {reagent: red_dye, from: 10, to: 40}
//	      - mix
//	      - image
type File struct {
	Name   string  `yaml:"name"`
	Groups []Group `yaml:"groups"`
}

// Group allocates Count wells and applies each step to all of them.
type Group struct {
	Count int    `yaml:"count"`
	Steps []Step `yaml:"steps"`
}

// Step is exactly one of the fields below.
type Step struct {
	Fill     *FillStep     `yaml:"fill,omitempty"`
	Gradient *GradientStep `yaml:"gradient,omitempty"`
	Mix      bool          `yaml:"mix,omitempty"`
	Image    bool          `yaml:"image,omitempty"`
}

// FillStep dispenses the same volume into every well of the group.
type FillStep struct {
	Reagent string  `yaml:"reagent"`
	Volume  float64 `yaml:"volume"`
}

// GradientStep dispenses a volume interpolated linearly from From (first well)
// to To (last well).
type GradientStep struct {
	Reagent string  `yaml:"reagent"`
	From    float64 `yaml:"from"`
	To      float64 `yaml:"to"`
}

// UnmarshalYAML accepts the bare scalars "mix" and "image" as well as
// single-key mappings.
func (s *Step) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		switch node.Value {
		case "mix":
			s.Mix = true
		case "image":
			s.Image = true
		default:
			return fmt.Errorf("line %d: unknown step %q", node.Line, node.Value)
		}
		return nil
	}
	if node.Kind != yaml.MappingNode || len(node.Content) != 2 {
		return fmt.Errorf("line %d: a step must have exactly one kind", node.Line)
	}
	key, val := node.Content[0].Value, node.Content[1]
	switch key {
	case "fill":
		s.Fill = &FillStep{}
		return val.Decode(s.Fill)
	case "gradient":
		s.Gradient = &GradientStep{}
		return val.Decode(s.Gradient)
	case "mix":
		s.Mix = true
	case "image":
		s.Image = true
	default:
		return fmt.Errorf("line %d: unknown step %q", node.Line, key)
	}
	return nil
}

// Parse decodes a protocol document.
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse protocol: %w", err)
	}
	for i, g := range f.Groups {
		if g.Count < 0 {
			return nil, fmt.Errorf("group %d: count must be non-negative", i)
		}
	}
	return &f, nil
}

// LoadFile reads and parses a protocol document from path.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read protocol: %w", err)
	}
	return Parse(data)
}

// Func turns the document into protocol code. Steps run step by step across
// the whole group, so each step of a group lands in the same batch.
func (f *File) Func() Func {
	return func(ctx context.Context) error {
		for gi, g := range f.Groups {
			wells, err := Wells(ctx, g.Count)
			if err != nil {
				return fmt.Errorf("group %d: %w", gi, err)
			}
			for _, step := range g.Steps {
				for i, w := range wells {
					step.apply(w, i, len(wells))
				}
			}
		}
		return nil
	}
}

// Capture runs the document through a capture session.
func (f *File) Capture(ctx context.Context) (*Protocol, error) {
	p, err := Capture(ctx, f.Func())
	if err != nil {
		return nil, err
	}
	p.Name = f.Name
	return p, nil
}

func (s Step) apply(w *Well, i, n int) {
	switch {
	case s.Fill != nil:
		w.Fill(s.Fill.Volume, reagent.Reagent(s.Fill.Reagent))
	case s.Gradient != nil:
		v := s.Gradient.From
		if n > 1 {
			v += (s.Gradient.To - s.Gradient.From) * float64(i) / float64(n-1)
		}
		w.Fill(v, reagent.Reagent(s.Gradient.Reagent))
	case s.Mix:
		w.Mix()
	case s.Image:
		w.Image()
	}
}
