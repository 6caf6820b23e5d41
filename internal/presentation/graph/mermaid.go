package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/biocompute/pkg/slides"
)

// Overlay marks progress through a deck. Current is a slide index; steps
// before it are drawn as visited. A negative Current draws no overlay.
type Overlay struct {
	Current int
}

// GenerateMermaid produces a Mermaid flowchart of the steps of deck.
// It applies semantic styling:
// - Imaging step: [[Subroutine]]
// - Mixing-only step: ([Stadium])
// - Default: [Rectangle]
// Reagents of the legend are drawn as colored nodes in their own subgraph.
func GenerateMermaid(deck *slides.Deck, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for i, s := range deck.Slides {
		opener, closer := "[", "]"
		switch {
		case strings.Contains(s.Title, "Image "):
			opener, closer = "[[", "]]"
		case strings.HasPrefix(s.Title, "Mix "):
			opener, closer = "([", "])"
		}
		fmt.Fprintf(&sb, "    %s%s\"%d. %s\"%s\n", stepID(i), opener, i+1, escape(s.Title), closer)
		if i > 0 {
			fmt.Fprintf(&sb, "    %s --> %s\n", stepID(i-1), stepID(i))
		}
	}

	if legend := deck.LegendEntries(); len(legend) > 0 {
		sb.WriteString("\n    subgraph Reagents\n")
		for i, e := range legend {
			fmt.Fprintf(&sb, "        %s[(\"%s\")]\n", reagentID(i, e.Reagent), escape(e.Reagent))
		}
		sb.WriteString("    end\n")
		for i, e := range legend {
			// Mermaid needs black text on light reagent colors.
			fmt.Fprintf(&sb, "    style %s fill:%s,stroke:#333,color:#000\n", reagentID(i, e.Reagent), e.Color)
		}
	}

	if overlay != nil && overlay.Current >= 0 && overlay.Current < len(deck.Slides) {
		sb.WriteString("\n    %% Overlay Styles\n")
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")
		for i := 0; i < overlay.Current; i++ {
			fmt.Fprintf(&sb, "    class %s visited;\n", stepID(i))
		}
		fmt.Fprintf(&sb, "    class %s current;\n", stepID(overlay.Current))
	}

	return sb.String()
}

func stepID(i int) string { return fmt.Sprintf("step%d", i+1) }

// reagentID prefixes the legend position, as sanitizing alone maps
// "a-b" and "a b" to the same ID.
func reagentID(i int, name string) string {
	return fmt.Sprintf("r%d_%s", i+1, sanitizeMermaidID(name))
}

func escape(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	var b strings.Builder
	for _, r := range id {
		if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '_' {
			b.WriteRune(r)
			continue
		}
		b.WriteByte('_')
	}
	return b.String()
}
