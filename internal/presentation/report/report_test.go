package report_test

import (
	"strings"
	"testing"

	"github.com/aretw0/biocompute/internal/presentation/report"
	"github.com/aretw0/biocompute/pkg/experiment"
	"github.com/aretw0/biocompute/pkg/ops"
	"github.com/aretw0/biocompute/pkg/reagent"
	"github.com/aretw0/biocompute/pkg/slides"
	"github.com/charmbracelet/glamour"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func deck(t *testing.T) *slides.Deck {
	t.Helper()
	d, err := slides.New().Build([]experiment.Experiment{
		{ops.Fill{WellIdx: 0, Reagent: reagent.Water, VolumeUL: 100}, ops.Mix{WellIdx: 0}},
		{ops.Fill{WellIdx: 1, Reagent: reagent.RedDye, VolumeUL: 12.5}},
	})
	require.NoError(t, err)
	return d
}

func TestMarkdown(t *testing.T) {
	md := report.Markdown(deck(t), "Dilution")

	assert.True(t, strings.HasPrefix(md, "# Dilution\n"))
	assert.Contains(t, md, "## Step 1 of 2\n\nFill A1 with water (100 µL); Fill A2 with red_dye (12.5 µL)")
	assert.Contains(t, md, "## Step 2 of 2\n\nMix A1")
	assert.Contains(t, md, "| A1 | water 100 | 100 | yes | `#d4e6f1` |")
	assert.Contains(t, md, "| A2 | red_dye 12.5 | 12.5 |  | `#e74c3c` |")
	assert.Contains(t, md, "| red_dye | `#e74c3c` |")

	a1 := strings.Index(md, "| A1 |")
	a2 := strings.Index(md, "| A2 |")
	assert.Less(t, a1, a2, "wells are listed in plate order")
}

func TestMarkdown_Empty(t *testing.T) {
	md := report.Markdown(&slides.Deck{}, "")
	assert.Equal(t, "# Protocol\n\n_No slides to display._\n", md)
}

func TestNewRenderer(t *testing.T) {
	render, err := report.NewRenderer(glamour.WithStandardStyle("ascii"), glamour.WithWordWrap(120))
	require.NoError(t, err)

	out, err := render(report.Markdown(deck(t), "Dilution"))
	require.NoError(t, err)
	assert.Contains(t, out, "Dilution")
	assert.Contains(t, out, "Step 2 of 2")
	assert.Contains(t, out, "red_dye")
}
