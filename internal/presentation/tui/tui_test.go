package tui

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/biocompute/pkg/experiment"
	"github.com/aretw0/biocompute/pkg/ops"
	"github.com/aretw0/biocompute/pkg/reagent"
	"github.com/aretw0/biocompute/pkg/slides"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDeck(t *testing.T) *slides.Deck {
	t.Helper()
	deck, err := slides.New().Build([]experiment.Experiment{
		{ops.Fill{WellIdx: 0, Reagent: reagent.Water, VolumeUL: 100}, ops.Mix{WellIdx: 0}},
		{ops.Fill{WellIdx: 1, Reagent: reagent.RedDye, VolumeUL: 50}},
	})
	require.NoError(t, err)
	return deck
}

func plainPainter(w *bytes.Buffer) *Painter {
	return NewPainter(w, termenv.WithProfile(termenv.Ascii))
}

func TestCursor_Clamps(t *testing.T) {
	c := NewCursor(3)
	assert.Equal(t, 0, c.Index())
	assert.False(t, c.Prev())
	assert.True(t, c.Next())
	assert.True(t, c.Next())
	assert.False(t, c.Next())
	assert.Equal(t, 2, c.Index())
	assert.True(t, c.Prev())
	assert.Equal(t, 1, c.Index())

	empty := NewCursor(0)
	assert.False(t, empty.Next())
	assert.Equal(t, 0, empty.Index())
}

func TestPainter_PlateGrid(t *testing.T) {
	var buf bytes.Buffer
	p := plainPainter(&buf)
	deck := testDeck(t)

	grid := p.Plate(deck.Slides[1].Plates[0])
	lines := strings.Split(strings.TrimRight(grid, "\n"), "\n")
	require.Len(t, lines, 9)
	assert.Contains(t, lines[0], " 12")
	assert.True(t, strings.HasPrefix(lines[1], "  A  ↻  ●  ○"), lines[1])
	assert.True(t, strings.HasPrefix(lines[8], "  H  ○"), lines[8])
	assert.Equal(t, 10, strings.Count(lines[1], glyphEmpty))
}

func TestDump_AllSlides(t *testing.T) {
	var buf bytes.Buffer
	deck := testDeck(t)
	require.NoError(t, Dump(&buf, plainPainter(&buf), deck, "demo"))

	out := buf.String()
	assert.Contains(t, out, "demo")
	assert.Contains(t, out, "Step 1 of 2  Fill A1 with water (100 µL); Fill A2 with red_dye (50 µL)")
	assert.Contains(t, out, "Step 2 of 2  Mix A1")
	assert.Contains(t, out, "Plate 1")
	assert.Contains(t, out, "● red_dye")
	assert.Contains(t, out, "● water")
}

func TestViewer_Navigation(t *testing.T) {
	var buf bytes.Buffer
	m := newViewer(plainPainter(&buf), testDeck(t), "demo")

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	assert.Equal(t, 0, next.(viewer).cursor.Index())

	next, _ = next.Update(tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, 1, next.(viewer).cursor.Index())
	assert.Contains(t, next.View(), "Step 2 of 2")

	next, _ = next.Update(tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, 1, next.(viewer).cursor.Index())

	next, _ = next.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'h'}})
	assert.Equal(t, 0, next.(viewer).cursor.Index())

	_, cmd := next.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestRunViewer_QuitsOnKey(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var out bytes.Buffer
	err := RunViewer(ctx, plainPainter(&out), testDeck(t), "demo",
		WithIO(strings.NewReader("lq"), &out), WithoutAltScreen())
	assert.NoError(t, err)
}

func TestShow_EmptyDeck(t *testing.T) {
	var out bytes.Buffer
	err := show(context.Background(), nil, &out, &slides.Deck{}, "", ModeAuto)
	require.NoError(t, err)
	assert.Equal(t, "No slides to display.\n", out.String())
}

func TestShow_AutoDumpsWhenInputIsNotATerminal(t *testing.T) {
	in, err := os.Create(filepath.Join(t.TempDir(), "stdin"))
	require.NoError(t, err)
	defer in.Close()

	var out bytes.Buffer
	require.NoError(t, show(context.Background(), in, &out, testDeck(t), "demo", ModeAuto))

	got := out.String()
	assert.Contains(t, got, "demo")
	assert.Contains(t, got, "Step 1 of 2")
	assert.Contains(t, got, "Step 2 of 2  Mix A1")
	assert.Contains(t, got, "Plate 1")
}
