// Package plate maps abstract well indices onto 96-well plates.
package plate

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

const (
	Rows          = 8
	Cols          = 12
	WellsPerPlate = Rows * Cols
	RowLetters    = "ABCDEFGH"
)

// Position locates a well on a plate. All fields are zero based.
type Position struct {
	Plate int
	Row   int
	Col   int
}

// Locate maps an abstract well index to its plate position.
func Locate(index int) Position {
	within := index % WellsPerPlate
	return Position{
		Plate: index / WellsPerPlate,
		Row:   within / Cols,
		Col:   within % Cols,
	}
}

// Label renders the position as "A1" style, ignoring the plate.
func (p Position) Label() string {
	return Label(p.Row, p.Col)
}

// PlateLabel is the display name of the plate, one based.
func (p Position) PlateLabel() string {
	return fmt.Sprintf("Plate %d", p.Plate+1)
}

// Label formats a zero based row and column.
func Label(row, col int) string {
	return fmt.Sprintf("%c%d", 'A'+rune(row), col+1)
}

// ParseLabel splits an "A1" style label into its letter and column number.
func ParseLabel(label string) (letter string, column int, ok bool) {
	if len(label) < 2 {
		return "", 0, false
	}
	letter = label[:1]
	if !strings.Contains(RowLetters, letter) {
		return "", 0, false
	}
	n, err := strconv.Atoi(label[1:])
	if err != nil || n < 1 {
		return "", 0, false
	}
	return letter, n, true
}

// SortLabels orders labels by row letter then numeric column. Labels that do
// not parse sort by their raw text.
func SortLabels(labels []string) []string {
	out := append([]string(nil), labels...)
	sort.SliceStable(out, func(i, j int) bool {
		li, ci := sortKey(out[i])
		lj, cj := sortKey(out[j])
		if li != lj {
			return li < lj
		}
		return ci < cj
	})
	return out
}

func sortKey(label string) (string, int) {
	if l, c, ok := ParseLabel(label); ok {
		return l, c
	}
	return label, 0
}

// FormatRange compresses labels for display: up to three are listed, more are
// shown as "first–last" of the sorted set.
func FormatRange(labels []string) string {
	sorted := SortLabels(labels)
	if len(sorted) <= 3 {
		return strings.Join(sorted, ", ")
	}
	return sorted[0] + "–" + sorted[len(sorted)-1]
}
