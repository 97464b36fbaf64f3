package spreadsheet

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLabelToCoord(t *testing.T) {
	tests := []struct {
		label string
		want  Coord
	}{
		{"A1", Coord{Col: 0, Row: 0}},
		{"Z1", Coord{Col: 25, Row: 0}},
		{"AA1", Coord{Col: 26, Row: 0}},
		{"AZ3", Coord{Col: 51, Row: 2}},
		{"BA10", Coord{Col: 52, Row: 9}},
		{"ZZ1", Coord{Col: 701, Row: 0}},
		{"AAA1", Coord{Col: 702, Row: 0}},
		{"aa12", Coord{Col: 26, Row: 11}},
		{"C1000", Coord{Col: 2, Row: 999}},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			got, err := LabelToCoord(tt.label)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLabelToCoordInvalid(t *testing.T) {
	for _, label := range []string{"", "A", "1", "A0", "A01", "1A", "A1B", "A-1", "$A$1", "A 1", " A1", "Ä1", "A1.5"} {
		t.Run(label, func(t *testing.T) {
			_, err := LabelToCoord(label)
			require.Error(t, err)
			assert.True(t, IsInvalidReference(err))
		})
	}
}

func TestCoordLabelRoundTrip(t *testing.T) {
	for col := 0; col < 26*27; col++ {
		for _, row := range []int{0, 1, 9, 99, 999} {
			c := Coord{Col: col, Row: row}
			got, err := LabelToCoord(CoordToLabel(c))
			require.NoError(t, err, CoordToLabel(c))
			require.Equal(t, c, got)
		}
	}
	assert.Equal(t, "A", ColumnName(0))
	assert.Equal(t, "Z", ColumnName(25))
	assert.Equal(t, "AA", ColumnName(26))
	assert.Equal(t, "ZZ", ColumnName(701))
	assert.Equal(t, "AAA", ColumnName(702))
}

func TestNormalizeLabel(t *testing.T) {
	got, err := NormalizeLabel("ab12")
	require.NoError(t, err)
	assert.Equal(t, "AB12", got)

	_, err = NormalizeLabel("12ab")
	assert.Error(t, err)
}

func TestExpandRange(t *testing.T) {
	expand := func(start, end string) []string {
		t.Helper()
		seq, err := ExpandRange(start, end)
		require.NoError(t, err)
		return slices.Collect(seq)
	}

	assert.Equal(t, []string{"B2"}, expand("B2", "B2"))

	forward := expand("A1", "B2")
	assert.Equal(t, []string{"A1", "B1", "A2", "B2"}, forward)
	assert.Equal(t, forward, expand("B2", "A1"))

	// mixed corners normalize per axis
	assert.Equal(t, forward, expand("B1", "A2"))

	_, err := ExpandRange("A1", "nope")
	assert.True(t, IsInvalidReference(err))
}

func TestExpandRangeHugeRectangle(t *testing.T) {
	for _, end := range []string{"XFD1048576", "ZZZZZ2147483647"} {
		seq, err := ExpandRange("A1", end)
		require.NoError(t, err, end)

		var first []string
		for label := range seq {
			first = append(first, label)
			if len(first) == 3 {
				break
			}
		}
		assert.Equal(t, []string{"A1", "B1", "C1"}, first, end)
	}
}

func TestParseRange(t *testing.T) {
	r, err := ParseRange("C3:A1")
	require.NoError(t, err)
	assert.Equal(t, RangeAddress{StartRow: 0, StartColumn: 0, EndRow: 2, EndColumn: 2}, r)
	assert.Equal(t, 9, r.Size())
	assert.Equal(t, "A1:C3", r.String())
	assert.True(t, r.Contains(Coord{Col: 1, Row: 1}))
	assert.False(t, r.Contains(Coord{Col: 3, Row: 1}))

	single, err := ParseRange("b2")
	require.NoError(t, err)
	assert.Equal(t, 1, single.Size())
	assert.Equal(t, "B2", single.String())

	spaced, err := ParseRange(" A1 : B1 ")
	require.NoError(t, err)
	assert.Equal(t, "A1:B1", spaced.String())

	for _, label := range []string{"", ":", "A1:", ":B2", "A1:B2:C3", "A1-B2"} {
		_, err := ParseRange(label)
		assert.True(t, IsInvalidReference(err), label)
	}
}

func TestRangeCoordsStopsEarly(t *testing.T) {
	r, err := ParseRange("A1:C3")
	require.NoError(t, err)
	var seen []Coord
	for c := range r.Coords() {
		seen = append(seen, c)
		if len(seen) == 2 {
			break
		}
	}
	assert.Equal(t, []Coord{{Col: 0, Row: 0}, {Col: 1, Row: 0}}, seen)
}
