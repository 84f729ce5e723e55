package ingestion_engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconstructPage_Spacing(t *testing.T) {
	tests := []struct {
		name  string
		nextX float64
		want  string
	}{
		{name: "wide gap becomes four spaces", nextX: 35, want: "left    right"},
		{name: "gap of exactly 20 is a single space", nextX: 30, want: "left right"},
		{name: "medium gap becomes one space", nextX: 20, want: "left right"},
		{name: "gap of exactly 2 is adjacent", nextX: 12, want: "leftright"},
		{name: "small gap is adjacent", nextX: 11, want: "leftright"},
		{name: "overlap is adjacent", nextX: 5, want: "leftright"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frags := []Fragment{
				{S: "left", X: 0, Y: 100, W: 10},
				{S: "right", X: tt.nextX, Y: 100, W: 10},
			}
			assert.Equal(t, tt.want, ReconstructPage(frags))
		})
	}
}

func TestReconstructPage_MissingWidthDefaultsToZero(t *testing.T) {
	frags := []Fragment{
		{S: "abc", X: 0, Y: 10},
		{S: "def", X: 3, Y: 10},
	}
	assert.Equal(t, "abc def", ReconstructPage(frags))
}

func TestReconstructPage_LinesOrderedTopDown(t *testing.T) {
	frags := []Fragment{
		{S: "bottom", X: 0, Y: 600},
		{S: "top", X: 0, Y: 700},
		{S: "middle", X: 0, Y: 650},
	}
	assert.Equal(t, "top\nmiddle\nbottom", ReconstructPage(frags))
}

func TestReconstructPage_FragmentsOrderedLeftToRight(t *testing.T) {
	frags := []Fragment{
		{S: "c", X: 20, Y: 50, W: 10},
		{S: "a", X: 0, Y: 50, W: 10},
		{S: "b", X: 10, Y: 52, W: 10},
	}
	assert.Equal(t, "abc", ReconstructPage(frags))
}

func TestGroupLines_GreedyArrivalOrder(t *testing.T) {
	// d is closer to c's line (3.5) than to a's (4.5) but a's line exists
	// first, so d lands there.
	frags := []Fragment{
		{S: "a", X: 0, Y: 100, W: 10},
		{S: "b", X: 10, Y: 96, W: 10},
		{S: "c", X: 0, Y: 92, W: 10},
		{S: "d", X: 20, Y: 95.5, W: 10},
	}

	lines := GroupLines(frags)
	require.Len(t, lines, 2)
	assert.Equal(t, 100.0, lines[0].Y)
	assert.Equal(t, "abd", lines[0].Text())
	assert.Equal(t, 92.0, lines[1].Y)
	assert.Equal(t, "c", lines[1].Text())
}

func TestGroupLines_ToleranceIsExclusive(t *testing.T) {
	lines := GroupLines([]Fragment{
		{S: "a", Y: 100},
		{S: "b", Y: 95},
	})
	assert.Len(t, lines, 2)
}

func TestReconstructPage_DropsBlankFragments(t *testing.T) {
	frags := []Fragment{
		{S: "  ", X: 0, Y: 300},
		{S: "", X: 0, Y: 200},
		{S: "word", X: 0, Y: 100, W: 20},
		{S: "\t", X: 20, Y: 100, W: 5},
		{S: "next", X: 30, Y: 100},
	}
	assert.Equal(t, "word next", ReconstructPage(frags))
}

func TestReconstructPage_Empty(t *testing.T) {
	assert.Equal(t, "", ReconstructPage(nil))
	assert.Equal(t, "", ReconstructPage([]Fragment{{S: " ", Y: 1}}))
}

func TestReconstructPage_Idempotent(t *testing.T) {
	frags := []Fragment{
		{S: "Title", X: 40, Y: 720, W: 30},
		{S: "col2", X: 300, Y: 600, W: 20},
		{S: "col1", X: 40, Y: 601, W: 20},
		{S: "same", X: 40, Y: 500, W: 20},
		{S: "x", X: 40, Y: 500, W: 5},
		{S: "tail", X: 63, Y: 498, W: 20},
	}
	in := append([]Fragment(nil), frags...)

	first := ReconstructPage(frags)
	second := ReconstructPage(frags)

	assert.Equal(t, first, second)
	assert.Equal(t, in, frags, "input slice must not be reordered")
	assert.Equal(t, "Title\ncol1    col2\nsamex tail", first)
}
