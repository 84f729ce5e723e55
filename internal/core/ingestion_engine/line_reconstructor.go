package ingestion_engine

import (
	"sort"
	"strings"
)

// Layout thresholds, in the decoder's coordinate units.
const (
	lineTolerance = 5.0  // max |dy| for two fragments to share a line
	wideGap       = 20.0 // gaps above this become a column-like break
	narrowGap     = 2.0  // gaps above this become a single space
)

// Fragment is one positioned piece of decoded text on a page.
// W is zero when the decoder does not report a width.
type Fragment struct {
	S    string
	X    float64
	Y    float64
	W    float64
	Page int
}

// Line is a group of fragments judged to lie on the same visual line.
// Y is the representative coordinate the group was keyed on.
type Line struct {
	Y         float64
	Fragments []Fragment
}

// GroupLines clusters fragments into lines and orders them for reading:
// lines top to bottom (descending Y), fragments left to right.
//
// Clustering is greedy and follows arrival order: a fragment joins the first
// existing line whose key is within lineTolerance, even when a closer line
// is created later. Whitespace-only fragments are dropped.
func GroupLines(frags []Fragment) []Line {
	var lines []Line
	for _, f := range frags {
		if strings.TrimSpace(f.S) == "" {
			continue
		}
		placed := false
		for i := range lines {
			if abs(lines[i].Y-f.Y) < lineTolerance {
				lines[i].Fragments = append(lines[i].Fragments, f)
				placed = true
				break
			}
		}
		if !placed {
			lines = append(lines, Line{Y: f.Y, Fragments: []Fragment{f}})
		}
	}

	sort.SliceStable(lines, func(i, j int) bool { return lines[i].Y > lines[j].Y })
	for i := range lines {
		fs := lines[i].Fragments
		sort.SliceStable(fs, func(a, b int) bool { return fs[a].X < fs[b].X })
	}
	return lines
}

// Text flattens the line, inserting whitespace according to the horizontal
// gap between each fragment's right edge and the next fragment's origin.
func (l Line) Text() string {
	var sb strings.Builder
	for i, f := range l.Fragments {
		if i > 0 {
			prev := l.Fragments[i-1]
			sb.WriteString(gapFiller(f.X - (prev.X + prev.W)))
		}
		sb.WriteString(f.S)
	}
	return sb.String()
}

func gapFiller(gap float64) string {
	switch {
	case gap > wideGap:
		return "    "
	case gap > narrowGap:
		return " "
	default:
		return ""
	}
}

// ReconstructPage turns one page's fragments into newline-separated text.
func ReconstructPage(frags []Fragment) string {
	lines := GroupLines(frags)
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l.Text()
	}
	return strings.Join(out, "\n")
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
