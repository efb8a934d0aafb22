// Package layout reconstructs reading order from unordered positioned
// fragments. Fragments are bucketed per page, clustered into lines by
// vertical proximity, and ordered left to right within a line. The routine
// is deterministic: identical fragments and thresholds always produce
// identical output, which the layout/debug fixtures rely on.
package layout

import (
	"sort"
	"strings"

	"github.com/insightdelivered/transtractor/internal/fragment"
)

// Line is an ordered run of co-linear fragments on one page.
type Line struct {
	Page int
	Y    int
	// Fragments in left-to-right order. Original fragment boundaries are
	// kept even when a horizontal merge treats neighbours as one token
	// region, so field rules can still match individual fragments.
	Fragments []fragment.Fragment
}

// Text returns the line's content with fragments joined by single spaces.
func (l Line) Text() string {
	return fragment.Phrase(l.Fragments)
}

// Tokens returns the line's fragments with neighbours merged into one
// logical token when the horizontal gap between them is at most xGap
// character widths of the preceding token. xGap <= 0 returns the
// fragments unchanged.
func (l Line) Tokens(xGap float64) []fragment.Fragment {
	if xGap <= 0 || len(l.Fragments) == 0 {
		return l.Fragments
	}
	merged := []fragment.Fragment{l.Fragments[0]}
	for _, f := range l.Fragments[1:] {
		last := &merged[len(merged)-1]
		tol := int(last.AverageCharWidth() * xGap)
		if f.X1 >= last.X1-tol && f.X1 <= last.X2+tol {
			*last = last.Merge(f)
			continue
		}
		merged = append(merged, f)
	}
	return merged
}

// Reconstruct groups fragments into reading-ordered lines. Fragments whose
// Y1 values fall into the same yBin-sized bucket form one line; within a
// line fragments are ordered by X1. Pages are emitted in ascending order.
// Horizontal merging is not part of reconstruction; callers apply it per
// line through Tokens at match and render time.
//
// yBin == 0 is the degenerate case: fragments are grouped by exact
// (page, Y1) in their natural order with no re-sorting.
func Reconstruct(fragments []fragment.Fragment, yBin float64) []Line {
	if len(fragments) == 0 {
		return nil
	}
	if yBin == 0 {
		return naturalLines(fragments)
	}

	type binKey struct {
		page int
		bin  int
	}
	bins := make(map[binKey][]fragment.Fragment)
	pages := make(map[int]bool)
	ascending := 0
	descending := 0
	for _, f := range fragments {
		if f.Y1 < f.Y2 {
			descending++
		} else {
			ascending++
		}
		k := binKey{page: f.Page, bin: int(float64(f.Y1) / yBin)}
		bins[k] = append(bins[k], f)
		pages[f.Page] = true
	}

	pageKeys := make([]int, 0, len(pages))
	for p := range pages {
		pageKeys = append(pageKeys, p)
	}
	sort.Ints(pageKeys)

	// Most extractors emit Y increasing down the page; some PDFs come
	// through with the origin at the bottom. Follow the majority.
	yAscending := ascending >= descending

	var lines []Line
	for _, p := range pageKeys {
		binKeys := make([]int, 0)
		for k := range bins {
			if k.page == p {
				binKeys = append(binKeys, k.bin)
			}
		}
		if yAscending {
			sort.Ints(binKeys)
		} else {
			sort.Sort(sort.Reverse(sort.IntSlice(binKeys)))
		}
		for _, b := range binKeys {
			frags := bins[binKey{page: p, bin: b}]
			sort.SliceStable(frags, func(i, j int) bool {
				return frags[i].X1 < frags[j].X1
			})
			lines = append(lines, Line{Page: p, Y: frags[0].Y1, Fragments: frags})
		}
	}
	return lines
}

// naturalLines groups consecutive fragments sharing (page, Y1) without
// reordering anything.
func naturalLines(fragments []fragment.Fragment) []Line {
	var lines []Line
	for _, f := range fragments {
		n := len(lines)
		if n > 0 && lines[n-1].Page == f.Page && lines[n-1].Y == f.Y1 {
			lines[n-1].Fragments = append(lines[n-1].Fragments, f)
			continue
		}
		lines = append(lines, Line{Page: f.Page, Y: f.Y1, Fragments: []fragment.Fragment{f}})
	}
	return lines
}

// Render serializes reconstructed lines to the layout text format: one
// line of ["text",x1,x2,y1,y2] blocks per reconstructed line, blocks
// joined by single spaces, pages separated by a blank line. Output is
// byte-for-byte reproducible for identical input.
func Render(lines []Line, xGap float64) string {
	var b strings.Builder
	lastPage := -1
	for i, l := range lines {
		if i > 0 {
			b.WriteByte('\n')
			if l.Page != lastPage {
				b.WriteByte('\n')
			}
		}
		for j, f := range l.Tokens(xGap) {
			if j > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(f.LayoutBlock())
		}
		lastPage = l.Page
	}
	if len(lines) > 0 {
		b.WriteByte('\n')
	}
	return b.String()
}

// MostCommonHeight returns the modal fragment height, ignoring
// non-positive heights. Used to derive a line-height threshold when a
// document's Y coordinates carry jitter. Ties resolve to the smaller
// height so the threshold stays conservative.
func MostCommonHeight(fragments []fragment.Fragment) int {
	counts := make(map[int]int)
	for _, f := range fragments {
		h := f.Height()
		if h < 0 {
			h = -h
		}
		if h == 0 {
			continue
		}
		counts[h]++
	}
	best, bestCount := 0, 0
	for h, c := range counts {
		if c > bestCount || (c == bestCount && (best == 0 || h < best)) {
			best, bestCount = h, c
		}
	}
	return best
}
