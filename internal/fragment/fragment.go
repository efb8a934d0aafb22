// Package fragment defines the positioned text token that every other
// component consumes. Fragments arrive from the PDF extraction boundary
// in arbitrary order; reading order is only meaningful after layout
// reconstruction.
package fragment

import (
	"fmt"
	"strings"
)

// Fragment is a single positioned text token from a source document page.
// Coordinates are integers in a page-local space with Y1 at the token's
// baseline. Page indices are 0-based.
type Fragment struct {
	Text string
	X1   int
	Y1   int
	X2   int
	Y2   int
	Page int
}

// New returns a Fragment with the given content and bounding box.
func New(text string, x1, y1, x2, y2, page int) Fragment {
	return Fragment{Text: text, X1: x1, Y1: y1, X2: x2, Y2: y2, Page: page}
}

// SamePosition reports whether two fragments share bounding box and page.
func (f Fragment) SamePosition(other Fragment) bool {
	return f.X1 == other.X1 && f.Y1 == other.Y1 &&
		f.X2 == other.X2 && f.Y2 == other.Y2 && f.Page == other.Page
}

// Merge returns a fragment whose text is f's text joined with other's by a
// single space. The bounding box extends to cover both fragments.
func (f Fragment) Merge(other Fragment) Fragment {
	merged := f
	merged.Text = f.Text + " " + other.Text
	if other.X2 > merged.X2 {
		merged.X2 = other.X2
	}
	return merged
}

// Width returns the horizontal extent of the fragment in page units.
func (f Fragment) Width() int {
	return f.X2 - f.X1
}

// Height returns the vertical extent of the fragment in page units.
func (f Fragment) Height() int {
	return f.Y2 - f.Y1
}

// AverageCharWidth estimates the width of one character of this fragment.
// Used when deciding whether a horizontal gap is small enough to merge.
func (f Fragment) AverageCharWidth() float64 {
	n := len(f.Text)
	if n == 0 {
		return 0
	}
	return float64(f.Width()) / float64(n)
}

// LayoutBlock renders the fragment as ["text",x1,x2,y1,y2]. The page is
// deliberately excluded; layout text groups fragments per page already.
func (f Fragment) LayoutBlock() string {
	return fmt.Sprintf("[%q,%d,%d,%d,%d]", f.Text, f.X1, f.X2, f.Y1, f.Y2)
}

// Tokenise splits each fragment's text on whitespace, producing one
// fragment per word. Positional and page data is carried over unchanged so
// downstream rules can still reason about placement.
func Tokenise(fragments []Fragment) []Fragment {
	tokens := make([]Fragment, 0, len(fragments))
	for _, f := range fragments {
		for _, part := range strings.Fields(f.Text) {
			t := f
			t.Text = part
			tokens = append(tokens, t)
		}
	}
	return tokens
}

// Buffer returns up to size fragments starting at index. Used for bounded
// lookahead when matching multi-word terms.
func Buffer(fragments []Fragment, index, size int) []Fragment {
	if index >= len(fragments) {
		return nil
	}
	end := index + size
	if end > len(fragments) {
		end = len(fragments)
	}
	return fragments[index:end]
}

// Phrase joins the text of the given fragments with single spaces.
func Phrase(fragments []Fragment) string {
	parts := make([]string, len(fragments))
	for i, f := range fragments {
		parts[i] = f.Text
	}
	return strings.Join(parts, " ")
}
