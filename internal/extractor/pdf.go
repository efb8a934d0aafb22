// Package extractor turns source PDF documents into positioned text
// fragments. Extraction is a boundary: everything downstream reasons
// about fragments only and never touches the PDF library.
package extractor

import (
	"fmt"
	"math"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"

	"github.com/insightdelivered/transtractor/internal/fragment"
)

// UnreadableError means the file opened but yielded no usable text. The
// usual causes are scanned image-only documents and custom font
// encodings that decode to garbage.
type UnreadableError struct {
	Path   string
	Reason string
}

func (e *UnreadableError) Error() string {
	return fmt.Sprintf("%s: unreadable document: %s", e.Path, e.Reason)
}

// FragmentsFromPDF extracts every positioned text run from the file.
// Pages are renumbered 0-based; coordinates are rounded to integers in
// the PDF's native space, so the Y axis grows bottom-up and layout
// reconstruction must follow the coordinate orientation it observes.
func FragmentsFromPDF(path string) ([]fragment.Fragment, error) {
	fragments, err := readPDF(path)
	if err != nil {
		return nil, err
	}
	if reason, ok := readable(fragments); !ok {
		return nil, &UnreadableError{Path: path, Reason: reason}
	}
	return fragments, nil
}

// readPDF collects text runs page by page. The library panics on some
// malformed cross-reference tables, so the whole read is recovered into
// an ordinary error.
func readPDF(path string) (fragments []fragment.Fragment, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("reading %s: %v", path, r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	numPages := r.NumPage()
	if numPages == 0 {
		return nil, fmt.Errorf("%s: document has no pages", path)
	}
	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		for _, t := range page.Content().Text {
			if strings.TrimSpace(t.S) == "" {
				continue
			}
			fragments = append(fragments, splitRun(t, i-1)...)
		}
	}
	return fragments, nil
}

// splitRun breaks a text run into one fragment per word, apportioning
// the run's width by character count so column rules see each word's
// own horizontal position.
func splitRun(t pdf.Text, page int) []fragment.Fragment {
	runes := []rune(t.S)
	charW := t.W / float64(len(runes))
	y1 := int(math.Round(t.Y))
	y2 := int(math.Round(t.Y + t.FontSize))

	var out []fragment.Fragment
	start := -1
	flush := func(end int) {
		if start < 0 {
			return
		}
		x1 := int(math.Round(t.X + charW*float64(start)))
		x2 := int(math.Round(t.X + charW*float64(end)))
		out = append(out, fragment.New(string(runes[start:end]), x1, y1, x2, y2, page))
		start = -1
	}
	for i, r := range runes {
		if unicode.IsSpace(r) {
			flush(i)
			continue
		}
		if start < 0 {
			start = i
		}
	}
	flush(len(runes))
	return out
}

// readable guards against serving garbage: enough text overall, a high
// ratio of plain ASCII characters, and at least one word a statement
// would actually contain.
func readable(fragments []fragment.Fragment) (string, bool) {
	total := 0
	plain := 0
	var combined strings.Builder
	for _, f := range fragments {
		combined.WriteString(strings.ToLower(f.Text))
		combined.WriteByte(' ')
		for _, r := range f.Text {
			total++
			if r < 128 || r == '£' || r == '€' {
				plain++
			}
		}
	}
	if total <= 50 {
		return "too little text extracted", false
	}
	if float64(plain)/float64(total) <= 0.6 {
		return "extracted text is mostly undecodable", false
	}
	text := combined.String()
	for _, word := range statementWords {
		if strings.Contains(text, word) {
			return "", true
		}
	}
	return "no recognisable statement vocabulary found", false
}

// statementWords are terms that virtually every bank statement carries.
// Text containing none of them is treated as a failed decode.
var statementWords = []string{
	"bank", "account", "balance", "date", "payment", "statement",
	"total", "amount", "credit", "debit", "transaction", "sort code",
	"money", "paid", "opening", "closing", "transfer", "period",
}
