package quality

import (
	"fmt"
	"strings"

	"github.com/insightdelivered/transtractor/internal/config"
	"github.com/insightdelivered/transtractor/internal/extract"
	"github.com/insightdelivered/transtractor/internal/fragment"
	"github.com/insightdelivered/transtractor/internal/models"
)

// NotSupportedError means identification produced no candidate formats
// for the document.
type NotSupportedError struct{}

func (e *NotSupportedError) Error() string {
	return "statement not supported: no known format matched"
}

// Candidate is one descriptor's attempt, kept for error reporting.
type Candidate struct {
	Key string
	// Err is the extraction failure, nil when extraction completed.
	Err error
	// Issues are the quality findings of a completed extraction.
	Issues []Issue
}

func (c Candidate) String() string {
	if c.Err != nil {
		return fmt.Sprintf("%s: %v", c.Key, c.Err)
	}
	parts := make([]string, len(c.Issues))
	for i, is := range c.Issues {
		parts[i] = is.String()
	}
	return fmt.Sprintf("%s: %s", c.Key, strings.Join(parts, "; "))
}

// NoErrorFreeError means every candidate format either failed extraction
// or failed a quality check. The per-candidate record explains each
// rejection.
type NoErrorFreeError struct {
	Candidates []Candidate
}

func (e *NoErrorFreeError) Error() string {
	parts := make([]string, len(e.Candidates))
	for i, c := range e.Candidates {
		parts[i] = c.String()
	}
	return "no error-free statement data: " + strings.Join(parts, " | ")
}

// Select runs every candidate descriptor against the fragments in order
// and returns the first extraction that passes all quality checks. The
// candidate order is the identification order, so the caller controls
// precedence through registration order.
func Select(fragments []fragment.Fragment, descriptors []*config.Descriptor) (*models.StatementData, *extract.Extraction, error) {
	if len(descriptors) == 0 {
		return nil, nil, &NotSupportedError{}
	}
	var failed []Candidate
	for _, d := range descriptors {
		ex, err := extract.Extract(fragments, d)
		if err != nil {
			failed = append(failed, Candidate{Key: d.Key, Err: err})
			continue
		}
		issues := Check(ex, d)
		if len(issues) > 0 {
			failed = append(failed, Candidate{Key: d.Key, Issues: issues})
			continue
		}
		return &models.StatementData{
			Key:           ex.Key,
			AccountNumber: ex.AccountNumber,
			Transactions:  ex.Transactions,
		}, ex, nil
	}
	return nil, nil, &NoErrorFreeError{Candidates: failed}
}
