package quality

import (
	"fmt"
	"strings"

	"github.com/insightdelivered/transtractor/internal/config"
	"github.com/insightdelivered/transtractor/internal/extract"
	"github.com/insightdelivered/transtractor/internal/fragment"
)

// Report runs every candidate descriptor to completion and renders a
// human-readable account of each attempt. Unlike Select it never stops
// at the first success; a config author debugging one format needs to
// see them all.
func Report(fragments []fragment.Fragment, descriptors []*config.Descriptor) string {
	var b strings.Builder
	if len(descriptors) == 0 {
		b.WriteString("no candidate formats matched this document\n")
		return b.String()
	}
	for i, d := range descriptors {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "=== %s (%s)\n", d.Key, d.BankName)
		ex, err := extract.Extract(fragments, d)
		if err != nil {
			fmt.Fprintf(&b, "extraction failed: %v\n", err)
			continue
		}
		for _, m := range ex.FieldMatches {
			status := "not found"
			if m.Found {
				status = m.Value
			}
			fmt.Fprintf(&b, "%-16s %-12s rule: %s\n", m.Field, status, m.Rule)
		}
		tr := d.Transactions
		for _, f := range []struct {
			name string
			rule *config.FieldRule
		}{
			{"txn date", tr.Date},
			{"txn description", tr.Description},
			{"txn amount", tr.Amount},
			{"txn balance", tr.Balance},
		} {
			if f.rule == nil {
				continue
			}
			fmt.Fprintf(&b, "%-16s rule: %s\n", f.name, f.rule)
		}
		fmt.Fprintf(&b, "transactions: %d across %d lines\n", len(ex.Transactions), len(ex.Lines))
		issues := Check(ex, d)
		if len(issues) == 0 {
			b.WriteString("result: clean\n")
			continue
		}
		fmt.Fprintf(&b, "result: %d issue(s)\n", len(issues))
		for _, is := range issues {
			fmt.Fprintf(&b, "  - %s\n", is)
		}
	}
	return b.String()
}
