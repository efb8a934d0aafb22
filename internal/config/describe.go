package config

import (
	"fmt"
	"strings"
)

// String renders the rule for diagnostic output.
func (r *FieldRule) String() string {
	if r == nil {
		return "(none)"
	}
	var b strings.Builder
	switch r.Kind {
	case RuleColumn:
		fmt.Fprintf(&b, "column x1=[%g,%g]", r.X1.Min, r.X1.Max)
		if r.X2 != unbounded {
			fmt.Fprintf(&b, " x2=[%g,%g]", r.X2.Min, r.X2.Max)
		}
	case RulePattern:
		fmt.Fprintf(&b, "pattern %q", r.Pattern.String())
	case RuleOffset:
		fmt.Fprintf(&b, "offset %d", r.Offset)
	}
	if len(r.Formats) > 0 {
		fmt.Fprintf(&b, " formats=%s", strings.Join(r.Formats, ","))
	}
	if r.Invert {
		b.WriteString(" invert")
	}
	return b.String()
}

// String renders the rule for diagnostic output.
func (r *ValueRule) String() string {
	if r == nil {
		return "(none)"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "terms=%s", strings.Join(r.Terms, "|"))
	if r.Pattern != nil {
		fmt.Fprintf(&b, " pattern=%q", r.Pattern.String())
	}
	if len(r.Formats) > 0 {
		fmt.Fprintf(&b, " formats=%s", strings.Join(r.Formats, ","))
	}
	return b.String()
}
