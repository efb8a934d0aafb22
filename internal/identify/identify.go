// Package identify shortlists the statement formats plausibly applicable
// to a fragment set by matching each descriptor's recognition terms
// against the document text.
package identify

import (
	"strings"

	"github.com/insightdelivered/transtractor/internal/config"
	"github.com/insightdelivered/transtractor/internal/fragment"
)

// entry is one key's recognition terms. Terms-only: a key can be known to
// the identifier long before its full descriptor is cached anywhere.
type entry struct {
	key   string
	terms []string
	match config.TermsMatch
}

// Identifier matches fragment sets against registered recognition terms.
// Keys are reported in registration order so identification output is
// reproducible.
type Identifier struct {
	entries []entry
	// maxLookahead is the word count of the longest registered term,
	// bounding the phrase window scanned at each token.
	maxLookahead int
}

// New returns an empty Identifier.
func New() *Identifier {
	return &Identifier{}
}

// AddTerms registers (or replaces) the recognition terms for a key.
// Matching is case-sensitive: statement mastheads are stable enough that
// folding would only invite false positives.
func (id *Identifier) AddTerms(key string, terms []string, match config.TermsMatch) {
	if match == "" {
		match = config.MatchAll
	}
	e := entry{key: key, terms: terms, match: match}
	replaced := false
	for i := range id.entries {
		if id.entries[i].key == key {
			id.entries[i] = e
			replaced = true
			break
		}
	}
	if !replaced {
		id.entries = append(id.entries, e)
	}
	id.maxLookahead = 0
	for _, en := range id.entries {
		for _, term := range en.terms {
			if n := len(strings.Fields(term)); n > id.maxLookahead {
				id.maxLookahead = n
			}
		}
	}
}

// Keys returns every registered key in registration order.
func (id *Identifier) Keys() []string {
	keys := make([]string, len(id.entries))
	for i, e := range id.entries {
		keys[i] = e.key
	}
	return keys
}

// Identify returns the keys whose recognition-term predicate is satisfied
// by the fragment set, in registration order. An empty result is not an
// error; the caller decides whether no applicable format is fatal.
func (id *Identifier) Identify(fragments []fragment.Fragment) []string {
	if len(id.entries) == 0 || len(fragments) == 0 {
		return nil
	}
	tokens := fragment.Tokenise(fragments)
	found := make(map[string]bool)

	// Slide a lookahead window over the token stream; a term matches
	// when the windowed phrase starts with it. Each term counts once.
	for i := range tokens {
		window := fragment.Buffer(tokens, i, id.maxLookahead)
		phrase := fragment.Phrase(window)
		for _, e := range id.entries {
			for _, term := range e.terms {
				if !found[term] && len(term) <= len(phrase) && strings.HasPrefix(phrase, term) {
					found[term] = true
				}
			}
		}
	}

	var keys []string
	for _, e := range id.entries {
		if e.satisfied(found) {
			keys = append(keys, e.key)
		}
	}
	return keys
}

func (e entry) satisfied(found map[string]bool) bool {
	if len(e.terms) == 0 {
		return false
	}
	matched := 0
	for _, term := range e.terms {
		if found[term] {
			matched++
		}
	}
	switch e.match {
	case config.MatchAny:
		return matched > 0
	default:
		return matched == len(e.terms)
	}
}
