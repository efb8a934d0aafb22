package config

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
)

//go:embed configs/*.json
var builtinFS embed.FS

// BaseRegistry returns the read-only base registry pre-populated with the
// built-in descriptors. Caching is disabled so descriptors are reparsed
// per access; sessions promote the few they use into their own cached
// registry. Built-in documents are embedded and must parse, so a failure
// here is a programming error.
func BaseRegistry() (*Registry, error) {
	registry := NewRegistry(false)
	entries, err := fs.Glob(builtinFS, "configs/*.json")
	if err != nil {
		return nil, fmt.Errorf("listing built-in descriptors: %w", err)
	}
	sort.Strings(entries)
	for _, name := range entries {
		data, readErr := builtinFS.ReadFile(name)
		if readErr != nil {
			return nil, fmt.Errorf("reading built-in descriptor %s: %w", name, readErr)
		}
		if regErr := registry.RegisterRaw(data); regErr != nil {
			return nil, fmt.Errorf("built-in descriptor %s: %w", name, regErr)
		}
	}
	return registry, nil
}
