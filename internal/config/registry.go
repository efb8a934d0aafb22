package config

import (
	"fmt"
	"sync"
)

// NotFoundError is returned by Lookup when no descriptor carries the key.
type NotFoundError struct {
	Key string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("descriptor %q not registered", e.Key)
}

// Registry is a keyed store of descriptors. Two modes exist:
//
//   - caching disabled: only file paths are remembered and descriptors
//     are reparsed on every lookup. Used for the long-lived base registry
//     so memory stays bounded however many formats exist.
//   - caching enabled: parsed descriptors stay in memory. Used for a
//     session registry that promotes descriptors from the base registry
//     on demand.
//
// Lookups may run concurrently; registration takes the write lock.
type Registry struct {
	mu      sync.RWMutex
	caching bool
	order   []string // keys in registration order, for stable iteration
	cached  map[string]*Descriptor
	paths   map[string]string
	raws    map[string][]byte
}

// NewRegistry returns an empty registry.
func NewRegistry(caching bool) *Registry {
	return &Registry{
		caching: caching,
		cached:  make(map[string]*Descriptor),
		paths:   make(map[string]string),
		raws:    make(map[string][]byte),
	}
}

// Register adds a validated descriptor. Requires caching, since there is
// no file path to recompute the value from. Re-registration under an
// existing key replaces the previous descriptor.
func (r *Registry) Register(d *Descriptor) error {
	if err := Validate(d); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.caching {
		return &LoadError{Reason: "caching must be enabled to register an in-memory descriptor"}
	}
	r.noteKey(d.Key)
	r.cached[d.Key] = d
	return nil
}

// RegisterJSON parses a descriptor document and registers it.
func (r *Registry) RegisterJSON(data []byte) error {
	d, err := FromJSON(data)
	if err != nil {
		return err
	}
	return r.Register(d)
}

// RegisterFile parses a descriptor document from disk and registers its
// path; cached registries also keep the parsed value.
func (r *Registry) RegisterFile(path string) error {
	d, err := FromFile(path)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.noteKey(d.Key)
	r.paths[d.Key] = path
	if r.caching {
		r.cached[d.Key] = d
	}
	return nil
}

// RegisterRaw validates a descriptor document and registers its raw
// bytes. Uncached registries reparse the bytes on every lookup; this is
// how embedded built-in descriptors are held without keeping every parsed
// descriptor resident.
func (r *Registry) RegisterRaw(data []byte) error {
	d, err := FromJSON(data)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.noteKey(d.Key)
	r.raws[d.Key] = data
	if r.caching {
		r.cached[d.Key] = d
	}
	return nil
}

// noteKey records a key's registration order once. Caller holds the lock.
func (r *Registry) noteKey(key string) {
	if _, known := r.cached[key]; known {
		return
	}
	if _, known := r.paths[key]; known {
		return
	}
	if _, known := r.raws[key]; known {
		return
	}
	r.order = append(r.order, key)
}

// Lookup returns the descriptor registered under key, reparsing from its
// file when caching is disabled.
func (r *Registry) Lookup(key string) (*Descriptor, error) {
	r.mu.RLock()
	d := r.cached[key]
	path := r.paths[key]
	raw := r.raws[key]
	r.mu.RUnlock()
	if d != nil {
		return d, nil
	}
	if path != "" {
		return FromFile(path)
	}
	if raw != nil {
		return FromJSON(raw)
	}
	return nil, &NotFoundError{Key: key}
}

// RawJSON returns the raw descriptor document for key, reading it back
// from disk for file-registered descriptors. Used to promote a descriptor
// from the base registry into a session registry.
func (r *Registry) RawJSON(key string) ([]byte, error) {
	r.mu.RLock()
	raw := r.raws[key]
	path := r.paths[key]
	r.mu.RUnlock()
	if raw != nil {
		return raw, nil
	}
	if path != "" {
		data, err := readDescriptorFile(path)
		if err != nil {
			return nil, err
		}
		return data, nil
	}
	return nil, &NotFoundError{Key: key}
}

// Has reports whether a descriptor is registered under key.
func (r *Registry) Has(key string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, cached := r.cached[key]
	_, pathed := r.paths[key]
	_, rawed := r.raws[key]
	return cached || pathed || rawed
}

// Keys returns all registered keys in registration order.
func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]string, len(r.order))
	copy(keys, r.order)
	return keys
}

// UnregisteredKeys returns the subset of candidates not present in the
// registry, preserving candidate order. Used to promote only the
// descriptors a session actually needs.
func (r *Registry) UnregisteredKeys(candidates []string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var missing []string
	for _, key := range candidates {
		if _, cached := r.cached[key]; cached {
			continue
		}
		if _, pathed := r.paths[key]; pathed {
			continue
		}
		if _, rawed := r.raws[key]; rawed {
			continue
		}
		missing = append(missing, key)
	}
	return missing
}

// AccountTerms returns the recognition terms of the descriptor under key.
func (r *Registry) AccountTerms(key string) ([]string, TermsMatch, error) {
	d, err := r.Lookup(key)
	if err != nil {
		return nil, "", err
	}
	return d.AccountTerms, d.TermsMatch, nil
}
