// Package parser is the top-level facade: it owns the registries and the
// identifier and walks a document through identification, extraction and
// quality selection. One Parser serves one session; the base registry
// behind it is shared and read-only.
package parser

import (
	"fmt"
	"log/slog"

	"github.com/insightdelivered/transtractor/internal/config"
	"github.com/insightdelivered/transtractor/internal/extractor"
	"github.com/insightdelivered/transtractor/internal/fragment"
	"github.com/insightdelivered/transtractor/internal/identify"
	"github.com/insightdelivered/transtractor/internal/layout"
	"github.com/insightdelivered/transtractor/internal/models"
	"github.com/insightdelivered/transtractor/internal/quality"
)

// Parser identifies and extracts statements. Descriptors live in the
// uncached base registry until a document actually identifies as one of
// them; only then is the descriptor promoted into the session's cached
// registry.
type Parser struct {
	base       *config.Registry
	session    *config.Registry
	identifier *identify.Identifier
	log        *slog.Logger
}

// New builds a Parser over the built-in descriptors. The identifier is
// seeded with recognition terms only; full descriptors stay unparsed in
// the base registry until needed.
func New(log *slog.Logger) (*Parser, error) {
	if log == nil {
		log = slog.Default()
	}
	base, err := config.BaseRegistry()
	if err != nil {
		return nil, err
	}
	p := &Parser{
		base:       base,
		session:    config.NewRegistry(true),
		identifier: identify.New(),
		log:        log,
	}
	for _, key := range base.Keys() {
		terms, match, termErr := base.AccountTerms(key)
		if termErr != nil {
			return nil, termErr
		}
		p.identifier.AddTerms(key, terms, match)
	}
	return p, nil
}

// Load registers an additional descriptor document from disk for this
// session. A key already known is replaced, so a config author can
// iterate on a built-in format without rebuilding.
func (p *Parser) Load(path string) error {
	d, err := config.FromFile(path)
	if err != nil {
		return err
	}
	if err := p.session.RegisterFile(path); err != nil {
		return err
	}
	p.identifier.AddTerms(d.Key, d.AccountTerms, d.TermsMatch)
	p.log.Debug("descriptor loaded", "key", d.Key, "path", path)
	return nil
}

// LoadJSON registers an additional descriptor document for this session.
func (p *Parser) LoadJSON(data []byte) error {
	d, err := config.FromJSON(data)
	if err != nil {
		return err
	}
	if err := p.session.Register(d); err != nil {
		return err
	}
	p.identifier.AddTerms(d.Key, d.AccountTerms, d.TermsMatch)
	p.log.Debug("descriptor loaded", "key", d.Key)
	return nil
}

// Keys returns every format key this session can recognise.
func (p *Parser) Keys() []string {
	return p.identifier.Keys()
}

// Identify returns the candidate format keys for a fragment set, in
// registration order. An empty result means no known format matched.
func (p *Parser) Identify(fragments []fragment.Fragment) []string {
	keys := p.identifier.Identify(fragments)
	p.log.Debug("identification complete", "candidates", len(keys))
	return keys
}

// descriptors resolves candidate keys to full descriptors, promoting
// base-registry descriptors into the session cache on first use.
func (p *Parser) descriptors(keys []string) ([]*config.Descriptor, error) {
	for _, key := range p.session.UnregisteredKeys(keys) {
		raw, err := p.base.RawJSON(key)
		if err != nil {
			return nil, fmt.Errorf("promoting %s: %w", key, err)
		}
		if err := p.session.RegisterRaw(raw); err != nil {
			return nil, fmt.Errorf("promoting %s: %w", key, err)
		}
		p.log.Debug("descriptor promoted to session", "key", key)
	}
	descs := make([]*config.Descriptor, 0, len(keys))
	for _, key := range keys {
		d, err := p.session.Lookup(key)
		if err != nil {
			return nil, err
		}
		descs = append(descs, d)
	}
	return descs, nil
}

// Parse identifies the document and returns the first extraction that
// passes every quality check. The error is *quality.NotSupportedError
// when nothing identified, *quality.NoErrorFreeError when every
// candidate was rejected.
func (p *Parser) Parse(fragments []fragment.Fragment) (*models.StatementData, error) {
	keys := p.Identify(fragments)
	descs, err := p.descriptors(keys)
	if err != nil {
		return nil, err
	}
	data, ex, err := quality.Select(fragments, descs)
	if err != nil {
		p.log.Info("parse rejected", "candidates", len(keys), "error", err)
		return nil, err
	}
	p.log.Info("parse complete", "key", data.Key, "transactions", len(ex.Transactions))
	return data, nil
}

// ParseFile extracts fragments from a PDF and parses them. The returned
// statement carries the source filename.
func (p *Parser) ParseFile(path string) (*models.StatementData, error) {
	fragments, err := extractor.FragmentsFromPDF(path)
	if err != nil {
		return nil, err
	}
	data, err := p.Parse(fragments)
	if err != nil {
		return nil, err
	}
	data.Filename = path
	return data, nil
}

// Debug runs every candidate format to completion and returns the
// rendered report. It never short-circuits on success.
func (p *Parser) Debug(fragments []fragment.Fragment) (string, error) {
	keys := p.Identify(fragments)
	descs, err := p.descriptors(keys)
	if err != nil {
		return "", err
	}
	return quality.Report(fragments, descs), nil
}

// DebugFile extracts fragments from a PDF and renders the debug report.
func (p *Parser) DebugFile(path string) (string, error) {
	fragments, err := extractor.FragmentsFromPDF(path)
	if err != nil {
		return "", err
	}
	return p.Debug(fragments)
}

// Layout renders the reconstructed reading order of a fragment set as
// layout text, for authoring new descriptors against a real document.
func (p *Parser) Layout(fragments []fragment.Fragment, yBin, xGap float64) string {
	return layout.Render(layout.Reconstruct(fragments, yBin), xGap)
}

// LayoutFile extracts fragments from a PDF and renders the layout text.
func (p *Parser) LayoutFile(path string, yBin, xGap float64) (string, error) {
	fragments, err := extractor.FragmentsFromPDF(path)
	if err != nil {
		return "", err
	}
	return p.Layout(fragments, yBin, xGap), nil
}
