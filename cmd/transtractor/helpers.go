package main

import (
	"log/slog"

	"github.com/spf13/viper"

	"github.com/insightdelivered/transtractor/internal/parser"
)

// newParser builds a session parser with the built-in descriptors plus
// any extras named in config or on the command line.
func newParser() (*parser.Parser, error) {
	p, err := parser.New(slog.Default())
	if err != nil {
		return nil, err
	}
	for _, path := range viper.GetStringSlice("descriptors") {
		if err := p.Load(path); err != nil {
			return nil, err
		}
	}
	return p, nil
}
