package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func debugCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "debug <statement.pdf>",
		Short: "Show how every candidate format reads a statement",
		Long: `Debug runs each candidate format to completion and prints its field
matches, transaction count and quality findings. Unlike parse it never
stops at the first clean result, so a format author can see exactly
where a descriptor's rules go wrong.`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			p, err := newParser()
			if err != nil {
				return err
			}
			report, err := p.DebugFile(args[0])
			if err != nil {
				return err
			}
			fmt.Print(report)
			return nil
		},
	}
}
