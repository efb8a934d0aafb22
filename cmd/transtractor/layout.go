package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func layoutCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "layout <statement.pdf>",
		Short: "Print a statement's reconstructed layout text",
		Long: `Layout prints every positioned text block in reading order, one
reconstructed line per output line. Descriptor authors read this to
find the coordinate ranges and terms a new format needs.`,
		Args: cobra.ExactArgs(1),
		RunE: runLayout,
	}
	cmd.Flags().Float64("y-bin", 6, "vertical bucket size for line clustering (0 = natural order)")
	cmd.Flags().Float64("x-gap", 1.5, "horizontal merge threshold in character widths (0 = no merging)")
	return cmd
}

func runLayout(cmd *cobra.Command, args []string) error {
	p, err := newParser()
	if err != nil {
		return err
	}
	yBin, _ := cmd.Flags().GetFloat64("y-bin")
	xGap, _ := cmd.Flags().GetFloat64("x-gap")
	text, err := p.LayoutFile(args[0], yBin, xGap)
	if err != nil {
		return err
	}
	fmt.Print(text)
	return nil
}
