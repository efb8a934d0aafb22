package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/insightdelivered/transtractor/internal/batch"
)

func testCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "test <directory>",
		Short: "Parse every PDF under a directory and report the results",
		Long: `Test runs the full parse pipeline over a statement corpus. Failures
are collected, not fatal; the per-file outcome lands in a results CSV
so descriptor changes can be diffed against the previous run.`,
		Args: cobra.ExactArgs(1),
		RunE: runTest,
	}
	cmd.Flags().StringP("output", "o", "results.csv", "results CSV path")
	cmd.Flags().IntP("workers", "w", 4, "parallel workers")
	cmd.Flags().Bool("no-progress", false, "disable the progress bar")
	return cmd
}

func runTest(cmd *cobra.Command, args []string) error {
	p, err := newParser()
	if err != nil {
		return err
	}
	workers, _ := cmd.Flags().GetInt("workers")
	noProgress, _ := cmd.Flags().GetBool("no-progress")
	runner := &batch.Runner{
		Parser:   p,
		Log:      slog.Default(),
		Workers:  workers,
		Progress: !noProgress,
	}

	results, err := runner.Run(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	output, _ := cmd.Flags().GetString("output")
	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("failed to create results file %q: %w", output, err)
	}
	defer f.Close()
	if err := batch.WriteResults(f, results); err != nil {
		return err
	}

	fmt.Fprintln(os.Stderr, batch.Summary(results))
	return nil
}
