package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/insightdelivered/transtractor/internal/writer"
)

func parseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse <statement.pdf>",
		Short: "Extract transactions from a statement PDF",
		Long: `Parse identifies the statement's format, extracts its transactions and
writes them as CSV. The document is rejected when no format produces
error-free data; use the debug command to see why.`,
		Args: cobra.ExactArgs(1),
		RunE: runParse,
	}
	cmd.Flags().StringP("output", "o", "", "write CSV to file instead of stdout")
	cmd.Flags().StringSlice("fields", nil, "CSV columns (date, date_index, description, amount, balance, key, filename, account_number)")
	cmd.Flags().Bool("no-header", false, "omit the CSV header row")
	return cmd
}

func runParse(cmd *cobra.Command, args []string) error {
	p, err := newParser()
	if err != nil {
		return err
	}
	data, err := p.ParseFile(args[0])
	if err != nil {
		return err
	}

	fields, _ := cmd.Flags().GetStringSlice("fields")
	noHeader, _ := cmd.Flags().GetBool("no-header")
	w := &writer.CSVWriter{Fields: fields, IncludeHeader: !noHeader}

	output, _ := cmd.Flags().GetString("output")
	if output != "" {
		if err := w.WriteToFile(output, data); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "%s: %d transactions (%s)\n", output, len(data.Transactions), data.Key)
		return nil
	}
	return w.Write(os.Stdout, data)
}
