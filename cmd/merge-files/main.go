// merge-files runs the left join of the merge wizard on local spreadsheets.
//
// Usage:
//
//	go run ./cmd/merge-files --main leads.csv --out merged.xlsx emails.xlsx notes.csv
package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/barrosyan/sistema-pronto/config"
	"github.com/barrosyan/sistema-pronto/merge"
	"github.com/barrosyan/sistema-pronto/tabular"
	"github.com/spf13/cobra"
)

type mergeOptions struct {
	mainFile      string
	secondaries   []string
	strategy      string
	keyColumn     string
	secondaryKeys []string
	out           string
	sheet         string
	unionColumns  bool
}

func newMergeCmd() *cobra.Command {
	var opts mergeOptions

	cmd := &cobra.Command{
		Use:   "merge-files [secondary files...]",
		Short: "Left join spreadsheets on a lead key",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.secondaries = args
			summary, err := runMerge(opts)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d rows by %s on %q\n", opts.out, summary.ResultRows, summary.Strategy, summary.KeyColumn)
			for _, s := range summary.Secondaries {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s%s matched %d of %d rows (%d duplicate keys)\n", s.Prefix, s.File, s.Matched, s.Rows, s.DuplicateKeys)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.mainFile, "main", "", "Main file; every row is kept (required)")
	cmd.Flags().StringVar(&opts.strategy, "strategy", string(merge.DefaultStrategy), "Match strategy: exact-name, normalized-name or linkedin-url")
	cmd.Flags().StringVar(&opts.keyColumn, "key", "", "Key column of the main file (default: detected from the strategy)")
	cmd.Flags().StringSliceVar(&opts.secondaryKeys, "secondary-key", nil, "Key column of a secondary file as position=column, position starts at 0")
	cmd.Flags().StringVar(&opts.out, "out", tabular.DefaultExportName+".csv", "Output file, .csv or .xlsx")
	cmd.Flags().StringVar(&opts.sheet, "sheet", tabular.DefaultSheetName, "Sheet name of xlsx output")
	cmd.Flags().BoolVar(&opts.unionColumns, "union-columns", config.ExportUnionColumns(), "Export the union of all record columns")
	_ = cmd.MarkFlagRequired("main")
	return cmd
}

func parseSecondaryKeys(pairs []string) (map[int]string, error) {
	out := map[int]string{}
	for _, p := range pairs {
		pos, col, ok := strings.Cut(p, "=")
		if !ok {
			return nil, fmt.Errorf("secondary key %q must be position=column", p)
		}
		i, err := strconv.Atoi(strings.TrimSpace(pos))
		if err != nil || i < 0 {
			return nil, fmt.Errorf("secondary key %q has an invalid position", p)
		}
		out[i] = strings.TrimSpace(col)
	}
	return out, nil
}

func readFile(name string) (*tabular.ParsedFile, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return tabular.Parse(filepath.Base(name), f)
}

func runMerge(opts mergeOptions) (*merge.Summary, error) {
	strategy, err := merge.ParseStrategy(opts.strategy)
	if err != nil {
		return nil, err
	}
	keys, err := parseSecondaryKeys(opts.secondaryKeys)
	if err != nil {
		return nil, err
	}
	main, err := readFile(opts.mainFile)
	if err != nil {
		return nil, err
	}
	secondaries := make([]*tabular.ParsedFile, 0, len(opts.secondaries))
	for _, name := range opts.secondaries {
		f, err := readFile(name)
		if err != nil {
			return nil, err
		}
		secondaries = append(secondaries, f)
	}

	result, err := merge.LeftJoin(main, secondaries, merge.Options{Strategy: strategy, KeyColumn: opts.keyColumn, SecondaryKeyColumns: keys})
	if err != nil {
		return nil, err
	}

	export := tabular.ExportOptions{UnionColumns: opts.unionColumns, SheetName: opts.sheet}
	var buf bytes.Buffer
	switch strings.ToLower(filepath.Ext(opts.out)) {
	case ".csv":
		err = tabular.WriteCSV(&buf, result.Records, export)
	case ".xlsx":
		err = tabular.WriteXLSX(&buf, result.Records, export)
	default:
		err = fmt.Errorf("output %s must end in .csv or .xlsx", opts.out)
	}
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(opts.out, buf.Bytes(), 0o644); err != nil {
		return nil, err
	}
	return &result.Summary, nil
}

func main() {
	if err := newMergeCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
