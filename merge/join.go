// Package merge left-joins uploaded spreadsheets on a lead identity key.
package merge

import (
	"fmt"

	"github.com/barrosyan/sistema-pronto/tabular"
)

// EmptyMarker fills every column of a secondary file that had no match.
const EmptyMarker = ""

type Options struct {
	Strategy Strategy `json:"strategy"`
	// KeyColumn is the main file column holding the key. Resolved from the
	// strategy's usual header names when blank.
	KeyColumn string `json:"keyColumn,omitempty"`
	// SecondaryKeyColumns overrides the key column per secondary position.
	SecondaryKeyColumns map[int]string `json:"secondaryKeyColumns,omitempty"`
}

type SecondarySummary struct {
	File          string `json:"file"`
	Prefix        string `json:"prefix"`
	KeyColumn     string `json:"keyColumn,omitempty"`
	Rows          int    `json:"rows"`
	Matched       int    `json:"matched"`
	DuplicateKeys int    `json:"duplicateKeys"`
}

type Summary struct {
	Strategy     Strategy           `json:"strategy"`
	MainFile     string             `json:"mainFile"`
	KeyColumn    string             `json:"keyColumn"`
	OriginalRows int                `json:"originalRows"`
	ResultRows   int                `json:"resultRows"`
	Secondaries  []SecondarySummary `json:"secondaries"`
}

type Result struct {
	Records []*tabular.Record `json:"records"`
	Summary Summary           `json:"summary"`
}

type secondaryIndex struct {
	prefix  string
	columns []string
	rows    map[string]*tabular.Record
	summary *SecondarySummary
}

// Prefix is the namespace of the secondary file at position i. Main is file1.
func Prefix(i int) string {
	return fmt.Sprintf("file%d_", i+2)
}

// LeftJoin keeps every main row in order and attaches at most one row from each
// secondary file. The first secondary row carrying a key wins.
func LeftJoin(main *tabular.ParsedFile, secondaries []*tabular.ParsedFile, opts Options) (*Result, error) {
	if main == nil {
		return nil, &JoinConfigError{Reason: "main file is required"}
	}
	strategy := opts.Strategy
	if strategy == "" {
		strategy = DefaultStrategy
	}
	if !strategy.Valid() {
		return nil, &JoinConfigError{File: main.Name, Reason: fmt.Sprintf("unknown strategy %q", strategy)}
	}
	mainKey, err := resolveMainKey(main, strategy, opts.KeyColumn)
	if err != nil {
		return nil, err
	}

	summary := Summary{
		Strategy:     strategy,
		MainFile:     main.Name,
		KeyColumn:    mainKey,
		OriginalRows: main.RowCount,
		Secondaries:  make([]SecondarySummary, len(secondaries)),
	}
	indexes := make([]*secondaryIndex, 0, len(secondaries))
	for i, sec := range secondaries {
		idx, err := buildIndex(i, sec, strategy, mainKey, opts.SecondaryKeyColumns[i], &summary.Secondaries[i])
		if err != nil {
			return nil, err
		}
		indexes = append(indexes, idx)
	}

	records := make([]*tabular.Record, 0, len(main.Rows))
	for _, row := range main.Rows {
		rec := row.Clone()
		key := strategy.NormalizeKey(row.Get(mainKey).String())
		for _, idx := range indexes {
			var match *tabular.Record
			if key != "" {
				match = idx.rows[key]
			}
			if match != nil {
				idx.summary.Matched++
			}
			for _, col := range idx.columns {
				v := tabular.String(EmptyMarker)
				if match != nil {
					if mv := match.Get(col); !mv.IsAbsent() {
						v = mv
					}
				}
				// main columns are never overwritten
				rec.SetIfMissing(idx.prefix+col, v)
			}
		}
		records = append(records, rec)
	}
	summary.ResultRows = len(records)

	return &Result{Records: records, Summary: summary}, nil
}

func resolveMainKey(main *tabular.ParsedFile, strategy Strategy, requested string) (string, error) {
	if requested != "" {
		if !main.HasHeader(requested) {
			return "", &JoinConfigError{File: main.Name, Column: requested, Reason: "does not exist"}
		}
		return requested, nil
	}
	if h, ok := main.FindHeader(strategy.keyCandidates()...); ok {
		return h, nil
	}
	return "", &JoinConfigError{File: main.Name, Reason: fmt.Sprintf("no key column found for strategy %s", strategy)}
}

func buildIndex(i int, sec *tabular.ParsedFile, strategy Strategy, mainKey, requested string, summary *SecondarySummary) (*secondaryIndex, error) {
	idx := &secondaryIndex{
		prefix:  Prefix(i),
		rows:    map[string]*tabular.Record{},
		summary: summary,
	}
	summary.Prefix = idx.prefix
	if sec == nil {
		return idx, nil
	}
	summary.File = sec.Name
	summary.Rows = sec.RowCount

	key := requested
	if key != "" && !sec.HasHeader(key) {
		return nil, &JoinConfigError{File: sec.Name, Column: key, Reason: "does not exist"}
	}
	if key == "" {
		key, _ = sec.FindHeader(append([]string{mainKey}, strategy.keyCandidates()...)...)
	}
	summary.KeyColumn = key

	for _, h := range sec.Headers {
		if key != "" && h == key {
			continue
		}
		idx.columns = append(idx.columns, h)
	}
	if key == "" {
		return idx, nil
	}
	for _, row := range sec.Rows {
		k := strategy.NormalizeKey(row.Get(key).String())
		if k == "" {
			continue
		}
		if _, taken := idx.rows[k]; taken {
			summary.DuplicateKeys++
			continue
		}
		idx.rows[k] = row
	}
	return idx, nil
}

// Secondaries returns every file except the one at mainIndex, keeping order.
func Secondaries(files []*tabular.ParsedFile, mainIndex int) []*tabular.ParsedFile {
	out := make([]*tabular.ParsedFile, 0, len(files))
	for i, f := range files {
		if i != mainIndex {
			out = append(out, f)
		}
	}
	return out
}
