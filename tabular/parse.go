// Package tabular turns csv, xlsx and xls uploads into ordered rows keyed by header,
// and writes merged rows back out as csv or xlsx.
package tabular

import (
	"fmt"
	"io"
	"strings"
)

// Parse buffers the whole input and dispatches on the file extension.
func Parse(name string, r io.Reader) (*ParsedFile, error) {
	format, err := FormatFromName(name)
	if err != nil {
		return nil, err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &ParseError{Name: name, Err: err}
	}
	return ParseBytes(name, format, data)
}

func ParseBytes(name string, format Format, data []byte) (*ParsedFile, error) {
	var (
		grid [][]Value
		err  error
	)
	switch format {
	case FormatCSV:
		grid, err = readCSV(data)
	case FormatXLSX:
		grid, err = readXLSX(data)
	case FormatXLS:
		grid, err = readXLS(data)
	default:
		return nil, &UnsupportedFormatError{Name: name, Extension: string(format)}
	}
	if err != nil {
		return nil, &ParseError{Name: name, Err: err}
	}
	file, err := fromGrid(name, grid)
	if err != nil {
		return nil, &ParseError{Name: name, Err: err}
	}
	return file, nil
}

// fromGrid zips every row after the header against the header positionally.
// Missing trailing cells become absent, extra cells are dropped, blank rows are skipped.
func fromGrid(name string, grid [][]Value) (*ParsedFile, error) {
	start := 0
	for start < len(grid) && blankRow(grid[start]) {
		start++
	}
	if start == len(grid) {
		return nil, ErrEmptyFile
	}
	headers := headerNames(grid[start])
	if len(headers) == 0 {
		return nil, ErrEmptyHeader
	}

	rows := make([]*Record, 0, len(grid)-start-1)
	for _, cells := range grid[start+1:] {
		if blankRow(cells) {
			continue
		}
		rec := NewRecord(len(headers))
		for i, h := range headers {
			if i < len(cells) {
				rec.Set(h, cells[i])
			} else {
				rec.Set(h, Absent())
			}
		}
		rows = append(rows, rec)
	}

	return &ParsedFile{
		Name:     name,
		Headers:  headers,
		Rows:     rows,
		RowCount: len(rows),
	}, nil
}

// headerNames trims the header cells, drops trailing blanks and
// disambiguates repeats with a numeric suffix.
func headerNames(cells []Value) []string {
	end := len(cells)
	for end > 0 && cells[end-1].IsEmpty() {
		end--
	}
	headers := make([]string, 0, end)
	used := make(map[string]bool, end)
	next := make(map[string]int, end)
	for i := 0; i < end; i++ {
		h := strings.TrimSpace(cells[i].String())
		if h == "" {
			h = fmt.Sprintf("Column%d", i+1)
		}
		if used[h] {
			base := h
			n := next[base]
			for n < 1 || used[h] {
				n++
				h = fmt.Sprintf("%s_%d", base, n)
			}
			next[base] = n
		}
		used[h] = true
		headers = append(headers, h)
	}
	return headers
}

func blankRow(cells []Value) bool {
	for _, c := range cells {
		if !c.IsEmpty() {
			return false
		}
	}
	return true
}
