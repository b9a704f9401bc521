package tabular

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
)

// readCSV decodes delimited text into a grid of string cells.
func readCSV(data []byte) ([][]Value, error) {
	text, _, err := decodeText(data)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(bytes.NewReader(text))
	reader.Comma = detectDelimiter(text)
	// Row widths are reconciled against the header later.
	reader.FieldsPerRecord = -1

	var grid [][]Value
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		cells := make([]Value, len(row))
		for i, cell := range row {
			cells[i] = String(cell)
		}
		grid = append(grid, cells)
	}
	return grid, nil
}

// detectDelimiter counts candidate separators on the header record outside
// quotes. Newlines inside quoted fields do not end the record.
func detectDelimiter(text []byte) rune {
	counts := map[rune]int{}
	inQuotes := false
scan:
	for _, b := range text {
		switch b {
		case '"':
			inQuotes = !inQuotes
		case '\n':
			if !inQuotes {
				break scan
			}
		case ',', ';', '\t':
			if !inQuotes {
				counts[rune(b)]++
			}
		}
	}
	best := ','
	for _, c := range []rune{';', '\t'} {
		if counts[c] > counts[best] {
			best = c
		}
	}
	return best
}
