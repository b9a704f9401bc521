package tabular

import (
	"bytes"
	"regexp"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

var dateLike = regexp.MustCompile(`^\d{1,4}-\d{1,2}-\d{1,4}`)

// readXLSX reads the first sheet. Numeric cells stay numbers unless they are shown as dates.
func readXLSX(data []byte) ([][]Value, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyFile
	}
	sheet := sheets[0]

	shown, err := f.GetRows(sheet)
	if err != nil {
		return nil, err
	}
	raw, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, err
	}

	grid := make([][]Value, len(shown))
	for r, row := range shown {
		cells := make([]Value, len(row))
		for c, text := range row {
			rawText := text
			if r < len(raw) && c < len(raw[r]) {
				rawText = raw[r][c]
			}
			cells[c] = xlsxCell(f, sheet, c, r, text, rawText)
		}
		grid[r] = cells
	}
	return grid, nil
}

func xlsxCell(f *excelize.File, sheet string, col, row int, text, rawText string) Value {
	if text == "" && rawText == "" {
		return Absent()
	}
	name, err := excelize.CoordinatesToCellName(col+1, row+1)
	if err != nil {
		return String(text)
	}
	typ, err := f.GetCellType(sheet, name)
	if err != nil {
		return String(text)
	}
	switch typ {
	case excelize.CellTypeBool:
		return Bool(rawText == "1" || strings.EqualFold(rawText, "true"))
	case excelize.CellTypeNumber, excelize.CellTypeUnset:
		if isDateText(text) {
			return String(text)
		}
		if n, err := strconv.ParseFloat(strings.TrimSpace(rawText), 64); err == nil {
			return Number(n)
		}
	}
	return String(text)
}

func isDateText(s string) bool {
	return strings.ContainsAny(s, "/:") || dateLike.MatchString(s)
}
