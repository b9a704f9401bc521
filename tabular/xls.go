package tabular

import (
	"bytes"
	"fmt"

	"github.com/extrame/xls"
)

// readXLS reads the first sheet of a legacy BIFF workbook as displayed strings.
func readXLS(data []byte) (grid [][]Value, err error) {
	// the BIFF reader panics on some truncated streams
	defer func() {
		if r := recover(); r != nil {
			grid = nil
			err = fmt.Errorf("corrupt xls workbook: %v", r)
		}
	}()

	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, err
	}
	if wb.NumSheets() == 0 {
		return nil, ErrEmptyFile
	}
	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, ErrEmptyFile
	}

	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			grid = append(grid, nil)
			continue
		}
		cells := make([]Value, 0, row.LastCol())
		for c := 0; c < row.LastCol(); c++ {
			text := row.Col(c)
			if text == "" {
				cells = append(cells, Absent())
				continue
			}
			cells = append(cells, String(text))
		}
		grid = append(grid, cells)
	}
	return grid, nil
}
