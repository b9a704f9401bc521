package tabular

import (
	"encoding/csv"
	"io"

	"github.com/xuri/excelize/v2"
)

const (
	DefaultSheetName  = "Dados Merged"
	DefaultExportName = "merged-data"

	ContentTypeCSV  = "text/csv; charset=utf-8"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type ExportOptions struct {
	// UnionColumns writes every key seen in any record, in first-seen order.
	// When false only the keys of the first record become columns.
	UnionColumns bool
	SheetName    string
}

// Columns derives the export column order.
func Columns(records []*Record, union bool) []string {
	if len(records) == 0 {
		return nil
	}
	if !union {
		return records[0].Keys()
	}
	seen := map[string]bool{}
	var cols []string
	for _, r := range records {
		for _, k := range r.keys {
			if !seen[k] {
				seen[k] = true
				cols = append(cols, k)
			}
		}
	}
	return cols
}

func WriteCSV(w io.Writer, records []*Record, opts ExportOptions) error {
	cols := Columns(records, opts.UnionColumns)
	if len(cols) == 0 {
		return nil
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(cols); err != nil {
		return err
	}
	line := make([]string, len(cols))
	for _, r := range records {
		for i, c := range cols {
			line[i] = r.Get(c).String()
		}
		if err := cw.Write(line); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func WriteXLSX(w io.Writer, records []*Record, opts ExportOptions) error {
	sheet := opts.SheetName
	if sheet == "" {
		sheet = DefaultSheetName
	}
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}

	cols := Columns(records, opts.UnionColumns)
	if len(cols) > 0 {
		header := make([]interface{}, len(cols))
		for i, c := range cols {
			header[i] = c
		}
		if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
			return err
		}
		for n, r := range records {
			row := make([]interface{}, len(cols))
			for i, c := range cols {
				row[i] = cellValue(r.Get(c))
			}
			cell, err := excelize.CoordinatesToCellName(1, n+2)
			if err != nil {
				return err
			}
			if err := f.SetSheetRow(sheet, cell, &row); err != nil {
				return err
			}
		}
	}
	return f.Write(w)
}

func cellValue(v Value) interface{} {
	switch v.Kind() {
	case KindNumber:
		n, _ := v.Float()
		return n
	case KindBool:
		b, _ := v.Bool()
		return b
	case KindString:
		return v.String()
	default:
		return nil
	}
}
