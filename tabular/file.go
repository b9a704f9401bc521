package tabular

import (
	"path/filepath"
	"strings"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatXLS  Format = "xls"
)

// FormatFromName picks the reader from the file extension.
func FormatFromName(name string) (Format, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	switch Format(ext) {
	case FormatCSV, FormatXLSX, FormatXLS:
		return Format(ext), nil
	}
	return "", &UnsupportedFormatError{Name: name, Extension: ext}
}

// ParsedFile is one uploaded file after parsing. Treat it as read-only.
type ParsedFile struct {
	Name     string    `json:"name"`
	Headers  []string  `json:"headers"`
	Rows     []*Record `json:"rows"`
	RowCount int       `json:"rowCount"`
}

func (f *ParsedFile) HasHeader(header string) bool {
	return f.HeaderIndex(header) >= 0
}

func (f *ParsedFile) HeaderIndex(header string) int {
	for i, h := range f.Headers {
		if h == header {
			return i
		}
	}
	return -1
}

// FindHeader returns the first header equal to one of the candidates, ignoring case.
func (f *ParsedFile) FindHeader(candidates ...string) (string, bool) {
	for _, c := range candidates {
		for _, h := range f.Headers {
			if strings.EqualFold(strings.TrimSpace(h), c) {
				return h, true
			}
		}
	}
	return "", false
}

// Preview returns at most n leading rows.
func (f *ParsedFile) Preview(n int) []*Record {
	if n < 0 || n > len(f.Rows) {
		n = len(f.Rows)
	}
	return f.Rows[:n]
}

