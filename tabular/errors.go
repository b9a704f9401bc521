package tabular

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyFile   = errors.New("file has no header row")
	ErrEmptyHeader = errors.New("header row is empty")
)

// UnsupportedFormatError is returned for extensions other than csv, xlsx and xls.
type UnsupportedFormatError struct {
	Name      string
	Extension string
}

func (e *UnsupportedFormatError) Error() string {
	if e.Extension == "" {
		return fmt.Sprintf("unsupported file format for %q: use csv, xlsx or xls", e.Name)
	}
	return fmt.Sprintf("unsupported file format %q for %q: use csv, xlsx or xls", e.Extension, e.Name)
}

// ParseError wraps the decode failure of a single file.
type ParseError struct {
	Name string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %q: %v", e.Name, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
