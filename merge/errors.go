package merge

import (
	"errors"
	"fmt"
)

var (
	ErrStaleResult    = errors.New("merge result is stale: files or configuration changed")
	ErrNotEnoughFiles = errors.New("at least 2 files are required to merge")
	ErrNoResult       = errors.New("no merge preview available")
	ErrFileIndex      = errors.New("file index out of range")
	ErrNotConfirmed   = errors.New("merge preview must be confirmed before export")
)

// JoinConfigError reports an unusable key column selection. It is raised before any row is read.
type JoinConfigError struct {
	File   string
	Column string
	Reason string
}

func (e *JoinConfigError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("join config: %s in %q", e.Reason, e.File)
	}
	return fmt.Sprintf("join config: column %q %s in %q", e.Column, e.Reason, e.File)
}
