package dataset

import (
	"errors"
	"fmt"
	"path/filepath"
)

// ErrDataLoad matches every *DataLoadError via errors.Is.
var ErrDataLoad = errors.New("data load failed")

// Reason classifies a load failure.
type Reason string

const (
	ReasonUnreachable   Reason = "source unreachable"
	ReasonSheetMissing  Reason = "sheet not found"
	ReasonColumnMissing Reason = "missing column"
	ReasonBadValue      Reason = "unparseable value"
)

// DataLoadError reports why a source could not be turned into a Dataset.
// Row is the 1-based spreadsheet row for ReasonBadValue, 0 otherwise.
type DataLoadError struct {
	Source string
	Sheet  string
	Reason Reason
	Detail string
	Row    int
	Err    error
}

func (e *DataLoadError) Error() string {
	if e == nil {
		return ErrDataLoad.Error()
	}
	msg := fmt.Sprintf("load %s", filepath.Base(e.Source))
	if e.Sheet != "" {
		msg += fmt.Sprintf(" (sheet %q)", e.Sheet)
	}
	msg += ": " + string(e.Reason)
	if e.Row > 0 {
		msg += fmt.Sprintf(" at row %d", e.Row)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += fmt.Sprintf(": %v", e.Err)
	}
	return msg
}

func (e *DataLoadError) Unwrap() error { return e.Err }

// Is reports ErrDataLoad as a match so callers need not type-assert.
func (e *DataLoadError) Is(target error) bool { return target == ErrDataLoad }
