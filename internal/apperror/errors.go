// Package apperror defines the error taxonomy shared by every stage of a
// budgetwiz run.
package apperror

import (
	"errors"
	"fmt"
)

// Pipeline stages used to tag fatal errors.
const (
	StageLoad       = "load"
	StageCategorize = "categorize"
	StageBuild      = "build"
	StageCleanup    = "cleanup"
)

var (
	// ErrNonInteractive is returned when a category must be asked for but
	// no interactive input is available.
	ErrNonInteractive = errors.New("interactive input is not available")

	// ErrEmptyCategory is returned when the user supplies an empty label
	// and no default category is configured.
	ErrEmptyCategory = errors.New("empty category")
)

// InputError reports a missing, unreadable or malformed transaction CSV.
type InputError struct {
	Path   string
	Reason string
	Err    error
}

func (e *InputError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("input %s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("input %s: %s", e.Path, e.Reason)
}

func (e *InputError) Unwrap() error { return e.Err }

// FileFormatError reports a category store file that exists but cannot be
// read as key/category data.
type FileFormatError struct {
	Path   string
	Line   int // 0 when not tied to a line
	Reason string
	Err    error
}

func (e *FileFormatError) Error() string {
	msg := fmt.Sprintf("category store %s", e.Path)
	if e.Line > 0 {
		msg = fmt.Sprintf("%s line %d", msg, e.Line)
	}
	msg = fmt.Sprintf("%s: %s", msg, e.Reason)
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *FileFormatError) Unwrap() error { return e.Err }

// CategorizationError reports a transaction whose category could not be
// resolved.
type CategorizationError struct {
	Description string
	Line        int
	Err         error
}

func (e *CategorizationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("cannot categorize %q (line %d): %v", e.Description, e.Line, e.Err)
	}
	return fmt.Sprintf("cannot categorize %q: %v", e.Description, e.Err)
}

func (e *CategorizationError) Unwrap() error { return e.Err }

// OutputError reports a failure writing the workbook or the store file.
type OutputError struct {
	Path string
	Err  error
}

func (e *OutputError) Error() string {
	return fmt.Sprintf("cannot write %s: %v", e.Path, e.Err)
}

func (e *OutputError) Unwrap() error { return e.Err }

// RowError describes one input row that was skipped during loading. It is
// never fatal on its own.
type RowError struct {
	Line   int
	Raw    string
	Reason string
}

func (e *RowError) Error() string {
	return fmt.Sprintf("line %d: %s: %q", e.Line, e.Reason, e.Raw)
}

// StageError tags a fatal error with the pipeline stage that produced it.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// WrapStage wraps err with stage, leaving nil and already tagged errors
// untouched.
func WrapStage(stage string, err error) error {
	if err == nil {
		return nil
	}
	var se *StageError
	if errors.As(err, &se) {
		return err
	}
	return &StageError{Stage: stage, Err: err}
}

// StageOf returns the stage tag of err, or "" if it has none.
func StageOf(err error) string {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage
	}
	return ""
}
