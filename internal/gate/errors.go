package gate

import (
	"fmt"
	"strings"
)

// Code classifies a validation failure.
type Code string

const (
	// CodeManifest: manifest missing or unparseable.
	CodeManifest Code = "MANIFEST_ERROR"
	// CodeFileValidation: a declared file failed its kind-specific check.
	CodeFileValidation Code = "FILE_VALIDATION"
	// CodeEntryResolution: a declared entry point does not exist.
	CodeEntryResolution Code = "ENTRY_RESOLUTION"
	// CodeUnexpectedFiles: undeclared files found in the package
	// directory. The only batched failure kind.
	CodeUnexpectedFiles Code = "UNEXPECTED_FILES"
	// CodeStructural: an unexpected filesystem entry met while scanning.
	CodeStructural Code = "STRUCTURAL"
)

// Failure is the typed result of a failed run. It propagates up to the
// top-level handler, which is the only place that exits the process.
type Failure struct {
	Code    Code
	Message string
	Err     error
	// Paths carries the batched file list for CodeUnexpectedFiles.
	Paths []string
}

func (f *Failure) Error() string {
	msg := fmt.Sprintf("[%s] %s", f.Code, f.Message)
	if f.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, f.Err)
	}
	if len(f.Paths) > 0 {
		msg += "\n  " + strings.Join(f.Paths, "\n  ")
	}
	return msg
}

func (f *Failure) Unwrap() error {
	return f.Err
}

func newFailure(code Code, msg string, err error) *Failure {
	return &Failure{Code: code, Message: msg, Err: err}
}
