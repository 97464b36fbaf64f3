package spreadsheet

import (
	"errors"
	"fmt"
)

// AppErrorCode represents gRPC-style error codes for command-level errors.
// codes that don't make sense for a local engine (unauthenticated, permission
// denied, etc.) are skipped.
type AppErrorCode int

const (
	// OK indicates the operation completed successfully.
	OK AppErrorCode = 0

	// Unknown error.
	Unknown AppErrorCode = 2

	// InvalidArgument indicates the command carried an invalid argument,
	// usually a cell or range label that fails the reference grammar.
	InvalidArgument AppErrorCode = 3

	// NotFound means a requested entity (e.g. a stored sheet) was not found.
	NotFound AppErrorCode = 5

	// OutOfRange means a write was attempted past the sheet's bounds.
	OutOfRange AppErrorCode = 11

	// Unimplemented indicates a command tag the executor does not support.
	Unimplemented AppErrorCode = 12

	// Internal errors. Some invariant expected by the engine has been broken.
	Internal AppErrorCode = 13
)

var appErrorNames = map[AppErrorCode]string{
	OK:              "OK",
	Unknown:         "UNKNOWN",
	InvalidArgument: "INVALID_ARGUMENT",
	NotFound:        "NOT_FOUND",
	OutOfRange:      "OUT_OF_RANGE",
	Unimplemented:   "UNIMPLEMENTED",
	Internal:        "INTERNAL",
}

func (c AppErrorCode) String() string {
	if name, ok := appErrorNames[c]; ok {
		return name
	}
	return fmt.Sprintf("CODE(%d)", int(c))
}

// AppError represents errors at the command boundary (not formula errors,
// which are values).
type AppError struct {
	Code    AppErrorCode
	Message string
}

func (e *AppError) Error() string {
	return e.Message
}

// NewApplicationError creates a new application error
func NewApplicationError(code AppErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

func newInvalidReference(label string) *AppError {
	return NewApplicationError(InvalidArgument, fmt.Sprintf("invalid reference: %q", label))
}

func newUnsupportedCommand(kind string) *AppError {
	return NewApplicationError(Unimplemented, fmt.Sprintf("unsupported command: %q", kind))
}

func hasCode(err error, code AppErrorCode) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

// IsInvalidReference reports whether err rejected a command because of a
// malformed cell or range label.
func IsInvalidReference(err error) bool {
	return hasCode(err, InvalidArgument)
}

// IsUnsupportedCommand reports whether err came from a command the executor
// does not recognize.
func IsUnsupportedCommand(err error) bool {
	return hasCode(err, Unimplemented)
}

// IsOutOfRange reports whether err rejected a write beyond the sheet bounds.
func IsOutOfRange(err error) bool {
	return hasCode(err, OutOfRange)
}

// ErrorCode represents the formula error codes. every one of them renders
// as the same #ERROR marker in a cell; the code only keeps the cause.
type ErrorCode uint8

const (
	ErrorCodeOther    ErrorCode = 1 // any other evaluation failure
	ErrorCodeDiv0     ErrorCode = 2 // division by zero
	ErrorCodeValue    ErrorCode = 3 // malformed expression
	ErrorCodeRef      ErrorCode = 4 // malformed reference inside a formula
	ErrorCodeName     ErrorCode = 5 // unrecognized function name
	ErrorCodeNum      ErrorCode = 6 // result is NaN or infinite
	ErrorCodeCircular ErrorCode = 7 // formula is part of a reference cycle
)

// ErrorMapper maps error codes to a short description of the cause.
var ErrorMapper = map[ErrorCode]string{
	ErrorCodeOther:    "evaluation failed",
	ErrorCodeDiv0:     "division by zero",
	ErrorCodeValue:    "malformed expression",
	ErrorCodeRef:      "invalid reference",
	ErrorCodeName:     "unknown function",
	ErrorCodeNum:      "result is not a finite number",
	ErrorCodeCircular: "circular reference",
}

// SpreadsheetError preserves the cause of a formula failure. it never
// escapes evaluation; the evaluator turns it into an error value.
type SpreadsheetError struct {
	ErrorCode ErrorCode
	Message   string
}

func (e *SpreadsheetError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return ErrorMapper[e.ErrorCode]
}

func NewSpreadsheetError(code ErrorCode, message string) *SpreadsheetError {
	if message == "" {
		message = ErrorMapper[code]
	}
	return &SpreadsheetError{
		ErrorCode: code,
		Message:   message,
	}
}
