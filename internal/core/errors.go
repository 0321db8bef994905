package core

// errors.go defines the upload error taxonomy.
//
// Every rejection is a *Error carrying a Kind plus whatever context the
// failing rule knows about (field, row, limit, downstream cause). The
// Error() text is the exact message returned to the caller, so tests and
// clients can rely on it.

import (
	"errors"
	"fmt"
)

// Kind classifies an upload failure.
type Kind int

const (
	KindUnknown Kind = iota
	KindUnsupportedFormat
	KindEmptyFile
	KindMalformedCSV
	KindHeaderMismatch
	KindEmptyData
	KindRowCountExceeded
	KindFieldValidation
	KindForwarding
	KindNotificationDelivery
)

var kindNames = map[Kind]string{
	KindUnsupportedFormat:    "UnsupportedFormatError",
	KindEmptyFile:            "EmptyFileError",
	KindMalformedCSV:         "MalformedCSVError",
	KindHeaderMismatch:       "HeaderMismatchError",
	KindEmptyData:            "EmptyDataError",
	KindRowCountExceeded:     "RowCountExceededError",
	KindFieldValidation:      "FieldValidationError",
	KindForwarding:           "ForwardingError",
	KindNotificationDelivery: "NotificationDeliveryError",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "UnknownError"
}

// ClientError reports whether the failure was caused by the uploaded content
// rather than by a downstream system.
func (k Kind) ClientError() bool {
	switch k {
	case KindForwarding, KindNotificationDelivery, KindUnknown:
		return false
	}
	return true
}

// Error is an upload failure with structured context.
type Error struct {
	Kind  Kind
	Field string // column name for KindFieldValidation
	Row   int    // data row (validation) or batch row (forwarding), 1-based
	Limit int    // allowed rows for KindRowCountExceeded
	Err   error  // underlying cause, if any
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindUnsupportedFormat:
		return "Please upload a CSV file"
	case KindEmptyFile:
		return "File is empty"
	case KindMalformedCSV:
		return "Invalid CSV format"
	case KindHeaderMismatch:
		return "Invalid CSV headers"
	case KindEmptyData:
		return "File has no data"
	case KindRowCountExceeded:
		return fmt.Sprintf("Only %d rows are allowed", e.Limit)
	case KindFieldValidation:
		if e.Field == "" {
			return fmt.Sprintf("Invalid number of columns at row %d", e.Row)
		}
		return fmt.Sprintf("Invalid %s at row %d", e.Field, e.Row)
	case KindForwarding:
		return fmt.Sprintf("Error sending row %d", e.Row)
	case KindNotificationDelivery:
		return "Notification delivery failed"
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "upload failed"
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same Kind, so callers can write
// errors.Is(err, core.ErrHeaderMismatch).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// Sentinels for errors.Is checks.
var (
	ErrUnsupportedFormat    = &Error{Kind: KindUnsupportedFormat}
	ErrEmptyFile            = &Error{Kind: KindEmptyFile}
	ErrMalformedCSV         = &Error{Kind: KindMalformedCSV}
	ErrHeaderMismatch       = &Error{Kind: KindHeaderMismatch}
	ErrEmptyData            = &Error{Kind: KindEmptyData}
	ErrRowCountExceeded     = &Error{Kind: KindRowCountExceeded}
	ErrFieldValidation      = &Error{Kind: KindFieldValidation}
	ErrForwarding           = &Error{Kind: KindForwarding}
	ErrNotificationDelivery = &Error{Kind: KindNotificationDelivery}
)

// KindOf returns the Kind of err, or KindUnknown when err is not a *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func fieldError(field string, row int) *Error {
	return &Error{Kind: KindFieldValidation, Field: field, Row: row}
}
