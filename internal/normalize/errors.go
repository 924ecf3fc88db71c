package normalize

import (
	"errors"
	"fmt"
)

// InvalidFieldError reports a raw value that cannot be mapped onto its
// enum or type (unknown size, unknown color, unparsable amount, ...).
//
// It is row-scoped: the ingestion loop skips the record and continues.
type InvalidFieldError struct {
	// Field is the raw field name, e.g. "size".
	Field string

	// Raw is the offending value as received.
	Raw string

	// Reason optionally narrows down what went wrong.
	Reason string
}

// Error implements the error interface.
func (e *InvalidFieldError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Raw, e.Reason)
	}
	return fmt.Sprintf("invalid %s %q", e.Field, e.Raw)
}

// EmptyDataError reports a structurally required field (phone, category
// title, product title) that is empty after cleaning.
//
// It is row-scoped, same as InvalidFieldError.
type EmptyDataError struct {
	Reason  string
	Context string
}

// Error implements the error interface.
func (e *EmptyDataError) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("%s (%s)", e.Reason, e.Context)
	}
	return e.Reason
}

func invalid(field, raw string) *InvalidFieldError {
	return &InvalidFieldError{Field: field, Raw: raw}
}

// IsInvalidField returns true if err is or wraps an InvalidFieldError.
func IsInvalidField(err error) bool {
	var ie *InvalidFieldError
	return errors.As(err, &ie)
}

// IsEmptyData returns true if err is or wraps an EmptyDataError.
func IsEmptyData(err error) bool {
	var ee *EmptyDataError
	return errors.As(err, &ee)
}

// IsRowError reports whether err only disqualifies the current record.
// Row errors are skipped by the ingestion loop; anything else is fatal.
func IsRowError(err error) bool {
	return IsInvalidField(err) || IsEmptyData(err)
}
