package payroll

import (
	"errors"
	"fmt"
	"strconv"
)

var ErrInvalidSchedule = errors.New("invalid tax schedule")

type InvalidNumberError struct {
	Field string
	Value string
}

func (e *InvalidNumberError) Error() string {
	return fmt.Sprintf("invalid number for %q: %s", e.Field, e.Value)
}

type NegativeValueError struct {
	Field string
	Value float64
}

func (e *NegativeValueError) Error() string {
	return fmt.Sprintf("negative value not allowed for %q: %s", e.Field, strconv.FormatFloat(e.Value, 'f', -1, 64))
}

type MissingIdentityError struct {
	Field string
}

func (e *MissingIdentityError) Error() string {
	return fmt.Sprintf("employee must have non-empty %q", e.Field)
}

type MalformedInputError struct {
	Field  string
	Reason string
}

func (e *MalformedInputError) Error() string {
	return fmt.Sprintf("malformed %s: %s", e.Field, e.Reason)
}

// RecordError ties a per-record failure to its position in the batch.
type RecordError struct {
	Index int
	ID    string
	Err   error
}

func (e *RecordError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("record %d (%s): %v", e.Index, e.ID, e.Err)
	}
	return fmt.Sprintf("record %d: %v", e.Index, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}

// FieldOf returns the input field a validation error refers to, or "".
func FieldOf(err error) string {
	var invalid *InvalidNumberError
	if errors.As(err, &invalid) {
		return invalid.Field
	}
	var negative *NegativeValueError
	if errors.As(err, &negative) {
		return negative.Field
	}
	var missing *MissingIdentityError
	if errors.As(err, &missing) {
		return missing.Field
	}
	var malformed *MalformedInputError
	if errors.As(err, &malformed) {
		return malformed.Field
	}
	return ""
}
