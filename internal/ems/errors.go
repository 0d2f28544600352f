package ems

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes reservation engine failures.
type ErrorCode string

const (
	// CodeEventNotFound indicates no event with the requested id exists.
	CodeEventNotFound ErrorCode = "EVENT_NOT_FOUND"

	// CodeDuplicateEvent indicates an event with the same id already exists.
	CodeDuplicateEvent ErrorCode = "DUPLICATE_EVENT"

	// CodeInvalidSeat indicates a requested seat lies outside the grid.
	CodeInvalidSeat ErrorCode = "INVALID_SEAT"

	// CodeSeatAlreadyReserved indicates a requested seat is taken.
	CodeSeatAlreadyReserved ErrorCode = "SEAT_ALREADY_RESERVED"

	// CodeDuplicateSeatInRequest indicates the same seat appears twice in one request.
	CodeDuplicateSeatInRequest ErrorCode = "DUPLICATE_SEAT_IN_REQUEST"

	// CodeAllocationFailure indicates the seat grid could not be allocated.
	CodeAllocationFailure ErrorCode = "ALLOCATION_FAILURE"

	// CodeStreamIO indicates reading a script or writing output failed.
	CodeStreamIO ErrorCode = "STREAM_IO_ERROR"
)

// Error is the error type returned by Table operations.
//
// Two errors are equal under errors.Is when their codes match, so callers
// can compare against the sentinels regardless of the context fields.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// EventID is the event the operation targeted, if any.
	EventID uint32

	// Seat is the offending seat for seat-level failures.
	Seat *Seat

	// Err is the underlying cause (I/O errors).
	Err error
}

// Sentinels for errors.Is matching.
var (
	ErrEventNotFound          = &Error{Code: CodeEventNotFound, Message: "event not found"}
	ErrDuplicateEvent         = &Error{Code: CodeDuplicateEvent, Message: "event already exists"}
	ErrInvalidSeat            = &Error{Code: CodeInvalidSeat, Message: "invalid seat"}
	ErrSeatAlreadyReserved    = &Error{Code: CodeSeatAlreadyReserved, Message: "seat already reserved"}
	ErrDuplicateSeatInRequest = &Error{Code: CodeDuplicateSeatInRequest, Message: "seat requested more than once"}
	ErrAllocationFailure      = &Error{Code: CodeAllocationFailure, Message: "cannot allocate seats"}
	ErrStreamIO               = &Error{Code: CodeStreamIO, Message: "stream i/o error"}
)

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.EventID != 0 {
		msg += fmt.Sprintf(" (event=%d", e.EventID)
		if e.Seat != nil {
			msg += fmt.Sprintf(", seat=%s", e.Seat)
		}
		msg += ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Is reports whether target is an *Error with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// CodeOf extracts the ErrorCode from err.
// Returns "" if err is nil or not an *Error.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// NewStreamError wraps an I/O failure on a script or output stream.
func NewStreamError(message string, err error) *Error {
	return &Error{Code: CodeStreamIO, Message: message, Err: err}
}

func eventNotFound(id uint32) *Error {
	return &Error{Code: CodeEventNotFound, Message: "event not found", EventID: id}
}

func seatError(code ErrorCode, message string, id uint32, s Seat) *Error {
	return &Error{Code: code, Message: message, EventID: id, Seat: &s}
}
