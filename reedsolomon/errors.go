package reedsolomon

import "errors"

var (
	// ErrDivisionByZero is returned for the inverse or log of zero and for
	// division by the zero polynomial.
	ErrDivisionByZero = errors.New("reedsolomon: division by zero")

	// ErrFieldMismatch is returned when polynomials over different fields
	// are combined.
	ErrFieldMismatch = errors.New("reedsolomon: polynomials from different fields")

	// ErrTooManyErrors is returned when a codeword holds more errors than
	// its error correction symbols can locate and repair.
	ErrTooManyErrors = errors.New("reedsolomon: too many errors")

	// ErrInvalidCodeword is returned for codeword buffers that cannot hold
	// the requested data and error correction symbols.
	ErrInvalidCodeword = errors.New("reedsolomon: invalid codeword layout")
)
