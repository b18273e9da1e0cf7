package bitutil

import "errors"

var (
	// ErrInvalidRegion is returned when a rectangle is empty, has a negative
	// origin, or does not fit inside the matrix.
	ErrInvalidRegion = errors.New("bitutil: invalid region")

	// ErrDimensionMismatch is returned when two bit containers that must
	// share a shape do not.
	ErrDimensionMismatch = errors.New("bitutil: dimension mismatch")

	// ErrInvalidRange is returned for a bit range outside [0, size].
	ErrInvalidRange = errors.New("bitutil: invalid range")

	// ErrInsufficientBits is returned by BitSource when a read asks for more
	// bits than remain, or for a count outside 1..32.
	ErrInsufficientBits = errors.New("bitutil: insufficient bits")
)
