package vecmath

import "errors"

var (
	// ErrIndexOutOfRange indicates a component index outside 0..2.
	ErrIndexOutOfRange = errors.New("vecmath: component index out of range")

	// ErrZeroLength indicates normalization of a vector with zero length.
	ErrZeroLength = errors.New("vecmath: cannot normalize zero-length vector")
)
