package logtower

import "errors"

// Sentinel errors. Match them with errors.Is; returned errors wrap them with
// the sequence name and the length that was needed.
var (
	// ErrIndexOutOfRange is returned when a supplied sequence is too short for
	// the requested degree, or the degree itself is negative.
	ErrIndexOutOfRange = errors.New("logtower: sequence index out of range")

	// ErrAlgebra is returned when the expression library fails to substitute
	// or normalize. The library error stays reachable through errors.Is.
	ErrAlgebra = errors.New("logtower: expression library failure")
)
