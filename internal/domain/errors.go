package domain

import "errors"

// Failure reasons surfaced by the collector. Callers match them with errors.Is.
var (
	// ErrNetwork covers non-200 responses, timeouts, and transport failures.
	ErrNetwork = errors.New("network failure")

	// ErrShapeMismatch means a station payload's token count is not a multiple
	// of the schema width.
	ErrShapeMismatch = errors.New("shape mismatch")

	// ErrEnumeration means a year's directory listing could not be fetched.
	ErrEnumeration = errors.New("enumeration failure")

	// ErrPersistence covers JSON encode/decode and file I/O failures.
	ErrPersistence = errors.New("persistence failure")
)
