package internalerr

import "errors"

// Sentinel errors for common cases
var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrInvalidConfig    = errors.New("invalid configuration")

	// Recoverable decoding conditions; handled inside the decoder.
	ErrMissingTransition = errors.New("missing transition")
	ErrDecodeUnreachable = errors.New("decode unreachable")

	// Fatal at rule-loading time.
	ErrInvalidRuleToken = errors.New("invalid tag in rules")
)
