package source

import "errors"

// Sentinel kinds for source errors. Every failure returned by this package
// wraps exactly one of them.
var (
	// ErrFetch marks a transport failure: unreachable host, non-2xx status,
	// missing object or timeout.
	ErrFetch = errors.New("source fetch failed")
	// ErrMalformedPayload marks a payload that arrived but cannot be decoded.
	ErrMalformedPayload = errors.New("malformed source payload")
	// ErrUnsupportedKind marks a configuration naming an unknown source.
	ErrUnsupportedKind = errors.New("unsupported source kind")
)
