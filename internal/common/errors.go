package common

import "errors"

// Sentinel error kinds per spec §7. Compare with errors.Is; wrap with
// %w when adding context so the sentinel survives the wrap.
var (
	// ErrTransportClosed: operation attempted on a dead bus connection.
	ErrTransportClosed = errors.New("transport closed")

	// ErrInterpreterUnavailable: an on-demand feature needs the
	// interpreter and the connection policy is "never", or the
	// interpreter failed to launch.
	ErrInterpreterUnavailable = errors.New("interpreter unavailable")

	// ErrStaleIndex: the index was written after the source changed;
	// superseded silently by the next index, never returned to a caller
	// directly, but logged when detected.
	ErrStaleIndex = errors.New("stale index")

	// ErrResolverNotFound: path resolver returned empty.
	ErrResolverNotFound = errors.New("path resolver: not found")

	// ErrMalformedReply: unexpected payload shape from the interpreter.
	ErrMalformedReply = errors.New("malformed reply")

	// ErrProcessLost: the child interpreter process terminated
	// unexpectedly.
	ErrProcessLost = errors.New("interpreter process lost")
)
