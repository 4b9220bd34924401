package trace

import "errors"

// ErrMalformedTrace is returned by Build when the raw frame stream
// violates the prefix-tree invariant: a frame's parent TraceAddress is
// missing, or two frames share the same TraceAddress.
var ErrMalformedTrace = errors.New("trace: malformed trace")
