package pool

import "errors"

// ErrInvalidSize is returned by New when the requested pool size is less
// than one. A pool with no workers could never drain its queue, so the
// size is rejected rather than clamped.
var ErrInvalidSize = errors.New("pool size must be greater than zero")

// ErrPoolClosed is returned by Submit once Shutdown has begun. Jobs
// accepted before the close are still drained; new ones are refused so
// the caller can release whatever the job owns.
var ErrPoolClosed = errors.New("pool is closed")
