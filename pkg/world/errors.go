package world

import "github.com/pkg/errors"

// ErrCancelled is returned by a suspension point whose context was
// cancelled before it completed.
var ErrCancelled = errors.New("world: cancelled")

// ErrTimeout is returned by a suspension point that exceeded its
// configured upper bound (region I/O, chunk load, network send).
var ErrTimeout = errors.New("world: timeout")
