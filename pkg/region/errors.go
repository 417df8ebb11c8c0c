package region

import "github.com/pkg/errors"

// Kind classifies a region I/O failure so callers can apply the recovery
// policy without string-matching error text.
type Kind int

const (
	// KindIoError is a transient filesystem failure; retried with
	// exponential backoff by the caller before escalation.
	KindIoError Kind = iota
	// KindInvalidHeader means the file is shorter than its header or the
	// location/timestamp tables could not be read. Fatal for the region;
	// no auto-repair.
	KindInvalidHeader
	// KindRegionInvalid means a location entry references sectors beyond
	// the end of the file. Fatal for the region.
	KindRegionInvalid
	// KindCompression means a payload's compression id is unknown or
	// decompression failed. The region stays in service; the chunk is
	// marked unloadable.
	KindCompression
	// KindChunkNotExist means the location entry is zero: no chunk has
	// ever been written at that coordinate. Recovered by invoking the
	// generator.
	KindChunkNotExist
	// KindParseError means decompression succeeded but the NBT payload
	// did not decode into a Chunk. The region stays in service.
	KindParseError
)

func (k Kind) String() string {
	switch k {
	case KindIoError:
		return "io_error"
	case KindInvalidHeader:
		return "invalid_header"
	case KindRegionInvalid:
		return "region_invalid"
	case KindCompression:
		return "compression"
	case KindChunkNotExist:
		return "chunk_not_exist"
	case KindParseError:
		return "parse_error"
	default:
		return "unknown"
	}
}

// Error wraps an underlying cause with the Kind callers branch on.
type Error struct {
	Kind  Kind
	cause error
}

func (e *Error) Error() string {
	if e.cause == nil {
		return e.Kind.String()
	}
	return e.Kind.String() + ": " + e.cause.Error()
}

func (e *Error) Unwrap() error { return e.cause }

func wrap(kind Kind, cause error) *Error { return &Error{Kind: kind, cause: cause} }

func wrapf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, cause: errors.Errorf(format, args...)}
}

// IsKind reports whether err (or something it wraps) is a region Error of
// the given Kind.
func IsKind(err error, kind Kind) bool {
	var re *Error
	if errors.As(err, &re) {
		return re.Kind == kind
	}
	return false
}
