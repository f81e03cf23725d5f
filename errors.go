package ndcore

import "errors"

// Sentinel errors returned across the pool boundary. The core never
// panics on a caller error; every failure mode in the design is one of
// these, checked with errors.Is.
var (
	// ErrBufferLimit is returned by Allocate when the pool's MaxBuffers
	// cap would be exceeded.
	ErrBufferLimit = errors.New("ndcore: buffer limit reached")

	// ErrMemoryLimit is returned by Allocate when the pool's MaxMemory
	// cap would be exceeded.
	ErrMemoryLimit = errors.New("ndcore: memory limit reached")

	// ErrBufferTooSmall is returned by Allocate when a caller-supplied
	// data size hint is smaller than the size required by the shape.
	ErrBufferTooSmall = errors.New("ndcore: supplied buffer too small")

	// ErrInvalidDimension is returned when a computed dimension size is
	// <= 0, or ndims exceeds MaxDims.
	ErrInvalidDimension = errors.New("ndcore: invalid dimension")

	// ErrUnsupportedType is returned when an element type is outside the
	// closed set of 8 numeric kinds.
	ErrUnsupportedType = errors.New("ndcore: unsupported element type")

	// ErrNotOwner is returned by Pool.Reserve / Pool.Release when the
	// array was not allocated by this pool.
	ErrNotOwner = errors.New("ndcore: array not owned by this pool")

	// ErrTypeMismatch is returned by Attribute.Value when the requested
	// kind does not match the stored kind.
	ErrTypeMismatch = errors.New("ndcore: attribute kind mismatch")

	// ErrNoOwner is returned by Array.Reserve / Array.Release when the
	// array has no owning pool.
	ErrNoOwner = errors.New("ndcore: array has no owner")

	// ErrInvalidArgument is returned by Attribute.SetValue when a nil
	// value is supplied for a kind other than AttrUndefined.
	ErrInvalidArgument = errors.New("ndcore: invalid argument")
)
