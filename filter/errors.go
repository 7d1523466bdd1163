package filter

import "errors"

var (
	// ErrConstruction reports invalid sizing parameters or a storage path
	// that could not be initialized.
	ErrConstruction = errors.New("filter: invalid construction parameters")

	// ErrStorage reports a failed read, write or flush of the bit array or
	// its metadata record.
	ErrStorage = errors.New("filter: storage failure")

	// ErrOutOfRange reports a bit index outside [0, size).
	ErrOutOfRange = errors.New("filter: bit index out of range")

	// ErrBadMetadata reports a metadata record that decoded but does not
	// describe a usable filter.
	ErrBadMetadata = errors.New("filter: metadata record invalid")

	// ErrDestroyed reports an operation on a filter after Destroy or Close.
	ErrDestroyed = errors.New("filter: filter destroyed")
)
