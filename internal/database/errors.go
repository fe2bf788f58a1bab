package database

import "errors"

var (
	// ErrStoreNotFound is returned when a store file must already exist
	// but doesn't.
	ErrStoreNotFound = errors.New("listing store not found")

	// ErrSecondaryNotFound is returned by MergeFrom when the secondary
	// store path does not exist.
	ErrSecondaryNotFound = errors.New("secondary store not found")
)
