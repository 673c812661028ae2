package domain

import "errors"

var (
	// ErrNotFound reports that a requested network, station or channel
	// directory does not exist in the archive.
	ErrNotFound = errors.New("not found")

	// ErrOutsideArchive reports a path segment that would escape the archive root.
	ErrOutsideArchive = errors.New("path outside archive")
)
