package core

import "errors"

// Common errors.
var (
	// ErrKeyNotFound is returned by a Store when nothing is stored under the key.
	ErrKeyNotFound = errors.New("key not found")

	// ErrReadOnly is returned by stores opened in read-only mode on writes.
	ErrReadOnly = errors.New("store is in read-only mode")

	// ErrFolderNotFound is returned when a conversation targets an unknown folder.
	ErrFolderNotFound = errors.New("folder not found")

	ErrNotStarted = errors.New("manager not started")
	ErrClosed     = errors.New("manager closed")
)
