package engine

import "errors"

// Errors returned by document operations.
var (
	// ErrNoPath indicates a save was attempted on a document without a path.
	ErrNoPath = errors.New("document has no file path")

	// ErrFileChanged indicates the file on disk changed since it was loaded
	// or last saved. SaveForce overwrites it.
	ErrFileChanged = errors.New("file changed on disk")
)
