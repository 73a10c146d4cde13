package grammar

import "errors"

// Errors returned while compiling definitions.
var (
	// ErrUnknownGrammar indicates a reference to a grammar that was not defined.
	ErrUnknownGrammar = errors.New("unknown grammar")

	// ErrMissingBegin indicates a grammar used as a child has no begin pattern.
	ErrMissingBegin = errors.New("child grammar has no begin pattern")

	// ErrEmptyName indicates a definition without a name.
	ErrEmptyName = errors.New("grammar name is empty")

	// ErrUnsupportedFormat indicates a definition file with an unknown extension.
	ErrUnsupportedFormat = errors.New("unsupported definition format")
)
