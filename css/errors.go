package css

import "errors"

// Error kinds recognised by the pipeline. Stages wrap these with fmt.Errorf
// and "%w" so callers can test with errors.Is; a policy option may turn one
// of these into a logged warning and an empty result instead of a returned
// error (see Config.OnCircularImport, Config.OnUnsupportedImport,
// Config.OnCompilerError, Config.InvalidCacheBehaviour).
var (
	// ErrBadInput: nil/empty relative path, or empty file content.
	ErrBadInput = errors.New("bad input")
	// ErrNotFound: the requested source file does not exist.
	ErrNotFound = errors.New("not found")
	// ErrUnsupportedImport: an @import names a path with a separator, or a
	// remote URL.
	ErrUnsupportedImport = errors.New("unsupported import")
	// ErrCircularImport: an @import chain revisits a file already being
	// processed.
	ErrCircularImport = errors.New("circular import")
	// ErrCompilerError: the LESS engine reported an error.
	ErrCompilerError = errors.New("compiler error")
	// ErrInvalidCacheFileFormat: a disk cache file's header did not match
	// the expected format.
	ErrInvalidCacheFileFormat = errors.New("invalid cache file format")
	// ErrIOError: a read or write failed against a source or cache file.
	ErrIOError = errors.New("io error")
	// ErrInternalInvariantViolation: a stage produced a result that
	// violates one of its documented invariants. Always fatal, never
	// swallowed by policy.
	ErrInternalInvariantViolation = errors.New("internal invariant violation")
)
