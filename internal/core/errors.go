package core

import "errors"

// Configuration errors: fail fast, before any work, per spec.md §7.
var (
	ErrOutputEqualsData   = errors.New("output directory must not equal the data directory or any mod directory")
	ErrInvalidGameType    = errors.New("unrecognized game type")
	ErrMissingRequired    = errors.New("missing required configuration value")
)

// Recoverable per-task errors: logged, the owning mesh/texture/shape is
// rejected, the run continues. Never unwind past the task boundary.
var (
	ErrNotFound          = errors.New("not found")
	ErrIOError           = errors.New("io error")
	ErrNonASCIIPath      = errors.New("non-ASCII path in texture slot")
	ErrCodecError        = errors.New("codec error")
	ErrGPUDispatchFailed = errors.New("gpu dispatch failed")
	ErrUnsupportedShape  = errors.New("unsupported shape")
)

// Startup-critical errors: exit 1, no partial run attempted.
var (
	ErrShaderInitFailed = errors.New("gpu shader initialization failed")
)
