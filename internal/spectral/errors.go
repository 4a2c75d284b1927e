// SPDX-License-Identifier: MIT
package spectral

import "errors"

// Sentinel errors returned by the analyzer. Callers match them with
// errors.Is; the wrapped message carries the offending values.
var (
	// ErrInvalidConfig is returned by Configure for a configuration the
	// engine cannot run with (bands < 2, non-positive sample rate or
	// channel count, unknown encoding).
	ErrInvalidConfig = errors.New("spectral: invalid configuration")

	// ErrNotConfigured is returned by Push when no successful Configure
	// call has happened yet.
	ErrNotConfigured = errors.New("spectral: analyzer not configured")

	// ErrMalformedBuffer is returned by Push when the buffer length is
	// not an exact multiple of the frame size. The analyzer state is
	// left untouched; the caller may push a corrected buffer.
	ErrMalformedBuffer = errors.New("spectral: buffer not frame aligned")
)
