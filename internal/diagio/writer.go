// Package diagio provides the shared output sink used for both program
// output and diagnostics: a single io.Writer that latches its first error
// and keeps returning it, so the driver's many small Fprintf calls never
// need to check an error individually.
package diagio

import (
	"io"

	"github.com/pkg/errors"
)

// LatchedWriter wraps an io.Writer and remembers the first write error, if
// any. Once set, every subsequent Write fails fast with the same error
// instead of attempting the underlying write again.
type LatchedWriter struct {
	w   io.Writer
	Err error
}

func (w *LatchedWriter) Write(p []byte) (n int, err error) {
	if w.Err != nil {
		return 0, w.Err
	}
	n, err = w.w.Write(p)
	if err != nil {
		w.Err = errors.Wrap(err, "write failed")
	}
	return n, w.Err
}

// New returns a new LatchedWriter wrapping w.
func New(w io.Writer) *LatchedWriter {
	return &LatchedWriter{w: w}
}

// WriteErr returns the first write error this writer has latched, or nil.
// vm.Driver consults it after every token to stop a run once the output
// stream itself has failed, rather than silently discarding output forever.
func (w *LatchedWriter) WriteErr() error { return w.Err }
