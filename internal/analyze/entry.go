// Package analyze holds the contracts shared by every entry analyzer: the
// entry handle handed out by traversal, facts and per-entry result sets,
// and the failure type analyzers return.
package analyze

import (
	"fmt"
	"io"
)

// FileSystemEntry is one member of the artifact under scan: a file inside
// an archive or a bare file in a directory. Analyzers must not keep it past
// a single Analyze call.
type FileSystemEntry interface {
	Name() string
	IsDirectory() bool
	Open() (io.ReadCloser, error)
}

// WithInputStream opens entry, passes the stream to fn and closes it exactly
// once on every exit path, including a panic in fn. A close failure after a
// successful fn is reported as the error and the result is discarded.
func WithInputStream[T any](entry FileSystemEntry, fn func(io.Reader) (T, error)) (result T, err error) {
	rc, err := entry.Open()
	if err != nil {
		return result, fmt.Errorf("failed to open '%s': %w", entry.Name(), err)
	}
	defer func() {
		cerr := rc.Close()
		if cerr != nil && err == nil {
			var zero T
			result = zero
			err = fmt.Errorf("failed to close '%s': %w", entry.Name(), cerr)
		}
	}()

	return fn(rc)
}
