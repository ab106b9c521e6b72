// Package transfer implements the direct peer-to-peer protocol: one file per
// TCP connection, no resume, no encryption. The requester sends a single
// newline-terminated filename; the serving side answers with one
// newline-terminated header line — either the FILE_NOT_FOUND sentinel or the
// file size as decimal ASCII — followed by the raw file bytes. Closing the
// connection is the only end-of-file signal.
package transfer

import (
	"errors"
	"path/filepath"
	"strings"
)

// NotFoundSentinel is written in place of a size header when the requested
// file is absent from the shared directory.
const NotFoundSentinel = "FILE_NOT_FOUND"

const copyBufferSize = 32 * 1024

var (
	// ErrRemoteNotFound means the remote peer answered with the sentinel.
	ErrRemoteNotFound = errors.New("file not found on peer")

	// ErrBadHeader means the header line was neither the sentinel nor a
	// decimal size.
	ErrBadHeader = errors.New("malformed transfer header")
)

// sanitizeFilename reduces a requested name to a single path segment. Names
// containing separators or parent references are rejected so a request can
// never escape the shared directory.
func sanitizeFilename(name string) (string, bool) {
	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == ".." {
		return "", false
	}
	if strings.ContainsAny(name, "/\\") {
		return "", false
	}
	if name != filepath.Base(name) {
		return "", false
	}
	return name, true
}
