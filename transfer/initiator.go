package transfer

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Progress is one observation emitted after each received chunk. Percent is
// clamped to 100; Received and Expected carry the raw counts so callers can
// detect a peer sending more (or fewer) bytes than advertised.
type Progress struct {
	Filename string
	Received int64
	Expected int64
	Percent  float64
}

// Result describes a finished download. The destination file is left in
// place even when the counts disagree; truncation detection is the caller's
// job, via Complete.
type Result struct {
	Filename string
	Path     string
	Received int64
	Expected int64
}

// Complete reports whether the advertised byte count was received exactly.
func (r *Result) Complete() bool { return r.Received == r.Expected }

// Download fetches filename from the peer at addr into destDir. onProgress,
// if non-nil, is called after every chunk. Cancelling ctx closes the
// connection, which aborts the stream and leaves any partial file on disk.
func Download(ctx context.Context, addr, filename, destDir string, onProgress func(Progress)) (*Result, error) {
	name, ok := sanitizeFilename(filename)
	if !ok {
		return nil, fmt.Errorf("invalid filename %q", filename)
	}

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to peer %s: %w", addr, err)
	}
	defer conn.Close()

	// Closing the connection is the only cancellation primitive.
	watchDone := make(chan struct{})
	defer close(watchDone)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-watchDone:
		}
	}()

	if _, err := fmt.Fprintf(conn, "%s\n", name); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	br := bufio.NewReader(conn)
	header, err := br.ReadString('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read transfer header: %w", err)
	}
	header = strings.TrimSpace(header)

	if header == NotFoundSentinel {
		return nil, ErrRemoteNotFound
	}
	expected, err := strconv.ParseInt(header, 10, 64)
	if err != nil || expected < 0 {
		return nil, fmt.Errorf("%w: %q", ErrBadHeader, header)
	}

	destPath := filepath.Join(destDir, name)
	out, err := os.Create(destPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create destination file: %w", err)
	}
	defer out.Close()

	res := &Result{Filename: name, Path: destPath, Expected: expected}
	buf := make([]byte, copyBufferSize)
	for {
		n, err := br.Read(buf)
		if n > 0 {
			if _, werr := out.Write(buf[:n]); werr != nil {
				return res, fmt.Errorf("failed to write destination file: %w", werr)
			}
			res.Received += int64(n)
			if onProgress != nil {
				onProgress(progressFor(name, res.Received, expected))
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			if ctx.Err() != nil {
				return res, ctx.Err()
			}
			return res, fmt.Errorf("connection error: %w", err)
		}
	}

	if err := out.Sync(); err != nil {
		return res, err
	}
	return res, nil
}

func progressFor(name string, received, expected int64) Progress {
	pct := 100.0
	if expected > 0 {
		pct = float64(received) / float64(expected) * 100
		if pct > 100 {
			pct = 100
		}
	}
	return Progress{Filename: name, Received: received, Expected: expected, Percent: pct}
}
