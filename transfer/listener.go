package transfer

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// requestTimeout bounds how long a connection may sit idle before sending
// its request line.
const requestTimeout = 30 * time.Second

// Listener serves files from a peer's shared directory. Each accepted
// connection is handled on its own goroutine, so a slow transfer never
// blocks the accept loop.
type Listener struct {
	sharedDir string

	mu sync.Mutex
	ln net.Listener
	wg sync.WaitGroup
}

// NewListener creates a listener serving files out of sharedDir.
func NewListener(sharedDir string) *Listener {
	return &Listener{sharedDir: sharedDir}
}

// Start begins accepting connections on addr (e.g. "0.0.0.0:7000", or
// ":0" for an ephemeral port).
func (l *Listener) Start(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	l.mu.Lock()
	l.ln = ln
	l.mu.Unlock()

	log.Printf("[INFO] Peer server listening on %s", ln.Addr())
	l.wg.Add(1)
	go l.acceptLoop(ln)
	return nil
}

// Addr returns the bound address, or nil before Start.
func (l *Listener) Addr() net.Addr {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.ln == nil {
		return nil
	}
	return l.ln.Addr()
}

// Close stops accepting and waits for the accept loop to exit. In-flight
// transfers are left to finish on their own connections.
func (l *Listener) Close() error {
	l.mu.Lock()
	ln := l.ln
	l.mu.Unlock()
	if ln == nil {
		return nil
	}
	err := ln.Close()
	l.wg.Wait()
	return err
}

func (l *Listener) acceptLoop(ln net.Listener) {
	defer l.wg.Done()
	for {
		conn, err := ln.Accept()
		if err != nil {
			// Closed listener is the normal shutdown path.
			return
		}
		go l.handleConn(conn)
	}
}

// handleConn runs one session: AwaitingRequest, then Sending or Rejecting,
// then Closed.
func (l *Listener) handleConn(conn net.Conn) {
	defer conn.Close()
	session := uuid.NewString()[:8]

	conn.SetReadDeadline(time.Now().Add(requestTimeout))
	line, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil {
		log.Printf("[ERROR] [%s] Failed to read request from %s: %v", session, conn.RemoteAddr(), err)
		return
	}
	conn.SetReadDeadline(time.Time{})

	name, ok := sanitizeFilename(line)
	if !ok {
		log.Printf("[ERROR] [%s] Rejected unsafe filename %q from %s", session, line, conn.RemoteAddr())
		fmt.Fprintf(conn, "%s\n", NotFoundSentinel)
		return
	}

	path := filepath.Join(l.sharedDir, name)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		log.Printf("[%s] File not found: %s (requested by %s)", session, name, conn.RemoteAddr())
		fmt.Fprintf(conn, "%s\n", NotFoundSentinel)
		return
	}

	f, err := os.Open(path)
	if err != nil {
		log.Printf("[ERROR] [%s] Failed to open %s: %v", session, path, err)
		fmt.Fprintf(conn, "%s\n", NotFoundSentinel)
		return
	}
	defer f.Close()

	if _, err := fmt.Fprintf(conn, "%d\n", info.Size()); err != nil {
		log.Printf("[ERROR] [%s] Failed to write header: %v", session, err)
		return
	}

	// Writes to conn block when the receiver is slower than the disk,
	// which is all the flow control this protocol needs.
	buf := make([]byte, copyBufferSize)
	sent, err := io.CopyBuffer(conn, f, buf)
	if err != nil {
		log.Printf("[ERROR] [%s] Transfer of %s aborted after %d bytes: %v", session, name, sent, err)
		return
	}
	log.Printf("[INFO] [%s] Sent %s (%d bytes) to %s", session, name, sent, conn.RemoteAddr())
}
