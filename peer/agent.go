package peer

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/mridul249/p2p-electron/transfer"
)

// HeartbeatInterval matches the original client's 30-second timer; the
// registry's TTL is twice that, so one missed beat is forgiven.
const HeartbeatInterval = 30 * time.Second

// Agent ties together a peer's identity, its shared and downloads
// directories, its transfer listener and its presence at the registry.
type Agent struct {
	client   *Client
	username string
	password string
	ip       string
	port     int

	sharedDir    string
	downloadsDir string

	listener *transfer.Listener

	stop    chan struct{}
	stopped chan struct{}
}

// NewAgent creates an agent. sharedDir and downloadsDir are created if
// missing.
func NewAgent(client *Client, username, password, sharedDir, downloadsDir string) (*Agent, error) {
	for _, dir := range []string{sharedDir, downloadsDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return &Agent{
		client:       client,
		username:     username,
		password:     password,
		sharedDir:    sharedDir,
		downloadsDir: downloadsDir,
	}, nil
}

// Start brings the agent online: it starts the transfer listener, logs in
// (registering first if register is true), publishes the current shared
// listing and begins heartbeating.
func (a *Agent) Start(ctx context.Context, listenAddr string, register bool) error {
	a.listener = transfer.NewListener(a.sharedDir)
	if err := a.listener.Start(listenAddr); err != nil {
		return err
	}

	a.ip = LocalIP()
	a.port = boundPort(a.listener)

	if register {
		if err := a.client.Register(ctx, a.username, a.password, a.ip, a.port); err != nil {
			a.listener.Close()
			return err
		}
	}
	username, err := a.client.Login(ctx, a.username, a.password, a.ip, a.port)
	if err != nil {
		a.listener.Close()
		return err
	}
	a.username = username

	if err := a.PublishListing(ctx); err != nil {
		log.Printf("[ERROR] Failed to publish shared files: %v", err)
	}

	a.stop = make(chan struct{})
	a.stopped = make(chan struct{})
	go a.heartbeatLoop()

	log.Printf("[INFO] Peer %s online at %s:%d, sharing from %s", a.username, a.ip, a.port, a.sharedDir)
	return nil
}

func (a *Agent) heartbeatLoop() {
	defer close(a.stopped)
	ticker := time.NewTicker(HeartbeatInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			if err := a.client.Heartbeat(ctx, a.username, a.ip, a.port); err != nil {
				log.Printf("[ERROR] Heartbeat failed: %v", err)
			}
			cancel()
		case <-a.stop:
			return
		}
	}
}

// Stop takes the agent offline: it stops heartbeating, tells the registry to
// forget the peer and closes the listener.
func (a *Agent) Stop(ctx context.Context) error {
	if a.stop != nil {
		close(a.stop)
		<-a.stopped
	}
	if err := a.client.Disconnect(ctx, a.username); err != nil {
		log.Printf("[ERROR] Disconnect failed: %v", err)
	}
	if a.listener != nil {
		return a.listener.Close()
	}
	return nil
}

// Addr returns the advertised transfer address.
func (a *Agent) Addr() string { return fmt.Sprintf("%s:%d", a.ip, a.port) }

// SharedFiles lists the shared directory, sorted by name.
func (a *Agent) SharedFiles() ([]string, error) {
	return listDir(a.sharedDir)
}

// DownloadedFiles lists the downloads directory, sorted by name.
func (a *Agent) DownloadedFiles() ([]string, error) {
	return listDir(a.downloadsDir)
}

// AddFiles copies the given paths into the shared directory and republishes
// the complete listing. Returns how many files were copied.
func (a *Agent) AddFiles(ctx context.Context, paths []string) (int, error) {
	copied := 0
	for _, src := range paths {
		if err := copyIntoDir(src, a.sharedDir); err != nil {
			log.Printf("[ERROR] Failed to copy %s: %v", src, err)
			continue
		}
		copied++
	}
	if copied > 0 {
		if err := a.PublishListing(ctx); err != nil {
			return copied, err
		}
	}
	return copied, nil
}

// PublishListing re-advertises the full contents of the shared directory.
// An empty directory publishes an empty list, clearing the peer's catalog
// entries so it never advertises files it can no longer serve.
func (a *Agent) PublishListing(ctx context.Context) error {
	files, err := a.SharedFiles()
	if err != nil {
		return err
	}
	return a.client.ShareFiles(ctx, a.username, files, a.ip, a.port)
}

// Download streams the remote file into the downloads directory.
func (a *Agent) Download(ctx context.Context, file RemoteFile, onProgress func(transfer.Progress)) (*transfer.Result, error) {
	return transfer.Download(ctx, file.Addr(), file.Filename, a.downloadsDir, onProgress)
}

func listDir(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

func copyIntoDir(src, dir string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(filepath.Join(dir, filepath.Base(src)))
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}
