// Package peer implements the peer-side agent: the registry HTTP client,
// the shared/downloads directories, the heartbeat loop and direct downloads.
package peer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff"
)

// Client talks to the registry's HTTP API.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a registry client for baseURL (e.g. "http://host:5001").
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// RemoteFile is one row from /files or /search_files.
type RemoteFile struct {
	Filename   string `json:"filename"`
	Username   string `json:"username"`
	PeerIP     string `json:"peer_ip"`
	PeerPort   int    `json:"peer_port"`
	SharedTime string `json:"shared_time"`
}

// Addr returns the owner's transfer address.
func (f *RemoteFile) Addr() string {
	return fmt.Sprintf("%s:%d", f.PeerIP, f.PeerPort)
}

type apiResponse struct {
	Message  string       `json:"message"`
	Username string       `json:"username"`
	Files    []RemoteFile `json:"files"`
}

func (c *Client) post(ctx context.Context, path string, body interface{}) (*apiResponse, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var out apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("bad response from registry: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("registry %s: %s", path, out.Message)
	}
	return &out, nil
}

// Register creates the account. Retries with exponential backoff so an agent
// starting alongside the registry does not give up before it is reachable.
// An already-taken username is permanent and not retried.
func (c *Client) Register(ctx context.Context, username, password, ip string, port int) error {
	op := func() error {
		_, err := c.post(ctx, "/register", map[string]interface{}{
			"username": username, "password": password, "ip": ip, "port": port,
		})
		if err != nil && strings.Contains(err.Error(), "exists") {
			return backoff.Permanent(err)
		}
		return err
	}
	return backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 5), ctx))
}

// Login authenticates and advertises the transfer address. Returns the
// canonical username.
func (c *Client) Login(ctx context.Context, username, password, ip string, port int) (string, error) {
	resp, err := c.post(ctx, "/login", map[string]interface{}{
		"username": username, "password": password, "ip": ip, "port": port,
	})
	if err != nil {
		return "", err
	}
	return resp.Username, nil
}

// Heartbeat refreshes liveness and the advertised address.
func (c *Client) Heartbeat(ctx context.Context, username, ip string, port int) error {
	_, err := c.post(ctx, "/heartbeat", map[string]interface{}{
		"username": username, "ip": ip, "port": port,
	})
	return err
}

// Disconnect deletes the peer and its advertised files.
func (c *Client) Disconnect(ctx context.Context, username string) error {
	_, err := c.post(ctx, "/disconnect", map[string]interface{}{"username": username})
	return err
}

// ShareFiles replaces the advertised file set with filenames.
func (c *Client) ShareFiles(ctx context.Context, username string, filenames []string, ip string, port int) error {
	_, err := c.post(ctx, "/share_files", map[string]interface{}{
		"username": username, "filename": filenames, "peer_ip": ip, "peer_port": port,
	})
	return err
}

// SearchFiles queries the catalog with optional substring filters.
func (c *Client) SearchFiles(ctx context.Context, filename, username string) ([]RemoteFile, error) {
	q := url.Values{}
	if filename != "" {
		q.Set("filename", filename)
	}
	if username != "" {
		q.Set("username", username)
	}
	u := c.baseURL + "/search_files"
	if enc := q.Encode(); enc != "" {
		u += "?" + enc
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var out apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("bad response from registry: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("registry search_files: %s", out.Message)
	}
	return out.Files, nil
}
