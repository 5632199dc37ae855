// Package bunny is a hand-built client for the Bunny.net Storage API.
//
// The provider speaks plain HTTP: PUT uploads bytes at a path, GET
// downloads them, DELETE removes the path, and a GET on a directory
// returns a JSON listing. Authentication is a per-zone AccessKey
// header. There is no official Go SDK, so this package talks to the
// wire format directly.
package bunny

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/afero"

	"github.com/harborstat/bunnytab/internal/retry"
)

const defaultHost = "storage.bunnycdn.com"

// Config identifies one storage zone and its access keys.
type Config struct {
	// Zone is the storage zone name (the bucket).
	Zone string

	// ReadKey authorizes GET/HEAD. Optional when WriteKey is set.
	ReadKey string

	// WriteKey authorizes every verb. Optional for read-only use.
	WriteKey string

	// Region prefixes the storage host (e.g. "ny" -> ny.storage.bunnycdn.com).
	// Empty means the default region.
	Region string

	// Endpoint overrides the storage URL entirely (primarily for tests).
	Endpoint string
}

// Client performs single-round-trip transfers against one zone.
type Client struct {
	cfg    Config
	base   string // https://<host>/<zone>
	http   *http.Client
	fs     afero.Fs
	ro     retry.Options
	verify bool
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient substitutes the HTTP client (timeouts, transports).
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithFs routes local file access through fs instead of the OS.
func WithFs(fs afero.Fs) Option {
	return func(c *Client) { c.fs = fs }
}

// WithRetry enables retry with backoff for transfer calls. The default
// is a single attempt per operation.
func WithRetry(ro retry.Options) Option {
	return func(c *Client) { c.ro = ro }
}

// WithVerify toggles the post-upload HEAD size check.
func WithVerify(v bool) Option {
	return func(c *Client) { c.verify = v }
}

// New validates cfg and builds a client.
func New(cfg Config, opts ...Option) (*Client, error) {
	if strings.TrimSpace(cfg.Zone) == "" {
		return nil, fmt.Errorf("bunny: storage zone is required")
	}
	if cfg.ReadKey == "" && cfg.WriteKey == "" {
		return nil, fmt.Errorf("bunny: at least one access key is required")
	}

	endpoint := strings.TrimRight(cfg.Endpoint, "/")
	if endpoint == "" {
		host := defaultHost
		if r := strings.TrimSpace(cfg.Region); r != "" {
			host = r + "." + defaultHost
		}
		endpoint = "https://" + host
	}

	c := &Client{
		cfg:    cfg,
		base:   endpoint + "/" + cfg.Zone,
		http:   &http.Client{Timeout: 60 * time.Second},
		fs:     afero.NewOsFs(),
		ro:     retry.Default,
		verify: true,
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// Zone returns the configured zone name.
func (c *Client) Zone() string { return c.cfg.Zone }

// objectURL builds the request URL for a remote key.
func (c *Client) objectURL(key string) string {
	return c.base + "/" + normalizeKey(key)
}

func normalizeKey(k string) string {
	return strings.TrimPrefix(k, "/")
}

// readKey returns the key used for GET/HEAD; a write key also reads.
func (c *Client) readKey() string {
	if c.cfg.ReadKey != "" {
		return c.cfg.ReadKey
	}
	return c.cfg.WriteKey
}

// writeKey returns the key used for PUT/DELETE or ErrReadOnly.
func (c *Client) writeKey() (string, error) {
	if c.cfg.WriteKey == "" {
		return "", ErrReadOnly
	}
	return c.cfg.WriteKey, nil
}
