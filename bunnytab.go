// Package bunnytab reads and writes tabular data against a Bunny.net
// storage zone, staging each transfer through a local temporary file.
//
// Writes encode the table into a fresh staging file, upload it, then
// remove the file. Reads download into a staging file, decode it, then
// remove the file. Cleanup runs on every exit path, success or not.
package bunnytab

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"

	"github.com/harborstat/bunnytab/internal/bunny"
	"github.com/harborstat/bunnytab/internal/codec"
	"github.com/harborstat/bunnytab/internal/retry"
	"github.com/harborstat/bunnytab/internal/stage"
	"github.com/harborstat/bunnytab/tabular"
)

// Client is the user-facing entry point. One Client serves any number
// of sequential operations; each operation owns exactly one staging
// file for its duration.
type Client struct {
	transfer *bunny.Client
	stager   *stage.Stager
}

type options struct {
	fs         afero.Fs
	scratchDir string
	httpClient *http.Client
	retryOpts  retry.Options
	verify     bool
}

// Option adjusts client construction.
type Option func(*options)

// WithFs routes all local file access through fs. Tests use MemMapFs.
func WithFs(fs afero.Fs) Option {
	return func(o *options) { o.fs = fs }
}

// WithScratchDir sets the staging directory.
func WithScratchDir(dir string) Option {
	return func(o *options) { o.scratchDir = dir }
}

// WithHTTPClient substitutes the HTTP client used for transfers.
func WithHTTPClient(h *http.Client) Option {
	return func(o *options) { o.httpClient = h }
}

// WithRetry opts transfers into retry with backoff; the default is one
// attempt per operation.
func WithRetry(maxAttempts int, initialDelay, maxDelay time.Duration) Option {
	return func(o *options) {
		o.retryOpts = retry.Options{
			MaxAttempts:  maxAttempts,
			InitialDelay: initialDelay,
			MaxDelay:     maxDelay,
			Multiplier:   retry.Default.Multiplier,
			Jitter:       retry.Default.Jitter,
		}
	}
}

// WithUploadVerification toggles the post-upload HEAD size check.
func WithUploadVerification(v bool) Option {
	return func(o *options) { o.verify = v }
}

// New builds a client for one storage zone.
func New(creds Credentials, opts ...Option) (*Client, error) {
	o := options{
		fs:        afero.NewOsFs(),
		retryOpts: retry.Default,
		verify:    true,
	}
	for _, fn := range opts {
		fn(&o)
	}

	stager, err := stage.New(o.fs, o.scratchDir)
	if err != nil {
		return nil, err
	}

	bunnyOpts := []bunny.Option{
		bunny.WithFs(o.fs),
		bunny.WithRetry(o.retryOpts),
		bunny.WithVerify(o.verify),
	}
	if o.httpClient != nil {
		bunnyOpts = append(bunnyOpts, bunny.WithHTTPClient(o.httpClient))
	}
	transfer, err := bunny.New(bunny.Config{
		Zone:     creds.Zone,
		ReadKey:  creds.ReadPassword,
		WriteKey: creds.WritePassword,
		Region:   creds.Region,
		Endpoint: creds.Endpoint,
	}, bunnyOpts...)
	if err != nil {
		return nil, err
	}

	return &Client{transfer: transfer, stager: stager}, nil
}

// WriteTable encodes t in the format named by remotePath's extension
// and uploads it. The staging file is removed whether or not the
// upload succeeds.
func (c *Client) WriteTable(ctx context.Context, t *tabular.Table, remotePath string) error {
	_, format, err := codec.ForPath(remotePath)
	if err != nil {
		return err
	}

	start := time.Now()
	local, err := c.stager.StageWrite(t, format)
	if err != nil {
		return err
	}
	defer c.stager.Cleanup(local)

	if err := c.transfer.Upload(ctx, local, remotePath); err != nil {
		return fmt.Errorf("write table %q: %w", remotePath, err)
	}
	log.Info().
		Str("action", "write_table").
		Str("zone", c.transfer.Zone()).
		Str("remote", remotePath).
		Str("format", format).
		Int("rows", t.NumRows()).
		Dur("elapsed_ms", time.Since(start)).
		Msg("table written")
	return nil
}

// ReadTable downloads remotePath into a staging file and decodes it
// with the codec for the path's extension. The staging file is removed
// on every exit path.
func (c *Client) ReadTable(ctx context.Context, remotePath string) (*tabular.Table, error) {
	_, format, err := codec.ForPath(remotePath)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	local, err := c.stager.StagePath(format)
	if err != nil {
		return nil, err
	}
	defer c.stager.Cleanup(local)

	if err := c.transfer.Download(ctx, remotePath, local); err != nil {
		return nil, fmt.Errorf("read table %q: %w", remotePath, err)
	}
	t, err := c.stager.StageRead(local, format)
	if err != nil {
		return nil, err
	}
	log.Info().
		Str("action", "read_table").
		Str("zone", c.transfer.Zone()).
		Str("remote", remotePath).
		Str("format", format).
		Int("rows", t.NumRows()).
		Dur("elapsed_ms", time.Since(start)).
		Msg("table read")
	return t, nil
}

// UploadFile sends an arbitrary local file to the zone. Supporting
// operation; WriteTable is the intended entry point for tables.
func (c *Client) UploadFile(ctx context.Context, localPath, remotePath string) error {
	return c.transfer.Upload(ctx, localPath, remotePath)
}

// DownloadFile retrieves an arbitrary remote file. Supporting operation.
func (c *Client) DownloadFile(ctx context.Context, remotePath, localPath string) error {
	return c.transfer.Download(ctx, remotePath, localPath)
}

// DeleteFile removes a remote file. Supporting operation; deleting a
// path that is already gone returns ErrNotFound.
func (c *Client) DeleteFile(ctx context.Context, remotePath string) error {
	return c.transfer.Delete(ctx, remotePath)
}

// Object describes one remote file in a directory listing.
type Object struct {
	Name        string
	Path        string
	Size        int64
	IsDirectory bool
}

// ListFiles returns the listing of a directory prefix in the zone.
func (c *Client) ListFiles(ctx context.Context, prefix string) ([]Object, error) {
	objs, err := c.transfer.List(ctx, prefix)
	if err != nil {
		return nil, err
	}
	out := make([]Object, len(objs))
	for i, o := range objs {
		out[i] = Object{Name: o.Name, Path: o.Path, Size: o.Size, IsDirectory: o.IsDirectory}
	}
	return out, nil
}

// ScratchDir reports where staging files are created.
func (c *Client) ScratchDir() string { return c.stager.Dir() }
