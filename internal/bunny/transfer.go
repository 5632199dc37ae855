package bunny

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/harborstat/bunnytab/internal/retry"
)

// Upload sends the bytes at localPath to key in the storage zone. The
// request carries the payload's SHA-256 in the Checksum header so the
// provider rejects corrupted uploads; when verification is enabled a
// HEAD afterwards confirms the stored size.
func (c *Client) Upload(ctx context.Context, localPath, key string) error {
	accessKey, err := c.writeKey()
	if err != nil {
		return err
	}
	key = normalizeKey(key)

	sum, size, err := sha256File(c.fs, localPath)
	if err != nil {
		return fmt.Errorf("bunny: checksum %q: %w", localPath, err)
	}

	start := time.Now()
	attempt := 0
	uploadOnce := func(ctx context.Context) error {
		attempt++

		f, err := c.fs.Open(localPath)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := f.Close(); cerr != nil {
				log.Warn().Err(cerr).Str("file", localPath).Msg("failed to close source file after upload")
			}
		}()

		req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.objectURL(key), f)
		if err != nil {
			return err
		}
		req.ContentLength = size
		req.Header.Set("AccessKey", accessKey)
		req.Header.Set("Content-Type", "application/octet-stream")
		req.Header.Set("Checksum", sum)
		req.Header.Set("Accept", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			return err
		}
		defer drainAndClose(resp)

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return &StatusError{Op: "upload", Key: key, Code: resp.StatusCode}
		}
		return nil
	}
	if err := retry.Do(ctx, c.ro, isRetryable, uploadOnce); err != nil {
		return err
	}
	log.Info().
		Str("action", "bunny_upload").
		Str("zone", c.cfg.Zone).
		Str("key", key).
		Int64("bytes", size).
		Int("attempts", attempt).
		Dur("elapsed_ms", time.Since(start)).
		Msg("upload OK")

	if !c.verify {
		return nil
	}
	remoteSize, err := c.Stat(ctx, key)
	if err != nil {
		return fmt.Errorf("bunny: validate upload %q: %w", key, err)
	}
	if remoteSize != size {
		return fmt.Errorf("%w: size mismatch for %q: local=%d remote=%d", ErrRemoteWrite, key, size, remoteSize)
	}
	return nil
}

// Download retrieves key from the zone and streams it into localPath.
func (c *Client) Download(ctx context.Context, key, localPath string) error {
	key = normalizeKey(key)

	start := time.Now()
	attempt := 0
	var size int64
	downloadOnce := func(ctx context.Context) error {
		attempt++

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.objectURL(key), http.NoBody)
		if err != nil {
			return err
		}
		req.Header.Set("AccessKey", c.readKey())
		req.Header.Set("Accept", "*/*")

		resp, err := c.http.Do(req)
		if err != nil {
			return err
		}
		defer drainAndClose(resp)

		if resp.StatusCode != http.StatusOK {
			return &StatusError{Op: "download", Key: key, Code: resp.StatusCode}
		}

		out, err := c.fs.Create(localPath)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := out.Close(); cerr != nil {
				log.Warn().Err(cerr).Str("file", localPath).Msg("failed to close local file after download")
			}
		}()
		size, err = io.Copy(out, resp.Body)
		return err
	}
	if err := retry.Do(ctx, c.ro, isRetryable, downloadOnce); err != nil {
		return err
	}
	log.Info().
		Str("action", "bunny_download").
		Str("zone", c.cfg.Zone).
		Str("key", key).
		Str("local", localPath).
		Int64("bytes", size).
		Int("attempts", attempt).
		Dur("elapsed_ms", time.Since(start)).
		Msg("download OK")
	return nil
}

// Delete removes key from the zone. A missing key returns ErrNotFound;
// cleanup-style callers treat that as success.
func (c *Client) Delete(ctx context.Context, key string) error {
	accessKey, err := c.writeKey()
	if err != nil {
		return err
	}
	key = normalizeKey(key)

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.objectURL(key), http.NoBody)
	if err != nil {
		return err
	}
	req.Header.Set("AccessKey", accessKey)
	req.Header.Set("Accept", "*/*")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer drainAndClose(resp)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Op: "delete", Key: key, Code: resp.StatusCode}
	}
	log.Info().
		Str("action", "bunny_delete").
		Str("zone", c.cfg.Zone).
		Str("key", key).
		Msg("delete OK")
	return nil
}

// Stat HEADs key and returns its stored size.
func (c *Client) Stat(ctx context.Context, key string) (int64, error) {
	key = normalizeKey(key)

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.objectURL(key), http.NoBody)
	if err != nil {
		return 0, err
	}
	req.Header.Set("AccessKey", c.readKey())

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer drainAndClose(resp)

	if resp.StatusCode != http.StatusOK {
		return 0, &StatusError{Op: "stat", Key: key, Code: resp.StatusCode}
	}
	cl := resp.Header.Get("Content-Length")
	if cl == "" {
		return 0, fmt.Errorf("bunny: stat %q: missing Content-Length", key)
	}
	n, err := strconv.ParseInt(cl, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("bunny: stat %q: parse Content-Length: %w", key, err)
	}
	return n, nil
}

// Object is one entry of a directory listing.
type Object struct {
	Name        string `json:"ObjectName"`
	Path        string `json:"Path"`
	Size        int64  `json:"Length"`
	IsDirectory bool   `json:"IsDirectory"`
	LastChanged string `json:"LastChanged"`
}

// List fetches the listing of a directory prefix ("" for the zone root).
func (c *Client) List(ctx context.Context, prefix string) ([]Object, error) {
	prefix = strings.Trim(prefix, "/")
	url := c.base + "/"
	if prefix != "" {
		url += prefix + "/"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("AccessKey", c.readKey())
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer drainAndClose(resp)

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Op: "list", Key: prefix, Code: resp.StatusCode}
	}
	var objs []Object
	if err := json.NewDecoder(resp.Body).Decode(&objs); err != nil {
		return nil, fmt.Errorf("bunny: list %q: decode listing: %w", prefix, err)
	}
	return objs, nil
}

// drainAndClose finishes a response body so the connection is reusable.
func drainAndClose(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}

// isRetryable: timeouts, 429/408 and 5xx. Auth and not-found outcomes
// never improve by retrying.
func isRetryable(err error) bool {
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return true
	}
	var se *StatusError
	if errors.As(err, &se) {
		if se.Code == http.StatusTooManyRequests || se.Code == http.StatusRequestTimeout {
			return true
		}
		return se.Code >= 500 && se.Code <= 599
	}
	return false
}
