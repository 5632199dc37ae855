package bunny

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors callers match with errors.Is. Transport-level
// failures (DNS, refused connections, timeouts) are not translated;
// they stay *url.Error so net.Error inspection keeps working.
var (
	// ErrNotFound means the remote path does not exist in the zone.
	ErrNotFound = errors.New("bunny: remote path not found")

	// ErrUnauthorized means the storage zone rejected the access key.
	ErrUnauthorized = errors.New("bunny: access denied")

	// ErrRemoteWrite covers any other non-success response to a write.
	ErrRemoteWrite = errors.New("bunny: remote write failed")

	// ErrReadOnly means a write was attempted with only a read password.
	ErrReadOnly = errors.New("bunny: no write password configured")
)

// StatusError records the HTTP outcome of one storage request and
// unwraps to the matching sentinel.
type StatusError struct {
	Op   string // "upload", "download", "delete", "stat", "list"
	Key  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("bunny: %s %q: http status %d", e.Op, e.Key, e.Code)
}

func (e *StatusError) Unwrap() error {
	switch {
	case e.Code == http.StatusNotFound:
		return ErrNotFound
	case e.Code == http.StatusUnauthorized || e.Code == http.StatusForbidden:
		return ErrUnauthorized
	case e.Op == "upload" || e.Op == "delete":
		return ErrRemoteWrite
	}
	return nil
}
