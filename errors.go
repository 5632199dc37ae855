package bunnytab

import (
	"github.com/harborstat/bunnytab/internal/bunny"
	"github.com/harborstat/bunnytab/internal/codec"
)

// Transfer and format errors re-exported so callers only import this
// package. Match with errors.Is; transport failures stay *url.Error.
var (
	ErrNotFound          = bunny.ErrNotFound
	ErrUnauthorized      = bunny.ErrUnauthorized
	ErrRemoteWrite       = bunny.ErrRemoteWrite
	ErrReadOnly          = bunny.ErrReadOnly
	ErrUnsupportedFormat = codec.ErrUnsupportedFormat
)
