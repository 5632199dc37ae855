// Package codec maps file extensions to tabular serializers.
//
// Codecs self-register in init(), so adding a format touches only its
// own file plus the extension list it claims.
package codec

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/harborstat/bunnytab/tabular"
)

// ErrUnsupportedFormat is returned when no codec claims an extension.
var ErrUnsupportedFormat = errors.New("unsupported tabular format")

// Source is what codecs decode from. *os.File, afero.File and
// *bytes.Reader all satisfy it; Parquet needs the random access.
type Source interface {
	io.Reader
	io.ReaderAt
	io.Seeker
}

// Codec is a serializer/deserializer pair for one tabular file format.
type Codec interface {
	// Name returns the format identifier (e.g. "csv", "parquet").
	Name() string

	// Encode writes t to w in the codec's format.
	Encode(w io.Writer, t *tabular.Table) error

	// Decode reads a table from src.
	Decode(src Source) (*tabular.Table, error)
}

var registry = map[string]Codec{}

// Extensions the original toolchain handles through libraries that have
// no maintained pure-Go counterpart. They get a pointed error instead
// of the generic unknown-extension one.
var noGoCodec = map[string]string{
	"ods":    "OpenDocument spreadsheets",
	"hdf":    "HDF5",
	"xls":    "legacy Excel 97-2003 workbooks",
	"pkl":    "Python pickle",
	"pickle": "Python pickle",
}

// Register binds a codec to one or more extensions (without dots).
func Register(c Codec, exts ...string) {
	for _, ext := range exts {
		registry[strings.ToLower(ext)] = c
	}
}

// Lookup returns the codec registered for ext.
func Lookup(ext string) (Codec, error) {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	if c, ok := registry[ext]; ok {
		return c, nil
	}
	if what, ok := noGoCodec[ext]; ok {
		return nil, fmt.Errorf("%w: %q (%s have no Go codec)", ErrUnsupportedFormat, ext, what)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
}

// ForPath derives the format from path's extension and returns its codec.
func ForPath(path string) (Codec, string, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return nil, "", fmt.Errorf("%w: %q has no extension", ErrUnsupportedFormat, path)
	}
	c, err := Lookup(ext)
	if err != nil {
		return nil, "", err
	}
	return c, strings.ToLower(ext), nil
}

// Formats returns the registered extensions, unordered.
func Formats() []string {
	out := make([]string, 0, len(registry))
	for ext := range registry {
		out = append(out, ext)
	}
	return out
}

// EncodeError wraps a failure inside a codec's serializer.
type EncodeError struct {
	Format string
	Err    error
}

func (e *EncodeError) Error() string { return fmt.Sprintf("encode %s: %v", e.Format, e.Err) }
func (e *EncodeError) Unwrap() error { return e.Err }

// DecodeError wraps a failure inside a codec's deserializer.
type DecodeError struct {
	Format string
	Err    error
}

func (e *DecodeError) Error() string { return fmt.Sprintf("decode %s: %v", e.Format, e.Err) }
func (e *DecodeError) Unwrap() error { return e.Err }
