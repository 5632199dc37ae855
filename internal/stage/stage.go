// Package stage manages the local files that bridge in-memory tables
// and the storage API's byte-stream interface. Every file it creates is
// transient: the facade deletes it as soon as the transfer finishes.
package stage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"

	"github.com/harborstat/bunnytab/internal/codec"
	"github.com/harborstat/bunnytab/tabular"
)

// Stager creates, fills and removes staging files in one scratch
// directory. It owns no state beyond the filesystem handle, so a single
// Stager can serve many sequential operations; each call gets its own
// uniquely named file.
type Stager struct {
	fs  afero.Fs
	dir string
}

// New returns a Stager writing into dir on fs. An empty dir falls back
// to the system temp directory; fs == nil means the OS filesystem.
func New(fs afero.Fs, dir string) (*Stager, error) {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "bunnytab")
	}
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("stage: create scratch dir %q: %w", dir, err)
	}
	return &Stager{fs: fs, dir: dir}, nil
}

// Dir returns the scratch directory.
func (s *Stager) Dir() string { return s.dir }

// StageWrite encodes t into a fresh staging file and returns its path.
func (s *Stager) StageWrite(t *tabular.Table, format string) (string, error) {
	c, err := codec.Lookup(format)
	if err != nil {
		return "", err
	}
	if err := t.Validate(); err != nil {
		return "", err
	}

	f, err := afero.TempFile(s.fs, s.dir, "bunnytab-*."+format)
	if err != nil {
		return "", fmt.Errorf("stage: create temp file: %w", err)
	}
	path := f.Name()

	if err := c.Encode(f, t); err != nil {
		_ = f.Close()
		s.Cleanup(path)
		return "", err
	}
	if err := f.Close(); err != nil {
		s.Cleanup(path)
		return "", fmt.Errorf("stage: close %q: %w", path, err)
	}

	log.Debug().
		Str("action", "stage_write").
		Str("format", format).
		Str("local", path).
		Int("rows", t.NumRows()).
		Msg("table staged")
	return path, nil
}

// StageRead decodes the staged file at path with the codec for format.
func (s *Stager) StageRead(path, format string) (*tabular.Table, error) {
	c, err := codec.Lookup(format)
	if err != nil {
		return nil, err
	}
	f, err := s.fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("stage: open %q: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	t, err := c.Decode(f)
	if err != nil {
		return nil, err
	}
	log.Debug().
		Str("action", "stage_read").
		Str("format", format).
		Str("local", path).
		Int("rows", t.NumRows()).
		Msg("table decoded")
	return t, nil
}

// StagePath reserves a unique, empty staging file for a download and
// returns its path. The format must still be registered so a bad
// extension fails before any network round trip.
func (s *Stager) StagePath(format string) (string, error) {
	if _, err := codec.Lookup(format); err != nil {
		return "", err
	}
	f, err := afero.TempFile(s.fs, s.dir, "bunnytab-*."+format)
	if err != nil {
		return "", fmt.Errorf("stage: create temp file: %w", err)
	}
	path := f.Name()
	if err := f.Close(); err != nil {
		s.Cleanup(path)
		return "", fmt.Errorf("stage: close %q: %w", path, err)
	}
	return path, nil
}

// Cleanup removes a staging file. A file that is already gone is
// success, so double cleanup is harmless.
func (s *Stager) Cleanup(path string) {
	if path == "" {
		return
	}
	err := s.fs.Remove(path)
	if err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Str("local", path).Msg("failed to remove staging file")
		return
	}
	log.Debug().Str("action", "stage_cleanup").Str("local", path).Msg("staging file removed")
}

// Fs exposes the underlying filesystem for transfer code that streams
// directly into staged files.
func (s *Stager) Fs() afero.Fs { return s.fs }
