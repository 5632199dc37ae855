package bunny

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"strings"

	"github.com/spf13/afero"
)

// sha256File digests a staged file and returns the uppercase hex sum
// (the form the storage API's Checksum header expects) plus the size.
func sha256File(fs afero.Fs, path string) (sum string, size int64, err error) {
	f, err := fs.Open(path)
	if err != nil {
		return "", 0, err
	}
	defer func() { _ = f.Close() }()

	h := sha256.New()
	n, err := io.Copy(h, f)
	if err != nil {
		return "", 0, err
	}
	return strings.ToUpper(hex.EncodeToString(h.Sum(nil))), n, nil
}
