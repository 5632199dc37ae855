package bunnytab

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/afero"

	"github.com/harborstat/bunnytab/tabular"
)

/* ----------------------------- mock storage ----------------------------- */

// mockZone stores and serves raw bytes faithfully, which is all the
// round-trip property needs from the provider.
type mockZone struct {
	mu       sync.Mutex
	key      string
	objects  map[string][]byte
	requests int
}

func (z *mockZone) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	z.mu.Lock()
	defer z.mu.Unlock()
	z.requests++

	if r.Header.Get("AccessKey") != z.key {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	objKey := strings.TrimPrefix(r.URL.Path, "/testzone/")

	switch r.Method {
	case http.MethodPut:
		body, _ := io.ReadAll(r.Body)
		z.objects[objKey] = body
		w.WriteHeader(http.StatusCreated)
	case http.MethodGet:
		body, ok := z.objects[objKey]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write(body)
	case http.MethodHead:
		body, ok := z.objects[objKey]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Length", fmt.Sprint(len(body)))
	case http.MethodDelete:
		if _, ok := z.objects[objKey]; !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		delete(z.objects, objKey)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func newTestClient(t *testing.T, fs afero.Fs) (*Client, *mockZone) {
	t.Helper()
	z := &mockZone{key: "secret", objects: map[string][]byte{}}
	srv := httptest.NewServer(z)
	t.Cleanup(srv.Close)

	c, err := New(Credentials{
		Zone:          "testzone",
		WritePassword: "secret",
		Endpoint:      srv.URL,
	}, WithFs(fs), WithScratchDir("/scratch"), WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c, z
}

func scratchCount(t *testing.T, fs afero.Fs, dir string) int {
	t.Helper()
	infos, err := afero.ReadDir(fs, dir)
	if err != nil {
		t.Fatalf("read scratch: %v", err)
	}
	return len(infos)
}

func threeByTwo() *tabular.Table {
	tab := tabular.New("name", "qty")
	tab.Rows = [][]string{{"bolt", "12"}, {"nut", "40"}, {"washer", "7"}}
	return tab
}

/* --------------------------------- tests -------------------------------- */

// Write a 3x2 table to data.csv, read it back through the same mock
// store, expect identical content.
func TestWriteThenReadTable_CSV(t *testing.T) {
	fs := afero.NewMemMapFs()
	c, z := newTestClient(t, fs)
	ctx := context.Background()

	want := threeByTwo()
	if err := c.WriteTable(ctx, want, "data.csv"); err != nil {
		t.Fatalf("WriteTable: %v", err)
	}
	if _, ok := z.objects["data.csv"]; !ok {
		t.Fatal("remote object missing after write")
	}

	got, err := c.ReadTable(ctx, "data.csv")
	if err != nil {
		t.Fatalf("ReadTable: %v", err)
	}
	if !want.Equal(got) {
		t.Fatalf("round trip mismatch:\nwant %+v\ngot  %+v", want, got)
	}
	if n := scratchCount(t, fs, c.ScratchDir()); n != 0 {
		t.Fatalf("%d staging files left behind", n)
	}
}

func TestWriteThenReadTable_AllFormats(t *testing.T) {
	for _, ext := range []string{"csv", "xlsx", "parquet", "feather", "json", "gob"} {
		t.Run(ext, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			c, _ := newTestClient(t, fs)
			ctx := context.Background()

			want := threeByTwo()
			remote := "nested/dir/data." + ext
			if err := c.WriteTable(ctx, want, remote); err != nil {
				t.Fatalf("WriteTable: %v", err)
			}
			got, err := c.ReadTable(ctx, remote)
			if err != nil {
				t.Fatalf("ReadTable: %v", err)
			}
			if !want.Equal(got) {
				t.Fatalf("round trip mismatch:\nwant %+v\ngot  %+v", want, got)
			}
			if n := scratchCount(t, fs, c.ScratchDir()); n != 0 {
				t.Fatalf("%d staging files left behind", n)
			}
		})
	}
}

func TestWriteTable_CleansUpOnUploadFailure(t *testing.T) {
	fs := afero.NewMemMapFs()
	z := &mockZone{key: "other-key", objects: map[string][]byte{}}
	srv := httptest.NewServer(z)
	defer srv.Close()

	c, err := New(Credentials{Zone: "testzone", WritePassword: "secret", Endpoint: srv.URL},
		WithFs(fs), WithScratchDir("/scratch"), WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	err = c.WriteTable(context.Background(), threeByTwo(), "data.csv")
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("got %v, want ErrUnauthorized", err)
	}
	if n := scratchCount(t, fs, c.ScratchDir()); n != 0 {
		t.Fatalf("%d staging files left after failed upload", n)
	}
}

func TestReadTable_NotFoundLeavesNoTemp(t *testing.T) {
	fs := afero.NewMemMapFs()
	c, _ := newTestClient(t, fs)

	_, err := c.ReadTable(context.Background(), "never-written.csv")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
	if n := scratchCount(t, fs, c.ScratchDir()); n != 0 {
		t.Fatalf("%d staging files left after failed read", n)
	}
}

func TestWriteTable_UnsupportedExtensionSkipsNetwork(t *testing.T) {
	fs := afero.NewMemMapFs()
	c, z := newTestClient(t, fs)

	err := c.WriteTable(context.Background(), threeByTwo(), "data.ods")
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("got %v, want ErrUnsupportedFormat", err)
	}
	if z.requests != 0 {
		t.Fatalf("format rejection must not hit the network, saw %d requests", z.requests)
	}
	if n := scratchCount(t, fs, c.ScratchDir()); n != 0 {
		t.Fatal("staging files left after rejected format")
	}
}

func TestDeleteFile_PassThrough(t *testing.T) {
	fs := afero.NewMemMapFs()
	c, z := newTestClient(t, fs)
	ctx := context.Background()

	if err := c.WriteTable(ctx, threeByTwo(), "tmp.csv"); err != nil {
		t.Fatalf("WriteTable: %v", err)
	}
	if err := c.DeleteFile(ctx, "tmp.csv"); err != nil {
		t.Fatalf("DeleteFile: %v", err)
	}
	if _, ok := z.objects["tmp.csv"]; ok {
		t.Fatal("object still present after DeleteFile")
	}
	if err := c.DeleteFile(ctx, "tmp.csv"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound on second delete", err)
	}
}

func TestUploadDownloadFile_RawBytes(t *testing.T) {
	fs := afero.NewMemMapFs()
	c, _ := newTestClient(t, fs)
	ctx := context.Background()

	if err := afero.WriteFile(fs, "/data/notes.txt", []byte("not a table"), 0o644); err != nil {
		t.Fatalf("write local: %v", err)
	}
	if err := c.UploadFile(ctx, "/data/notes.txt", "misc/notes.txt"); err != nil {
		t.Fatalf("UploadFile: %v", err)
	}
	if err := c.DownloadFile(ctx, "misc/notes.txt", "/data/copy.txt"); err != nil {
		t.Fatalf("DownloadFile: %v", err)
	}
	got, _ := afero.ReadFile(fs, "/data/copy.txt")
	if string(got) != "not a table" {
		t.Fatalf("raw bytes mismatch: %q", got)
	}
}
