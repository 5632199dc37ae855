package stage

import (
	"errors"
	"testing"

	"github.com/spf13/afero"

	"github.com/harborstat/bunnytab/internal/codec"
	"github.com/harborstat/bunnytab/tabular"
)

func newMemStager(t *testing.T) (*Stager, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	s, err := New(fs, "/scratch")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s, fs
}

func scratchFiles(t *testing.T, fs afero.Fs, dir string) []string {
	t.Helper()
	infos, err := afero.ReadDir(fs, dir)
	if err != nil {
		t.Fatalf("read scratch dir: %v", err)
	}
	names := make([]string, 0, len(infos))
	for _, fi := range infos {
		names = append(names, fi.Name())
	}
	return names
}

func sample() *tabular.Table {
	tab := tabular.New("id", "label")
	tab.Rows = [][]string{{"1", "alpha"}, {"2", "beta"}}
	return tab
}

func TestStageWriteReadCleanup(t *testing.T) {
	s, fs := newMemStager(t)

	path, err := s.StageWrite(sample(), "csv")
	if err != nil {
		t.Fatalf("StageWrite: %v", err)
	}
	if got := scratchFiles(t, fs, s.Dir()); len(got) != 1 {
		t.Fatalf("want exactly one staged file, got %v", got)
	}

	tab, err := s.StageRead(path, "csv")
	if err != nil {
		t.Fatalf("StageRead: %v", err)
	}
	if !tab.Equal(sample()) {
		t.Fatalf("staged table mismatch: %+v", tab)
	}

	s.Cleanup(path)
	if got := scratchFiles(t, fs, s.Dir()); len(got) != 0 {
		t.Fatalf("staged file not removed: %v", got)
	}
}

func TestCleanup_DoubleIsNoop(t *testing.T) {
	s, _ := newMemStager(t)
	path, err := s.StagePath("csv")
	if err != nil {
		t.Fatalf("StagePath: %v", err)
	}
	s.Cleanup(path)
	s.Cleanup(path) // second removal of an absent file must not blow up
	s.Cleanup("")
}

func TestStageWrite_UnsupportedFormat(t *testing.T) {
	s, fs := newMemStager(t)
	if _, err := s.StageWrite(sample(), "hdf"); !errors.Is(err, codec.ErrUnsupportedFormat) {
		t.Fatalf("got %v, want ErrUnsupportedFormat", err)
	}
	// No temp file may be created before format dispatch succeeds.
	if got := scratchFiles(t, fs, s.Dir()); len(got) != 0 {
		t.Fatalf("leftover files after rejected format: %v", got)
	}
}

func TestStageWrite_RaggedTableLeavesNothing(t *testing.T) {
	s, fs := newMemStager(t)
	bad := tabular.New("a", "b")
	bad.Rows = [][]string{{"only-one"}}
	if _, err := s.StageWrite(bad, "csv"); err == nil {
		t.Fatal("expected validation error")
	}
	if got := scratchFiles(t, fs, s.Dir()); len(got) != 0 {
		t.Fatalf("leftover files after failed stage: %v", got)
	}
}

func TestStagePath_UniqueNames(t *testing.T) {
	s, _ := newMemStager(t)
	a, err := s.StagePath("parquet")
	if err != nil {
		t.Fatalf("StagePath: %v", err)
	}
	b, err := s.StagePath("parquet")
	if err != nil {
		t.Fatalf("StagePath: %v", err)
	}
	if a == b {
		t.Fatalf("staging paths collide: %q", a)
	}
}

func TestStageRead_MissingFile(t *testing.T) {
	s, _ := newMemStager(t)
	if _, err := s.StageRead("/scratch/nope.csv", "csv"); err == nil {
		t.Fatal("expected error for missing staged file")
	}
}
