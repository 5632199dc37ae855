package codec

import (
	"encoding/gob"
	"io"

	"github.com/harborstat/bunnytab/tabular"
)

func init() {
	Register(gobCodec{}, "gob")
}

// gobCodec is the generic object-serialization codec. It stands in for
// pickle, which is Python-specific; gob files are only meant to be read
// back by Go programs.
type gobCodec struct{}

type gobDoc struct {
	Columns []string
	Rows    [][]string
}

func (gobCodec) Name() string { return "gob" }

func (c gobCodec) Encode(w io.Writer, t *tabular.Table) error {
	if err := gob.NewEncoder(w).Encode(gobDoc{Columns: t.Columns, Rows: t.Rows}); err != nil {
		return &EncodeError{Format: c.Name(), Err: err}
	}
	return nil
}

func (c gobCodec) Decode(src Source) (*tabular.Table, error) {
	var doc gobDoc
	if err := gob.NewDecoder(src).Decode(&doc); err != nil {
		return nil, &DecodeError{Format: c.Name(), Err: err}
	}
	return &tabular.Table{Columns: doc.Columns, Rows: doc.Rows}, nil
}
