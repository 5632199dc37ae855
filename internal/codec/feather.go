package codec

import (
	"io"

	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/harborstat/bunnytab/tabular"
)

func init() {
	// pandas maps both suffixes to Feather; v2 is the Arrow IPC file format.
	Register(featherCodec{}, "feather", "f")
}

type featherCodec struct{}

func (featherCodec) Name() string { return "feather" }

func (c featherCodec) Encode(w io.Writer, t *tabular.Table) error {
	mem := memory.DefaultAllocator
	schema := arrowSchema(t)

	fw, err := ipc.NewFileWriter(w, ipc.WithSchema(schema), ipc.WithAllocator(mem))
	if err != nil {
		return &EncodeError{Format: c.Name(), Err: err}
	}

	rec := recordFromTable(mem, schema, t)
	defer rec.Release()

	if err := fw.Write(rec); err != nil {
		_ = fw.Close()
		return &EncodeError{Format: c.Name(), Err: err}
	}
	if err := fw.Close(); err != nil {
		return &EncodeError{Format: c.Name(), Err: err}
	}
	return nil
}

func (c featherCodec) Decode(src Source) (*tabular.Table, error) {
	fr, err := ipc.NewFileReader(src, ipc.WithAllocator(memory.DefaultAllocator))
	if err != nil {
		return nil, &DecodeError{Format: c.Name(), Err: err}
	}
	defer func() { _ = fr.Close() }()

	schema := fr.Schema()
	columns := make([]string, schema.NumFields())
	cols := make([][]string, schema.NumFields())
	for j := range columns {
		columns[j] = schema.Field(j).Name
	}

	numRows := 0
	for {
		rec, err := fr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &DecodeError{Format: c.Name(), Err: err}
		}
		// The record is only valid until the next Read; copy cells out now.
		for j := range columns {
			cols[j] = chunkValues(cols[j], rec.Column(j))
		}
		numRows += int(rec.NumRows())
	}
	return tableFromColumns(columns, cols, numRows), nil
}
