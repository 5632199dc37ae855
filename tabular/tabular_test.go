package tabular

import "testing"

func TestAppendRow(t *testing.T) {
	tab := New("name", "qty")
	if err := tab.AppendRow("bolt", "12"); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := tab.AppendRow("just-one"); err == nil {
		t.Fatal("expected error for short row")
	}
	if tab.NumRows() != 1 || tab.NumCols() != 2 {
		t.Fatalf("got %dx%d, want 1x2", tab.NumRows(), tab.NumCols())
	}
}

func TestValidate_RaggedRow(t *testing.T) {
	tab := New("a", "b")
	tab.Rows = append(tab.Rows, []string{"1", "2"}, []string{"3"})
	if err := tab.Validate(); err == nil {
		t.Fatal("expected ragged row error")
	}
}

func TestEqual(t *testing.T) {
	a := New("x", "y")
	_ = a.AppendRow("1", "2")
	b := New("x", "y")
	_ = b.AppendRow("1", "2")

	if !a.Equal(b) {
		t.Fatal("identical tables not equal")
	}
	b.Rows[0][1] = "3"
	if a.Equal(b) {
		t.Fatal("different cells reported equal")
	}
	if a.Equal(New("x")) {
		t.Fatal("different shapes reported equal")
	}
	var nilTab *Table
	if a.Equal(nilTab) {
		t.Fatal("nil table reported equal")
	}
}
