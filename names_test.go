package logsim_test

import (
	"testing"

	ls "github.com/dlsim/logsim"
)

func TestTableInterning(t *testing.T) {
	tbl := ls.NewTable()
	a := tbl.Lookup("G1")
	b := tbl.Lookup("SW")
	if a == b {
		t.Fatal("distinct names interned to the same ID")
	}
	if tbl.Lookup("G1") != a {
		t.Error("re-interning changed the ID")
	}
	if tbl.Query("G1") != a || tbl.Query("SW") != b {
		t.Error("Query does not match Lookup")
	}
	if tbl.Query("absent") != ls.NoID {
		t.Error("Query of an unknown name did not return NoID")
	}
	if tbl.Len() != 2 {
		t.Errorf("Len = %d, want 2", tbl.Len())
	}
	if tbl.Name(a) != "G1" || tbl.Name(b) != "SW" {
		t.Error("Name does not invert Lookup")
	}
	if tbl.Name(ls.NoID) != "" || tbl.Name(99) != "" {
		t.Error("Name of an unissued ID is not empty")
	}
}
