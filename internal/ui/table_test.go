package ui

import (
	"strings"
	"testing"
)

func TestTableAlignsColumns(t *testing.T) {
	tbl := NewTable(2)
	tbl.AddRow("a", "one")
	tbl.AddRow("longer", "two")

	out := tbl.String()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if !strings.HasPrefix(lines[0], "a       one") {
		t.Errorf("first row misaligned: %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "longer  two") {
		t.Errorf("second row misaligned: %q", lines[1])
	}
}

func TestTableDropsExtraCells(t *testing.T) {
	tbl := NewTable(1)
	tbl.AddRow("only", "dropped")
	if out := tbl.String(); strings.Contains(out, "dropped") {
		t.Errorf("extra cell survived: %q", out)
	}
}

func TestEmptyTableRendersNothing(t *testing.T) {
	if out := NewTable(3).String(); out != "" {
		t.Errorf("expected empty output, got %q", out)
	}
}

func TestCount(t *testing.T) {
	if got := Count(1, "record", "records"); got != "(1 record)" {
		t.Errorf("singular = %q", got)
	}
	if got := Count(3, "record", "records"); got != "(3 records)" {
		t.Errorf("plural = %q", got)
	}
}
