package cli

import (
	"bytes"
	"reflect"
	"strings"
	"testing"
)

func TestCapWidths_NoConstraint(t *testing.T) {
	widths := []int{5, 20, 10}
	headers := []string{"COL1", "COL2", "COL3"}
	// Total: 5+20+10 + 2*2 + prefix 0 = 39; fits in 80-col terminal.
	got := capWidths(widths, headers, 80, 0)
	if !reflect.DeepEqual(got, widths) {
		t.Errorf("expected no change: got %v, want %v", got, widths)
	}
}

func TestCapWidths_ReducesWidest(t *testing.T) {
	// 8 + 57 + 10 + 2*2 = 79 → just over 78
	widths := []int{8, 57, 10}
	headers := []string{"SEVERITY", "MESSAGE", "CHECK"}
	got := capWidths(widths, headers, 78, 0)
	// Total should now be <= 78
	total := 0
	for _, w := range got {
		total += w
	}
	total += 2 * (len(got) - 1)
	if total > 78 {
		t.Errorf("total %d still exceeds 78; widths=%v", total, got)
	}
	// Widest column (index 1) should have been reduced; others unchanged.
	if got[0] != widths[0] {
		t.Errorf("column 0 should be unchanged: got %d, want %d", got[0], widths[0])
	}
	if got[2] != widths[2] {
		t.Errorf("column 2 should be unchanged: got %d, want %d", got[2], widths[2])
	}
}

func TestCapWidths_RespectsHeaderMinimum(t *testing.T) {
	widths := []int{4, 60}
	headers := []string{"NUM", "A-VERY-LONG-HEADER-NAME"}
	// minWidths = [3, 23]; terminal is tiny at 30 cols.
	got := capWidths(widths, headers, 30, 2) // prefix=2
	// Column 1 must not go below len("A-VERY-LONG-HEADER-NAME")=23.
	if got[1] < visualLen("A-VERY-LONG-HEADER-NAME") {
		t.Errorf("column 1 reduced below header minimum: got %d", got[1])
	}
}

func TestCapWidths_CannotReduceFurther(t *testing.T) {
	// All columns already at their header minimum; terminal too narrow.
	widths := []int{3, 8}
	headers := []string{"NUM", "SCENARIO"}
	// 3+8+2 = 13; terminal width = 5 (impossibly narrow).
	got := capWidths(widths, headers, 5, 0)
	// Should not go below minimums, even if that means exceeding terminal.
	if got[0] < visualLen("NUM") {
		t.Errorf("column 0 below header minimum: %d", got[0])
	}
	if got[1] < visualLen("SCENARIO") {
		t.Errorf("column 1 below header minimum: %d", got[1])
	}
}

func TestWrapCell_FitsUnchanged(t *testing.T) {
	got := wrapCell("hello", 10)
	if !reflect.DeepEqual(got, []string{"hello"}) {
		t.Errorf("got %v, want [hello]", got)
	}
}

func TestWrapCell_ExactFit(t *testing.T) {
	got := wrapCell("hello", 5)
	if !reflect.DeepEqual(got, []string{"hello"}) {
		t.Errorf("got %v, want [hello]", got)
	}
}

func TestWrapCell_WordWrap(t *testing.T) {
	// "hello world foo" wrapped at 11: "hello world" (11), "foo" (3)
	got := wrapCell("hello world foo", 11)
	want := []string{"hello world", "foo"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestWrapCell_HardBreakLongWord(t *testing.T) {
	// Single word longer than width: hard-break at width.
	got := wrapCell("abcdefghij", 4)
	want := []string{"abcd", "efgh", "ij"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestWrapCell_IssueMessage(t *testing.T) {
	// Typical MESSAGE cell: "loop via: net-10 net-20"
	got := wrapCell("loop via: floor-3-mstp-trunk", 20)
	// line1: "loop via:" (9), then "floor-3-mstp-trunk" (18) fits on line2.
	if len(got) < 2 {
		t.Fatalf("expected wrapping: got %v", got)
	}
	for _, line := range got {
		if visualLen(line) > 20 {
			t.Errorf("line %q exceeds width 20 (len=%d)", line, visualLen(line))
		}
	}
}

func TestWrapCell_ANSIPreservedWhenFits(t *testing.T) {
	colored := "\x1b[31merror\x1b[0m" // red error
	got := wrapCell(colored, 10)
	if !reflect.DeepEqual(got, []string{colored}) {
		t.Errorf("ANSI string should be returned unchanged when it fits: got %v", got)
	}
}

func TestWrapCell_EmptyString(t *testing.T) {
	got := wrapCell("", 10)
	if !reflect.DeepEqual(got, []string{""}) {
		t.Errorf("got %v, want [\"\"]", got)
	}
}

func TestWrapCell_MultiWordExactBoundary(t *testing.T) {
	// "aa bb cc" at width 5: "aa bb" (5), "cc" (2)
	got := wrapCell("aa bb cc", 5)
	want := []string{"aa bb", "cc"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestTable_EmptyProducesNoOutput(t *testing.T) {
	var buf bytes.Buffer
	tbl := NewTableWriter(&buf, "SEVERITY", "CHECK")
	if err := tbl.Flush(); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != 0 {
		t.Errorf("empty table wrote %q", buf.String())
	}
}

func TestTable_AlignsColumns(t *testing.T) {
	var buf bytes.Buffer
	tbl := NewTableWriter(&buf, "SEVERITY", "CHECK", "ENTITIES")
	tbl.Row("error", "duplicate-device-id", "d1,d2")
	tbl.Row("warning", "orphaned-devices", "d3")
	if err := tbl.Flush(); err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header, divider and 2 rows, got %d lines: %q", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[1], "--------") {
		t.Errorf("divider line = %q", lines[1])
	}
	col := strings.Index(lines[0], "CHECK")
	wantChecks := []string{"duplicate-device-id", "orphaned-devices"}
	for i, l := range lines[2:] {
		if !strings.HasPrefix(l[col:], wantChecks[i]) {
			t.Errorf("row %q not aligned to CHECK column at %d", l, col)
		}
	}
}

func TestTable_WrapsToMaxWidth(t *testing.T) {
	var buf bytes.Buffer
	tbl := NewTableWriter(&buf, "SEV", "MESSAGE").WithMaxWidth(24)
	tbl.Row("error", "network loop through net-1 net-2 net-3")
	if err := tbl.Flush(); err != nil {
		t.Fatal(err)
	}

	for _, l := range strings.Split(strings.TrimRight(buf.String(), "\n"), "\n") {
		if visualLen(l) > 24 {
			t.Errorf("line %q exceeds 24 columns", l)
		}
	}
	if !strings.Contains(buf.String(), "net-3") {
		t.Errorf("wrapped output lost text: %q", buf.String())
	}
}

func TestTable_Prefix(t *testing.T) {
	var buf bytes.Buffer
	tbl := NewTableWriter(&buf, "A").WithPrefix("  ")
	tbl.Row("x")
	_ = tbl.Flush()
	for _, l := range strings.Split(strings.TrimRight(buf.String(), "\n"), "\n") {
		if !strings.HasPrefix(l, "  ") {
			t.Errorf("line %q missing prefix", l)
		}
	}
}

func TestVisualLen(t *testing.T) {
	if got := visualLen("\x1b[1mbold\x1b[0m"); got != 4 {
		t.Errorf("visualLen with escapes = %d, want 4", got)
	}
	if got := visualLen("plain"); got != 5 {
		t.Errorf("visualLen(plain) = %d, want 5", got)
	}
}
