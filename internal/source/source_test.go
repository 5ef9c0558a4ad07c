package source

import "testing"

func TestLineColFallbackScan(t *testing.T) {
	// No lexer has run, so LineCol falls back to scanning Input directly.
	f := NewFile("x.ore", "ab\nxy\nz")

	type tc struct {
		off      int
		wantLine int
		wantCol  int
	}
	cases := []tc{
		{off: 0, wantLine: 1, wantCol: 1},
		{off: 2, wantLine: 1, wantCol: 3},
		{off: 3, wantLine: 2, wantCol: 1},
		{off: 5, wantLine: 2, wantCol: 3},
		{off: 6, wantLine: 3, wantCol: 1},
	}
	for _, c := range cases {
		line, col := f.LineCol(c.off)
		if line != c.wantLine || col != c.wantCol {
			t.Fatalf("off=%d => (%d,%d), want (%d,%d)", c.off, line, col, c.wantLine, c.wantCol)
		}
	}
}

func TestLineColFromRecordedLines(t *testing.T) {
	f := NewFile("x.ore", "ab\nxy\nz")
	f.OpenLine(0)
	f.CloseLine(2)
	f.OpenLine(3)
	f.CloseLine(5)
	f.OpenLine(6)
	f.CloseLine(7)

	line, col := f.LineCol(4)
	if line != 2 || col != 2 {
		t.Fatalf("got (%d,%d), want (2,2)", line, col)
	}
}

func TestSpanTextAndJoin(t *testing.T) {
	f := NewFile("x.ore", "foo bar baz")
	a := Span{File: f, Start: 0, End: 3}
	b := Span{File: f, Start: 8, End: 11}
	if a.Text() != "foo" {
		t.Fatalf("a.Text() = %q", a.Text())
	}
	j := Join(a, b)
	if j.Text() != "foo bar baz" {
		t.Fatalf("join text = %q", j.Text())
	}
}
