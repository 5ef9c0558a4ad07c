package diag

import (
	"bytes"
	"strings"
	"testing"

	"orelang/internal/source"
)

func span(file *source.File, start, end int) source.Span {
	return source.Span{File: file, Start: start, End: end}
}

func TestHasErrorsStartsFalse(t *testing.T) {
	var b Bag
	if b.HasErrors() {
		t.Fatalf("expected a fresh Bag to have no errors")
	}
	b.Report(CompilerInternal, source.Span{}, "boom")
	if !b.HasErrors() {
		t.Fatalf("expected HasErrors to be true after Report")
	}
}

func TestEmissionOrderIsPreserved(t *testing.T) {
	file := source.NewFile("a.ore", "xxxxxxxxxxxxxxxxxxxx")
	file.OpenLine(0)
	file.CloseLine(20)

	var b Bag
	b.Report(SymbolAlreadyDeclared, span(file, 15, 16), "second")
	b.Report(SymbolAlreadyDeclared, span(file, 5, 6), "first in source order but reported second")
	b.Report(SymbolAlreadyDeclared, span(file, 0, 1), "zeroth")

	if len(b.Items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(b.Items))
	}
	// Spec.md §5: emission order is the contract, not a file/line sort.
	if b.Items[0].Message != "second" || b.Items[2].Message != "zeroth" {
		t.Fatalf("Bag reordered diagnostics: %+v", b.Items)
	}
}

func TestWriteIncludesKindAndHint(t *testing.T) {
	file := source.NewFile("m.ore", "foo")
	file.OpenLine(0)
	file.CloseLine(3)

	var b Bag
	b.ReportHint(StructInfiniteSize, span(file, 0, 3), "Node stores itself", "field chain: next")

	var out bytes.Buffer
	Write(&out, &b)

	got := out.String()
	if !strings.Contains(got, "STRUCT_INFINITE_SIZE") {
		t.Fatalf("expected rendered diagnostic to name its Kind, got %q", got)
	}
	if !strings.Contains(got, "field chain: next") {
		t.Fatalf("expected rendered diagnostic to include its hint, got %q", got)
	}
	if !strings.Contains(got, "m.ore:1:1") {
		t.Fatalf("expected rendered diagnostic to include file:line:col, got %q", got)
	}
}

func TestKindStringIsStable(t *testing.T) {
	if CfgNotAllPathsReturn.String() != "CFG_NOT_ALL_PATHS_RETURN" {
		t.Fatalf("String() = %q", CfgNotAllPathsReturn.String())
	}
}
