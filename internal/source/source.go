// Package source holds per-module source buffers and the byte-offset spans
// that every token and AST node carries into them.
package source

import "sort"

// File is an immutable byte span for one module, plus the LineSpans the
// lexer populates while scanning it (see internal/lexer's "Line tracking").
type File struct {
	Name  string
	Input string
	Lines []LineSpan
}

// LineSpan is the byte range [Start, End] of one source line, not including
// the terminating newline.
type LineSpan struct {
	Start, End int
}

func NewFile(name, input string) *File {
	return &File{Name: name, Input: input}
}

// OpenLine records the start of a new line at offset. The lexer calls this
// once at the beginning of scanning and again after every newline byte.
func (f *File) OpenLine(start int) {
	f.Lines = append(f.Lines, LineSpan{Start: start, End: start})
}

// CloseLine closes the most recently opened line at offset end (the byte
// index of the newline, exclusive).
func (f *File) CloseLine(end int) {
	if n := len(f.Lines); n > 0 {
		f.Lines[n-1].End = end
	}
}

// LineCol returns the 1-based (line, column) for a byte offset, using the
// LineSpans the lexer recorded. Falls back to scanning Input directly if the
// lexer has not run (or has not reached this offset yet), so diagnostics
// about ill-formed input are still locatable.
func (f *File) LineCol(offset int) (line, col int) {
	if offset < 0 {
		offset = 0
	}
	if offset > len(f.Input) {
		offset = len(f.Input)
	}
	if len(f.Lines) > 0 {
		i := sort.Search(len(f.Lines), func(i int) bool { return f.Lines[i].Start > offset }) - 1
		if i < 0 {
			i = 0
		}
		if i < len(f.Lines) && offset >= f.Lines[i].Start {
			return i + 1, offset - f.Lines[i].Start + 1
		}
	}
	return f.lineColScan(offset)
}

func (f *File) lineColScan(offset int) (line, col int) {
	line, col = 1, 1
	for i := 0; i < offset && i < len(f.Input); i++ {
		if f.Input[i] == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return line, col
}

// Span is a byte-offset range [Start, End) into a single File.
type Span struct {
	File       *File
	Start, End int
}

func Join(a, b Span) Span {
	return Span{File: a.File, Start: a.Start, End: b.End}
}

func (s Span) Text() string {
	if s.File == nil {
		return ""
	}
	return s.File.Input[s.Start:s.End]
}

// LocStart returns the filename and 1-based (line, col) of the span's start,
// the canonical location the error reporter attaches to a diagnostic.
func (s Span) LocStart() (filename string, line, col int) {
	if s.File == nil {
		return "", 0, 0
	}
	line, col = s.File.LineCol(s.Start)
	return s.File.Name, line, col
}
