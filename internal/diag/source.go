package diag

import (
	"bytes"

	"github.com/go-sourcemap/sourcemap"
	"github.com/tdewolff/parse/v2"
)

// Span is implemented by anything that occupies a byte range of a source file.
type Span interface {
	Span() (start, end int)
}

// SourceFile maps byte offsets of a parsed document to author-facing
// locations. When the document was generated (e.g. by a preprocessor) and a
// source map is supplied, positions are translated into the original file.
type SourceFile struct {
	Filename string
	text     []byte
	mapping  *sourcemap.Consumer
}

// NewSourceFile creates a SourceFile. sourceMap may be nil.
func NewSourceFile(filename string, text []byte, sourceMap []byte) (*SourceFile, error) {
	sf := &SourceFile{Filename: filename, text: text}
	if len(sourceMap) > 0 {
		consumer, err := sourcemap.Parse(filename+".map", sourceMap)
		if err != nil {
			return nil, New(&Location{Filename: filename}, "Invalid source map: %v", err)
		}
		sf.mapping = consumer
	}
	return sf, nil
}

// Position returns the position of a byte offset in the parsed document.
func (s *SourceFile) Position(offset int) Position {
	if offset < 0 {
		offset = 0
	}
	if offset > len(s.text) {
		offset = len(s.text)
	}
	line, col, _ := parse.Position(bytes.NewReader(s.text), offset)
	return Position{Line: line, Column: col}
}

// Range returns the location of the byte range [start, end).
func (s *SourceFile) Range(start, end int) *Location {
	if s == nil {
		return nil
	}
	if end < start {
		end = start
	}
	loc := &Location{
		Filename: s.Filename,
		Start:    s.Position(start),
		End:      s.Position(end),
	}
	return s.translate(loc)
}

// RangeOf implements the rangeOf(document, filename, node) contract.
func (s *SourceFile) RangeOf(node Span) *Location {
	if node == nil {
		return s.FileLocation()
	}
	start, end := node.Span()
	return s.Range(start, end)
}

// FileLocation is a location naming only the file.
func (s *SourceFile) FileLocation() *Location {
	if s == nil {
		return nil
	}
	return &Location{Filename: s.Filename}
}

// Line returns the text of a 1-based line, without its terminator.
func (s *SourceFile) Line(n int) string {
	if s == nil || n <= 0 {
		return ""
	}
	lines := bytes.Split(s.text, []byte("\n"))
	if n > len(lines) {
		return ""
	}
	return string(bytes.TrimRight(lines[n-1], "\r"))
}

func (s *SourceFile) translate(loc *Location) *Location {
	if s.mapping == nil {
		return loc
	}
	// sourcemap columns are zero based
	file, _, line, col, ok := s.mapping.Source(loc.Start.Line, loc.Start.Column-1)
	if !ok {
		return loc
	}
	mapped := &Location{
		Filename: file,
		Start:    Position{Line: line, Column: col + 1},
		End:      Position{Line: line, Column: col + 1},
	}
	if endFile, _, endLine, endCol, ok := s.mapping.Source(loc.End.Line, loc.End.Column-1); ok && endFile == file {
		mapped.End = Position{Line: endLine, Column: endCol + 1}
	}
	return mapped
}
