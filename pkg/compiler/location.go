package compiler

import "fmt"

// Location is a 1-based (line, column) position in a named source file,
// carried on every token and embedded in every emitted opcode.
type Location struct {
	Path   string
	Line   int
	Column int
}

func (l Location) String() string {
	return fmt.Sprintf("%s:%d:%d", l.Path, l.Line, l.Column)
}

// ParsePoint is a resumable lexer cursor. Snapshotting and restoring it is
// the lexer's only form of lookahead: the parser speculatively reads a
// token, and if it turns out not to fit the production being parsed,
// rewinds to a ParsePoint taken before that read.
type ParsePoint struct {
	Offset    int // byte offset into the source
	LineStart int // byte offset of the start of the current line
	Line      int // 1-based line number
}
