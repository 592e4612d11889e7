package diag

import (
	"modernc.org/token"
)

// Lines maps byte offsets of one source unit to line and column positions.
type Lines struct {
	file *token.File
}

// NewLines builds the line table for src.
func NewLines(name, src string) *Lines {
	f := token.NewFile(name, len(src))
	f.SetLinesForContent([]byte(src))
	return &Lines{file: f}
}

// Position returns the file:line:column position of offset. Offsets past
// the end of the unit are clamped to its end.
func (l *Lines) Position(offset int) token.Position {
	if offset < 0 {
		offset = 0
	}
	if offset > l.file.Size() {
		offset = l.file.Size()
	}
	return l.file.PositionFor(l.file.Pos(offset), false)
}

// Line returns the 1-based line number of offset.
func (l *Lines) Line(offset int) int { return l.Position(offset).Line }
