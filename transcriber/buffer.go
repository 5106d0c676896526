package transcriber

import "github.com/scrivenapp/scriven/internal/types"

// SelectionEnd identifies one end of the host buffer selection.
type SelectionEnd int

const (
	// SelAnchor is the fixed end of the selection.
	SelAnchor SelectionEnd = iota
	// SelHead is the moving end of the selection.
	SelHead
)

// Buffer is the host text-editing surface the session writes into. The
// buffer is externally owned and may become detached at any time; every
// mutation must be preceded by an Attached check. Ch values are byte
// offsets within a line.
type Buffer interface {
	// Attached reports whether the editing surface is still bound to a
	// live document. A detached buffer must not be mutated.
	Attached() bool

	// Cursor returns the position of the given selection end.
	Cursor(end SelectionEnd) types.Position

	// Line returns the text of line n, without a trailing newline.
	Line(n int) string

	// LineCount returns the number of lines in the buffer.
	LineCount() int

	// ReplaceRange replaces [from, to) with text.
	ReplaceRange(text string, from, to types.Position)

	// SetSelection selects [from, to).
	SetSelection(from, to types.Position)

	// SetCursor collapses the selection to pos.
	SetCursor(pos types.Position)
}
