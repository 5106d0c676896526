// Package editbuf provides an in-memory line buffer implementing the
// host editing surface the transcriber writes into. It stands in for a
// real editor in the CLI and in tests, including the detach behavior of
// a document closed mid-session.
package editbuf

import (
	"strings"
	"sync"

	"github.com/scrivenapp/scriven/internal/types"
	"github.com/scrivenapp/scriven/transcriber"
)

// Buffer is a mutable line buffer with a selection. Safe for concurrent
// use.
type Buffer struct {
	mu       sync.Mutex
	lines    []string
	anchor   types.Position
	head     types.Position
	attached bool
}

var _ transcriber.Buffer = (*Buffer)(nil)

// New creates an attached buffer with the given initial text and the
// cursor at the end.
func New(text string) *Buffer {
	lines := strings.Split(text, "\n")
	end := types.Position{Line: len(lines) - 1, Ch: len(lines[len(lines)-1])}
	return &Buffer{
		lines:    lines,
		anchor:   end,
		head:     end,
		attached: true,
	}
}

// Attached reports whether the buffer still accepts writes.
func (b *Buffer) Attached() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.attached
}

// Detach simulates the host document being closed; the buffer keeps its
// contents but must no longer be written.
func (b *Buffer) Detach() {
	b.mu.Lock()
	b.attached = false
	b.mu.Unlock()
}

// Contents returns the full buffer text.
func (b *Buffer) Contents() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return strings.Join(b.lines, "\n")
}

// Line returns line n, or "" when n is out of range.
func (b *Buffer) Line(n int) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if n < 0 || n >= len(b.lines) {
		return ""
	}
	return b.lines[n]
}

// LineCount returns the number of lines.
func (b *Buffer) LineCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.lines)
}

// Cursor returns the given selection end.
func (b *Buffer) Cursor(end transcriber.SelectionEnd) types.Position {
	b.mu.Lock()
	defer b.mu.Unlock()
	if end == transcriber.SelAnchor {
		return b.clamp(b.anchor)
	}
	return b.clamp(b.head)
}

// SetSelection selects [from, to).
func (b *Buffer) SetSelection(from, to types.Position) {
	b.mu.Lock()
	b.anchor = b.clamp(from)
	b.head = b.clamp(to)
	b.mu.Unlock()
}

// SetCursor collapses the selection to pos.
func (b *Buffer) SetCursor(pos types.Position) {
	b.mu.Lock()
	p := b.clamp(pos)
	b.anchor = p
	b.head = p
	b.mu.Unlock()
}

// ReplaceRange replaces [from, to) with text. Multi-line text splices
// new lines into the buffer.
func (b *Buffer) ReplaceRange(text string, from, to types.Position) {
	b.mu.Lock()
	defer b.mu.Unlock()

	from = b.clamp(from)
	to = b.clamp(to)
	if to.Before(from) {
		from, to = to, from
	}

	prefix := b.lines[from.Line][:from.Ch]
	suffix := b.lines[to.Line][to.Ch:]

	inserted := strings.Split(text, "\n")
	inserted[0] = prefix + inserted[0]
	inserted[len(inserted)-1] = inserted[len(inserted)-1] + suffix

	merged := make([]string, 0, len(b.lines)-(to.Line-from.Line+1)+len(inserted))
	merged = append(merged, b.lines[:from.Line]...)
	merged = append(merged, inserted...)
	merged = append(merged, b.lines[to.Line+1:]...)
	b.lines = merged
}

// clamp constrains pos to a valid position. Caller holds b.mu.
func (b *Buffer) clamp(pos types.Position) types.Position {
	if pos.Line < 0 {
		pos.Line = 0
	}
	if pos.Line >= len(b.lines) {
		pos.Line = len(b.lines) - 1
	}
	if pos.Ch < 0 {
		pos.Ch = 0
	}
	if pos.Ch > len(b.lines[pos.Line]) {
		pos.Ch = len(b.lines[pos.Line])
	}
	return pos
}
