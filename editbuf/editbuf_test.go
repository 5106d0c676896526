package editbuf

import (
	"testing"

	"github.com/scrivenapp/scriven/internal/types"
	"github.com/scrivenapp/scriven/transcriber"
)

func TestBuffer_ReplaceRange(t *testing.T) {
	tests := []struct {
		name string
		init string
		text string
		from types.Position
		to   types.Position
		want string
	}{
		{
			name: "insert at cursor",
			init: "hello",
			text: " world",
			from: types.Position{Line: 0, Ch: 5},
			to:   types.Position{Line: 0, Ch: 5},
			want: "hello world",
		},
		{
			name: "replace within line",
			init: "hello world",
			text: "there",
			from: types.Position{Line: 0, Ch: 6},
			to:   types.Position{Line: 0, Ch: 11},
			want: "hello there",
		},
		{
			name: "multi-line insert",
			init: "ab",
			text: "x\n\ny",
			from: types.Position{Line: 0, Ch: 1},
			to:   types.Position{Line: 0, Ch: 1},
			want: "ax\n\nyb",
		},
		{
			name: "replace across lines",
			init: "one\ntwo\nthree",
			text: "TWO",
			from: types.Position{Line: 1, Ch: 0},
			to:   types.Position{Line: 2, Ch: 5},
			want: "one\nTWO",
		},
		{
			name: "reversed range is normalized",
			init: "abcdef",
			text: "X",
			from: types.Position{Line: 0, Ch: 4},
			to:   types.Position{Line: 0, Ch: 2},
			want: "abXef",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := New(tt.init)
			b.ReplaceRange(tt.text, tt.from, tt.to)
			if got := b.Contents(); got != tt.want {
				t.Errorf("Contents() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuffer_Selection(t *testing.T) {
	b := New("hello")
	b.SetSelection(types.Position{Line: 0, Ch: 1}, types.Position{Line: 0, Ch: 4})

	if got := b.Cursor(transcriber.SelAnchor); got != (types.Position{Line: 0, Ch: 1}) {
		t.Errorf("anchor = %+v, want {0 1}", got)
	}
	if got := b.Cursor(transcriber.SelHead); got != (types.Position{Line: 0, Ch: 4}) {
		t.Errorf("head = %+v, want {0 4}", got)
	}

	b.SetCursor(types.Position{Line: 0, Ch: 2})
	if got := b.Cursor(transcriber.SelAnchor); got != b.Cursor(transcriber.SelHead) {
		t.Errorf("SetCursor did not collapse selection: anchor %+v", got)
	}
}

func TestBuffer_ClampsOutOfRange(t *testing.T) {
	b := New("ab")
	b.SetCursor(types.Position{Line: 99, Ch: 99})
	if got := b.Cursor(transcriber.SelHead); got != (types.Position{Line: 0, Ch: 2}) {
		t.Errorf("clamped cursor = %+v, want {0 2}", got)
	}
}

func TestBuffer_Detach(t *testing.T) {
	b := New("")
	if !b.Attached() {
		t.Fatal("new buffer should be attached")
	}
	b.Detach()
	if b.Attached() {
		t.Error("buffer still attached after Detach")
	}
	if got := b.Contents(); got != "" {
		t.Errorf("Contents() after detach = %q, want unchanged", got)
	}
}
