package transcriber

// LiveSpan is the inclusive line range of the host buffer currently
// owned by the in-progress transcript. It only ever widens; the span is
// reset to empty exactly when the session returns to inactive.
type LiveSpan struct {
	StartLine int
	EndLine   int
}

// EmptySpan returns the empty sentinel span.
func EmptySpan() LiveSpan {
	return LiveSpan{StartLine: -1, EndLine: -1}
}

// Empty reports whether the span holds no lines.
func (s LiveSpan) Empty() bool {
	return s.StartLine < 0
}

// Widen expands the span to include line via min/max. Widening the
// empty span yields the single-line span.
func (s LiveSpan) Widen(line int) LiveSpan {
	if s.Empty() {
		return LiveSpan{StartLine: line, EndLine: line}
	}
	if line < s.StartLine {
		s.StartLine = line
	}
	if line > s.EndLine {
		s.EndLine = line
	}
	return s
}
