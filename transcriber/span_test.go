package transcriber

import "testing"

func TestLiveSpan_Widen(t *testing.T) {
	s := EmptySpan()
	if !s.Empty() {
		t.Fatal("EmptySpan() should be empty")
	}

	// Span tracks min/max of every reported line and never shrinks.
	lines := []int{5, 3, 7, 5, 4, 9, 3}
	min, max := lines[0], lines[0]
	for _, n := range lines {
		s = s.Widen(n)
		if n < min {
			min = n
		}
		if n > max {
			max = n
		}
		if s.StartLine != min || s.EndLine != max {
			t.Fatalf("after Widen(%d): span = [%d, %d], want [%d, %d]",
				n, s.StartLine, s.EndLine, min, max)
		}
	}
}

func TestLiveSpan_WidenFromEmpty(t *testing.T) {
	s := EmptySpan().Widen(0)
	if s.Empty() {
		t.Fatal("span should not be empty after Widen")
	}
	if s.StartLine != 0 || s.EndLine != 0 {
		t.Errorf("span = [%d, %d], want [0, 0]", s.StartLine, s.EndLine)
	}
}
