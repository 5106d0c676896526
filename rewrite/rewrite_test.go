package rewrite

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

type stubBackend struct {
	out   string
	err   error
	calls int
}

func (s *stubBackend) Rewrite(ctx context.Context, prompt, text string) (string, error) {
	s.calls++
	return s.out, s.err
}

func TestPass_Disabled(t *testing.T) {
	b := &stubBackend{out: "corrected"}
	p := NewPassWithBackend(false, "fix grammar", b)

	got := p.Rewrite(context.Background(), "raw text")
	if got != "raw text" {
		t.Errorf("Rewrite() = %q, want input unchanged", got)
	}
	if b.calls != 0 {
		t.Errorf("backend calls = %d, want 0", b.calls)
	}
}

func TestPass_EmptyPrompt(t *testing.T) {
	b := &stubBackend{out: "corrected"}
	p := NewPassWithBackend(true, "", b)

	if got := p.Rewrite(context.Background(), "raw text"); got != "raw text" {
		t.Errorf("Rewrite() = %q, want input unchanged", got)
	}
	if b.calls != 0 {
		t.Errorf("backend calls = %d, want 0", b.calls)
	}
}

func TestPass_BackendFailureKeepsOriginal(t *testing.T) {
	b := &stubBackend{err: errors.New("boom")}
	p := NewPassWithBackend(true, "fix grammar", b)

	if got := p.Rewrite(context.Background(), "raw text"); got != "raw text" {
		t.Errorf("Rewrite() = %q, want input unchanged on failure", got)
	}
}

func TestPass_EmptyResultKeepsOriginal(t *testing.T) {
	b := &stubBackend{out: ""}
	p := NewPassWithBackend(true, "fix grammar", b)

	if got := p.Rewrite(context.Background(), "raw text"); got != "raw text" {
		t.Errorf("Rewrite() = %q, want input unchanged", got)
	}
}

func TestPass_Success(t *testing.T) {
	b := &stubBackend{out: "Corrected text."}
	p := NewPassWithBackend(true, "fix grammar", b)

	if got := p.Rewrite(context.Background(), "corected text"); got != "Corrected text." {
		t.Errorf("Rewrite() = %q, want %q", got, "Corrected text.")
	}
}

func TestTaskBackend_Rewrite(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "key" {
			t.Errorf("Authorization = %q, want %q", got, "key")
		}
		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if got := req["final_model"]; got != "model-x" {
			t.Errorf("final_model = %v, want model-x", got)
		}
		if got := req["temperature"]; got != float64(0) {
			t.Errorf("temperature = %v, want 0", got)
		}
		if got := req["input_text"]; got != "raw" {
			t.Errorf("input_text = %v, want raw", got)
		}
		json.NewEncoder(w).Encode(map[string]string{"response": "clean"})
	}))
	defer srv.Close()

	b := newTaskBackend("key", "model-x", srv.URL)
	got, err := b.Rewrite(context.Background(), "fix it", "raw")
	if err != nil {
		t.Fatalf("Rewrite() error = %v", err)
	}
	if got != "clean" {
		t.Errorf("Rewrite() = %q, want %q", got, "clean")
	}
}

func TestTaskBackend_Errors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "oops", http.StatusInternalServerError)
			},
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("{{{"))
			},
		},
		{
			name: "missing response field",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"other": "stuff"}`))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			b := newTaskBackend("key", "model-x", srv.URL)
			if _, err := b.Rewrite(context.Background(), "fix it", "raw"); err == nil {
				t.Error("Rewrite() error = nil, want non-nil")
			}
		})
	}
}

func TestPass_TaskFallbackEndToEnd(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	p := NewPass(Config{
		Enabled: true,
		Prompt:  "fix grammar",
		APIKey:  "key",
		Model:   "model-x",
		BaseURL: srv.URL,
	})

	if got := p.Rewrite(context.Background(), "dictated text"); got != "dictated text" {
		t.Errorf("Rewrite() = %q, want original preserved", got)
	}
	if calls.Load() != 1 {
		t.Errorf("endpoint calls = %d, want 1", calls.Load())
	}
}
