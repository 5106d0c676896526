// Package transcriber implements the transcription session state
// machine: it coordinates audio capture, the streaming recognition
// channel, incremental application of transcript events to the host
// buffer, and the post-processing rewrite pass.
package transcriber

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/language"

	"github.com/scrivenapp/scriven/internal/types"
)

// AudioSource produces fixed-duration audio frames until stopped.
// *audiocapture.Capture satisfies this.
type AudioSource interface {
	Start(onFrame func(frame []byte), onDisconnect func()) error
	Stop() error
	SampleRate() int
}

// Stream is an open recognition channel. The events channel closing is
// the end-of-stream signal; Err reports why, when the end was abnormal.
// *recognition.Channel satisfies this.
type Stream interface {
	Events() <-chan types.TranscriptEvent
	Err() error
	Send(frame []byte)
	Close() error
}

// StreamOpener establishes a recognition stream for a session token.
type StreamOpener func(ctx context.Context, token string, sampleRate int, vocab []string) (Stream, error)

// TokenSource acquires a session token. *recognition.TokenClient
// satisfies this.
type TokenSource interface {
	Fetch(ctx context.Context) (string, error)
}

// Rewriter applies the best-effort post-processing pass. *rewrite.Pass
// satisfies this.
type Rewriter interface {
	Rewrite(ctx context.Context, text string) string
}

// rewriteTimeout bounds the post-processing round-trip so teardown can
// never hang on the rewrite service.
const rewriteTimeout = 60 * time.Second

// Config wires a session's collaborators.
type Config struct {
	Buffer     Buffer
	Audio      AudioSource
	Tokens     TokenSource
	OpenStream StreamOpener
	Rewriter   Rewriter

	// Locale selects the sentence-boundary punctuation set for the
	// final-transcript transform. Empty means English.
	Locale string

	// VocabularyBoost is passed to the recognition service as hint
	// phrases.
	VocabularyBoost []string

	// OnStateChange, when set, is called after every state transition.
	OnStateChange func(state types.SessionState)

	// OnPartial, when set, receives each provisional transcript as it
	// arrives.
	OnPartial func(text string)

	// OnFinal, when set, receives each transformed final transcript.
	OnFinal func(text string)
}

// Session is the transcription state machine. Exactly one session is
// active per process; all stop triggers (user command, device loss,
// socket error, detached buffer) funnel into Stop, so at most one
// teardown executes no matter how many fire.
type Session struct {
	cfg    Config
	locale language.Tag

	mu       sync.Mutex
	state    types.SessionState
	starting bool
	stopping bool
	span     LiveSpan
	segments int
	stream   Stream
}

// New creates an inactive session.
func New(cfg Config) *Session {
	tag, err := language.Parse(cfg.Locale)
	if err != nil {
		tag = language.English
	}
	return &Session{
		cfg:    cfg,
		locale: tag,
		state:  types.Inactive,
		span:   EmptySpan(),
	}
}

// Status returns a snapshot of the session.
func (s *Session) Status() types.SessionStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return types.SessionStatus{
		State:     s.state,
		StartLine: s.span.StartLine,
		EndLine:   s.span.EndLine,
		Segments:  s.segments,
	}
}

// Start acquires a token, opens the recognition channel, and begins
// streaming captured audio. Starting an already-active session is a
// no-op. Any failure after the channel is open unwinds to inactive
// through the stop path.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.state != types.Inactive || s.starting {
		s.mu.Unlock()
		return nil
	}
	// Claim the start before releasing the lock: a concurrent Start must
	// not fetch a second token or open a second stream.
	s.starting = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.starting = false
		s.mu.Unlock()
	}()

	token, err := s.cfg.Tokens.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("acquire token: %w", err)
	}

	stream, err := s.cfg.OpenStream(ctx, token, s.cfg.Audio.SampleRate(), s.cfg.VocabularyBoost)
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}

	s.mu.Lock()
	s.state = types.Recording
	s.stopping = false
	s.span = EmptySpan()
	s.segments = 0
	s.stream = stream
	s.mu.Unlock()
	s.notifyState(types.Recording)

	go s.run(stream)

	if err := s.cfg.Audio.Start(stream.Send, func() { s.Stop(false) }); err != nil {
		s.Stop(true)
		return fmt.Errorf("start capture: %w", err)
	}

	// The stream may have died while capture was spinning up; in that
	// case teardown already ran and the capture must not be left live.
	s.mu.Lock()
	active := s.state == types.Recording && !s.stopping
	s.mu.Unlock()
	if !active {
		_ = s.cfg.Audio.Stop()
		return nil
	}

	slog.Info("transcription session started")
	return nil
}

// run applies transcript events in arrival order until the stream ends.
// An unexpected end routes into the stop path like any other trigger.
func (s *Session) run(stream Stream) {
	for ev := range stream.Events() {
		s.handleEvent(ev)
	}
	if err := stream.Err(); err != nil {
		slog.Warn("recognition channel closed unexpectedly", "error", err)
	}
	s.Stop(false)
}

// handleEvent applies one partial or final transcript to the live span.
// Events arriving outside of recording are dropped; a detached buffer
// degrades to an immediate stop without mutating anything.
func (s *Session) handleEvent(ev types.TranscriptEvent) {
	s.mu.Lock()
	if s.state != types.Recording || s.stopping {
		s.mu.Unlock()
		return
	}
	buf := s.cfg.Buffer
	if !buf.Attached() {
		s.mu.Unlock()
		slog.Warn("host buffer detached, stopping without post-processing")
		s.Stop(true)
		return
	}

	switch ev.Kind {
	case types.Partial:
		s.applyPartial(buf, ev.Text)
		cb := s.cfg.OnPartial
		s.mu.Unlock()
		if cb != nil {
			cb(ev.Text)
		}
	case types.Final:
		text := s.applyFinal(buf, ev.Text)
		cb := s.cfg.OnFinal
		s.mu.Unlock()
		if cb != nil {
			cb(text)
		}
	default:
		s.mu.Unlock()
	}
}

// applyPartial replaces the current selection with text and keeps the
// inserted text selected, so the next partial or final supersedes it.
// Caller holds s.mu.
func (s *Session) applyPartial(buf Buffer, text string) {
	from, to := orderedSelection(buf)
	buf.ReplaceRange(text, from, to)
	end := endOfInsert(from, text)
	buf.SetSelection(from, end)
	s.span = s.span.Widen(from.Line).Widen(end.Line)
}

// applyFinal runs the transform pipeline, inserts the result with a
// trailing space unless it ends in a line break, and collapses the
// selection after it so the next utterance appends. Caller holds s.mu.
func (s *Session) applyFinal(buf Buffer, text string) string {
	out := TransformFinal(text, s.locale)
	insert := out
	if !strings.HasSuffix(out, "\n") {
		insert = out + " "
	}

	from, to := orderedSelection(buf)
	buf.ReplaceRange(insert, from, to)
	end := endOfInsert(from, insert)
	buf.SetSelection(end, end)
	s.span = s.span.Widen(from.Line).Widen(end.Line)
	s.segments++
	return out
}

// Stop tears the session down. It is the single cancellation point and
// is safe to call from any state and any goroutine: stopping an
// inactive session, or one whose teardown is already in flight, is a
// no-op. immediate skips the rewrite pass and is used when the host
// document is already gone.
func (s *Session) Stop(immediate bool) {
	s.mu.Lock()
	if s.state != types.Recording || s.stopping {
		s.mu.Unlock()
		return
	}
	s.stopping = true
	stream := s.stream
	span := s.span
	s.mu.Unlock()

	// Stop the source first so no frames chase a closing channel.
	if err := s.cfg.Audio.Stop(); err != nil {
		slog.Warn("stop capture", "error", err)
	}

	// The transition into post-processing happens even when there is
	// nothing to rewrite; the state machine reaches inactive on every
	// path.
	if !immediate {
		s.setState(types.PostProcessing)
		s.notifyState(types.PostProcessing)
		s.postProcess(span)
	}

	if stream != nil {
		_ = stream.Close()
	}

	s.mu.Lock()
	s.state = types.Inactive
	s.span = EmptySpan()
	s.stream = nil
	s.stopping = false
	s.mu.Unlock()
	s.notifyState(types.Inactive)
	slog.Info("transcription session stopped", "immediate", immediate)
}

// postProcess rewrites the dictated span in place. Failures never
// escape: the worst case is keeping the raw transcript.
func (s *Session) postProcess(span LiveSpan) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("post-processing panicked, keeping raw transcript", "panic", r)
		}
	}()

	if span.Empty() || s.cfg.Rewriter == nil {
		return
	}
	buf := s.cfg.Buffer
	if !buf.Attached() {
		return
	}

	lines := make([]string, 0, span.EndLine-span.StartLine+1)
	for n := span.StartLine; n <= span.EndLine; n++ {
		lines = append(lines, buf.Line(n))
	}
	raw := strings.Join(lines, "\n")
	if strings.TrimSpace(raw) == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), rewriteTimeout)
	defer cancel()
	out := s.cfg.Rewriter.Rewrite(ctx, raw)

	// The buffer may have detached during the round-trip.
	if !buf.Attached() {
		return
	}

	from := types.Position{Line: span.StartLine, Ch: 0}
	to := types.Position{Line: span.EndLine, Ch: len(buf.Line(span.EndLine))}
	buf.ReplaceRange(out, from, to)
	buf.SetCursor(endOfInsert(from, out))
}

func (s *Session) setState(state types.SessionState) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

func (s *Session) notifyState(state types.SessionState) {
	if s.cfg.OnStateChange != nil {
		s.cfg.OnStateChange(state)
	}
}

// orderedSelection returns the buffer selection with its ends in
// document order.
func orderedSelection(buf Buffer) (from, to types.Position) {
	a := buf.Cursor(SelAnchor)
	h := buf.Cursor(SelHead)
	if h.Before(a) {
		return h, a
	}
	return a, h
}

// endOfInsert computes the position immediately after text inserted at
// from.
func endOfInsert(from types.Position, text string) types.Position {
	lines := strings.Split(text, "\n")
	if len(lines) == 1 {
		return types.Position{Line: from.Line, Ch: from.Ch + len(text)}
	}
	return types.Position{
		Line: from.Line + len(lines) - 1,
		Ch:   len(lines[len(lines)-1]),
	}
}
