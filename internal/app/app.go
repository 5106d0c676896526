// Package app orchestrates the dictation service: configuration,
// session lifecycle, history, hotkey, and event fan-out to the host.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/scrivenapp/scriven/audiocapture"
	"github.com/scrivenapp/scriven/clipboard"
	"github.com/scrivenapp/scriven/config"
	"github.com/scrivenapp/scriven/history"
	"github.com/scrivenapp/scriven/hotkey"
	"github.com/scrivenapp/scriven/internal/types"
	"github.com/scrivenapp/scriven/recognition"
	"github.com/scrivenapp/scriven/rewrite"
	"github.com/scrivenapp/scriven/transcriber"
)

// permissionTimeout bounds the microphone permission probe.
const permissionTimeout = 5 * time.Second

// Service provides the application surface bound to the host UI.
// This struct focuses on orchestration; business logic lives in
// sub-components.
type Service struct {
	cfg     *config.Config
	store   *history.Store
	hotkey  *hotkey.Manager
	buffer  transcriber.Buffer
	emit    func(name string, data any)
	version string

	// Components with proper synchronization
	dictation SessionAdapter

	// Finals of the in-flight session, for the clipboard copy on stop.
	finalsMu sync.Mutex
	finals   []string
}

// New creates a new Service. Call Init before use.
func New(version string) *Service {
	return &Service{version: version}
}

// GetVersion returns the application version.
func (s *Service) GetVersion() string {
	return s.version
}

// Init initializes the service with the host text buffer and event
// emitter. A nil emit discards events.
func (s *Service) Init(buf transcriber.Buffer, emit func(name string, data any)) {
	s.buffer = buf
	if emit == nil {
		emit = func(string, any) {}
	}
	s.emit = emit

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		cfg = config.Default()
	}
	s.cfg = cfg

	s.setupHistory()
	s.setupHotkey()
}

// Config returns the loaded configuration.
func (s *Service) Config() *config.Config {
	return s.cfg
}

// Shutdown cleans up resources.
func (s *Service) Shutdown() {
	if s.hotkey != nil {
		s.hotkey.Stop()
	}
	s.dictation.Stop(true)
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			slog.Error("close history", "error", err)
		}
	}
}

func (s *Service) setupHistory() {
	if !s.cfg.HistoryEnabled {
		return
	}

	dir, err := config.DataDir()
	if err != nil {
		slog.Error("get data dir for history", "error", err)
		return
	}

	historyPath := filepath.Join(dir, "history")
	store, err := history.Open(historyPath)
	if err != nil {
		slog.Error("open history", "error", err)
		return
	}
	s.store = store
	slog.Info("history opened", "path", historyPath)
}

func (s *Service) setupHotkey() {
	if len(s.cfg.Hotkey) == 0 {
		return
	}

	s.hotkey = hotkey.NewManager(s.cfg.Hotkey, func() {
		go s.ToggleDictation()
	})
	if err := s.hotkey.Start(); err != nil {
		slog.Error("start hotkey", "error", err)
		s.hotkey = nil
	}
}

// StartDictation begins a dictation session against the host buffer.
// Any session already running is torn down first.
func (s *Service) StartDictation(ctx context.Context) error {
	if s.cfg.APIKey == "" {
		return fmt.Errorf("start dictation: api key not configured")
	}

	session, err := s.buildSession(ctx)
	if err != nil {
		return fmt.Errorf("start dictation: %w", err)
	}

	s.finalsMu.Lock()
	s.finals = nil
	s.finalsMu.Unlock()

	if err := s.dictation.Start(ctx, session); err != nil {
		return fmt.Errorf("start dictation: %w", err)
	}
	return nil
}

// StopDictation ends the active session, running the rewrite pass.
func (s *Service) StopDictation() {
	s.dictation.Stop(false)
}

// CancelDictation ends the active session without the rewrite pass.
func (s *Service) CancelDictation() {
	s.dictation.Stop(true)
}

// ToggleDictation starts a session when idle and stops it otherwise.
// This is the hotkey entry point.
func (s *Service) ToggleDictation() {
	if s.dictation.Status().State != types.Inactive {
		s.StopDictation()
		return
	}
	if err := s.StartDictation(context.Background()); err != nil {
		slog.Error("toggle dictation", "error", err)
	}
}

// DictationStatus returns the current session status.
func (s *Service) DictationStatus() types.SessionStatus {
	return s.dictation.Status()
}

// RecentHistory returns the n most recent archived segments, newest
// first. Returns nil when history is disabled.
func (s *Service) RecentHistory(n int) ([]history.Segment, error) {
	if s.store == nil {
		return nil, nil
	}
	return s.store.Recent(n)
}

func (s *Service) buildSession(ctx context.Context) (*transcriber.Session, error) {
	audio, err := audiocapture.New(audiocapture.DefaultConfig())
	if err != nil {
		return nil, fmt.Errorf("init capture: %w", err)
	}

	permCtx, cancel := context.WithTimeout(ctx, permissionTimeout)
	defer cancel()
	if !audio.RequestPermission(permCtx) {
		return nil, fmt.Errorf("microphone permission denied")
	}

	pass := rewrite.NewPass(rewrite.Config{
		Enabled: s.cfg.PostProcessEnabled,
		Prompt:  s.cfg.PostProcessPrompt,
		Backend: s.cfg.RewriteBackend,
		APIKey:  s.rewriteKey(),
		Model:   s.cfg.RewriteModel,
		BaseURL: s.cfg.RewriteURL,
	})

	return transcriber.New(transcriber.Config{
		Buffer:          s.buffer,
		Audio:           audio,
		Tokens:          recognition.NewTokenClient(s.cfg.APIKey, s.cfg.TokenURL),
		OpenStream:      s.openStream,
		Rewriter:        pass,
		Locale:          s.cfg.Locale,
		VocabularyBoost: s.cfg.VocabularyBoost,
		OnStateChange:   s.handleState,
		OnPartial:       s.handlePartial,
		OnFinal:         s.handleFinal,
	}), nil
}

func (s *Service) openStream(ctx context.Context, token string, sampleRate int, vocab []string) (transcriber.Stream, error) {
	ch := recognition.NewChannel(recognition.ChannelConfig{
		BaseURL:    s.cfg.StreamURL,
		Token:      token,
		SampleRate: sampleRate,
		WordBoost:  vocab,
	})
	if err := ch.Open(ctx); err != nil {
		return nil, err
	}
	return ch, nil
}

func (s *Service) rewriteKey() string {
	if s.cfg.RewriteBackend == "openai" && s.cfg.OpenAIAPIKey != "" {
		return s.cfg.OpenAIAPIKey
	}
	return s.cfg.APIKey
}

func (s *Service) handlePartial(text string) {
	s.emit(EventDictationPartial, text)
}

func (s *Service) handleFinal(text string) {
	s.finalsMu.Lock()
	s.finals = append(s.finals, text)
	s.finalsMu.Unlock()

	if s.store != nil {
		if _, err := s.store.Append(text, false); err != nil {
			slog.Error("archive segment", "error", err)
		}
	}
	s.emit(EventDictationFinal, text)
}

func (s *Service) handleState(state types.SessionState) {
	s.emit(EventDictationState, state.String())
	if state != types.Inactive {
		return
	}

	s.finalsMu.Lock()
	text := strings.TrimSpace(strings.Join(s.finals, " "))
	s.finals = nil
	s.finalsMu.Unlock()

	if s.cfg.CopyToClipboard && text != "" {
		if err := clipboard.SetText(text); err != nil {
			slog.Warn("copy to clipboard", "error", err)
		}
	}
}
