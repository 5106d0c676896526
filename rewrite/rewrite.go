// Package rewrite provides the best-effort post-processing pass that
// cleans up finalized dictation with a language model.
//
// Rewriting must never lose or corrupt dictated text: when
// post-processing is disabled, or on any failure (network, parse,
// missing field), the input is returned unchanged and the failure is
// only logged.
package rewrite

import (
	"context"
	"log/slog"
)

// Backend performs one rewrite request against a concrete service.
type Backend interface {
	// Rewrite sends text with the given instruction and returns the
	// corrected text.
	Rewrite(ctx context.Context, prompt, text string) (string, error)
}

// Config selects and configures a rewrite backend.
type Config struct {
	Enabled bool
	Prompt  string // rewrite instruction; empty disables the pass
	Backend string // "task" (default) or "openai"
	APIKey  string
	Model   string
	BaseURL string // endpoint override for the task backend
}

// Pass applies the configured rewrite to finalized transcripts.
type Pass struct {
	enabled bool
	prompt  string
	backend Backend
}

// NewPass creates a rewrite pass for cfg. The backend is chosen by
// cfg.Backend; unknown values fall back to the task backend.
func NewPass(cfg Config) *Pass {
	var b Backend
	switch cfg.Backend {
	case "openai":
		b = newOpenAIBackend(cfg.APIKey, cfg.Model)
	default:
		b = newTaskBackend(cfg.APIKey, cfg.Model, cfg.BaseURL)
	}
	return &Pass{
		enabled: cfg.Enabled,
		prompt:  cfg.Prompt,
		backend: b,
	}
}

// NewPassWithBackend creates a pass with an explicit backend.
func NewPassWithBackend(enabled bool, prompt string, b Backend) *Pass {
	return &Pass{enabled: enabled, prompt: prompt, backend: b}
}

// Rewrite returns the corrected text, or the input unchanged when the
// pass is disabled, unconfigured, or the backend fails. It makes no
// network call in the pass-through case and never returns an error.
func (p *Pass) Rewrite(ctx context.Context, text string) string {
	if !p.enabled || p.prompt == "" || p.backend == nil {
		return text
	}
	if text == "" {
		return text
	}

	out, err := p.backend.Rewrite(ctx, p.prompt, text)
	if err != nil {
		slog.Warn("rewrite failed, keeping original text", "error", err)
		return text
	}
	if out == "" {
		slog.Warn("rewrite returned empty text, keeping original")
		return text
	}
	return out
}
