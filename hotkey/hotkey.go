// Package hotkey provides a global keyboard chord for toggling
// dictation without focusing the application.
package hotkey

import (
	"errors"
	"log/slog"
	"sync"

	hook "github.com/robotn/gohook"
)

// Manager listens for a single global chord and invokes the toggle
// callback on each press.
type Manager struct {
	chord  []string
	toggle func()

	mu      sync.Mutex
	running bool
}

// NewManager creates a manager for the given chord, e.g.
// ["ctrl", "shift", "d"].
func NewManager(chord []string, toggle func()) *Manager {
	return &Manager{chord: chord, toggle: toggle}
}

// Start registers the chord and begins listening in a background
// goroutine. Starting an already-running manager is an error.
func (m *Manager) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return errors.New("hotkey manager already running")
	}
	if len(m.chord) == 0 {
		return errors.New("empty hotkey chord")
	}

	hook.Register(hook.KeyDown, m.chord, func(e hook.Event) {
		slog.Debug("dictation hotkey pressed")
		m.toggle()
	})

	events := hook.Start()
	go func() {
		<-hook.Process(events)
	}()

	m.running = true
	slog.Info("global hotkey registered", "chord", m.chord)
	return nil
}

// Stop ends the listener. Idempotent.
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return
	}
	hook.End()
	m.running = false
}
