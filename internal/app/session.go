package app

import (
	"context"
	"sync"

	"github.com/scrivenapp/scriven/internal/types"
)

// dictationSession is the subset of the transcriber session the adapter
// manages. Narrowed to an interface for testability.
type dictationSession interface {
	Start(ctx context.Context) error
	Stop(immediate bool)
	Status() types.SessionStatus
}

// SessionAdapter manages the active dictation session with proper
// synchronization. At most one session runs at a time.
type SessionAdapter struct {
	mu      sync.RWMutex
	session dictationSession
	cancel  context.CancelFunc
}

// Start begins a dictation session. Stops any existing session first.
func (sa *SessionAdapter) Start(ctx context.Context, session dictationSession) error {
	sa.mu.Lock()
	defer sa.mu.Unlock()

	// Stop existing session if running
	if sa.session != nil {
		sa.session.Stop(true)
		sa.session = nil
	}
	if sa.cancel != nil {
		sa.cancel()
		sa.cancel = nil
	}

	// Create cancellable context
	ctx, cancel := context.WithCancel(ctx)
	sa.cancel = cancel

	if err := session.Start(ctx); err != nil {
		cancel()
		return err
	}

	sa.session = session
	return nil
}

// Stop ends the active session. With immediate set the rewrite pass is
// skipped. Safe to call when no session is running.
func (sa *SessionAdapter) Stop(immediate bool) {
	sa.mu.Lock()
	defer sa.mu.Unlock()

	if sa.cancel != nil {
		sa.cancel()
		sa.cancel = nil
	}

	if sa.session == nil {
		return
	}

	sa.session.Stop(immediate)
	sa.session = nil
}

// Status returns the current status, safe for concurrent access.
func (sa *SessionAdapter) Status() types.SessionStatus {
	sa.mu.RLock()
	defer sa.mu.RUnlock()

	if sa.session == nil {
		return types.SessionStatus{State: types.Inactive}
	}
	return sa.session.Status()
}
