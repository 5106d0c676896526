package app

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/scrivenapp/scriven/internal/types"
)

type fakeSession struct {
	mu       sync.Mutex
	startErr error
	started  int
	stops    int
	lastImm  bool
	state    types.SessionState
}

func (f *fakeSession) Start(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.startErr != nil {
		return f.startErr
	}
	f.started++
	f.state = types.Recording
	return nil
}

func (f *fakeSession) Stop(immediate bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stops++
	f.lastImm = immediate
	f.state = types.Inactive
}

func (f *fakeSession) Status() types.SessionStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	return types.SessionStatus{State: f.state}
}

func TestSessionAdapterStartStopsExisting(t *testing.T) {
	var sa SessionAdapter

	first := &fakeSession{}
	if err := sa.Start(context.Background(), first); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	second := &fakeSession{}
	if err := sa.Start(context.Background(), second); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	if first.stops != 1 {
		t.Errorf("first session stops = %d, want 1", first.stops)
	}
	if !first.lastImm {
		t.Error("superseded session should be stopped immediately")
	}
	if got := sa.Status().State; got != types.Recording {
		t.Errorf("Status().State = %v, want %v", got, types.Recording)
	}
}

func TestSessionAdapterStartError(t *testing.T) {
	var sa SessionAdapter

	failing := &fakeSession{startErr: errors.New("no device")}
	if err := sa.Start(context.Background(), failing); err == nil {
		t.Fatal("Start() error = nil, want error")
	}
	if got := sa.Status().State; got != types.Inactive {
		t.Errorf("Status().State = %v, want %v", got, types.Inactive)
	}
}

func TestSessionAdapterStopIdempotent(t *testing.T) {
	var sa SessionAdapter

	sess := &fakeSession{}
	if err := sa.Start(context.Background(), sess); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	sa.Stop(false)
	sa.Stop(false)
	sa.Stop(true)

	if sess.stops != 1 {
		t.Errorf("session stops = %d, want 1", sess.stops)
	}
	if sess.lastImm {
		t.Error("Stop(false) should not be immediate")
	}
}

func TestSessionAdapterStatusWhenIdle(t *testing.T) {
	var sa SessionAdapter

	got := sa.Status()
	if got.State != types.Inactive {
		t.Errorf("Status().State = %v, want %v", got.State, types.Inactive)
	}
}
