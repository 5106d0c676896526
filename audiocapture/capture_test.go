package audiocapture

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// fakeImpl is a scriptable capture backend.
type fakeImpl struct {
	mu       sync.Mutex
	startErr error
	starts   int
	stops    int
	onData   func([]byte)
	onErr    func(error)

	// dieOnStart simulates a recorder that launches and immediately
	// exits, the way a busy or access-denied device presents.
	dieOnStart bool
	// dataOnStart pushes one chunk as soon as capture begins.
	dataOnStart []byte
}

func (f *fakeImpl) start(sampleRate int, device string, onData func([]byte), onErr func(error)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.startErr != nil {
		return f.startErr
	}
	f.starts++
	f.onData = onData
	f.onErr = onErr
	if f.dieOnStart {
		go onErr(errors.New("device busy"))
	}
	if f.dataOnStart != nil {
		go onData(f.dataOnStart)
	}
	return nil
}

func (f *fakeImpl) stop() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stops++
	return nil
}

func (f *fakeImpl) emitErr(err error) {
	f.mu.Lock()
	cb := f.onErr
	f.mu.Unlock()
	if cb != nil {
		cb(err)
	}
}

func newTestCapture(impl *fakeImpl) *Capture {
	return &Capture{
		sampleRate: 16000,
		chunker:    NewRechunker(16000, 100*time.Millisecond),
		impl:       impl,
	}
}

func TestRequestPermission_DataMeansGranted(t *testing.T) {
	c := newTestCapture(&fakeImpl{dataOnStart: make([]byte, 512)})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if !c.RequestPermission(ctx) {
		t.Error("RequestPermission() = false, want true when the device produces data")
	}
}

func TestRequestPermission_EarlyExitMeansDenied(t *testing.T) {
	impl := &fakeImpl{dieOnStart: true}
	c := newTestCapture(impl)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if c.RequestPermission(ctx) {
		t.Error("RequestPermission() = true, want false when the recorder dies immediately")
	}

	impl.mu.Lock()
	stops := impl.stops
	impl.mu.Unlock()
	if stops != 1 {
		t.Errorf("probe stops = %d, want 1 (device released)", stops)
	}
}

func TestRequestPermission_StartFailureMeansDenied(t *testing.T) {
	c := newTestCapture(&fakeImpl{startErr: errors.New("no recorder binary")})

	if c.RequestPermission(context.Background()) {
		t.Error("RequestPermission() = true, want false when the recorder cannot start")
	}
}

func TestCapture_DeviceLossFiresOnce(t *testing.T) {
	impl := &fakeImpl{}
	c := newTestCapture(impl)

	var mu sync.Mutex
	losses := 0
	err := c.Start(func([]byte) {}, func() {
		mu.Lock()
		losses++
		mu.Unlock()
	})
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	impl.emitErr(errors.New("stream ended"))
	impl.emitErr(errors.New("stream ended again"))

	mu.Lock()
	got := losses
	mu.Unlock()
	if got != 1 {
		t.Errorf("onDisconnect calls = %d, want 1", got)
	}
	if c.IsCapturing() {
		t.Error("capture still running after device loss")
	}
}
