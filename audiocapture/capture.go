// Package audiocapture provides microphone capture for streaming
// recognition. It acquires the default input device, re-chunks the raw
// PCM stream into fixed-duration frames, and reports abrupt device loss.
package audiocapture

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// ErrAlreadyCapturing is returned when trying to start capture while already capturing.
var ErrAlreadyCapturing = errors.New("already capturing audio")

// Config holds configuration for audio capture.
type Config struct {
	SampleRate    int           // Sample rate, default 16000 Hz
	FrameDuration time.Duration // Target frame duration, default 100 ms
	Device        string        // Input device identifier, empty for default
}

// DefaultConfig returns the default capture configuration.
func DefaultConfig() Config {
	return Config{
		SampleRate:    16000,
		FrameDuration: 100 * time.Millisecond,
	}
}

// captureImpl is the platform-specific capture implementation interface.
// onData receives raw signed 16-bit little-endian mono PCM of arbitrary
// length; onErr is called once when the stream dies unexpectedly.
type captureImpl interface {
	start(sampleRate int, device string, onData func([]byte), onErr func(error)) error
	stop() error
}

// Capture produces fixed-duration binary audio frames from the
// microphone until stopped. Frames are delivered in capture order; the
// remainder of a partially filled frame is carried into the next one,
// never dropped.
type Capture struct {
	mu sync.Mutex

	capturing    bool
	lossReported bool

	sampleRate int
	device     string
	chunker    *Rechunker

	onFrame      func(frame []byte)
	onDisconnect func()

	impl captureImpl
	lock *wakeLock
}

// New creates a new capture instance.
func New(cfg Config) (*Capture, error) {
	if cfg.SampleRate == 0 {
		cfg.SampleRate = 16000
	}
	if cfg.FrameDuration == 0 {
		cfg.FrameDuration = 100 * time.Millisecond
	}

	impl, err := newCaptureImpl()
	if err != nil {
		return nil, err
	}

	return &Capture{
		sampleRate: cfg.SampleRate,
		device:     cfg.Device,
		chunker:    NewRechunker(cfg.SampleRate, cfg.FrameDuration),
		impl:       impl,
	}, nil
}

// SampleRate returns the configured sample rate.
func (c *Capture) SampleRate() int {
	return c.sampleRate
}

// FrameBytes returns the size of one emitted frame in bytes.
func (c *Capture) FrameBytes() int {
	return c.chunker.FrameBytes()
}

// probeWindow is how long RequestPermission lets the recorder run
// before treating silence-without-error as an acquired device.
const probeWindow = 300 * time.Millisecond

// RequestPermission checks that the input device can be acquired. It
// opens the device briefly and releases it again; false means capture
// was denied or no device is available. A recorder that starts but dies
// before producing data counts as denied: that is how a busy or
// access-restricted device presents on the exec backends.
func (c *Capture) RequestPermission(ctx context.Context) bool {
	c.mu.Lock()
	if c.capturing {
		c.mu.Unlock()
		return true
	}
	c.mu.Unlock()

	dataCh := make(chan struct{}, 1)
	errCh := make(chan error, 1)
	err := c.impl.start(c.sampleRate, c.device,
		func([]byte) {
			select {
			case dataCh <- struct{}{}:
			default:
			}
		},
		func(err error) {
			select {
			case errCh <- err:
			default:
			}
		})
	if err != nil {
		slog.Warn("microphone permission probe failed", "error", err)
		return false
	}
	defer c.impl.stop() //nolint:errcheck // probe device is released either way

	select {
	case <-dataCh:
		return true
	case err := <-errCh:
		slog.Warn("microphone permission probe failed", "error", err)
		return false
	case <-ctx.Done():
		return false
	case <-time.After(probeWindow):
		// Recorder still running without data or error; the device is
		// held, some recorders just buffer before the first write.
		return true
	}
}

// Start begins capturing audio. onFrame receives fixed-size PCM frames
// asynchronously until Stop; onDisconnect fires at most once per start
// when the device is lost, followed by an internal stop.
func (c *Capture) Start(onFrame func(frame []byte), onDisconnect func()) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.capturing {
		return ErrAlreadyCapturing
	}

	c.chunker.Reset()
	c.lossReported = false
	c.onFrame = onFrame
	c.onDisconnect = onDisconnect

	err := c.impl.start(c.sampleRate, c.device, c.handleData, c.handleStreamError)
	if err != nil {
		return err
	}

	c.lock = acquireWakeLock()
	c.capturing = true
	slog.Info("audio capture started", "sampleRate", c.sampleRate, "frameBytes", c.chunker.FrameBytes())
	return nil
}

// Stop stops capturing and releases the device and any wake lock.
// Stopping an idle capture is a no-op.
func (c *Capture) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.capturing {
		return nil
	}

	err := c.impl.stop()
	if c.lock != nil {
		c.lock.release()
		c.lock = nil
	}
	c.capturing = false
	c.onFrame = nil
	c.onDisconnect = nil
	slog.Info("audio capture stopped")
	return err
}

// IsCapturing returns true if currently capturing audio.
func (c *Capture) IsCapturing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.capturing
}

// handleData re-chunks raw PCM into exact frames and forwards them.
func (c *Capture) handleData(data []byte) {
	c.mu.Lock()
	onFrame := c.onFrame
	frames := c.chunker.Write(data)
	c.mu.Unlock()

	if onFrame == nil {
		return
	}
	for _, f := range frames {
		onFrame(f)
	}
}

// handleStreamError reports device loss exactly once, then stops.
func (c *Capture) handleStreamError(err error) {
	c.mu.Lock()
	if !c.capturing || c.lossReported {
		c.mu.Unlock()
		return
	}
	c.lossReported = true
	cb := c.onDisconnect
	c.mu.Unlock()

	slog.Warn("audio device lost", "error", err)
	if cb != nil {
		cb()
	}
	_ = c.Stop()
}
