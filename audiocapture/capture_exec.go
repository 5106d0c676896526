//go:build linux || darwin

package audiocapture

import (
	"context"
	"fmt"
	"os/exec"
	"sync"
)

// execCapture runs a platform recorder subprocess and streams its raw
// PCM stdout. The subprocess dying while capture is active is treated
// as device loss.
type execCapture struct {
	mu       sync.Mutex
	cmd      *exec.Cmd
	cancel   context.CancelFunc
	stopping bool
}

func newCaptureImpl() (captureImpl, error) {
	if _, err := exec.LookPath(recorderBinary); err != nil {
		return nil, fmt.Errorf("locate %s: %w", recorderBinary, err)
	}
	return &execCapture{}, nil
}

func (e *execCapture) start(sampleRate int, device string, onData func([]byte), onErr func(error)) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	cmd := recordCommand(ctx, sampleRate, device)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return fmt.Errorf("recorder stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		cancel()
		return fmt.Errorf("start recorder: %w", err)
	}

	e.cmd = cmd
	e.cancel = cancel
	e.stopping = false

	go func() {
		defer cmd.Wait() //nolint:errcheck // reap the process
		buf := make([]byte, 4096)
		for {
			n, err := stdout.Read(buf)
			if n > 0 {
				chunk := make([]byte, n)
				copy(chunk, buf[:n])
				onData(chunk)
			}
			if err != nil {
				e.mu.Lock()
				abnormal := !e.stopping
				e.mu.Unlock()
				if abnormal {
					onErr(fmt.Errorf("recorder stream ended: %w", err))
				}
				return
			}
		}
	}()

	return nil
}

func (e *execCapture) stop() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.cancel == nil {
		return nil
	}
	e.stopping = true
	e.cancel()
	e.cancel = nil
	e.cmd = nil
	return nil
}
