//go:build !linux && !darwin

package audiocapture

import "errors"

func newCaptureImpl() (captureImpl, error) {
	return nil, errors.New("audio capture is not supported on this platform")
}

func acquireWakeLock() *wakeLock { return nil }

type wakeLock struct{}

func (l *wakeLock) release() {}
