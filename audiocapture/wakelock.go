//go:build linux || darwin

package audiocapture

import (
	"log/slog"
	"os/exec"
)

// wakeLock keeps the machine awake for the duration of a capture. It is
// strictly best-effort: a missing inhibitor tool is not an error.
type wakeLock struct {
	cmd *exec.Cmd
}

// acquireWakeLock starts the platform sleep inhibitor. Returns nil when
// the inhibitor cannot be started; capture proceeds without it.
func acquireWakeLock() *wakeLock {
	cmd := wakeLockCommand()
	if err := cmd.Start(); err != nil {
		slog.Debug("wake lock unavailable", "error", err)
		return nil
	}
	return &wakeLock{cmd: cmd}
}

// release terminates the inhibitor process. Safe to call once per lock.
func (l *wakeLock) release() {
	if l == nil || l.cmd == nil || l.cmd.Process == nil {
		return
	}
	_ = l.cmd.Process.Kill()
	_ = l.cmd.Wait()
	l.cmd = nil
}
