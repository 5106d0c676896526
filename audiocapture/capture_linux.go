//go:build linux

package audiocapture

import (
	"context"
	"os/exec"
	"strconv"
)

const recorderBinary = "arecord"

// recordCommand captures raw S16_LE mono PCM from ALSA.
func recordCommand(ctx context.Context, sampleRate int, device string) *exec.Cmd {
	args := []string{
		"-r", strconv.Itoa(sampleRate),
		"-f", "S16_LE",
		"-c", "1",
		"-t", "raw",
		"-q",
	}
	if device != "" {
		args = append(args, "-D", device)
	}
	return exec.CommandContext(ctx, recorderBinary, args...)
}

// wakeLockCommand inhibits system sleep while dictation is running.
func wakeLockCommand() *exec.Cmd {
	return exec.Command("systemd-inhibit",
		"--what=sleep:idle",
		"--who=scriven",
		"--why=dictation in progress",
		"sleep", "infinity",
	)
}
