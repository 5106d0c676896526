//go:build darwin

package audiocapture

import (
	"context"
	"os/exec"
	"strconv"
)

const recorderBinary = "ffmpeg"

// recordCommand captures raw s16le mono PCM from the default
// AVFoundation input device.
func recordCommand(ctx context.Context, sampleRate int, device string) *exec.Cmd {
	if device == "" {
		device = ":default"
	}
	return exec.CommandContext(ctx, recorderBinary,
		"-hide_banner", "-loglevel", "error",
		"-f", "avfoundation",
		"-i", device,
		"-ar", strconv.Itoa(sampleRate),
		"-ac", "1",
		"-f", "s16le",
		"-",
	)
}

// wakeLockCommand prevents the machine from sleeping while dictation is
// running.
func wakeLockCommand() *exec.Cmd {
	return exec.Command("caffeinate", "-di")
}
