package audiocapture

import "time"

const bytesPerSample = 2 // 16-bit PCM

// Rechunker accumulates raw PCM callbacks of arbitrary length and cuts
// them into frames of exactly one target duration. Leftover bytes are
// carried to the next frame so no sample is dropped or reordered.
type Rechunker struct {
	frameBytes int
	buf        []byte
}

// NewRechunker returns a Rechunker emitting frames of
// floor(sampleRate * frameDuration) samples.
func NewRechunker(sampleRate int, frameDuration time.Duration) *Rechunker {
	samples := int(float64(sampleRate) * frameDuration.Seconds())
	return &Rechunker{
		frameBytes: samples * bytesPerSample,
		buf:        make([]byte, 0, samples*bytesPerSample*2),
	}
}

// FrameBytes returns the emitted frame size in bytes.
func (r *Rechunker) FrameBytes() int {
	return r.frameBytes
}

// Write appends raw PCM data and returns every complete frame now
// available, in order. Each returned frame is an independent copy.
func (r *Rechunker) Write(data []byte) [][]byte {
	r.buf = append(r.buf, data...)

	var frames [][]byte
	for len(r.buf) >= r.frameBytes {
		frame := make([]byte, r.frameBytes)
		copy(frame, r.buf[:r.frameBytes])
		frames = append(frames, frame)
		r.buf = r.buf[:copy(r.buf, r.buf[r.frameBytes:])]
	}
	return frames
}

// Flush returns the buffered remainder, shorter than one frame, and
// clears it. Returns nil when nothing is pending.
func (r *Rechunker) Flush() []byte {
	if len(r.buf) == 0 {
		return nil
	}
	rest := make([]byte, len(r.buf))
	copy(rest, r.buf)
	r.buf = r.buf[:0]
	return rest
}

// Pending returns the number of buffered bytes not yet emitted.
func (r *Rechunker) Pending() int {
	return len(r.buf)
}

// Reset discards any buffered remainder.
func (r *Rechunker) Reset() {
	r.buf = r.buf[:0]
}
