// Package types provides shared type definitions for the application.
package types

// TranscriptKind distinguishes provisional from committed recognition
// results.
type TranscriptKind int

const (
	// Partial is a low-confidence, provisional result that will be
	// superseded by a later partial or final result.
	Partial TranscriptKind = iota
	// Final is the recognition service's committed result for a
	// completed utterance segment.
	Final
)

// String returns the kind name for logging.
func (k TranscriptKind) String() string {
	switch k {
	case Partial:
		return "partial"
	case Final:
		return "final"
	default:
		return "unknown"
	}
}

// TranscriptEvent is a single inbound recognition result. Events are
// consumed in arrival order; the channel never re-sorts or batches them.
type TranscriptEvent struct {
	Kind TranscriptKind `json:"kind"`
	Text string         `json:"text"`
}

// SessionState is the lifecycle state of a transcription session.
type SessionState int

const (
	// Inactive means no session is running and no live span is held.
	Inactive SessionState = iota
	// Recording means audio is being captured and streamed.
	Recording
	// PostProcessing means recording has ended and the rewrite pass is
	// running over the dictated span.
	PostProcessing
)

// String returns the state name for logging.
func (s SessionState) String() string {
	switch s {
	case Inactive:
		return "inactive"
	case Recording:
		return "recording"
	case PostProcessing:
		return "post-processing"
	default:
		return "unknown"
	}
}

// Position is a location in the host buffer, zero-based.
type Position struct {
	Line int `json:"line"`
	Ch   int `json:"ch"`
}

// Before reports whether p comes before q in document order.
func (p Position) Before(q Position) bool {
	if p.Line != q.Line {
		return p.Line < q.Line
	}
	return p.Ch < q.Ch
}

// SessionStatus is a snapshot of the active session, safe to hand to
// the UI layer.
type SessionStatus struct {
	State     SessionState `json:"state"`
	StartLine int          `json:"startLine"`
	EndLine   int          `json:"endLine"`
	Segments  int          `json:"segments"`
}
