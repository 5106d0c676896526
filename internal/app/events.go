package app

// Event names emitted to the hosting UI layer.
const (
	EventDictationState   = "dictation-state"
	EventDictationPartial = "dictation-partial"
	EventDictationFinal   = "dictation-final"
)
