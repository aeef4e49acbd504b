package capture

// State is the recording session lifecycle of a [Writer].
//
// Transitions:
//
//	Idle ──StartRecording──▶ Pending ──first video frame──▶ Writing
//	Pending|Writing ──StopRecording──▶ Finished
//	Pending|Writing ──sink failure──▶ Failed
//
// Finished and Failed are terminal. The transition table makes
// double-handling structurally impossible — there are no "already handled"
// guard flags.
type State int32

const (
	// StateIdle: the writer exists but recording has not been requested.
	// Incoming samples are discarded.
	StateIdle State = iota

	// StatePending: recording was requested but the first video frame has
	// not arrived, so the sink is not configured yet. Audio samples are
	// buffered in arrival order.
	StatePending

	// StateWriting: the sink is running and samples are being written.
	StateWriting

	// StateFinished: the session ended; the output file (if any) is final.
	StateFinished

	// StateFailed: the sink failed; any partial output was discarded.
	StateFailed
)

// String returns the human-readable name of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePending:
		return "pending"
	case StateWriting:
		return "writing"
	case StateFinished:
		return "finished"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether the state is final.
func (s State) Terminal() bool {
	return s == StateFinished || s == StateFailed
}
