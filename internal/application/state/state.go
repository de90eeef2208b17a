package state

// SessionState tracks a recording or playback session's lifecycle.
type SessionState int

const (
	StateIdle SessionState = iota
	StateArmed
	StateRecording
	StatePlaying
	StateDone
)

// String returns the string representation of the session state.
func (s SessionState) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateArmed:
		return "Armed"
	case StateRecording:
		return "Recording"
	case StatePlaying:
		return "Playing"
	case StateDone:
		return "Done"
	default:
		return "Unknown"
	}
}
