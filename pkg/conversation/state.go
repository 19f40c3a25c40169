package conversation

// TurnState is the controller's turn-taking state. Exactly one value
// holds at a time and transitions are guarded under the controller's
// mutex, so no two transitions interleave.
type TurnState int

const (
	// StateIdle means the controller is ready for input.
	StateIdle TurnState = iota

	// StateAwaitingName means the next submission is interpreted as the
	// user's chosen name, not as a question.
	StateAwaitingName

	// StateBusy means a turn is in flight. Submissions while Busy are
	// silently ignored, never queued.
	StateBusy
)

func (s TurnState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingName:
		return "awaiting-name"
	case StateBusy:
		return "busy"
	default:
		return "unknown"
	}
}
