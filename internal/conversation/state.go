package conversation

import "github.com/starford/unpack/internal/models"

// State is where a tangent's conversation stands.
type State int

const (
	// Unseeded tangents have no messages yet.
	Unseeded State = iota
	// AwaitingUser means the companion spoke last.
	AwaitingUser
	// AwaitingAI means the user spoke last and has no reply yet.
	AwaitingAI
)

func (s State) String() string {
	switch s {
	case Unseeded:
		return "unseeded"
	case AwaitingUser:
		return "awaiting_user"
	case AwaitingAI:
		return "awaiting_ai"
	default:
		return "unknown"
	}
}

// StateOf derives the state from persisted history, oldest first.
func StateOf(history []models.Message) State {
	if len(history) == 0 {
		return Unseeded
	}
	if history[len(history)-1].Role == models.RoleUser {
		return AwaitingAI
	}
	return AwaitingUser
}
