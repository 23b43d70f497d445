package domain

import "time"

// Role constants for conversation messages.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// State describes where a session is in the ordering conversation.
type State string

const (
	// StateAwaitingLocation means no delivery location is known yet;
	// tool calls are short-circuited until one is resolved.
	StateAwaitingLocation State = "awaiting_location"
	// StateReady means the session has a resolved location and the
	// full tool-calling loop is active.
	StateReady State = "ready"
)

// Message is a single turn in a conversation.
type Message struct {
	Role      string    `json:"role"` // "user", "assistant", "tool"
	Content   string    `json:"content"`
	ToolName  string    `json:"toolName,omitempty"` // set for role "tool"
	Timestamp time.Time `json:"timestamp"`
}

// Session tracks one user's ordering conversation. The store hands out a
// per-session lock; only the turn holding it may touch mutable fields.
type Session struct {
	ID           string     `json:"id"`
	Messages     []Message  `json:"messages,omitempty"`
	Location     *Location  `json:"location,omitempty"`
	Addresses    []Location `json:"addresses,omitempty"` // saved-address cache from the startup fetch
	Bootstrapped bool       `json:"bootstrapped"`        // saved-address fetch attempted
	PhoneBound   bool       `json:"phoneBound"`
	Cart         Cart       `json:"cart"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// State reports the session's loop state.
func (s *Session) State() State {
	if s.Location == nil {
		return StateAwaitingLocation
	}
	return StateReady
}

// Append adds a message to the conversation history.
func (s *Session) Append(msg Message) {
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}
	s.Messages = append(s.Messages, msg)
	s.UpdatedAt = time.Now()
}

// Resolve sets the delivery location. Resolution is monotonic: once set,
// the location is never cleared for the session's lifetime.
func (s *Session) Resolve(loc Location) {
	s.Location = &loc
	s.UpdatedAt = time.Now()
}
