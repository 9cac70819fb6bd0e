// Package lifecycle models the connection lifecycle state machine shared by
// the session orchestrator and any front-end observing it: a linear
// pipeline from Idle to SftpReady with no loops, plus a Disconnecting/
// Disconnected tail and an Error escape hatch reachable from any state.
package lifecycle

import "fmt"

// State is one phase of the connection lifecycle. The zero value is Idle.
type State int

const (
	Idle State = iota
	TcpConnecting
	VersionExchange
	KeyExchange
	Encrypted
	Authenticating
	Authenticated
	ChannelOpening
	SftpReady
	Disconnecting
	Disconnected
	// errorState is never returned directly; Machine.Fail constructs an
	// ErrorState value carrying the prior state and a message instead, so
	// that "what failed" stays attached to the transition.
	errorState
)

func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case TcpConnecting:
		return "TcpConnecting"
	case VersionExchange:
		return "VersionExchange"
	case KeyExchange:
		return "KeyExchange"
	case Encrypted:
		return "Encrypted"
	case Authenticating:
		return "Authenticating"
	case Authenticated:
		return "Authenticated"
	case ChannelOpening:
		return "ChannelOpening"
	case SftpReady:
		return "SftpReady"
	case Disconnecting:
		return "Disconnecting"
	case Disconnected:
		return "Disconnected"
	case errorState:
		return "Error"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// ErrorState carries the state that was current when a transition failed,
// plus a human-readable diagnostic. It is the recursive case of
// ConnectionState: rather than let State embed another State by value (which
// would recurse without bound), the error payload lives in its own type and
// a Snapshot references it only when Current == errorState.
type ErrorState struct {
	Prior   State
	Message string
}

func (e ErrorState) String() string {
	return fmt.Sprintf("Error{prior=%s, message=%s}", e.Prior, e.Message)
}

// Snapshot is the full value of ConnectionState at a point in time: the
// current phase, plus error detail when Current is the Error case.
type Snapshot struct {
	Current State
	Err     ErrorState
}

func (s Snapshot) String() string {
	if s.Current == errorState {
		return s.Err.String()
	}
	return s.Current.String()
}

// IsError reports whether this snapshot is the Error case.
func (s Snapshot) IsError() bool { return s.Current == errorState }

// edges enumerates every legal (from, to) pair except the two universal
// rules (any -> Disconnecting, any -> errorState), which canTransition
// checks separately.
var edges = map[State]State{
	Idle:            TcpConnecting,
	TcpConnecting:   VersionExchange,
	VersionExchange: KeyExchange,
	KeyExchange:     Encrypted,
	Encrypted:       Authenticating,
	Authenticating:  Authenticated,
	Authenticated:   ChannelOpening,
	ChannelOpening:  SftpReady,
	Disconnecting:   Disconnected,
}

// CanTransitionTo is the single source of truth for the legal-transition
// relation described in the design: the pipeline edges above, plus the two
// universal escapes to Disconnecting and to the Error case.
func (s Snapshot) CanTransitionTo(next State) bool {
	if next == Disconnecting || next == errorState {
		return true
	}
	return edges[s.Current] == next
}

// Machine holds the current Snapshot and rejects illegal transitions. It
// carries no observer of its own; callers (the session orchestrator) drive
// it and notify observers themselves so that "state changed" and "observer
// notified" happen as one atomic step from the caller's point of view.
type Machine struct {
	current Snapshot
}

// NewMachine returns a Machine starting in Idle.
func NewMachine() *Machine {
	return &Machine{current: Snapshot{Current: Idle}}
}

// Current returns the machine's current snapshot.
func (m *Machine) Current() Snapshot { return m.current }

// TransitionTo advances the machine to next. It returns false without
// mutating state if the transition is illegal; the caller (invariably a
// programming error, per the design) decides how loudly to fail.
func (m *Machine) TransitionTo(next State) (Snapshot, bool) {
	if !m.current.CanTransitionTo(next) {
		return m.current, false
	}
	m.current = Snapshot{Current: next}
	return m.current, true
}

// Fail transitions the machine into the Error case, recording the state
// that was current (the "prior" state) and the given message. Fail always
// succeeds: "any -> Error" is a universal edge.
func (m *Machine) Fail(message string) Snapshot {
	prior := m.current.Current
	m.current = Snapshot{Current: errorState, Err: ErrorState{Prior: prior, Message: message}}
	return m.current
}
