// Package stream keeps one logical log subscription alive across transport
// failures and forwards every inbound message unchanged.
package stream

// State is the connection lifecycle state of a subscription session.
type State int

const (
	Disconnected State = iota
	Connecting
	Subscribed
	Backoff
	Halted
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Subscribed:
		return "subscribed"
	case Backoff:
		return "backoff"
	case Halted:
		return "halted"
	}
	return "unknown"
}

// Session is the pure reconnect state machine. MaxAttempts == 0 means retry
// forever. Attempts counts consecutive failed connection attempts; it resets
// to zero on every successful subscription.
type Session struct {
	State       State
	Attempts    int
	MaxAttempts int
}

// NewSession returns a session in the Disconnected state.
func NewSession(maxAttempts int) Session {
	return Session{State: Disconnected, MaxAttempts: maxAttempts}
}

// Dialing transitions into Connecting and counts the attempt.
func (s Session) Dialing() Session {
	s.State = Connecting
	s.Attempts++
	return s
}

// Established transitions into Subscribed and resets the attempt counter.
func (s Session) Established() Session {
	s.State = Subscribed
	s.Attempts = 0
	return s
}

// Failed records a transport failure. When the configured attempt limit is
// reached the session halts permanently; otherwise it enters Backoff and
// another dial may follow.
func (s Session) Failed() Session {
	if s.MaxAttempts > 0 && s.Attempts >= s.MaxAttempts {
		s.State = Halted
		return s
	}
	s.State = Backoff
	return s
}

// Stopped transitions into Disconnected on an orderly shutdown.
func (s Session) Stopped() Session {
	s.State = Disconnected
	return s
}

// Exhausted reports whether the session has permanently halted.
func (s Session) Exhausted() bool {
	return s.State == Halted
}
