package models

// SessionStatus is the server-authoritative state of a chat session. The
// client only reflects it; the single exception is defaulting a missing
// status to StatusOpen after a successful start handshake.
type SessionStatus string

const (
	StatusOpen           SessionStatus = "open"
	StatusWaitingManager SessionStatus = "waiting_manager"
	StatusClosed         SessionStatus = "closed"
)

// Known reports whether s is one of the statuses the backend emits.
func (s SessionStatus) Known() bool {
	switch s {
	case StatusOpen, StatusWaitingManager, StatusClosed:
		return true
	}
	return false
}
