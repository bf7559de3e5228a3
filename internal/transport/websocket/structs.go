package websocket

import "fmt"

// State is the lifecycle of one transport: Idle -> Connecting -> Open -> Closed.
type State int32

const (
	StateIdle State = iota
	StateConnecting
	StateOpen
	StateClosed
)

func (that State) String() string {
	switch that {
	case StateIdle:
		return "IDLE"
	case StateConnecting:
		return "CONNECTING"
	case StateOpen:
		return "OPEN"
	case StateClosed:
		return "CLOSED"
	default:
		return fmt.Sprintf("State(%d)", int32(that))
	}
}

// Connected reports whether the state counts as CONNECTED for observers.
func (that State) Connected() bool {
	return that == StateOpen
}

// Stats counts frames for diagnostics.
type Stats struct {
	Sent     uint64
	Rejected uint64
	Received uint64
	Dropped  uint64
}
