package types

// State represents the coordinator lifecycle state.
//
// States follow a defined progression during normal operation:
//
//	StateInit → StateFollower ⇄ StateLeader → StateShutdown
//
// Only a node in StateLeader advances epochs.
type State int

const (
	// StateInit is the initial state before Start.
	StateInit State = iota

	// StateFollower indicates the node is running but does not hold leadership.
	StateFollower

	// StateLeader indicates the node holds leadership and drives epochs.
	StateLeader

	// StateShutdown indicates graceful shutdown is in progress or complete.
	StateShutdown
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateInit:
		return "Init"
	case StateFollower:
		return "Follower"
	case StateLeader:
		return "Leader"
	case StateShutdown:
		return "Shutdown"
	default:
		return "Unknown"
	}
}
