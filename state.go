package grove

// State is the lifecycle state of a [Container].
type State int

const (
	// Empty is a live container with no bindings registered yet.
	Empty State = iota

	// Active is a live container with at least one binding. Instances may or
	// may not have been constructed.
	Active

	// Disposed is terminal. Every operation on a disposed container fails with
	// [ErrUseAfterDispose], except [Container.Dispose] which is a no-op.
	Disposed
)

// String returns the human-readable name of the state.
func (s State) String() string {
	switch s {
	case Empty:
		return "empty"
	case Active:
		return "active"
	case Disposed:
		return "disposed"
	default:
		return "unknown"
	}
}
