package loadable

import "github.com/relic-ml/relic/internal/tensor"

// Loadable is implemented by every node that participates in the
// save/restore protocol. Embedding Base provides LoadableCapture;
// StateDict and LoadStateDict are the node's own contract for its
// mutable state.
type Loadable interface {
	// LoadableCapture returns the frozen constructor-argument
	// snapshot, or nil if the node never recorded one.
	LoadableCapture() *Capture

	// StateDict returns the node's mutable state tensors, keyed by
	// name. The returned tensors are live references; Serialize
	// snapshots them.
	StateDict() map[string]*tensor.RawTensor

	// LoadStateDict replays previously saved state into the node.
	// Returns an error if a required entry is missing or has the
	// wrong shape or dtype.
	LoadStateDict(stateDict map[string]*tensor.RawTensor) error
}

// Keyer lets a node override the type tag used when it is serialized.
// Adapters implement this so that a graph saved through an adapted
// type and one saved through a hand-written loadable type produce
// interchangeable records.
type Keyer interface {
	LoadableKey() Key
}

// RecordSerializer lets a node take over its own record layout.
// Containers use this to serialize their children into the args slot
// (positionally or by key) instead of the default capture-plus-state
// layout.
type RecordSerializer interface {
	SerializeRecord() (*Record, error)
}
