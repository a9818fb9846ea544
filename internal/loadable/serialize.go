package loadable

import (
	"fmt"

	"github.com/relic-ml/relic/internal/tensor"
)

// Serialize converts a live node into a record from which it can be
// reconstructed. A fresh record is produced on every call: constructor
// arguments come from the capture snapshot, and the node's mutable
// state is deep-copied so later training steps cannot mutate a record
// the caller is still holding.
//
// Nodes implementing RecordSerializer (containers, optimizers) take
// over their own layout. A node whose concrete type was never
// registered cannot be tagged and fails with a ConformanceError.
func Serialize(node Loadable) (*Record, error) {
	if custom, ok := node.(RecordSerializer); ok {
		return custom.SerializeRecord()
	}

	key, ok := KeyOf(node)
	if !ok {
		return nil, &ConformanceError{
			TypeName: fmt.Sprintf("%T", node),
			Reason:   "concrete type is not registered; call Register at process start",
		}
	}

	rec := &Record{
		Format:   FormatVersion,
		Module:   key.Module,
		Qualname: key.Qualname,
		Args:     []*Value{},
	}

	if capture := node.LoadableCapture(); capture != nil {
		rec.Args = capture.Args
		rec.Kwargs = capture.Kwargs
	}

	rec.State = snapshotState(node.StateDict())
	return rec, nil
}

// NewContainerRecord builds the skeleton record for a container node:
// tagged, empty args, and no state slot at all (children carry the
// state). Container SerializeRecord implementations fill in Args.
func NewContainerRecord(node Loadable) (*Record, error) {
	key, ok := KeyOf(node)
	if !ok {
		return nil, &ConformanceError{
			TypeName: fmt.Sprintf("%T", node),
			Reason:   "concrete type is not registered; call Register at process start",
		}
	}
	return &Record{
		Format:   FormatVersion,
		Module:   key.Module,
		Qualname: key.Qualname,
		Args:     []*Value{},
	}, nil
}

// snapshotState deep-copies a state dictionary. A nil input stays nil;
// an empty one stays an empty, present state slot.
func snapshotState(state map[string]*tensor.RawTensor) map[string]*tensor.RawTensor {
	if state == nil {
		return nil
	}
	out := make(map[string]*tensor.RawTensor, len(state))
	for name, raw := range state {
		out[name] = raw.Clone()
	}
	return out
}
