// Package loadable implements the save/restore protocol for module trees.
//
// Unlike plain state-dictionary persistence, a saved artifact carries
// enough information to rebuild each module from scratch: the arguments
// its constructor was called with, the identity of its concrete type,
// and its mutable state. Loading re-invokes the constructor through the
// type registry and then replays the saved state.
//
// The package provides:
//   - Base: an embeddable struct that records constructor arguments
//     exactly once per instance (the leaf constructor wins)
//   - Registry: the bidirectional map between concrete types and
//     stable (module path, qualified name) identifiers
//   - Serialize / Deserialize: the recursive two-way transform between
//     live module graphs and the tagged intermediate representation
//   - Save / Load: persistence of that representation as a .relic
//     artifact, with state tensors stored in a binary payload
//   - Checkpoint: a training snapshot holding a model, an optimizer,
//     and step bookkeeping in a single artifact
//
// A minimal loadable module:
//
//	type Scale struct {
//	    loadable.Base
//	    factor float64
//	}
//
//	func NewScale(factor float64) (*Scale, error) {
//	    s := &Scale{factor: factor}
//	    if err := s.RecordArgs(factor); err != nil {
//	        return nil, err
//	    }
//	    return s, nil
//	}
//
// Registered at process start:
//
//	loadable.MustRegister(
//	    loadable.Key{Module: "example.com/scale", Qualname: "Scale"},
//	    reflect.TypeOf(&Scale{}),
//	    func(backend any, args []any, kwargs map[string]any) (loadable.Loadable, error) {
//	        return NewScale(args[0].(float64))
//	    },
//	)
//
// Serialize and Deserialize are plain synchronous recursive calls; a
// call either completes or returns an error. The registry is the only
// process-wide state, and it is read-mostly after registration.
package loadable
