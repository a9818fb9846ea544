package nn

import (
	"fmt"

	"github.com/relic-ml/relic/internal/loadable"
	"github.com/relic-ml/relic/internal/tensor"
)

// asLoadable checks that a module participates in the save/restore
// protocol. Containers call this before accepting a child, so a
// non-conforming module is rejected at insertion time instead of
// surfacing as a serialization failure later.
func asLoadable[B tensor.Backend](m Module[B]) (loadable.Loadable, error) {
	if m == nil {
		return nil, &loadable.ConformanceError{TypeName: "nil", Reason: "nil module"}
	}
	ld, ok := any(m).(loadable.Loadable)
	if !ok {
		return nil, &loadable.ConformanceError{
			TypeName: fmt.Sprintf("%T", m),
			Reason:   "module does not implement the loadable protocol",
		}
	}
	return ld, nil
}

// mustLoadable is asLoadable for constructors, which follow the rest
// of the package in panicking on structurally invalid input.
func mustLoadable[B tensor.Backend](m Module[B]) loadable.Loadable {
	ld, err := asLoadable(m)
	if err != nil {
		panic(err)
	}
	return ld
}
