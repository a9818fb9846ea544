package nn

import (
	"sort"

	"github.com/relic-ml/relic/internal/loadable"
	"github.com/relic-ml/relic/internal/tensor"
)

// Adapted wraps a module type that was written without the
// save/restore protocol and makes it loadable after the fact: the
// wrapper records the constructor arguments, reports the key the
// adapter was registered under, and forwards everything else to the
// wrapped module.
//
// A graph saved through an adapted type and one saved through a type
// that records its own arguments produce interchangeable artifacts:
// both resolve through the same key and rebuild through the same
// factory.
type Adapted[B tensor.Backend] struct {
	loadable.Base

	key   loadable.Key
	inner Module[B]
}

// Adapt wraps inner as a loadable module under key, recording args as
// its constructor arguments. Arguments that cannot be captured are
// rejected here, at wrap time.
func Adapt[B tensor.Backend](key loadable.Key, inner Module[B], args ...any) (*Adapted[B], error) {
	a := &Adapted[B]{key: key, inner: inner}
	if err := a.RecordArgs(args...); err != nil {
		return nil, err
	}
	return a, nil
}

// LoadableKey reports the adapter's registered key, overriding type
// based tagging.
func (a *Adapted[B]) LoadableKey() loadable.Key {
	return a.key
}

// Unwrap returns the wrapped module.
func (a *Adapted[B]) Unwrap() Module[B] {
	return a.inner
}

// Forward delegates to the wrapped module.
func (a *Adapted[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	return a.inner.Forward(input)
}

// Parameters delegates to the wrapped module.
func (a *Adapted[B]) Parameters() []*Parameter[B] {
	return a.inner.Parameters()
}

// StateDict delegates to the wrapped module.
func (a *Adapted[B]) StateDict() map[string]*tensor.RawTensor {
	return a.inner.StateDict()
}

// LoadStateDict delegates to the wrapped module.
func (a *Adapted[B]) LoadStateDict(stateDict map[string]*tensor.RawTensor) error {
	return a.inner.LoadStateDict(stateDict)
}

// RegisterAdapter registers a factory for an adapted module type. The
// factory builds the plain module from the decoded arguments; the
// returned node is wrapped so that re-serializing it reproduces the
// same record.
func RegisterAdapter[B tensor.Backend](key loadable.Key, construct func(backend B, args []any, kwargs map[string]any) (Module[B], error)) error {
	return loadable.Register(key, nil, func(backend any, args []any, kwargs map[string]any) (loadable.Loadable, error) {
		b, err := backendAs[B](backend)
		if err != nil {
			return nil, err
		}
		inner, err := construct(b, args, kwargs)
		if err != nil {
			return nil, err
		}

		a := &Adapted[B]{key: key, inner: inner}
		names := make([]string, 0, len(kwargs))
		for name := range kwargs {
			names = append(names, name)
		}
		sort.Strings(names)
		kws := make([]loadable.Kwarg, 0, len(names))
		for _, name := range names {
			kws = append(kws, loadable.Kwarg{Name: name, Value: kwargs[name]})
		}
		if err := a.RecordCall(args, kws); err != nil {
			return nil, err
		}
		return a, nil
	})
}
