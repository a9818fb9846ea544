package loadable

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/relic-ml/relic/internal/tensor"
)

// Shared test fixtures. testDense is a minimal stateful node, and
// testStateless a node whose state slot is present but empty.

var (
	denseKey     = Key{Module: "relic/test", Qualname: "Dense"}
	statelessKey = Key{Module: "relic/test", Qualname: "Stateless"}
	wrapperKey   = Key{Module: "relic/test", Qualname: "Wrapper"}
)

type testDense struct {
	Base

	size int
	bias *tensor.RawTensor
}

func newTestDense(size int) *testDense {
	bias, err := tensor.NewRaw(tensor.Shape{size}, tensor.Float32)
	if err != nil {
		panic(err)
	}
	d := &testDense{size: size, bias: bias}
	if err := d.RecordArgs(size); err != nil {
		panic(err)
	}
	return d
}

func (d *testDense) StateDict() map[string]*tensor.RawTensor {
	return map[string]*tensor.RawTensor{"bias": d.bias}
}

func (d *testDense) LoadStateDict(stateDict map[string]*tensor.RawTensor) error {
	raw, ok := stateDict["bias"]
	if !ok {
		return fmt.Errorf("missing bias")
	}
	if !raw.Shape().Equal(d.bias.Shape()) {
		return fmt.Errorf("bias shape mismatch: expected %v, got %v", d.bias.Shape(), raw.Shape())
	}
	copy(d.bias.Data(), raw.Data())
	return nil
}

type testStateless struct {
	Base
}

func newTestStateless() *testStateless {
	s := &testStateless{}
	if err := s.RecordArgs(); err != nil {
		panic(err)
	}
	return s
}

func (s *testStateless) StateDict() map[string]*tensor.RawTensor {
	return map[string]*tensor.RawTensor{}
}

func (s *testStateless) LoadStateDict(stateDict map[string]*tensor.RawTensor) error {
	if len(stateDict) > 0 {
		return fmt.Errorf("stateless node got %d state entries", len(stateDict))
	}
	return nil
}

// testWrapper takes another node as a constructor argument, so its
// record carries a nested record.
type testWrapper struct {
	Base

	child *testDense
}

func newTestWrapper(child *testDense) *testWrapper {
	w := &testWrapper{child: child}
	if err := w.RecordArgs(child); err != nil {
		panic(err)
	}
	return w
}

func (w *testWrapper) StateDict() map[string]*tensor.RawTensor {
	return map[string]*tensor.RawTensor{}
}

func (w *testWrapper) LoadStateDict(stateDict map[string]*tensor.RawTensor) error {
	return nil
}

// registerTestTypes resets the process registry and registers the
// fixture types.
func registerTestTypes(t *testing.T) {
	t.Helper()
	resetRegistry()

	MustRegister(denseKey, reflect.TypeOf((*testDense)(nil)),
		func(backend any, args []any, kwargs map[string]any) (Loadable, error) {
			size, err := IntArg(args, 0)
			if err != nil {
				return nil, err
			}
			return newTestDense(size), nil
		})

	MustRegister(statelessKey, reflect.TypeOf((*testStateless)(nil)),
		func(backend any, args []any, kwargs map[string]any) (Loadable, error) {
			return newTestStateless(), nil
		})

	MustRegister(wrapperKey, reflect.TypeOf((*testWrapper)(nil)),
		func(backend any, args []any, kwargs map[string]any) (Loadable, error) {
			if len(args) != 1 {
				return nil, fmt.Errorf("expected 1 argument, got %d", len(args))
			}
			child, ok := args[0].(*testDense)
			if !ok {
				return nil, fmt.Errorf("expected a dense child, got %T", args[0])
			}
			return newTestWrapper(child), nil
		})
}

func fillBias(d *testDense, values ...float32) {
	copy(d.bias.AsFloat32(), values)
}
