package optim

import (
	"os"
	"testing"

	"github.com/relic-ml/relic/internal/backend/cpu"
	"github.com/relic-ml/relic/internal/nn"
	"github.com/relic-ml/relic/internal/tensor"
)

type B = *cpu.CPUBackend

func TestMain(m *testing.M) {
	nn.MustRegisterTypes[B]()
	MustRegisterTypes[B]()
	os.Exit(m.Run())
}

// onesLike builds a gradient map assigning an all-ones gradient to
// every parameter.
func onesLike(t *testing.T, params []*nn.Parameter[B]) map[*tensor.RawTensor]*tensor.RawTensor {
	t.Helper()
	grads := make(map[*tensor.RawTensor]*tensor.RawTensor, len(params))
	for _, p := range params {
		g, err := tensor.NewRaw(p.Tensor().Shape(), tensor.Float32)
		if err != nil {
			t.Fatalf("failed to create gradient: %v", err)
		}
		data := g.AsFloat32()
		for i := range data {
			data[i] = 1
		}
		grads[p.Tensor().Raw()] = g
	}
	return grads
}

// singleParam builds one 2-element parameter with the given values.
func singleParam(t *testing.T, backend B, values ...float32) *nn.Parameter[B] {
	t.Helper()
	tt, err := tensor.FromSlice(values, tensor.Shape{len(values)}, backend)
	if err != nil {
		t.Fatalf("failed to create parameter: %v", err)
	}
	return nn.NewParameter("p", tt)
}
