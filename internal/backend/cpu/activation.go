package cpu

import (
	"math"

	"github.com/relic-ml/relic/internal/tensor"
)

// ReLU applies max(0, x) element-wise.
func (cpu *CPUBackend) ReLU(x *tensor.RawTensor) *tensor.RawTensor {
	result := newLike(x.Shape())
	src, out := x.AsFloat32(), result.AsFloat32()
	for i, v := range src {
		if v > 0 {
			out[i] = v
		}
	}
	return result
}

// Sigmoid applies 1 / (1 + exp(-x)) element-wise.
func (cpu *CPUBackend) Sigmoid(x *tensor.RawTensor) *tensor.RawTensor {
	result := newLike(x.Shape())
	src, out := x.AsFloat32(), result.AsFloat32()
	for i, v := range src {
		out[i] = float32(1.0 / (1.0 + math.Exp(-float64(v))))
	}
	return result
}

// Tanh applies the hyperbolic tangent element-wise.
func (cpu *CPUBackend) Tanh(x *tensor.RawTensor) *tensor.RawTensor {
	result := newLike(x.Shape())
	src, out := x.AsFloat32(), result.AsFloat32()
	for i, v := range src {
		out[i] = float32(math.Tanh(float64(v)))
	}
	return result
}
