// Package cpu implements the pure Go CPU backend.
package cpu

import (
	"fmt"

	"github.com/relic-ml/relic/internal/parallel"
	"github.com/relic-ml/relic/internal/tensor"
)

// CPUBackend implements the tensor.Backend interface on the CPU.
// All operations are float32; that is the element type of every
// trainable parameter in this repository.
type CPUBackend struct {
	pool parallel.Config
}

// New creates a new CPU backend.
func New() *CPUBackend {
	return &CPUBackend{pool: parallel.DefaultConfig()}
}

// Name returns the backend name.
func (cpu *CPUBackend) Name() string {
	return "cpu"
}

// Add performs element-wise addition.
// Supports equal shapes and row-broadcast of [1, n] against [batch, n].
func (cpu *CPUBackend) Add(a, b *tensor.RawTensor) *tensor.RawTensor {
	aShape, bShape := a.Shape(), b.Shape()

	if aShape.Equal(bShape) {
		result := newLike(aShape)
		ra, rb, out := a.AsFloat32(), b.AsFloat32(), result.AsFloat32()
		for i := range out {
			out[i] = ra[i] + rb[i]
		}
		return result
	}

	// Row broadcast: [batch, n] + [1, n].
	if len(aShape) == 2 && len(bShape) == 2 && bShape[0] == 1 && aShape[1] == bShape[1] {
		result := newLike(aShape)
		ra, rb, out := a.AsFloat32(), b.AsFloat32(), result.AsFloat32()
		n := aShape[1]
		for row := 0; row < aShape[0]; row++ {
			base := row * n
			for col := 0; col < n; col++ {
				out[base+col] = ra[base+col] + rb[col]
			}
		}
		return result
	}

	panic(fmt.Sprintf("add: incompatible shapes %v and %v", aShape, bShape))
}

// MatMul performs 2D matrix multiplication: [m, k] @ [k, n] -> [m, n].
func (cpu *CPUBackend) MatMul(a, b *tensor.RawTensor) *tensor.RawTensor {
	aShape, bShape := a.Shape(), b.Shape()
	if len(aShape) != 2 || len(bShape) != 2 {
		panic(fmt.Sprintf("matmul: expected 2D tensors, got %v and %v", aShape, bShape))
	}
	if aShape[1] != bShape[0] {
		panic(fmt.Sprintf("matmul: inner dimensions do not match: %v @ %v", aShape, bShape))
	}

	m, k, n := aShape[0], aShape[1], bShape[1]
	result := newLike(tensor.Shape{m, n})
	ra, rb, out := a.AsFloat32(), b.AsFloat32(), result.AsFloat32()

	// Output rows are independent, so they fan out across workers.
	// ikj loop order keeps the inner loop contiguous in both b and out.
	cfg := cpu.pool
	if k*n >= 4096 {
		// A row is enough work to pay for a goroutine.
		cfg.MinChunkSize = 1
	}
	parallel.For(m, func(i int) {
		for kk := 0; kk < k; kk++ {
			av := ra[i*k+kk]
			if av == 0 {
				continue
			}
			bRow := rb[kk*n : kk*n+n]
			outRow := out[i*n : i*n+n]
			for j := range bRow {
				outRow[j] += av * bRow[j]
			}
		}
	}, cfg)

	return result
}

// Reshape returns a tensor with the same data and a new shape.
func (cpu *CPUBackend) Reshape(t *tensor.RawTensor, newShape tensor.Shape) *tensor.RawTensor {
	if t.NumElements() != newShape.NumElements() {
		panic(fmt.Sprintf("reshape: cannot reshape %v to %v", t.Shape(), newShape))
	}
	result, err := tensor.RawFromBytes(t.Data(), newShape, t.DType())
	if err != nil {
		panic(fmt.Sprintf("reshape: %v", err))
	}
	return result
}

// Transpose returns the 2D transpose of the tensor.
func (cpu *CPUBackend) Transpose(t *tensor.RawTensor) *tensor.RawTensor {
	shape := t.Shape()
	if len(shape) != 2 {
		panic(fmt.Sprintf("transpose: expected 2D tensor, got %v", shape))
	}

	rows, cols := shape[0], shape[1]
	result := newLike(tensor.Shape{cols, rows})
	src, out := t.AsFloat32(), result.AsFloat32()
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			out[j*rows+i] = src[i*cols+j]
		}
	}
	return result
}

// newLike allocates a float32 tensor with the given shape.
func newLike(shape tensor.Shape) *tensor.RawTensor {
	result, err := tensor.NewRaw(shape, tensor.Float32)
	if err != nil {
		panic(fmt.Sprintf("cpu: failed to allocate tensor: %v", err))
	}
	return result
}
