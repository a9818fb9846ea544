package nn

import (
	"math"
	"math/rand"

	"github.com/relic-ml/relic/internal/tensor"
)

// Xavier initializes a weight tensor with values drawn from the
// Glorot uniform distribution:
// U(-sqrt(6/(fan_in+fan_out)), sqrt(6/(fan_in+fan_out))).
func Xavier[B tensor.Backend](fanIn, fanOut int, shape tensor.Shape, backend B) *tensor.Tensor[float32, B] {
	bound := math.Sqrt(6.0 / float64(fanIn+fanOut))

	raw, err := tensor.NewRaw(shape, tensor.Float32)
	if err != nil {
		panic(err)
	}

	data := raw.AsFloat32()
	for i := range data {
		//nolint:gosec // math/rand is fine for weight initialization
		data[i] = float32((rand.Float64()*2.0 - 1.0) * bound)
	}

	return tensor.New[float32, B](raw, backend)
}

// Zeros creates a zero-filled tensor, commonly used for biases.
func Zeros[B tensor.Backend](shape tensor.Shape, backend B) *tensor.Tensor[float32, B] {
	return tensor.Zeros[float32](shape, backend)
}

// Ones creates a tensor filled with ones.
func Ones[B tensor.Backend](shape tensor.Shape, backend B) *tensor.Tensor[float32, B] {
	return tensor.Ones[float32](shape, backend)
}

// Randn creates a tensor with values drawn from N(0, 1).
func Randn[B tensor.Backend](shape tensor.Shape, backend B) *tensor.Tensor[float32, B] {
	return tensor.Randn(shape, backend)
}
