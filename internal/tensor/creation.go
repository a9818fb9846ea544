package tensor

import "math/rand"

// Zeros creates a tensor filled with zeros.
func Zeros[T DType, B Backend](shape Shape, b B) *Tensor[T, B] {
	var dummy T
	raw, err := NewRaw(shape, inferDataType(dummy))
	if err != nil {
		panic(err)
	}
	return New[T, B](raw, b)
}

// Ones creates a tensor filled with ones.
func Ones[T DType, B Backend](shape Shape, b B) *Tensor[T, B] {
	t := Zeros[T, B](shape, b)
	data := t.Data()
	var one T
	switch any(one).(type) {
	case float32:
		one = any(float32(1)).(T)
	case float64:
		one = any(float64(1)).(T)
	case int32:
		one = any(int32(1)).(T)
	case int64:
		one = any(int64(1)).(T)
	case uint8:
		one = any(uint8(1)).(T)
	case bool:
		one = any(true).(T)
	}
	for i := range data {
		data[i] = one
	}
	return t
}

// Randn creates a float32 tensor with values drawn from N(0, 1).
func Randn[B Backend](shape Shape, b B) *Tensor[float32, B] {
	t := Zeros[float32, B](shape, b)
	data := t.Data()
	for i := range data {
		data[i] = float32(rand.NormFloat64())
	}
	return t
}
