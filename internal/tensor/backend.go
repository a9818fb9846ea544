package tensor

// Backend defines the compute interface the layers in this repository
// need. It is deliberately narrow: relic is a save/restore framework,
// and the ops below are just enough to run the shipped layers forward.
type Backend interface {
	// Element-wise binary operation. Supports equal shapes and
	// row-broadcast of a [1, n] tensor against [batch, n].
	Add(a, b *RawTensor) *RawTensor

	// MatMul performs 2D matrix multiplication: [m, k] @ [k, n] -> [m, n].
	MatMul(a, b *RawTensor) *RawTensor

	// Shape operations.
	Reshape(t *RawTensor, newShape Shape) *RawTensor
	Transpose(t *RawTensor) *RawTensor // 2D transpose

	// Element-wise activations.
	ReLU(x *RawTensor) *RawTensor
	Sigmoid(x *RawTensor) *RawTensor
	Tanh(x *RawTensor) *RawTensor

	// Name identifies the backend (e.g. "cpu").
	Name() string
}
