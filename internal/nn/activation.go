package nn

import (
	"fmt"

	"github.com/relic-ml/relic/internal/loadable"
	"github.com/relic-ml/relic/internal/tensor"
)

// ReLU is a Rectified Linear Unit activation module.
//
// Applies the element-wise function f(x) = max(0, x). Activations are
// stateless but still loadable: they serialize with an empty argument
// list and an empty state slot.
type ReLU[B tensor.Backend] struct {
	loadable.Base
}

// NewReLU creates a new ReLU activation module.
func NewReLU[B tensor.Backend]() *ReLU[B] {
	r := &ReLU[B]{}
	if err := r.RecordArgs(); err != nil {
		panic(err)
	}
	return r
}

// Forward applies ReLU activation.
func (r *ReLU[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	backend := input.Backend()
	return tensor.New[float32, B](backend.ReLU(input.Raw()), backend)
}

// Parameters returns nil (ReLU has no trainable parameters).
func (r *ReLU[B]) Parameters() []*Parameter[B] {
	return nil
}

// StateDict returns an empty state dictionary.
func (r *ReLU[B]) StateDict() map[string]*tensor.RawTensor {
	return map[string]*tensor.RawTensor{}
}

// LoadStateDict accepts only an empty state dictionary.
func (r *ReLU[B]) LoadStateDict(stateDict map[string]*tensor.RawTensor) error {
	return requireEmptyState("ReLU", stateDict)
}

// Sigmoid is a sigmoid activation module.
//
// Applies the element-wise function σ(x) = 1 / (1 + exp(-x)).
type Sigmoid[B tensor.Backend] struct {
	loadable.Base
}

// NewSigmoid creates a new Sigmoid activation module.
func NewSigmoid[B tensor.Backend]() *Sigmoid[B] {
	s := &Sigmoid[B]{}
	if err := s.RecordArgs(); err != nil {
		panic(err)
	}
	return s
}

// Forward applies Sigmoid activation.
func (s *Sigmoid[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	backend := input.Backend()
	return tensor.New[float32, B](backend.Sigmoid(input.Raw()), backend)
}

// Parameters returns nil (Sigmoid has no trainable parameters).
func (s *Sigmoid[B]) Parameters() []*Parameter[B] {
	return nil
}

// StateDict returns an empty state dictionary.
func (s *Sigmoid[B]) StateDict() map[string]*tensor.RawTensor {
	return map[string]*tensor.RawTensor{}
}

// LoadStateDict accepts only an empty state dictionary.
func (s *Sigmoid[B]) LoadStateDict(stateDict map[string]*tensor.RawTensor) error {
	return requireEmptyState("Sigmoid", stateDict)
}

// Tanh is a hyperbolic tangent activation module.
//
// Applies the element-wise function tanh(x). Zero-centered output in
// the range (-1, 1).
type Tanh[B tensor.Backend] struct {
	loadable.Base
}

// NewTanh creates a new Tanh activation module.
func NewTanh[B tensor.Backend]() *Tanh[B] {
	t := &Tanh[B]{}
	if err := t.RecordArgs(); err != nil {
		panic(err)
	}
	return t
}

// Forward applies Tanh activation.
func (t *Tanh[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	backend := input.Backend()
	return tensor.New[float32, B](backend.Tanh(input.Raw()), backend)
}

// Parameters returns nil (Tanh has no trainable parameters).
func (t *Tanh[B]) Parameters() []*Parameter[B] {
	return nil
}

// StateDict returns an empty state dictionary.
func (t *Tanh[B]) StateDict() map[string]*tensor.RawTensor {
	return map[string]*tensor.RawTensor{}
}

// LoadStateDict accepts only an empty state dictionary.
func (t *Tanh[B]) LoadStateDict(stateDict map[string]*tensor.RawTensor) error {
	return requireEmptyState("Tanh", stateDict)
}

func requireEmptyState(name string, stateDict map[string]*tensor.RawTensor) error {
	if len(stateDict) > 0 {
		return fmt.Errorf("%s has no state, got %d entries", name, len(stateDict))
	}
	return nil
}
