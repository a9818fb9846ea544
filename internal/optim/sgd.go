package optim

import (
	"fmt"

	"github.com/relic-ml/relic/internal/loadable"
	"github.com/relic-ml/relic/internal/nn"
	"github.com/relic-ml/relic/internal/tensor"
)

// SGD implements stochastic gradient descent with optional momentum.
//
// Update rule without momentum:
//
//	param = param - lr * gradient
//
// Update rule with momentum:
//
//	velocity = momentum * velocity + gradient
//	param = param - lr * velocity
//
// The capture record holds an empty parameter placeholder plus the
// resolved hyperparameters; velocity buffers are saved as state under
// "velocity.<param index>".
type SGD[B tensor.Backend] struct {
	loadable.Base

	params     []*nn.Parameter[B]
	lr         float32
	momentum   float32
	velocities map[*nn.Parameter[B]]*tensor.Tensor[float32, B]

	// pending holds restored velocities until SetParams re-links them.
	pending map[string]*tensor.RawTensor

	backend B
}

// SGDConfig holds configuration for the SGD optimizer.
type SGDConfig struct {
	LR       float32 // learning rate (default: 0.01)
	Momentum float32 // momentum factor (default: 0, range [0, 1))
}

// NewSGD creates a new SGD optimizer over the given parameters.
// Defaults are resolved before the hyperparameters are recorded, so
// the capture always carries concrete values.
func NewSGD[B tensor.Backend](params []*nn.Parameter[B], config SGDConfig, backend B) *SGD[B] {
	if config.LR == 0 {
		config.LR = 0.01
	}

	s := &SGD[B]{
		params:     params,
		lr:         config.LR,
		momentum:   config.Momentum,
		velocities: make(map[*nn.Parameter[B]]*tensor.Tensor[float32, B]),
		backend:    backend,
	}
	err := s.RecordCall(
		[]any{[]any{}},
		[]loadable.Kwarg{
			{Name: "lr", Value: config.LR},
			{Name: "momentum", Value: config.Momentum},
		},
	)
	if err != nil {
		panic(err)
	}
	return s
}

// Step applies one gradient descent update to every parameter with a
// gradient.
func (s *SGD[B]) Step(grads map[*tensor.RawTensor]*tensor.RawTensor) {
	for _, param := range s.params {
		grad := getGradient(param, grads)
		if grad == nil {
			continue
		}

		gradData := grad.AsFloat32()
		paramData := param.Tensor().Raw().AsFloat32()

		if s.momentum == 0 {
			for i := range paramData {
				paramData[i] -= s.lr * gradData[i]
			}
			continue
		}

		velocity, exists := s.velocities[param]
		if !exists {
			velocity = tensor.Zeros[float32](param.Tensor().Shape(), s.backend)
			s.velocities[param] = velocity
		}
		velocityData := velocity.Raw().AsFloat32()
		for i := range paramData {
			velocityData[i] = s.momentum*velocityData[i] + gradData[i]
			paramData[i] -= s.lr * velocityData[i]
		}
	}
}

// ZeroGrad clears gradients for all parameters.
func (s *SGD[B]) ZeroGrad() {
	for _, param := range s.params {
		param.ZeroGrad()
	}
}

// LR returns the current learning rate.
func (s *SGD[B]) LR() float32 {
	return s.lr
}

// SetLR updates the learning rate.
func (s *SGD[B]) SetLR(lr float32) {
	s.lr = lr
}

// SetParams re-links the optimizer to a parameter list and attaches
// any restored velocity buffers to it by position.
func (s *SGD[B]) SetParams(params []*nn.Parameter[B]) error {
	s.params = params
	s.velocities = make(map[*nn.Parameter[B]]*tensor.Tensor[float32, B])
	if s.pending == nil {
		return nil
	}

	for i, param := range params {
		raw, ok := s.pending[fmt.Sprintf("velocity.%d", i)]
		if !ok {
			continue
		}
		if !raw.Shape().Equal(param.Tensor().Shape()) {
			return fmt.Errorf("velocity shape mismatch for parameter %d: expected %v, got %v",
				i, param.Tensor().Shape(), raw.Shape())
		}
		s.velocities[param] = tensor.New[float32, B](raw, s.backend)
	}

	for key := range s.pending {
		var idx int
		if _, err := fmt.Sscanf(key, "velocity.%d", &idx); err != nil {
			return fmt.Errorf("unexpected state key %q", key)
		}
		if idx >= len(params) {
			return fmt.Errorf("state has velocity for parameter %d, but only %d parameters were attached", idx, len(params))
		}
	}

	s.pending = nil
	return nil
}

// StateDict exports the velocity buffers, keyed "velocity.<index>".
// Empty without momentum or before the first step.
func (s *SGD[B]) StateDict() map[string]*tensor.RawTensor {
	stateDict := make(map[string]*tensor.RawTensor)
	if s.momentum == 0 {
		return stateDict
	}
	for i, param := range s.params {
		if velocity, exists := s.velocities[param]; exists {
			stateDict[fmt.Sprintf("velocity.%d", i)] = velocity.Raw()
		}
	}
	return stateDict
}

// LoadStateDict restores velocity buffers. When the optimizer has no
// parameters yet (just deserialized), the buffers are held until
// SetParams links them to a model.
func (s *SGD[B]) LoadStateDict(stateDict map[string]*tensor.RawTensor) error {
	if len(s.params) == 0 {
		if len(stateDict) > 0 {
			s.pending = stateDict
		}
		return nil
	}

	s.pending = stateDict
	return s.SetParams(s.params)
}
