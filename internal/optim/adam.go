package optim

import (
	"fmt"
	"math"

	"github.com/relic-ml/relic/internal/loadable"
	"github.com/relic-ml/relic/internal/nn"
	"github.com/relic-ml/relic/internal/tensor"
)

// Adam implements the Adam (Adaptive Moment Estimation) optimizer.
//
// Update rule:
//
//	m_t = beta1 * m_{t-1} + (1-beta1) * gradient
//	v_t = beta2 * v_{t-1} + (1-beta2) * gradient²
//	m_hat = m_t / (1 - beta1^t)
//	v_hat = v_t / (1 - beta2^t)
//	param = param - lr * m_hat / (sqrt(v_hat) + eps)
//
// Reference: "Adam: A Method for Stochastic Optimization"
// (Kingma & Ba, 2014).
//
// The capture record holds an empty parameter placeholder plus the
// resolved hyperparameters. Saved state carries the moment estimates
// under "m.<index>" and "v.<index>" and the timestep under "step", so
// bias correction resumes where it left off.
type Adam[B tensor.Backend] struct {
	loadable.Base

	params []*nn.Parameter[B]
	lr     float32
	beta1  float32
	beta2  float32
	eps    float32
	t      int64
	m      map[*nn.Parameter[B]]*tensor.Tensor[float32, B]
	v      map[*nn.Parameter[B]]*tensor.Tensor[float32, B]

	// pending holds restored moments until SetParams re-links them.
	pending map[string]*tensor.RawTensor

	backend B
}

// AdamConfig holds configuration for the Adam optimizer.
type AdamConfig struct {
	LR    float32    // learning rate (default: 0.001)
	Betas [2]float32 // moving average coefficients (default: [0.9, 0.999])
	Eps   float32    // numerical stability term (default: 1e-8)
}

// NewAdam creates a new Adam optimizer over the given parameters.
// Defaults are resolved before the hyperparameters are recorded.
func NewAdam[B tensor.Backend](params []*nn.Parameter[B], config AdamConfig, backend B) *Adam[B] {
	if config.LR == 0 {
		config.LR = 0.001
	}
	if config.Betas[0] == 0 {
		config.Betas[0] = 0.9
	}
	if config.Betas[1] == 0 {
		config.Betas[1] = 0.999
	}
	if config.Eps == 0 {
		config.Eps = 1e-8
	}

	a := &Adam[B]{
		params:  params,
		lr:      config.LR,
		beta1:   config.Betas[0],
		beta2:   config.Betas[1],
		eps:     config.Eps,
		m:       make(map[*nn.Parameter[B]]*tensor.Tensor[float32, B]),
		v:       make(map[*nn.Parameter[B]]*tensor.Tensor[float32, B]),
		backend: backend,
	}
	err := a.RecordCall(
		[]any{[]any{}},
		[]loadable.Kwarg{
			{Name: "lr", Value: config.LR},
			{Name: "beta1", Value: config.Betas[0]},
			{Name: "beta2", Value: config.Betas[1]},
			{Name: "eps", Value: config.Eps},
		},
	)
	if err != nil {
		panic(err)
	}
	return a
}

// Step performs one Adam update over every parameter with a gradient.
func (a *Adam[B]) Step(grads map[*tensor.RawTensor]*tensor.RawTensor) {
	a.t++

	biasCorrection1 := float32(1.0 - math.Pow(float64(a.beta1), float64(a.t)))
	biasCorrection2 := float32(1.0 - math.Pow(float64(a.beta2), float64(a.t)))

	for _, param := range a.params {
		grad := getGradient(param, grads)
		if grad == nil {
			continue
		}

		m, mExists := a.m[param]
		if !mExists {
			m = tensor.Zeros[float32](param.Tensor().Shape(), a.backend)
			a.m[param] = m
		}
		v, vExists := a.v[param]
		if !vExists {
			v = tensor.Zeros[float32](param.Tensor().Shape(), a.backend)
			a.v[param] = v
		}

		gradData := grad.AsFloat32()
		mData := m.Raw().AsFloat32()
		vData := v.Raw().AsFloat32()
		paramData := param.Tensor().Raw().AsFloat32()

		for i := range paramData {
			g := gradData[i]
			mData[i] = a.beta1*mData[i] + (1.0-a.beta1)*g
			vData[i] = a.beta2*vData[i] + (1.0-a.beta2)*g*g

			mHat := mData[i] / biasCorrection1
			vHat := vData[i] / biasCorrection2
			paramData[i] -= a.lr * mHat / (float32(math.Sqrt(float64(vHat))) + a.eps)
		}
	}
}

// ZeroGrad clears gradients for all parameters.
func (a *Adam[B]) ZeroGrad() {
	for _, param := range a.params {
		param.ZeroGrad()
	}
}

// LR returns the current learning rate.
func (a *Adam[B]) LR() float32 {
	return a.lr
}

// SetLR updates the learning rate.
func (a *Adam[B]) SetLR(lr float32) {
	a.lr = lr
}

// Timestep returns the current timestep.
func (a *Adam[B]) Timestep() int64 {
	return a.t
}

// SetParams re-links the optimizer to a parameter list and attaches
// any restored moment estimates to it by position.
func (a *Adam[B]) SetParams(params []*nn.Parameter[B]) error {
	a.params = params
	a.m = make(map[*nn.Parameter[B]]*tensor.Tensor[float32, B])
	a.v = make(map[*nn.Parameter[B]]*tensor.Tensor[float32, B])
	if a.pending == nil {
		return nil
	}

	if stepRaw, ok := a.pending["step"]; ok {
		if stepRaw.DType() != tensor.Int64 || stepRaw.NumElements() != 1 {
			return fmt.Errorf("step must be a single int64, got %s", stepRaw)
		}
		a.t = stepRaw.AsInt64()[0]
	}

	for i, param := range params {
		if raw, ok := a.pending[fmt.Sprintf("m.%d", i)]; ok {
			if !raw.Shape().Equal(param.Tensor().Shape()) {
				return fmt.Errorf("first moment shape mismatch for parameter %d: expected %v, got %v",
					i, param.Tensor().Shape(), raw.Shape())
			}
			a.m[param] = tensor.New[float32, B](raw, a.backend)
		}
		if raw, ok := a.pending[fmt.Sprintf("v.%d", i)]; ok {
			if !raw.Shape().Equal(param.Tensor().Shape()) {
				return fmt.Errorf("second moment shape mismatch for parameter %d: expected %v, got %v",
					i, param.Tensor().Shape(), raw.Shape())
			}
			a.v[param] = tensor.New[float32, B](raw, a.backend)
		}
	}

	for key := range a.pending {
		if key == "step" {
			continue
		}
		var idx int
		if _, err := fmt.Sscanf(key, "m.%d", &idx); err != nil {
			if _, err := fmt.Sscanf(key, "v.%d", &idx); err != nil {
				return fmt.Errorf("unexpected state key %q", key)
			}
		}
		if idx >= len(params) {
			return fmt.Errorf("state has moments for parameter %d, but only %d parameters were attached", idx, len(params))
		}
	}

	a.pending = nil
	return nil
}

// StateDict exports the moment estimates and the timestep.
func (a *Adam[B]) StateDict() map[string]*tensor.RawTensor {
	stateDict := make(map[string]*tensor.RawTensor)

	for i, param := range a.params {
		if m, exists := a.m[param]; exists {
			stateDict[fmt.Sprintf("m.%d", i)] = m.Raw()
		}
		if v, exists := a.v[param]; exists {
			stateDict[fmt.Sprintf("v.%d", i)] = v.Raw()
		}
	}

	if a.t > 0 {
		stepRaw, err := tensor.NewRaw(tensor.Shape{1}, tensor.Int64)
		if err != nil {
			panic(err)
		}
		stepRaw.AsInt64()[0] = a.t
		stateDict["step"] = stepRaw
	}

	return stateDict
}

// LoadStateDict restores the moment estimates. When the optimizer has
// no parameters yet (just deserialized), the moments are held until
// SetParams links them to a model.
func (a *Adam[B]) LoadStateDict(stateDict map[string]*tensor.RawTensor) error {
	if len(a.params) == 0 {
		if len(stateDict) > 0 {
			a.pending = stateDict
		}
		return nil
	}

	a.pending = stateDict
	return a.SetParams(a.params)
}
