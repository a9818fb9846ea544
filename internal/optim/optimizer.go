// Package optim implements the optimizers that ship with relic: SGD
// with momentum and Adam.
//
// Optimizers participate in the save/restore protocol with one twist:
// the parameter list they were built over is deliberately excluded
// from the capture record. Parameters belong to the model; serializing
// them again through the optimizer would duplicate every tensor and
// tie the artifact to live pointers. A restored optimizer carries its
// hyperparameters and running statistics but no parameter references;
// call SetParams with the restored model's parameters before resuming
// training.
package optim

import (
	"github.com/relic-ml/relic/internal/nn"
	"github.com/relic-ml/relic/internal/tensor"
)

// Optimizer is the base interface for all optimization algorithms.
type Optimizer[B tensor.Backend] interface {
	// Step applies gradient updates to all parameters. The map keys
	// are the parameters' raw tensors; parameters without a gradient
	// are skipped.
	Step(grads map[*tensor.RawTensor]*tensor.RawTensor)

	// ZeroGrad clears all parameter gradients. Call before each
	// backward pass to prevent accumulation.
	ZeroGrad()

	// LR returns the current learning rate.
	LR() float32

	// SetLR updates the learning rate, for scheduling.
	SetLR(lr float32)

	// SetParams re-links the optimizer to a parameter list. After a
	// restore this also re-attaches the loaded running statistics, by
	// position; the parameter count must match the saved state.
	SetParams(params []*nn.Parameter[B]) error
}

// getGradient retrieves the gradient for a parameter, or nil when the
// parameter was not part of the computation graph.
func getGradient[B tensor.Backend](param *nn.Parameter[B], grads map[*tensor.RawTensor]*tensor.RawTensor) *tensor.RawTensor {
	if param == nil {
		return nil
	}
	return grads[param.Tensor().Raw()]
}
