// Package nn implements the neural network layers and containers that
// ship with relic.
//
// Every module here participates in the save/restore protocol: layers
// record their constructor arguments at construction time, containers
// serialize their children in place of arguments, and all of them
// expose their mutable state through StateDict/LoadStateDict. A module
// graph can therefore be written to a .relic artifact and rebuilt,
// layer by layer, in a fresh process.
package nn

import (
	"github.com/relic-ml/relic/internal/tensor"
)

// Module is the base interface for all neural network components.
//
// Modules compose into graphs:
//
//	model := nn.NewSequential(
//	    nn.NewLinear(784, 128, backend),
//	    nn.NewReLU[*cpu.CPUBackend](),
//	    nn.NewLinear(128, 10, backend),
//	)
//
// Type parameter B must satisfy the tensor.Backend interface.
type Module[B tensor.Backend] interface {
	// Forward computes the output of the module given an input tensor.
	Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B]

	// Parameters returns all trainable parameters of this module,
	// including nested module parameters. Empty for modules without
	// trainable parameters (e.g. activations).
	Parameters() []*Parameter[B]

	// StateDict returns the module's mutable state tensors keyed by
	// name. Containers prefix child entries with the child's position.
	StateDict() map[string]*tensor.RawTensor

	// LoadStateDict replays saved state into the module. Returns an
	// error on missing entries or shape/dtype mismatches.
	LoadStateDict(stateDict map[string]*tensor.RawTensor) error
}
