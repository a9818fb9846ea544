// Copyright 2025 Relic ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"github.com/relic-ml/relic/internal/loadable"
	"github.com/relic-ml/relic/internal/nn"
	"github.com/relic-ml/relic/internal/tensor"
)

// ModulePath is the namespace the built-in layer types register under.
const ModulePath = nn.ModulePath

// Module is the common interface for all neural network modules.
type Module[B tensor.Backend] = nn.Module[B]

// Parameter represents a trainable parameter in a neural network.
type Parameter[B tensor.Backend] = nn.Parameter[B]

// NewParameter creates a new parameter with the given name and tensor.
func NewParameter[B tensor.Backend](name string, t *tensor.Tensor[float32, B]) *Parameter[B] {
	return nn.NewParameter(name, t)
}

// Layers

// Linear represents a fully connected (dense) layer.
type Linear[B tensor.Backend] = nn.Linear[B]

// NewLinear creates a new linear layer with Xavier initialization.
//
// Example:
//
//	backend := cpu.New()
//	layer := nn.NewLinear(784, 128, backend)
func NewLinear[B tensor.Backend](inFeatures, outFeatures int, backend B) *Linear[B] {
	return nn.NewLinear(inFeatures, outFeatures, backend)
}

// Activations

// ReLU represents the Rectified Linear Unit activation function.
type ReLU[B tensor.Backend] = nn.ReLU[B]

// NewReLU creates a new ReLU activation layer.
func NewReLU[B tensor.Backend]() *ReLU[B] {
	return nn.NewReLU[B]()
}

// Sigmoid represents the sigmoid activation function.
type Sigmoid[B tensor.Backend] = nn.Sigmoid[B]

// NewSigmoid creates a new Sigmoid activation layer.
func NewSigmoid[B tensor.Backend]() *Sigmoid[B] {
	return nn.NewSigmoid[B]()
}

// Tanh represents the hyperbolic tangent activation function.
type Tanh[B tensor.Backend] = nn.Tanh[B]

// NewTanh creates a new Tanh activation layer.
func NewTanh[B tensor.Backend]() *Tanh[B] {
	return nn.NewTanh[B]()
}

// Containers

// Sequential chains modules so each module's output feeds the next.
type Sequential[B tensor.Backend] = nn.Sequential[B]

// NewSequential creates a new Sequential container.
//
// Example:
//
//	model := nn.NewSequential(
//	    nn.NewLinear(784, 128, backend),
//	    nn.NewReLU[*cpu.Backend](),
//	    nn.NewLinear(128, 10, backend),
//	)
func NewSequential[B tensor.Backend](modules ...Module[B]) *Sequential[B] {
	return nn.NewSequential(modules...)
}

// ModuleList holds an ordered list of modules without imposing a
// forward pass.
type ModuleList[B tensor.Backend] = nn.ModuleList[B]

// NewModuleList creates a ModuleList from the given modules.
func NewModuleList[B tensor.Backend](modules ...Module[B]) *ModuleList[B] {
	return nn.NewModuleList(modules...)
}

// ModuleDict holds named modules with stable iteration order.
type ModuleDict[B tensor.Backend] = nn.ModuleDict[B]

// NewModuleDict creates an empty ModuleDict.
func NewModuleDict[B tensor.Backend]() *ModuleDict[B] {
	return nn.NewModuleDict[B]()
}

// Adapters

// Adapted wraps a module type written without the save/restore
// protocol and makes it loadable.
type Adapted[B tensor.Backend] = nn.Adapted[B]

// Adapt wraps inner as a loadable module under key, recording args as
// its constructor arguments.
func Adapt[B tensor.Backend](key loadable.Key, inner Module[B], args ...any) (*Adapted[B], error) {
	return nn.Adapt(key, inner, args...)
}

// RegisterAdapter registers a factory for an adapted module type.
func RegisterAdapter[B tensor.Backend](key loadable.Key, construct func(backend B, args []any, kwargs map[string]any) (Module[B], error)) error {
	return nn.RegisterAdapter(key, construct)
}

// Registration

// RegisterTypes registers the package's layers and containers for the
// backend type B. Call once at process start, before loading any
// artifact.
func RegisterTypes[B tensor.Backend]() error {
	return nn.RegisterTypes[B]()
}

// MustRegisterTypes is RegisterTypes that panics on error.
func MustRegisterTypes[B tensor.Backend]() {
	nn.MustRegisterTypes[B]()
}

// Initialization

// Xavier initializes a tensor with the Glorot uniform distribution.
func Xavier[B tensor.Backend](fanIn, fanOut int, shape tensor.Shape, backend B) *tensor.Tensor[float32, B] {
	return nn.Xavier(fanIn, fanOut, shape, backend)
}

// Zeros creates a zero-filled tensor.
func Zeros[B tensor.Backend](shape tensor.Shape, backend B) *tensor.Tensor[float32, B] {
	return nn.Zeros(shape, backend)
}

// Ones creates a tensor filled with ones.
func Ones[B tensor.Backend](shape tensor.Shape, backend B) *tensor.Tensor[float32, B] {
	return nn.Ones(shape, backend)
}

// Randn creates a tensor with values drawn from N(0, 1).
func Randn[B tensor.Backend](shape tensor.Shape, backend B) *tensor.Tensor[float32, B] {
	return nn.Randn(shape, backend)
}
