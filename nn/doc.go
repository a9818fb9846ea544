// Copyright 2025 Relic ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides the neural network layers and containers that
// ship with relic.
//
// # Overview
//
// This package contains:
//   - Layers: Linear
//   - Activations: ReLU, Sigmoid, Tanh
//   - Containers: Sequential, ModuleList, ModuleDict
//   - Utilities: Module interface, Parameter, Adapt
//   - Initialization: Xavier, Zeros, Ones, Randn
//
// Every module participates in the save/restore protocol: it records
// its constructor arguments at construction time and exposes its
// mutable state through StateDict/LoadStateDict, so whole module
// graphs round-trip through .relic artifacts.
//
// # Basic Usage
//
//	import (
//	    "github.com/relic-ml/relic/backend/cpu"
//	    "github.com/relic-ml/relic/loadable"
//	    "github.com/relic-ml/relic/nn"
//	)
//
//	func main() {
//	    backend := cpu.New()
//	    nn.MustRegisterTypes[*cpu.Backend]()
//
//	    model := nn.NewSequential(
//	        nn.NewLinear(784, 128, backend),
//	        nn.NewReLU[*cpu.Backend](),
//	        nn.NewLinear(128, 10, backend),
//	    )
//
//	    if err := loadable.Save("model.relic", model, nil); err != nil {
//	        log.Fatal(err)
//	    }
//	}
//
// # Registration
//
// Reconstruction resolves type tags through a process-wide registry.
// Call MustRegisterTypes for your backend type once at process start,
// before loading any artifact:
//
//	nn.MustRegisterTypes[*cpu.Backend]()
//
// # Adapting existing modules
//
// A module type written without the save/restore protocol can be made
// loadable after the fact:
//
//	key := loadable.Key{Module: "myproject/layers", Qualname: "Residual"}
//	nn.RegisterAdapter(key, func(backend *cpu.Backend, args []any, kwargs map[string]any) (nn.Module[*cpu.Backend], error) {
//	    width, err := loadable.IntArg(args, 0)
//	    if err != nil {
//	        return nil, err
//	    }
//	    return NewResidual(width, backend), nil
//	})
//
//	wrapped, err := nn.Adapt(key, NewResidual(128, backend), 128)
package nn
