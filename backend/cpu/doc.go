// Copyright 2025 Relic ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides the CPU compute backend.
//
// The CPU backend is a pure Go implementation of tensor.Backend and
// is the default backend for loading and running .relic artifacts.
//
// Example:
//
//	backend := cpu.New()
//	nn.MustRegisterTypes[*cpu.Backend]()
//	model, err := loadable.Load("model.relic", backend)
package cpu
