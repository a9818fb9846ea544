// Copyright 2025 Relic ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim provides optimizers for training relic models.
//
// # Overview
//
//   - SGD: stochastic gradient descent with optional momentum
//   - Adam: adaptive moment estimation with bias correction
//
// Optimizers participate in the save/restore protocol. Their capture
// records hold hyperparameters only; the parameter list is excluded,
// so a checkpointed optimizer restores its running statistics and is
// then re-linked to the restored model:
//
//	cp, err := loadable.LoadCheckpoint("train.relic", backend)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	model := cp.Model.(*nn.Sequential[*cpu.Backend])
//	opt := cp.Optimizer.(*optim.Adam[*cpu.Backend])
//	if err := opt.SetParams(model.Parameters()); err != nil {
//	    log.Fatal(err)
//	}
package optim
