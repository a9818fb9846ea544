// Copyright 2025 Relic ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/relic-ml/relic/internal/tensor"
)

// Backend is the interface compute implementations satisfy. The
// shipped layers need element-wise addition with row broadcast, 2D
// matrix multiplication, reshape, transpose, and the three standard
// activations.
type Backend = tensor.Backend
