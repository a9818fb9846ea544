// Copyright 2025 Relic ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/relic-ml/relic/internal/tensor"
)

// RawTensor is the low-level tensor representation: a contiguous byte
// buffer with shape and type information. State dictionaries and
// artifacts exchange tensors in this form.
type RawTensor = tensor.RawTensor

// NewRaw creates a new zero-initialized raw tensor.
func NewRaw(shape Shape, dtype DataType) (*RawTensor, error) {
	return tensor.NewRaw(shape, dtype)
}

// RawFromBytes creates a raw tensor that takes ownership of data. The
// byte length must match shape and dtype exactly.
func RawFromBytes(data []byte, shape Shape, dtype DataType) (*RawTensor, error) {
	return tensor.RawFromBytes(data, shape, dtype)
}
