// Copyright 2025 Relic ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package loadable provides the public API of relic's save/restore
// engine: serializing module graphs into records, reconstructing them
// through the type registry, and persisting them as .relic artifacts.
//
// # Basic Usage
//
//	backend := cpu.New()
//	nn.MustRegisterTypes[*cpu.Backend]()
//
//	model := nn.NewSequential(
//	    nn.NewLinear(784, 128, backend),
//	    nn.NewReLU[*cpu.Backend](),
//	    nn.NewLinear(128, 10, backend),
//	)
//
//	if err := loadable.Save("model.relic", model, nil); err != nil {
//	    log.Fatal(err)
//	}
//
//	restored, err := loadable.Load("model.relic", backend)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	mlp := restored.(*nn.Sequential[*cpu.Backend])
package loadable

import (
	"reflect"

	"github.com/relic-ml/relic/internal/loadable"
)

// FormatVersion is the record format version stamp.
const FormatVersion = loadable.FormatVersion

// Core protocol

// Loadable is implemented by every node that participates in the
// save/restore protocol.
type Loadable = loadable.Loadable

// Base is embedded by loadable nodes; it records constructor
// arguments exactly once per instance.
type Base = loadable.Base

// Capture is the frozen snapshot of a node's constructor arguments.
type Capture = loadable.Capture

// Kwarg is a named constructor argument.
type Kwarg = loadable.Kwarg

// Keyer lets a node override the type tag used when it is serialized.
type Keyer = loadable.Keyer

// RecordSerializer lets a node take over its own record layout.
type RecordSerializer = loadable.RecordSerializer

// Records

// Key is the stable identifier of a registered type.
type Key = loadable.Key

// Record is the serialized form of one loadable node.
type Record = loadable.Record

// Value is one node of the intermediate representation.
type Value = loadable.Value

// Kind discriminates the variants of a Value.
type Kind = loadable.Kind

// Value kinds.
const (
	KindLeaf   = loadable.KindLeaf
	KindList   = loadable.KindList
	KindMap    = loadable.KindMap
	KindRecord = loadable.KindRecord
)

// Leaf is a typed primitive value.
type Leaf = loadable.Leaf

// LeafType discriminates the primitive payload of a Leaf.
type LeafType = loadable.LeafType

// Leaf types.
const (
	LeafNil    = loadable.LeafNil
	LeafBool   = loadable.LeafBool
	LeafInt    = loadable.LeafInt
	LeafFloat  = loadable.LeafFloat
	LeafString = loadable.LeafString
)

// MapEntry is one key/value pair of a map value.
type MapEntry = loadable.MapEntry

// Serialization

// Serialize converts a live node into a record.
func Serialize(node Loadable) (*Record, error) {
	return loadable.Serialize(node)
}

// Deserialize reconstructs a live node from a record.
func Deserialize(rec *Record, backend any) (Loadable, error) {
	return loadable.Deserialize(rec, backend)
}

// DeserializeAs reconstructs a record as the given type, overriding
// the record's own tag.
func DeserializeAs(rec *Record, backend any, hint Key) (Loadable, error) {
	return loadable.DeserializeAs(rec, backend, hint)
}

// Registry

// Register associates a type key with a factory.
func Register(key Key, typ reflect.Type, factory Factory) error {
	return loadable.Register(key, typ, factory)
}

// MustRegister is Register that panics on error.
func MustRegister(key Key, typ reflect.Type, factory Factory) {
	loadable.MustRegister(key, typ, factory)
}

// Factory constructs a node from deserialized arguments.
type Factory = loadable.Factory

// Resolve maps a type key back to its factory.
func Resolve(key Key) (Factory, error) {
	return loadable.Resolve(key)
}

// Registered reports whether a key is known.
func Registered(key Key) bool {
	return loadable.Registered(key)
}

// KeyOf returns the serialization tag for a node.
func KeyOf(node Loadable) (Key, bool) {
	return loadable.KeyOf(node)
}

// Artifacts

// Save serializes a node and writes it as a .relic artifact.
func Save(path string, node Loadable, metadata map[string]string) error {
	return loadable.Save(path, node, metadata)
}

// Load reads a .relic artifact and reconstructs the node it contains.
func Load(path string, backend any) (Loadable, error) {
	return loadable.Load(path, backend)
}

// LoadAs is Load with the root type fixed by the caller.
func LoadAs(path string, backend any, hint Key) (Loadable, error) {
	return loadable.LoadAs(path, backend, hint)
}

// LoadRecord reads a .relic artifact and returns the record tree
// without constructing anything.
func LoadRecord(path string) (*Record, error) {
	return loadable.LoadRecord(path)
}

// Checkpoints

// Checkpoint bundles a model with its training context.
type Checkpoint = loadable.Checkpoint

// SaveCheckpoint writes a checkpoint as a single .relic artifact.
func SaveCheckpoint(path string, cp *Checkpoint) error {
	return loadable.SaveCheckpoint(path, cp)
}

// LoadCheckpoint reads a checkpoint artifact and reconstructs the
// model and, when present, the optimizer.
func LoadCheckpoint(path string, backend any) (*Checkpoint, error) {
	return loadable.LoadCheckpoint(path, backend)
}

// Argument helpers for factories

// IntArg reads a positional argument as an int.
func IntArg(args []any, i int) (int, error) {
	return loadable.IntArg(args, i)
}

// FloatKwarg reads a named argument as a float64, with a default.
func FloatKwarg(kwargs map[string]any, name string, def float64) (float64, error) {
	return loadable.FloatKwarg(kwargs, name, def)
}

// Errors

// Sentinel errors for errors.Is classification.
var (
	ErrConformance       = loadable.ErrConformance
	ErrResolution        = loadable.ErrResolution
	ErrFormat            = loadable.ErrFormat
	ErrVersion           = loadable.ErrVersion
	ErrState             = loadable.ErrState
	ErrAlreadyRegistered = loadable.ErrAlreadyRegistered
)

// ConformanceError reports a value that cannot participate in the
// protocol.
type ConformanceError = loadable.ConformanceError

// ResolutionError reports a key that maps to no registered type.
type ResolutionError = loadable.ResolutionError

// FormatError reports a malformed record.
type FormatError = loadable.FormatError

// VersionError reports an unsupported record format version.
type VersionError = loadable.VersionError

// StateError reports a failure while replaying saved state.
type StateError = loadable.StateError
