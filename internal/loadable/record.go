package loadable

import (
	"fmt"

	"github.com/relic-ml/relic/internal/tensor"
)

// FormatVersion is the version stamp written into every record. A
// record with a different stamp is rejected before any construction.
const FormatVersion = "1.0"

// Key is the stable, relocatable identifier of a concrete type: the
// package that registered it plus its qualified name.
type Key struct {
	Module   string `json:"module"`
	Qualname string `json:"qualname"`
}

// String returns "module.Qualname".
func (k Key) String() string {
	return k.Module + "." + k.Qualname
}

// Record is the serialized form of one loadable node: everything
// needed to re-invoke its constructor (Args, Kwargs) plus the mutable
// state to replay afterwards.
//
// State is nil for pure containers, whose state lives entirely in
// their children; every other node carries a state map, possibly
// empty. That distinction is deliberate and must stay consistent: nil
// means "no state slot at all", an empty map means "a state slot with
// nothing in it".
type Record struct {
	Format   string     `json:"format"`
	Module   string     `json:"module"`
	Qualname string     `json:"qualname"`
	Args     []*Value   `json:"args"`
	Kwargs   []MapEntry `json:"kwargs,omitempty"`

	// State holds the node's mutable state tensors in memory. It is
	// not marshaled directly: the artifact writer hoists the tensors
	// into the binary payload and records their names in StateRefs.
	State map[string]*tensor.RawTensor `json:"-"`

	// StateRefs maps state keys to tensor names in an artifact's
	// payload. Populated by the writer, consumed by the reader. Nil
	// whenever State is nil, so "no state slot" survives the JSON
	// round trip as null rather than collapsing into an empty map.
	StateRefs map[string]string `json:"state"`
}

// Key returns the record's type identifier.
func (r *Record) Key() Key {
	return Key{Module: r.Module, Qualname: r.Qualname}
}

// validate checks the record's required fields and its argument trees.
func (r *Record) validate(path string) error {
	if r.Format == "" {
		return &FormatError{Path: path, Reason: "missing format version"}
	}
	if r.Module == "" {
		return &FormatError{Path: path, Reason: "missing module"}
	}
	if r.Qualname == "" {
		return &FormatError{Path: path, Reason: "missing qualname"}
	}
	for i, arg := range r.Args {
		if err := arg.validate(fmt.Sprintf("%s.args[%d]", path, i)); err != nil {
			return err
		}
	}
	for _, kw := range r.Kwargs {
		if err := kw.Value.validate(fmt.Sprintf("%s.kwargs[%q]", path, kw.Key)); err != nil {
			return err
		}
	}
	return nil
}
