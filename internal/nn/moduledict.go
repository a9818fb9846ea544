package nn

import (
	"fmt"

	"github.com/relic-ml/relic/internal/loadable"
	"github.com/relic-ml/relic/internal/tensor"
)

// ModuleDict holds named modules with stable iteration order: keys
// iterate in insertion order, not map order.
//
// ModuleDict serializes as a single positional argument: a map of its
// children's records. Reconstruction receives the children as a Go
// map, so a restored dict iterates in sorted key order rather than the
// original insertion order; state restoration is unaffected because
// every tensor is addressed by key.
type ModuleDict[B tensor.Backend] struct {
	loadable.Base

	keys    []string
	modules map[string]Module[B]
}

// NewModuleDict creates an empty ModuleDict.
func NewModuleDict[B tensor.Backend]() *ModuleDict[B] {
	return &ModuleDict[B]{modules: make(map[string]Module[B])}
}

// Set inserts or replaces the module under key. A non-conforming
// module is rejected and the dict is left unmodified.
func (d *ModuleDict[B]) Set(key string, module Module[B]) error {
	if key == "" {
		return fmt.Errorf("ModuleDict.Set: empty key")
	}
	if _, err := asLoadable(module); err != nil {
		return err
	}
	if _, exists := d.modules[key]; !exists {
		d.keys = append(d.keys, key)
	}
	d.modules[key] = module
	return nil
}

// Get returns the module under key.
func (d *ModuleDict[B]) Get(key string) (Module[B], bool) {
	m, ok := d.modules[key]
	return m, ok
}

// Delete removes the module under key. Removing an absent key is a
// no-op.
func (d *ModuleDict[B]) Delete(key string) {
	if _, ok := d.modules[key]; !ok {
		return
	}
	delete(d.modules, key)
	for i, k := range d.keys {
		if k == key {
			d.keys = append(d.keys[:i], d.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the keys in iteration order.
func (d *ModuleDict[B]) Keys() []string {
	out := make([]string, len(d.keys))
	copy(out, d.keys)
	return out
}

// Len returns the number of modules in the dict.
func (d *ModuleDict[B]) Len() int {
	return len(d.keys)
}

// Parameters returns all trainable parameters in key order.
func (d *ModuleDict[B]) Parameters() []*Parameter[B] {
	var params []*Parameter[B]
	for _, key := range d.keys {
		params = append(params, d.modules[key].Parameters()...)
	}
	return params
}

// StateDict returns the parameters of all children, prefixed with
// their key ("encoder.weight").
func (d *ModuleDict[B]) StateDict() map[string]*tensor.RawTensor {
	stateDict := make(map[string]*tensor.RawTensor)
	for _, key := range d.keys {
		for name, raw := range d.modules[key].StateDict() {
			stateDict[key+"."+name] = raw
		}
	}
	return stateDict
}

// LoadStateDict loads key-prefixed parameters into the children.
func (d *ModuleDict[B]) LoadStateDict(stateDict map[string]*tensor.RawTensor) error {
	for _, key := range d.keys {
		prefix := key + "."
		moduleStateDict := make(map[string]*tensor.RawTensor)
		for name, raw := range stateDict {
			if len(name) > len(prefix) && name[:len(prefix)] == prefix {
				moduleStateDict[name[len(prefix):]] = raw
			}
		}
		if len(moduleStateDict) > 0 {
			if err := d.modules[key].LoadStateDict(moduleStateDict); err != nil {
				return fmt.Errorf("failed to load module %q: %w", key, err)
			}
		}
	}
	return nil
}

// SerializeRecord serializes the dict as one positional argument
// holding the keyed child records, with no state slot.
func (d *ModuleDict[B]) SerializeRecord() (*loadable.Record, error) {
	rec, err := loadable.NewContainerRecord(d)
	if err != nil {
		return nil, err
	}
	entries := make([]loadable.MapEntry, 0, len(d.keys))
	for _, key := range d.keys {
		ld, err := asLoadable(d.modules[key])
		if err != nil {
			return nil, err
		}
		childRec, err := loadable.Serialize(ld)
		if err != nil {
			return nil, fmt.Errorf("child %q: %w", key, err)
		}
		entries = append(entries, loadable.MapEntry{Key: key, Value: loadable.RecordValue(childRec)})
	}
	rec.Args = append(rec.Args, loadable.MapValue(entries))
	return rec, nil
}
