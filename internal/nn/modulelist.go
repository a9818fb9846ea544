package nn

import (
	"fmt"

	"github.com/relic-ml/relic/internal/loadable"
	"github.com/relic-ml/relic/internal/tensor"
)

// ModuleList holds an ordered list of modules without imposing a
// forward pass. Use it when a module owns a variable number of
// children it wires together itself.
//
// ModuleList serializes as a single positional argument: the list of
// its children's records, in order. Order is preserved through the
// save/restore round trip.
type ModuleList[B tensor.Backend] struct {
	loadable.Base

	modules []Module[B]
}

// NewModuleList creates a ModuleList from the given modules.
func NewModuleList[B tensor.Backend](modules ...Module[B]) *ModuleList[B] {
	for _, m := range modules {
		mustLoadable(m)
	}
	return &ModuleList[B]{modules: modules}
}

// Append adds a module to the end of the list.
func (l *ModuleList[B]) Append(module Module[B]) error {
	if _, err := asLoadable(module); err != nil {
		return err
	}
	l.modules = append(l.modules, module)
	return nil
}

// Extend appends several modules, validating all of them before any is
// added.
func (l *ModuleList[B]) Extend(modules ...Module[B]) error {
	for _, m := range modules {
		if _, err := asLoadable(m); err != nil {
			return err
		}
	}
	l.modules = append(l.modules, modules...)
	return nil
}

// Insert places a module at the given index, shifting later modules
// right.
func (l *ModuleList[B]) Insert(index int, module Module[B]) error {
	if index < 0 || index > len(l.modules) {
		return fmt.Errorf("ModuleList.Insert: index %d out of range [0, %d]", index, len(l.modules))
	}
	if _, err := asLoadable(module); err != nil {
		return err
	}
	l.modules = append(l.modules, nil)
	copy(l.modules[index+1:], l.modules[index:])
	l.modules[index] = module
	return nil
}

// Set replaces the module at the given index.
func (l *ModuleList[B]) Set(index int, module Module[B]) error {
	if index < 0 || index >= len(l.modules) {
		return fmt.Errorf("ModuleList.Set: index %d out of range [0, %d)", index, len(l.modules))
	}
	if _, err := asLoadable(module); err != nil {
		return err
	}
	l.modules[index] = module
	return nil
}

// Len returns the number of modules in the list.
func (l *ModuleList[B]) Len() int {
	return len(l.modules)
}

// At returns the module at the given index. Panics if out of bounds.
func (l *ModuleList[B]) At(index int) Module[B] {
	if index < 0 || index >= len(l.modules) {
		panic("ModuleList.At: index out of bounds")
	}
	return l.modules[index]
}

// Parameters returns all trainable parameters from all modules.
func (l *ModuleList[B]) Parameters() []*Parameter[B] {
	var params []*Parameter[B]
	for _, module := range l.modules {
		params = append(params, module.Parameters()...)
	}
	return params
}

// StateDict returns the parameters of all children, prefixed with
// their index.
func (l *ModuleList[B]) StateDict() map[string]*tensor.RawTensor {
	stateDict := make(map[string]*tensor.RawTensor)
	for i, module := range l.modules {
		for name, raw := range module.StateDict() {
			stateDict[fmt.Sprintf("%d.%s", i, name)] = raw
		}
	}
	return stateDict
}

// LoadStateDict loads index-prefixed parameters into the children.
func (l *ModuleList[B]) LoadStateDict(stateDict map[string]*tensor.RawTensor) error {
	for i, module := range l.modules {
		prefix := fmt.Sprintf("%d.", i)
		moduleStateDict := make(map[string]*tensor.RawTensor)
		for key, raw := range stateDict {
			if len(key) > len(prefix) && key[:len(prefix)] == prefix {
				moduleStateDict[key[len(prefix):]] = raw
			}
		}
		if len(moduleStateDict) > 0 {
			if err := module.LoadStateDict(moduleStateDict); err != nil {
				return fmt.Errorf("failed to load module %d: %w", i, err)
			}
		}
	}
	return nil
}

// SerializeRecord serializes the list as one positional argument
// holding the ordered child records, with no state slot.
func (l *ModuleList[B]) SerializeRecord() (*loadable.Record, error) {
	rec, err := loadable.NewContainerRecord(l)
	if err != nil {
		return nil, err
	}
	items := make([]*loadable.Value, 0, len(l.modules))
	for i, module := range l.modules {
		ld, err := asLoadable(module)
		if err != nil {
			return nil, err
		}
		childRec, err := loadable.Serialize(ld)
		if err != nil {
			return nil, fmt.Errorf("child %d: %w", i, err)
		}
		items = append(items, loadable.RecordValue(childRec))
	}
	rec.Args = append(rec.Args, loadable.ListValue(items))
	return rec, nil
}
