package nn

import (
	"fmt"
	"strings"

	"github.com/relic-ml/relic/internal/loadable"
	"github.com/relic-ml/relic/internal/tensor"
)

// Sequential is a container module that chains modules together: each
// module's output becomes the next module's input.
//
// Sequential serializes its children as its positional arguments and
// carries no state of its own; every tensor in the graph belongs to
// some leaf layer. Reconstruction therefore rebuilds the children
// first and passes them back to NewSequential.
//
// Example:
//
//	model := nn.NewSequential(
//	    nn.NewLinear(784, 128, backend),
//	    nn.NewReLU[*cpu.CPUBackend](),
//	    nn.NewLinear(128, 10, backend),
//	)
type Sequential[B tensor.Backend] struct {
	loadable.Base

	modules []Module[B]
}

// NewSequential creates a new Sequential container. Every child must
// participate in the save/restore protocol.
func NewSequential[B tensor.Backend](modules ...Module[B]) *Sequential[B] {
	for _, m := range modules {
		mustLoadable(m)
	}
	return &Sequential[B]{modules: modules}
}

// Forward applies all modules in sequence.
func (s *Sequential[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	output := input
	for _, module := range s.modules {
		output = module.Forward(output)
	}
	return output
}

// Parameters returns all trainable parameters from all modules.
func (s *Sequential[B]) Parameters() []*Parameter[B] {
	var params []*Parameter[B]
	for _, module := range s.modules {
		params = append(params, module.Parameters()...)
	}
	return params
}

// Append adds a module to the end of the sequence. A module that does
// not conform to the save/restore protocol is rejected and the
// container is left unmodified.
func (s *Sequential[B]) Append(module Module[B]) error {
	if _, err := asLoadable(module); err != nil {
		return err
	}
	s.modules = append(s.modules, module)
	return nil
}

// Extend appends several modules. All of them are validated before any
// is added, so a failed Extend leaves the container unmodified.
func (s *Sequential[B]) Extend(modules ...Module[B]) error {
	for _, m := range modules {
		if _, err := asLoadable(m); err != nil {
			return err
		}
	}
	s.modules = append(s.modules, modules...)
	return nil
}

// Insert places a module at the given index, shifting later modules
// right.
func (s *Sequential[B]) Insert(index int, module Module[B]) error {
	if index < 0 || index > len(s.modules) {
		return fmt.Errorf("Sequential.Insert: index %d out of range [0, %d]", index, len(s.modules))
	}
	if _, err := asLoadable(module); err != nil {
		return err
	}
	s.modules = append(s.modules, nil)
	copy(s.modules[index+1:], s.modules[index:])
	s.modules[index] = module
	return nil
}

// Len returns the number of modules in the sequence.
func (s *Sequential[B]) Len() int {
	return len(s.modules)
}

// At returns the module at the given index. Panics if out of bounds.
func (s *Sequential[B]) At(index int) Module[B] {
	if index < 0 || index >= len(s.modules) {
		panic("Sequential.At: index out of bounds")
	}
	return s.modules[index]
}

// StateDict returns the parameters of all children, prefixed with
// their index ("0.weight", "2.bias") to avoid collisions.
func (s *Sequential[B]) StateDict() map[string]*tensor.RawTensor {
	stateDict := make(map[string]*tensor.RawTensor)
	for i, module := range s.modules {
		for name, raw := range module.StateDict() {
			stateDict[fmt.Sprintf("%d.%s", i, name)] = raw
		}
	}
	return stateDict
}

// LoadStateDict loads index-prefixed parameters into the children.
func (s *Sequential[B]) LoadStateDict(stateDict map[string]*tensor.RawTensor) error {
	for i, module := range s.modules {
		prefix := fmt.Sprintf("%d.", i)
		moduleStateDict := make(map[string]*tensor.RawTensor)
		for key, raw := range stateDict {
			if strings.HasPrefix(key, prefix) {
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

// SerializeRecord serializes the container with its children as
// positional arguments and no state slot.
func (s *Sequential[B]) SerializeRecord() (*loadable.Record, error) {
	rec, err := loadable.NewContainerRecord(s)
	if err != nil {
		return nil, err
	}
	for i, module := range s.modules {
		ld, err := asLoadable(module)
		if err != nil {
			return nil, err
		}
		childRec, err := loadable.Serialize(ld)
		if err != nil {
			return nil, fmt.Errorf("child %d: %w", i, err)
		}
		rec.Args = append(rec.Args, loadable.RecordValue(childRec))
	}
	return rec, nil
}
