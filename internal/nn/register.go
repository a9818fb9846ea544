package nn

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/relic-ml/relic/internal/loadable"
	"github.com/relic-ml/relic/internal/tensor"
)

// ModulePath is the namespace all built-in layer types register under.
const ModulePath = "github.com/relic-ml/relic/nn"

// RegisterTypes registers the package's layers and containers for the
// backend type B. Call once at process start, before any artifact is
// loaded; the registry is process-wide, so a second backend type needs
// its own keys.
func RegisterTypes[B tensor.Backend]() error {
	type registration struct {
		name    string
		typ     reflect.Type
		factory loadable.Factory
	}

	regs := []registration{
		{
			name: "Linear",
			typ:  reflect.TypeOf((*Linear[B])(nil)),
			factory: func(backend any, args []any, kwargs map[string]any) (loadable.Loadable, error) {
				b, err := backendAs[B](backend)
				if err != nil {
					return nil, err
				}
				in, err := loadable.IntArg(args, 0)
				if err != nil {
					return nil, err
				}
				out, err := loadable.IntArg(args, 1)
				if err != nil {
					return nil, err
				}
				return NewLinear(in, out, b), nil
			},
		},
		{
			name: "ReLU",
			typ:  reflect.TypeOf((*ReLU[B])(nil)),
			factory: func(backend any, args []any, kwargs map[string]any) (loadable.Loadable, error) {
				return NewReLU[B](), nil
			},
		},
		{
			name: "Sigmoid",
			typ:  reflect.TypeOf((*Sigmoid[B])(nil)),
			factory: func(backend any, args []any, kwargs map[string]any) (loadable.Loadable, error) {
				return NewSigmoid[B](), nil
			},
		},
		{
			name: "Tanh",
			typ:  reflect.TypeOf((*Tanh[B])(nil)),
			factory: func(backend any, args []any, kwargs map[string]any) (loadable.Loadable, error) {
				return NewTanh[B](), nil
			},
		},
		{
			name: "Sequential",
			typ:  reflect.TypeOf((*Sequential[B])(nil)),
			factory: func(backend any, args []any, kwargs map[string]any) (loadable.Loadable, error) {
				children := make([]Module[B], 0, len(args))
				for i, arg := range args {
					child, err := childModule[B](arg, fmt.Sprintf("child %d", i))
					if err != nil {
						return nil, err
					}
					children = append(children, child)
				}
				return NewSequential(children...), nil
			},
		},
		{
			name: "ModuleList",
			typ:  reflect.TypeOf((*ModuleList[B])(nil)),
			factory: func(backend any, args []any, kwargs map[string]any) (loadable.Loadable, error) {
				items, err := listArg(args)
				if err != nil {
					return nil, err
				}
				children := make([]Module[B], 0, len(items))
				for i, item := range items {
					child, err := childModule[B](item, fmt.Sprintf("child %d", i))
					if err != nil {
						return nil, err
					}
					children = append(children, child)
				}
				return NewModuleList(children...), nil
			},
		},
		{
			name: "ModuleDict",
			typ:  reflect.TypeOf((*ModuleDict[B])(nil)),
			factory: func(backend any, args []any, kwargs map[string]any) (loadable.Loadable, error) {
				entries, err := mapArg(args)
				if err != nil {
					return nil, err
				}
				keys := make([]string, 0, len(entries))
				for key := range entries {
					keys = append(keys, key)
				}
				sort.Strings(keys)

				d := NewModuleDict[B]()
				for _, key := range keys {
					child, err := childModule[B](entries[key], fmt.Sprintf("child %q", key))
					if err != nil {
						return nil, err
					}
					if err := d.Set(key, child); err != nil {
						return nil, err
					}
				}
				return d, nil
			},
		},
	}

	for _, reg := range regs {
		key := loadable.Key{Module: ModulePath, Qualname: reg.name}
		if err := loadable.Register(key, reg.typ, reg.factory); err != nil {
			return err
		}
	}
	return nil
}

// MustRegisterTypes is RegisterTypes that panics on error. Intended
// for process-start registration blocks.
func MustRegisterTypes[B tensor.Backend]() {
	if err := RegisterTypes[B](); err != nil {
		panic(err)
	}
}

func backendAs[B tensor.Backend](backend any) (B, error) {
	b, ok := backend.(B)
	if !ok {
		var zero B
		return zero, fmt.Errorf("backend %T does not satisfy %T", backend, zero)
	}
	return b, nil
}

func childModule[B tensor.Backend](v any, what string) (Module[B], error) {
	m, ok := v.(Module[B])
	if !ok {
		return nil, fmt.Errorf("%s: expected a module, got %T", what, v)
	}
	return m, nil
}

func listArg(args []any) ([]any, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("expected 1 argument, got %d", len(args))
	}
	items, ok := args[0].([]any)
	if !ok {
		return nil, fmt.Errorf("expected a list argument, got %T", args[0])
	}
	return items, nil
}

func mapArg(args []any) (map[string]any, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("expected 1 argument, got %d", len(args))
	}
	entries, ok := args[0].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("expected a map argument, got %T", args[0])
	}
	return entries, nil
}
