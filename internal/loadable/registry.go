package loadable

import (
	"fmt"
	"reflect"
	"sync"

	"k8s.io/klog/v2"
)

// Factory constructs a node from deserialized arguments. The backend
// is whatever compute handle the caller passed to Deserialize; it is
// supplied at load time and is never part of the capture record.
type Factory func(backend any, args []any, kwargs map[string]any) (Loadable, error)

type registryEntry struct {
	key     Key
	factory Factory
}

// registry is the process-wide type table. It is populated by explicit
// Register calls at startup and is read-mostly afterwards, so an
// RWMutex is enough to share it between concurrent loads.
var registry = struct {
	mu     sync.RWMutex
	byKey  map[Key]*registryEntry
	byType map[reflect.Type]Key
}{
	byKey:  make(map[Key]*registryEntry),
	byType: make(map[reflect.Type]Key),
}

// Register associates a type key with a factory. typ, when non-nil, is
// the concrete Go type the serializer should tag with this key
// (typically reflect.TypeOf a pointer to the zero struct). Adapter
// registrations pass a nil typ: adapted instances report their key
// through the Keyer interface instead.
//
// Registering an already-registered key or type is an error; the type
// namespace mirrors an import path and must stay unambiguous.
func Register(key Key, typ reflect.Type, factory Factory) error {
	if key.Module == "" || key.Qualname == "" {
		return fmt.Errorf("register %v: module and qualname must be non-empty", key)
	}
	if factory == nil {
		return fmt.Errorf("register %v: nil factory", key)
	}

	registry.mu.Lock()
	defer registry.mu.Unlock()

	if _, ok := registry.byKey[key]; ok {
		return fmt.Errorf("%w: %s", ErrAlreadyRegistered, key)
	}
	if typ != nil {
		if prev, ok := registry.byType[typ]; ok {
			return fmt.Errorf("%w: type %s already registered as %s", ErrAlreadyRegistered, typ, prev)
		}
	}

	registry.byKey[key] = &registryEntry{key: key, factory: factory}
	if typ != nil {
		registry.byType[typ] = key
	}
	klog.V(2).Infof("loadable: registered %s", key)
	return nil
}

// MustRegister is Register that panics on error. Intended for
// process-start registration blocks.
func MustRegister(key Key, typ reflect.Type, factory Factory) {
	if err := Register(key, typ, factory); err != nil {
		panic(err)
	}
}

// Resolve maps a type key back to its factory.
func Resolve(key Key) (Factory, error) {
	registry.mu.RLock()
	defer registry.mu.RUnlock()

	entry, ok := registry.byKey[key]
	if !ok {
		return nil, &ResolutionError{Key: key}
	}
	return entry.factory, nil
}

// Registered reports whether a key is known.
func Registered(key Key) bool {
	registry.mu.RLock()
	defer registry.mu.RUnlock()
	_, ok := registry.byKey[key]
	return ok
}

// KeyOf returns the serialization tag for a node: the node's own
// Keyer override when present (adapters), otherwise the key its
// concrete type was registered under.
func KeyOf(node Loadable) (Key, bool) {
	if keyer, ok := node.(Keyer); ok {
		return keyer.LoadableKey(), true
	}

	registry.mu.RLock()
	defer registry.mu.RUnlock()
	key, ok := registry.byType[reflect.TypeOf(node)]
	return key, ok
}

// resetRegistry clears the registry. Tests only.
func resetRegistry() {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	registry.byKey = make(map[Key]*registryEntry)
	registry.byType = make(map[reflect.Type]Key)
}
