package loadable

import (
	"fmt"
	"reflect"
	"sort"
)

// Capture is the frozen snapshot of the arguments a node's constructor
// was called with. It is created at most once per instance and is
// immutable afterwards.
type Capture struct {
	Args   []*Value
	Kwargs []MapEntry
}

// Kwarg is a named constructor argument.
type Kwarg struct {
	Name  string
	Value any
}

// Base is embedded by loadable nodes. It stores the capture record and
// enforces the exactly-once rule: when constructors delegate to other
// constructors, only the first (outermost, most specific) RecordArgs
// call sticks, so the recorded arguments are always those of the leaf
// constructor, never a delegate's.
type Base struct {
	capture *Capture
}

// LoadableCapture returns the capture record, or nil if none was
// recorded.
func (b *Base) LoadableCapture() *Capture {
	return b.capture
}

// RecordArgs records positional constructor arguments. See RecordCall.
func (b *Base) RecordArgs(args ...any) error {
	return b.RecordCall(args, nil)
}

// RecordCall records positional and named constructor arguments.
//
// Only the first call on an instance has any effect; later calls are
// silent no-ops. Arguments are converted into the intermediate
// representation immediately, so the snapshot is a structural copy:
// mutating an argument after construction cannot corrupt it. A value
// that is not a primitive, a Loadable, or a slice/string-keyed map of
// such values fails with a ConformanceError here, at capture time,
// rather than surfacing later at save time.
func (b *Base) RecordCall(args []any, kwargs []Kwarg) error {
	if b.capture != nil {
		return nil
	}

	captured := &Capture{Args: make([]*Value, 0, len(args))}
	for i, arg := range args {
		v, err := encodeValue(arg)
		if err != nil {
			return fmt.Errorf("argument %d: %w", i, err)
		}
		captured.Args = append(captured.Args, v)
	}
	for _, kw := range kwargs {
		v, err := encodeValue(kw.Value)
		if err != nil {
			return fmt.Errorf("argument %q: %w", kw.Name, err)
		}
		captured.Kwargs = append(captured.Kwargs, MapEntry{Key: kw.Name, Value: v})
	}

	b.capture = captured
	return nil
}

// encodeValue converts a Go value into the intermediate
// representation. Loadable nodes are serialized in full, so a nested
// module argument carries its own constructor arguments and state.
func encodeValue(v any) (*Value, error) {
	switch x := v.(type) {
	case nil:
		return LeafValue(nil)
	case Loadable:
		rec, err := Serialize(x)
		if err != nil {
			return nil, err
		}
		return RecordValue(rec), nil
	case *Value:
		return x, nil
	case []any:
		items := make([]*Value, 0, len(x))
		for i, item := range x {
			enc, err := encodeValue(item)
			if err != nil {
				return nil, fmt.Errorf("index %d: %w", i, err)
			}
			items = append(items, enc)
		}
		return ListValue(items), nil
	case map[string]any:
		// Go maps have no insertion order; sort keys so the
		// snapshot is deterministic.
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		entries := make([]MapEntry, 0, len(keys))
		for _, k := range keys {
			enc, err := encodeValue(x[k])
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", k, err)
			}
			entries = append(entries, MapEntry{Key: k, Value: enc})
		}
		return MapValue(entries), nil
	}

	if leaf, err := LeafValue(v); err == nil {
		return leaf, nil
	}

	// Generic slices (e.g. []int, []Loadable) via reflection.
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		items := make([]*Value, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			enc, err := encodeValue(rv.Index(i).Interface())
			if err != nil {
				return nil, fmt.Errorf("index %d: %w", i, err)
			}
			items = append(items, enc)
		}
		return ListValue(items), nil
	}

	return nil, &ConformanceError{
		TypeName: fmt.Sprintf("%T", v),
		Reason:   "not a primitive, Loadable, or container of either",
	}
}
