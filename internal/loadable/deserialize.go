package loadable

import "fmt"

// Deserialize reconstructs a live node from a record: resolve the
// type, recursively rebuild the constructor arguments, invoke the
// factory, then replay the saved mutable state. Every call produces a
// fresh, independent graph.
func Deserialize(rec *Record, backend any) (Loadable, error) {
	return deserializeRecord(rec, backend, nil, "root")
}

// DeserializeAs is Deserialize with the type fixed by the caller: the
// record is loaded as `hint` regardless of the type tag it carries.
// This is the "load into this exact class" path.
func DeserializeAs(rec *Record, backend any, hint Key) (Loadable, error) {
	return deserializeRecord(rec, backend, &hint, "root")
}

func deserializeRecord(rec *Record, backend any, hint *Key, path string) (Loadable, error) {
	if rec == nil {
		return nil, &FormatError{Path: path, Reason: "nil record"}
	}

	// The version gate runs before anything is constructed.
	if rec.Format != FormatVersion {
		return nil, &VersionError{Got: rec.Format, Want: FormatVersion}
	}
	if err := rec.validate(path); err != nil {
		return nil, err
	}

	key := rec.Key()
	if hint != nil {
		key = *hint
	}
	factory, err := Resolve(key)
	if err != nil {
		if resErr, ok := err.(*ResolutionError); ok {
			resErr.Path = path
		}
		return nil, err
	}

	args := make([]any, 0, len(rec.Args))
	for i, v := range rec.Args {
		decoded, err := decodeValue(v, backend, fmt.Sprintf("%s.args[%d]", path, i))
		if err != nil {
			return nil, err
		}
		args = append(args, decoded)
	}

	var kwargs map[string]any
	if len(rec.Kwargs) > 0 {
		kwargs = make(map[string]any, len(rec.Kwargs))
		for _, kw := range rec.Kwargs {
			decoded, err := decodeValue(kw.Value, backend, fmt.Sprintf("%s.kwargs[%q]", path, kw.Key))
			if err != nil {
				return nil, err
			}
			kwargs[kw.Key] = decoded
		}
	}

	node, err := factory(backend, args, kwargs)
	if err != nil {
		return nil, fmt.Errorf("%s: constructing %s: %w", path, key, err)
	}

	if rec.State != nil {
		if err := node.LoadStateDict(rec.State); err != nil {
			return nil, &StateError{Key: key, Path: path, Err: err}
		}
	}

	return node, nil
}

// decodeValue converts an intermediate-representation value back into
// a Go value: leaves become primitives, lists become []any, maps
// become map[string]any, and records become reconstructed nodes.
func decodeValue(v *Value, backend any, path string) (any, error) {
	if v == nil {
		return nil, &FormatError{Path: path, Reason: "nil value"}
	}
	switch v.Kind {
	case KindLeaf:
		return decodeLeaf(v.Leaf, path)
	case KindList:
		items := make([]any, 0, len(v.List))
		for i, item := range v.List {
			decoded, err := decodeValue(item, backend, fmt.Sprintf("%s[%d]", path, i))
			if err != nil {
				return nil, err
			}
			items = append(items, decoded)
		}
		return items, nil
	case KindMap:
		entries := make(map[string]any, len(v.Map))
		for _, entry := range v.Map {
			decoded, err := decodeValue(entry.Value, backend, fmt.Sprintf("%s[%q]", path, entry.Key))
			if err != nil {
				return nil, err
			}
			entries[entry.Key] = decoded
		}
		return entries, nil
	case KindRecord:
		return deserializeRecord(v.Record, backend, nil, path)
	default:
		return nil, &FormatError{Path: path, Reason: fmt.Sprintf("unknown value kind %q", v.Kind)}
	}
}

func decodeLeaf(leaf *Leaf, path string) (any, error) {
	if leaf == nil {
		return nil, &FormatError{Path: path, Reason: "leaf value without leaf payload"}
	}
	switch leaf.Type {
	case LeafNil:
		return nil, nil
	case LeafBool:
		return leaf.Bool, nil
	case LeafInt:
		return leaf.Int, nil
	case LeafFloat:
		return leaf.Float, nil
	case LeafString:
		return leaf.Str, nil
	default:
		return nil, &FormatError{Path: path, Reason: fmt.Sprintf("unknown leaf type %q", leaf.Type)}
	}
}

// IntArg reads a positional argument as an int. Integer leaves decode
// as int64; factories use this to narrow them.
func IntArg(args []any, i int) (int, error) {
	if i >= len(args) {
		return 0, &FormatError{Reason: fmt.Sprintf("missing argument %d", i)}
	}
	n, ok := args[i].(int64)
	if !ok {
		return 0, &FormatError{Reason: fmt.Sprintf("argument %d: expected int, got %T", i, args[i])}
	}
	return int(n), nil
}

// FloatKwarg reads a named argument as a float64, with a default when
// the name is absent.
func FloatKwarg(kwargs map[string]any, name string, def float64) (float64, error) {
	v, ok := kwargs[name]
	if !ok {
		return def, nil
	}
	f, ok := v.(float64)
	if !ok {
		return 0, &FormatError{Reason: fmt.Sprintf("argument %q: expected float, got %T", name, v)}
	}
	return f, nil
}
