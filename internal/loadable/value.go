package loadable

import "fmt"

// Kind discriminates the variants of a Value.
type Kind string

// Value kinds. Exactly one payload field of Value is set per kind.
const (
	KindLeaf   Kind = "leaf"
	KindList   Kind = "list"
	KindMap    Kind = "map"
	KindRecord Kind = "record"
)

// LeafType discriminates the primitive payload of a Leaf.
type LeafType string

// Leaf types.
const (
	LeafNil    LeafType = "nil"
	LeafBool   LeafType = "bool"
	LeafInt    LeafType = "int"
	LeafFloat  LeafType = "float"
	LeafString LeafType = "string"
)

// Leaf is a typed primitive. Integers are widened to int64 and floats
// to float64, so values survive the JSON round trip without the
// int-vs-float ambiguity of untyped encodings.
type Leaf struct {
	Type  LeafType `json:"type"`
	Bool  bool     `json:"bool,omitempty"`
	Int   int64    `json:"int,omitempty"`
	Float float64  `json:"float,omitempty"`
	Str   string   `json:"str,omitempty"`
}

// MapEntry is one key/value pair of a map value. Entries are stored as
// an ordered list so the representation itself never depends on Go map
// iteration order.
type MapEntry struct {
	Key   string `json:"key"`
	Value *Value `json:"value"`
}

// Value is one node of the intermediate representation: a tagged union
// of a primitive leaf, an ordered list, an ordered string-keyed map, or
// a serialized module record. The explicit Kind tag means a map that
// happens to look like a record can never be mistaken for one.
type Value struct {
	Kind   Kind       `json:"kind"`
	Leaf   *Leaf      `json:"leaf,omitempty"`
	List   []*Value   `json:"list,omitempty"`
	Map    []MapEntry `json:"map,omitempty"`
	Record *Record    `json:"record,omitempty"`
}

// LeafValue wraps a primitive in a Value.
// Returns a ConformanceError for unsupported primitive types.
func LeafValue(v any) (*Value, error) {
	leaf := &Leaf{}
	switch x := v.(type) {
	case nil:
		leaf.Type = LeafNil
	case bool:
		leaf.Type = LeafBool
		leaf.Bool = x
	case int:
		leaf.Type = LeafInt
		leaf.Int = int64(x)
	case int8:
		leaf.Type = LeafInt
		leaf.Int = int64(x)
	case int16:
		leaf.Type = LeafInt
		leaf.Int = int64(x)
	case int32:
		leaf.Type = LeafInt
		leaf.Int = int64(x)
	case int64:
		leaf.Type = LeafInt
		leaf.Int = x
	case uint8:
		leaf.Type = LeafInt
		leaf.Int = int64(x)
	case uint16:
		leaf.Type = LeafInt
		leaf.Int = int64(x)
	case uint32:
		leaf.Type = LeafInt
		leaf.Int = int64(x)
	case float32:
		leaf.Type = LeafFloat
		leaf.Float = float64(x)
	case float64:
		leaf.Type = LeafFloat
		leaf.Float = x
	case string:
		leaf.Type = LeafString
		leaf.Str = x
	default:
		return nil, &ConformanceError{TypeName: fmt.Sprintf("%T", v), Reason: "not a supported primitive"}
	}
	return &Value{Kind: KindLeaf, Leaf: leaf}, nil
}

// ListValue wraps an ordered list of values.
func ListValue(items []*Value) *Value {
	if items == nil {
		items = []*Value{}
	}
	return &Value{Kind: KindList, List: items}
}

// MapValue wraps an ordered list of map entries.
func MapValue(entries []MapEntry) *Value {
	if entries == nil {
		entries = []MapEntry{}
	}
	return &Value{Kind: KindMap, Map: entries}
}

// RecordValue wraps a record.
func RecordValue(rec *Record) *Value {
	return &Value{Kind: KindRecord, Record: rec}
}

// validate checks the structural integrity of a value tree.
func (v *Value) validate(path string) error {
	if v == nil {
		return &FormatError{Path: path, Reason: "nil value"}
	}
	switch v.Kind {
	case KindLeaf:
		if v.Leaf == nil {
			return &FormatError{Path: path, Reason: "leaf value without leaf payload"}
		}
		switch v.Leaf.Type {
		case LeafNil, LeafBool, LeafInt, LeafFloat, LeafString:
			return nil
		default:
			return &FormatError{Path: path, Reason: fmt.Sprintf("unknown leaf type %q", v.Leaf.Type)}
		}
	case KindList:
		for i, item := range v.List {
			if err := item.validate(fmt.Sprintf("%s[%d]", path, i)); err != nil {
				return err
			}
		}
		return nil
	case KindMap:
		for _, entry := range v.Map {
			if err := entry.Value.validate(fmt.Sprintf("%s[%q]", path, entry.Key)); err != nil {
				return err
			}
		}
		return nil
	case KindRecord:
		if v.Record == nil {
			return &FormatError{Path: path, Reason: "record value without record payload"}
		}
		return v.Record.validate(path)
	default:
		return &FormatError{Path: path, Reason: fmt.Sprintf("unknown value kind %q", v.Kind)}
	}
}
