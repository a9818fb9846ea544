package loadable

import (
	"encoding/json"
	"fmt"

	"k8s.io/klog/v2"

	"github.com/relic-ml/relic/internal/serialization"
	"github.com/relic-ml/relic/internal/tensor"
)

// Save serializes a node and writes it as a .relic artifact.
//
// The record tree goes into the artifact header as JSON; the state
// tensors are hoisted out of the tree into the binary payload, named
// by their position in the graph, and the tree keeps references to
// them. metadata may be nil.
func Save(path string, node Loadable, metadata map[string]string) error {
	if _, isCustom := node.(RecordSerializer); !isCustom && node.LoadableCapture() == nil {
		klog.Warningf("loadable: %T recorded no constructor arguments; it will be reconstructed with an empty argument list", node)
	}

	rec, err := Serialize(node)
	if err != nil {
		return err
	}

	root, tensors, err := encodeRoot(rec, "model")
	if err != nil {
		return err
	}

	writer, err := serialization.NewWriter(path)
	if err != nil {
		return err
	}
	defer writer.Close()

	header := serialization.Header{
		ModelType: rec.Qualname,
		Root:      root,
		Metadata:  metadata,
	}
	if err := writer.WriteArtifact(header, tensors); err != nil {
		return fmt.Errorf("failed to write artifact: %w", err)
	}
	return writer.Close()
}

// Load reads a .relic artifact and reconstructs the node it contains.
func Load(path string, backend any) (Loadable, error) {
	rec, err := LoadRecord(path)
	if err != nil {
		return nil, err
	}
	return Deserialize(rec, backend)
}

// LoadAs is Load with the root type fixed by the caller.
func LoadAs(path string, backend any, hint Key) (Loadable, error) {
	rec, err := LoadRecord(path)
	if err != nil {
		return nil, err
	}
	return DeserializeAs(rec, backend, hint)
}

// LoadRecord reads a .relic artifact and returns the record tree with
// state tensors re-attached, without constructing anything. Callers
// that want to inspect an artifact or defer construction use this.
func LoadRecord(path string) (*Record, error) {
	reader, err := serialization.NewReader(path)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	root := reader.Root()
	if root == nil {
		return nil, &FormatError{Path: "root", Reason: "artifact carries no module graph"}
	}

	tensors, err := reader.ReadTensors()
	if err != nil {
		return nil, err
	}

	return decodeRoot(root, tensors, "model")
}

// encodeRoot marshals a record tree for an artifact header: state
// tensors are pulled out into a flat name-to-tensor map and the tree
// keeps name references in their place.
func encodeRoot(rec *Record, prefix string) (json.RawMessage, map[string]*tensor.RawTensor, error) {
	tensors := make(map[string]*tensor.RawTensor)
	flattenState(rec, prefix, tensors)

	root, err := json.Marshal(rec)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal module graph: %w", err)
	}
	return root, tensors, nil
}

// decodeRoot unmarshals a record tree from an artifact header and
// re-attaches its state tensors from the payload map.
func decodeRoot(root json.RawMessage, tensors map[string]*tensor.RawTensor, prefix string) (*Record, error) {
	var rec Record
	if err := json.Unmarshal(root, &rec); err != nil {
		return nil, &FormatError{Path: prefix, Reason: fmt.Sprintf("invalid module graph JSON: %v", err)}
	}
	if err := attachState(&rec, tensors, prefix); err != nil {
		return nil, err
	}
	return &rec, nil
}

// flattenState walks a record tree and moves every state tensor into
// the flat map, keyed "<graph path>.<state key>". The record keeps the
// name in StateRefs.
func flattenState(rec *Record, path string, out map[string]*tensor.RawTensor) {
	if rec.State != nil {
		rec.StateRefs = make(map[string]string, len(rec.State))
		for key, raw := range rec.State {
			name := path + "." + key
			out[name] = raw
			rec.StateRefs[key] = name
		}
	}
	for i, arg := range rec.Args {
		flattenValueState(arg, fmt.Sprintf("%s.args.%d", path, i), out)
	}
	for _, kw := range rec.Kwargs {
		flattenValueState(kw.Value, path+".kwargs."+kw.Key, out)
	}
}

func flattenValueState(v *Value, path string, out map[string]*tensor.RawTensor) {
	if v == nil {
		return
	}
	switch v.Kind {
	case KindList:
		for i, item := range v.List {
			flattenValueState(item, fmt.Sprintf("%s.%d", path, i), out)
		}
	case KindMap:
		for _, entry := range v.Map {
			flattenValueState(entry.Value, path+"."+entry.Key, out)
		}
	case KindRecord:
		flattenState(v.Record, path, out)
	}
}

// attachState is the inverse of flattenState: every StateRefs entry is
// resolved against the payload map and placed back into State.
func attachState(rec *Record, tensors map[string]*tensor.RawTensor, path string) error {
	if rec.StateRefs != nil {
		rec.State = make(map[string]*tensor.RawTensor, len(rec.StateRefs))
		for key, name := range rec.StateRefs {
			raw, ok := tensors[name]
			if !ok {
				return &FormatError{Path: path, Reason: fmt.Sprintf("state %q references missing tensor %q", key, name)}
			}
			rec.State[key] = raw
		}
	}
	for i, arg := range rec.Args {
		if err := attachValueState(arg, tensors, fmt.Sprintf("%s.args.%d", path, i)); err != nil {
			return err
		}
	}
	for _, kw := range rec.Kwargs {
		if err := attachValueState(kw.Value, tensors, path+".kwargs."+kw.Key); err != nil {
			return err
		}
	}
	return nil
}

func attachValueState(v *Value, tensors map[string]*tensor.RawTensor, path string) error {
	if v == nil {
		return nil
	}
	switch v.Kind {
	case KindList:
		for i, item := range v.List {
			if err := attachValueState(item, tensors, fmt.Sprintf("%s.%d", path, i)); err != nil {
				return err
			}
		}
	case KindMap:
		for _, entry := range v.Map {
			if err := attachValueState(entry.Value, tensors, path+"."+entry.Key); err != nil {
				return err
			}
		}
	case KindRecord:
		return attachState(v.Record, tensors, path)
	}
	return nil
}
