package loadable

import (
	"encoding/json"
	"fmt"

	"github.com/relic-ml/relic/internal/serialization"
	"github.com/relic-ml/relic/internal/tensor"
)

// Checkpoint bundles a model with its training context. The optimizer
// is optional; a checkpoint without one restores the model only.
type Checkpoint struct {
	Model     Loadable
	Optimizer Loadable
	Epoch     int
	Step      int64
	Loss      float64

	Metadata     map[string]string
	TrainingMeta map[string]any
}

// SaveCheckpoint writes a checkpoint as a single .relic artifact. The
// graph root is a map with "model" and "optimizer" slots; training
// progress goes into the header's checkpoint block.
func SaveCheckpoint(path string, cp *Checkpoint) error {
	if cp == nil || cp.Model == nil {
		return fmt.Errorf("checkpoint requires a model")
	}

	modelRec, err := Serialize(cp.Model)
	if err != nil {
		return fmt.Errorf("failed to serialize model: %w", err)
	}
	entries := []MapEntry{{Key: "model", Value: RecordValue(modelRec)}}

	if cp.Optimizer != nil {
		optRec, err := Serialize(cp.Optimizer)
		if err != nil {
			return fmt.Errorf("failed to serialize optimizer: %w", err)
		}
		entries = append(entries, MapEntry{Key: "optimizer", Value: RecordValue(optRec)})
	}

	rootVal := MapValue(entries)
	tensors := make(map[string]*tensor.RawTensor)
	flattenValueState(rootVal, "checkpoint", tensors)

	root, err := json.Marshal(rootVal)
	if err != nil {
		return fmt.Errorf("failed to marshal checkpoint graph: %w", err)
	}

	writer, err := serialization.NewWriter(path)
	if err != nil {
		return err
	}
	defer writer.Close()

	header := serialization.Header{
		ModelType: modelRec.Qualname,
		Root:      root,
		Metadata:  cp.Metadata,
		Checkpoint: &serialization.CheckpointMeta{
			Epoch:        cp.Epoch,
			Step:         cp.Step,
			Loss:         cp.Loss,
			TrainingMeta: cp.TrainingMeta,
		},
	}
	if err := writer.WriteArtifact(header, tensors); err != nil {
		return fmt.Errorf("failed to write artifact: %w", err)
	}
	return writer.Close()
}

// LoadCheckpoint reads a checkpoint artifact and reconstructs the model
// and, when present, the optimizer. A restored optimizer holds its
// saved moments but no parameter references; callers re-link it to the
// restored model's parameters before resuming training.
func LoadCheckpoint(path string, backend any) (*Checkpoint, error) {
	reader, err := serialization.NewReader(path)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	header := reader.Header()
	if header.Checkpoint == nil {
		return nil, &FormatError{Path: "checkpoint", Reason: "artifact is not a checkpoint"}
	}
	root := reader.Root()
	if root == nil {
		return nil, &FormatError{Path: "checkpoint", Reason: "artifact carries no module graph"}
	}

	tensors, err := reader.ReadTensors()
	if err != nil {
		return nil, err
	}

	var rootVal Value
	if err := json.Unmarshal(root, &rootVal); err != nil {
		return nil, &FormatError{Path: "checkpoint", Reason: fmt.Sprintf("invalid checkpoint graph JSON: %v", err)}
	}
	if rootVal.Kind != KindMap {
		return nil, &FormatError{Path: "checkpoint", Reason: fmt.Sprintf("checkpoint root must be a map, got %q", rootVal.Kind)}
	}
	if err := attachValueState(&rootVal, tensors, "checkpoint"); err != nil {
		return nil, err
	}

	cp := &Checkpoint{
		Epoch:        header.Checkpoint.Epoch,
		Step:         header.Checkpoint.Step,
		Loss:         header.Checkpoint.Loss,
		Metadata:     header.Metadata,
		TrainingMeta: header.Checkpoint.TrainingMeta,
	}

	for _, entry := range rootVal.Map {
		switch entry.Key {
		case "model":
			if entry.Value == nil || entry.Value.Kind != KindRecord {
				return nil, &FormatError{Path: "checkpoint.model", Reason: "model slot is not a record"}
			}
			cp.Model, err = deserializeRecord(entry.Value.Record, backend, nil, "checkpoint.model")
			if err != nil {
				return nil, err
			}
		case "optimizer":
			if entry.Value == nil || entry.Value.Kind != KindRecord {
				return nil, &FormatError{Path: "checkpoint.optimizer", Reason: "optimizer slot is not a record"}
			}
			cp.Optimizer, err = deserializeRecord(entry.Value.Record, backend, nil, "checkpoint.optimizer")
			if err != nil {
				return nil, err
			}
		}
	}

	if cp.Model == nil {
		return nil, &FormatError{Path: "checkpoint", Reason: "checkpoint has no model slot"}
	}
	return cp, nil
}
