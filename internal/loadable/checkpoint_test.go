package loadable

import (
	"errors"
	"path/filepath"
	"testing"
)

// TestCheckpointRoundTrip verifies that a model, a second node in the
// optimizer slot, and the training context all survive the round trip.
func TestCheckpointRoundTrip(t *testing.T) {
	registerTestTypes(t)
	path := filepath.Join(t.TempDir(), "train.relic")

	model := newTestDense(2)
	fillBias(model, 10, 20)
	opt := newTestDense(2)
	fillBias(opt, 0.5, 0.25)

	err := SaveCheckpoint(path, &Checkpoint{
		Model:        model,
		Optimizer:    opt,
		Epoch:        3,
		Step:         1200,
		Loss:         0.042,
		Metadata:     map[string]string{"dataset": "mnist"},
		TrainingMeta: map[string]any{"lr_schedule": "cosine"},
	})
	if err != nil {
		t.Fatalf("SaveCheckpoint failed: %v", err)
	}

	cp, err := LoadCheckpoint(path, nil)
	if err != nil {
		t.Fatalf("LoadCheckpoint failed: %v", err)
	}

	if cp.Epoch != 3 || cp.Step != 1200 || cp.Loss != 0.042 {
		t.Errorf("training progress not restored: epoch=%d step=%d loss=%g", cp.Epoch, cp.Step, cp.Loss)
	}
	if cp.Metadata["dataset"] != "mnist" {
		t.Errorf("metadata not restored: %v", cp.Metadata)
	}
	if cp.TrainingMeta["lr_schedule"] != "cosine" {
		t.Errorf("training meta not restored: %v", cp.TrainingMeta)
	}

	restoredModel := cp.Model.(*testDense)
	if !restoredModel.bias.Equal(model.bias) {
		t.Errorf("model state not restored: %v", restoredModel.bias.AsFloat32())
	}
	restoredOpt := cp.Optimizer.(*testDense)
	if !restoredOpt.bias.Equal(opt.bias) {
		t.Errorf("optimizer state not restored: %v", restoredOpt.bias.AsFloat32())
	}
}

// TestCheckpointWithoutOptimizer verifies the optimizer slot is
// optional.
func TestCheckpointWithoutOptimizer(t *testing.T) {
	registerTestTypes(t)
	path := filepath.Join(t.TempDir(), "model-only.relic")

	if err := SaveCheckpoint(path, &Checkpoint{Model: newTestDense(1), Epoch: 1}); err != nil {
		t.Fatalf("SaveCheckpoint failed: %v", err)
	}

	cp, err := LoadCheckpoint(path, nil)
	if err != nil {
		t.Fatalf("LoadCheckpoint failed: %v", err)
	}
	if cp.Model == nil {
		t.Error("expected a model")
	}
	if cp.Optimizer != nil {
		t.Error("expected no optimizer")
	}
}

// TestCheckpointRequiresModel verifies the save-side guard.
func TestCheckpointRequiresModel(t *testing.T) {
	registerTestTypes(t)
	path := filepath.Join(t.TempDir(), "bad.relic")

	if err := SaveCheckpoint(path, nil); err == nil {
		t.Error("expected an error for a nil checkpoint")
	}
	if err := SaveCheckpoint(path, &Checkpoint{}); err == nil {
		t.Error("expected an error for a checkpoint without a model")
	}
}

// TestCheckpointArtifactKindMismatch verifies that model artifacts and
// checkpoint artifacts are told apart cleanly.
func TestCheckpointArtifactKindMismatch(t *testing.T) {
	registerTestTypes(t)
	dir := t.TempDir()

	modelPath := filepath.Join(dir, "model.relic")
	if err := Save(modelPath, newTestDense(1), nil); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if _, err := LoadCheckpoint(modelPath, nil); !errors.Is(err, ErrFormat) {
		t.Errorf("LoadCheckpoint on a model artifact: expected ErrFormat, got %v", err)
	}

	cpPath := filepath.Join(dir, "cp.relic")
	if err := SaveCheckpoint(cpPath, &Checkpoint{Model: newTestDense(1)}); err != nil {
		t.Fatalf("SaveCheckpoint failed: %v", err)
	}
	if _, err := Load(cpPath, nil); !errors.Is(err, ErrFormat) && !errors.Is(err, ErrVersion) {
		t.Errorf("Load on a checkpoint artifact: expected a format or version error, got %v", err)
	}
}
