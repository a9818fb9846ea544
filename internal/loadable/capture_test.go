package loadable

import (
	"errors"
	"testing"
)

// TestRecordArgsFirstCallWins verifies that only the first RecordArgs
// call on an instance takes effect.
func TestRecordArgsFirstCallWins(t *testing.T) {
	var b Base
	if err := b.RecordArgs(4, "first"); err != nil {
		t.Fatalf("first RecordArgs failed: %v", err)
	}
	if err := b.RecordArgs(999, "second"); err != nil {
		t.Fatalf("second RecordArgs failed: %v", err)
	}

	capture := b.LoadableCapture()
	if capture == nil {
		t.Fatal("expected a capture")
	}
	if len(capture.Args) != 2 {
		t.Fatalf("expected 2 args, got %d", len(capture.Args))
	}
	if capture.Args[0].Leaf.Int != 4 {
		t.Errorf("expected first argument 4, got %d", capture.Args[0].Leaf.Int)
	}
	if capture.Args[1].Leaf.Str != "first" {
		t.Errorf("expected first-call string, got %q", capture.Args[1].Leaf.Str)
	}
}

// TestRecordArgsStructuralCopy verifies that mutating an argument after
// construction does not change the capture.
func TestRecordArgsStructuralCopy(t *testing.T) {
	hidden := []any{128, 64}
	var b Base
	if err := b.RecordArgs(hidden); err != nil {
		t.Fatalf("RecordArgs failed: %v", err)
	}

	hidden[0] = -1

	list := b.LoadableCapture().Args[0]
	if list.Kind != KindList {
		t.Fatalf("expected a list argument, got %q", list.Kind)
	}
	if list.List[0].Leaf.Int != 128 {
		t.Errorf("capture changed after argument mutation: got %d", list.List[0].Leaf.Int)
	}
}

// TestRecordArgsRejectsUnsupported verifies that a non-conforming
// argument fails at capture time and leaves no capture behind.
func TestRecordArgsRejectsUnsupported(t *testing.T) {
	type opaque struct{ ch chan int }

	var b Base
	err := b.RecordArgs(opaque{})
	if err == nil {
		t.Fatal("expected an error for an unsupported argument")
	}
	if !errors.Is(err, ErrConformance) {
		t.Errorf("expected ErrConformance, got %v", err)
	}
	if b.LoadableCapture() != nil {
		t.Error("failed capture should not stick")
	}

	// The instance is still usable.
	if err := b.RecordArgs(7); err != nil {
		t.Fatalf("RecordArgs after failure: %v", err)
	}
	if b.LoadableCapture() == nil {
		t.Error("expected a capture after retry")
	}
}

// TestRecordCallKwargs verifies named arguments keep their given order
// and map arguments encode with sorted keys.
func TestRecordCallKwargs(t *testing.T) {
	var b Base
	err := b.RecordCall(nil, []Kwarg{
		{Name: "lr", Value: 0.01},
		{Name: "betas", Value: map[string]any{"b2": 0.999, "b1": 0.9}},
	})
	if err != nil {
		t.Fatalf("RecordCall failed: %v", err)
	}

	kwargs := b.LoadableCapture().Kwargs
	if len(kwargs) != 2 {
		t.Fatalf("expected 2 kwargs, got %d", len(kwargs))
	}
	if kwargs[0].Key != "lr" || kwargs[1].Key != "betas" {
		t.Errorf("kwarg order not preserved: %q, %q", kwargs[0].Key, kwargs[1].Key)
	}

	entries := kwargs[1].Value.Map
	if len(entries) != 2 || entries[0].Key != "b1" || entries[1].Key != "b2" {
		t.Errorf("map argument keys not sorted: %+v", entries)
	}
}

// TestRecordArgsNestedModule verifies that a Loadable argument is
// captured as a full nested record.
func TestRecordArgsNestedModule(t *testing.T) {
	registerTestTypes(t)

	child := newTestDense(3)
	w := newTestWrapper(child)

	arg := w.LoadableCapture().Args[0]
	if arg.Kind != KindRecord {
		t.Fatalf("expected a record argument, got %q", arg.Kind)
	}
	if arg.Record.Key() != denseKey {
		t.Errorf("nested record has key %v, want %v", arg.Record.Key(), denseKey)
	}
	if arg.Record.State == nil {
		t.Error("nested record should carry the child's state")
	}
}

// TestLeafValueTypes verifies primitive widening to int64/float64.
func TestLeafValueTypes(t *testing.T) {
	tests := []struct {
		name string
		in   any
		typ  LeafType
	}{
		{"nil", nil, LeafNil},
		{"bool", true, LeafBool},
		{"int", 42, LeafInt},
		{"int32", int32(-7), LeafInt},
		{"uint16", uint16(9), LeafInt},
		{"float32", float32(1.5), LeafFloat},
		{"float64", 2.5, LeafFloat},
		{"string", "relu", LeafString},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := LeafValue(tt.in)
			if err != nil {
				t.Fatalf("LeafValue(%v): %v", tt.in, err)
			}
			if v.Leaf.Type != tt.typ {
				t.Errorf("expected leaf type %q, got %q", tt.typ, v.Leaf.Type)
			}
		})
	}

	if _, err := LeafValue(struct{}{}); err == nil {
		t.Error("expected an error for a struct leaf")
	}
}
