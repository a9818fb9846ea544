package serialization

import (
	"strings"
	"testing"
)

// TestValidateTensorOffsets_NoOverlap verifies that valid layouts pass.
func TestValidateTensorOffsets_NoOverlap(t *testing.T) {
	tensors := []TensorMeta{
		{Name: "tensor1", Offset: 0, Size: 100},
		{Name: "tensor2", Offset: 100, Size: 200},
		{Name: "tensor3", Offset: 300, Size: 150},
	}
	if err := ValidateTensorOffsets(tensors, 500); err != nil {
		t.Errorf("Expected no error for valid tensors, got: %v", err)
	}
}

// TestValidateTensorOffsets_Overlap detects overlapping tensor regions.
func TestValidateTensorOffsets_Overlap(t *testing.T) {
	tests := []struct {
		name     string
		tensors  []TensorMeta
		dataSize int64
		wantErr  bool
	}{
		{
			name: "complete overlap",
			tensors: []TensorMeta{
				{Name: "tensor1", Offset: 0, Size: 100},
				{Name: "tensor2", Offset: 50, Size: 100},
			},
			dataSize: 200,
			wantErr:  true,
		},
		{
			name: "partial overlap at boundary",
			tensors: []TensorMeta{
				{Name: "tensor1", Offset: 0, Size: 100},
				{Name: "tensor2", Offset: 99, Size: 100},
			},
			dataSize: 200,
			wantErr:  true,
		},
		{
			name: "exact boundary (no overlap)",
			tensors: []TensorMeta{
				{Name: "tensor1", Offset: 0, Size: 100},
				{Name: "tensor2", Offset: 100, Size: 100},
			},
			dataSize: 200,
			wantErr:  false,
		},
		{
			name: "unsorted input with overlap",
			tensors: []TensorMeta{
				{Name: "tensor2", Offset: 90, Size: 50},
				{Name: "tensor1", Offset: 0, Size: 100},
			},
			dataSize: 200,
			wantErr:  true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTensorOffsets(tt.tensors, tt.dataSize)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateTensorOffsets() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// TestValidateTensorOffsets_Bounds detects out-of-bounds and negative
// regions.
func TestValidateTensorOffsets_Bounds(t *testing.T) {
	outOfBounds := []TensorMeta{{Name: "big", Offset: 0, Size: 600}}
	if err := ValidateTensorOffsets(outOfBounds, 500); err == nil {
		t.Error("Expected an error for an out-of-bounds tensor")
	}

	negative := []TensorMeta{{Name: "neg", Offset: -10, Size: 100}}
	if err := ValidateTensorOffsets(negative, 500); err == nil {
		t.Error("Expected an error for a negative offset")
	}
}

// TestValidateTensorName rejects dangerous names.
func TestValidateTensorName(t *testing.T) {
	tests := []struct {
		name    string
		tensor  string
		wantErr bool
	}{
		{"plain name", "model.0.weight", false},
		{"dotted graph path", "checkpoint.optimizer.m.0", false},
		{"path traversal", "../../etc/passwd", true},
		{"forward slash", "dir/name", true},
		{"backslash", "dir\\name", true},
		{"null byte", "name\x00", true},
		{"too long", strings.Repeat("x", MaxTensorNameLen+1), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTensorName(tt.tensor)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateTensorName(%q) error = %v, wantErr %v", tt.tensor, err, tt.wantErr)
			}
		})
	}
}

// TestValidateHeader_Levels verifies validation level behavior.
func TestValidateHeader_Levels(t *testing.T) {
	badOffsets := &Header{
		Tensors: []TensorMeta{
			{Name: "a", Offset: 0, Size: 100},
			{Name: "b", Offset: 50, Size: 100},
		},
	}

	if err := ValidateHeader(badOffsets, 200, ValidationStrict); err == nil {
		t.Error("Strict validation should reject overlapping offsets")
	}
	if err := ValidateHeader(badOffsets, 200, ValidationNormal); err != nil {
		t.Errorf("Normal validation skips offset checks, got: %v", err)
	}

	badName := &Header{Tensors: []TensorMeta{{Name: "../x", Offset: 0, Size: 10}}}
	if err := ValidateHeader(badName, 100, ValidationNormal); err == nil {
		t.Error("Normal validation should still reject bad names")
	}
	if err := ValidateHeader(badName, 100, ValidationNone); err != nil {
		t.Errorf("ValidationNone skips everything, got: %v", err)
	}
}
