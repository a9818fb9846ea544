package serialization

import (
	"bytes"
	"errors"
	"testing"
)

// TestComputeChecksum verifies deterministic checksums.
func TestComputeChecksum(t *testing.T) {
	data := []byte("relic artifact payload")
	sum1 := ComputeChecksum(data)
	sum2 := ComputeChecksum(data)
	if sum1 != sum2 {
		t.Error("Checksum is not deterministic")
	}

	other := ComputeChecksum([]byte("different payload"))
	if sum1 == other {
		t.Error("Different payloads produced the same checksum")
	}
}

// TestComputeChecksumReader verifies the streaming path matches the
// in-memory one.
func TestComputeChecksumReader(t *testing.T) {
	data := []byte("streamed payload bytes")
	want := ComputeChecksum(data)

	got, err := ComputeChecksumReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("ComputeChecksumReader failed: %v", err)
	}
	if got != want {
		t.Error("Streaming checksum differs from in-memory checksum")
	}
}

// TestValidateChecksum verifies mismatch classification.
func TestValidateChecksum(t *testing.T) {
	sum := ComputeChecksum([]byte("payload"))
	if err := ValidateChecksum(sum, sum); err != nil {
		t.Errorf("Expected matching checksums to pass, got: %v", err)
	}

	var zero [32]byte
	err := ValidateChecksum(sum, zero)
	if !errors.Is(err, ErrChecksumMismatch) {
		t.Errorf("Expected ErrChecksumMismatch, got: %v", err)
	}
}
