package serialization

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/relic-ml/relic/internal/tensor"
)

// Writer writes .relic artifacts.
type Writer struct {
	file   *os.File
	closed bool
}

// NewWriter creates a .relic artifact writer for the given path.
func NewWriter(path string) (*Writer, error) {
	//nolint:gosec // G304: file path comes from the caller, expected for artifact saving
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}

	return &Writer{file: file}, nil
}

// WriteArtifact writes the header and tensor payload as one artifact.
//
// The caller fills Root, ModelType, Metadata, and Checkpoint; format
// version, library version, creation time, and a fresh artifact ID are
// stamped here. Header.Tensors is computed from the tensors map:
// tensors are laid out in sorted name order, so the same input always
// produces a byte-identical artifact.
func (w *Writer) WriteArtifact(header Header, tensors map[string]*tensor.RawTensor) error {
	if w.closed {
		return fmt.Errorf("writer is closed")
	}
	return writeArtifact(w.file, header, tensors)
}

// Close closes the writer and the underlying file.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	return w.file.Close()
}

// WriteArtifactTo writes an artifact to an io.Writer, for buffers or
// network connections.
func WriteArtifactTo(out io.Writer, header Header, tensors map[string]*tensor.RawTensor) error {
	return writeArtifact(out, header, tensors)
}

func writeArtifact(out io.Writer, header Header, tensors map[string]*tensor.RawTensor) error {
	header.FormatVersion = FormatVersion
	header.RelicVersion = relicVersion
	header.CreatedAt = time.Now().UTC()
	if header.ArtifactID == "" {
		header.ArtifactID = uuid.NewString()
	}
	if header.Metadata == nil {
		header.Metadata = make(map[string]string)
	}

	names := make([]string, 0, len(tensors))
	for name := range tensors {
		if err := ValidateTensorName(name); err != nil {
			return err
		}
		names = append(names, name)
	}
	sort.Strings(names)

	// Lay out the payload and compute offsets.
	var currentOffset int64
	header.Tensors = make([]TensorMeta, 0, len(names))
	for _, name := range names {
		raw := tensors[name]
		size := int64(raw.ByteSize())
		header.Tensors = append(header.Tensors, TensorMeta{
			Name:   name,
			DType:  dtypeToString(raw.DType()),
			Shape:  []int(raw.Shape()),
			Offset: currentOffset,
			Size:   size,
		})
		currentOffset += size
	}

	payload := make([]byte, 0, currentOffset)
	for _, name := range names {
		payload = append(payload, tensors[name].Data()...)
	}
	checksum := ComputeChecksum(payload)

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("failed to marshal header: %w", err)
	}
	headerSize := uint64(len(headerJSON))
	if headerSize > MaxHeaderSize {
		return ErrHeaderTooLarge
	}

	fixed := make([]byte, FixedHeaderSize)
	copy(fixed[0:4], MagicBytes)
	binary.LittleEndian.PutUint32(fixed[4:8], uint32(FormatVersion))

	flags := uint32(0)
	if len(header.Metadata) > 0 {
		flags |= FlagHasMetadata
	}
	if header.Checkpoint != nil {
		flags |= FlagHasCheckpoint
	}
	binary.LittleEndian.PutUint32(fixed[8:12], flags)

	// 0x0C-0x0F reserved, zero from make.
	binary.LittleEndian.PutUint64(fixed[16:24], headerSize)
	binary.LittleEndian.PutUint64(fixed[24:32], uint64(len(payload)))
	copy(fixed[ChecksumOffset:ChecksumOffset+ChecksumSize], checksum[:])

	if _, err := out.Write(fixed); err != nil {
		return fmt.Errorf("failed to write fixed header: %w", err)
	}
	if _, err := out.Write(headerJSON); err != nil {
		return fmt.Errorf("failed to write header JSON: %w", err)
	}

	// Pad so the payload starts on an alignment boundary.
	currentPos := int64(FixedHeaderSize) + int64(headerSize)
	padding := (HeaderAlignment - (currentPos % HeaderAlignment)) % HeaderAlignment
	if padding > 0 {
		if _, err := out.Write(make([]byte, padding)); err != nil {
			return fmt.Errorf("failed to write padding: %w", err)
		}
	}

	if _, err := out.Write(payload); err != nil {
		return fmt.Errorf("failed to write tensor payload: %w", err)
	}

	return nil
}
