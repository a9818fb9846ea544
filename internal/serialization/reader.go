package serialization

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"

	"github.com/relic-ml/relic/internal/tensor"
)

// Reader provides memory-mapped access to a .relic artifact. Opening
// an artifact parses and validates the header; tensor data is read on
// demand through the OS page cache.
type Reader struct {
	file       *os.File
	data       []byte // mmap'd region (read-only)
	size       int64
	header     Header
	version    uint32
	flags      uint32
	dataOffset int64
	dataSize   int64
	checksum   [32]byte
	closed     bool
}

// ReaderOptions configures artifact reading.
type ReaderOptions struct {
	SkipChecksumValidation bool            // skip payload checksum verification
	ValidationLevel        ValidationLevel // header validation strictness
}

// NewReader opens a .relic artifact with strict validation.
func NewReader(path string) (*Reader, error) {
	return NewReaderWithOptions(path, ReaderOptions{ValidationLevel: ValidationStrict})
}

// NewReaderWithOptions opens a .relic artifact with custom options.
//
// Always call Close when done to unmap the file.
func NewReaderWithOptions(path string, opts ReaderOptions) (*Reader, error) {
	//nolint:gosec // G304: file path comes from the caller, expected for artifact loading
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	stat, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	data, err := mmapFile(file, stat.Size())
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("mmap failed: %w", err)
	}

	r := &Reader{
		file: file,
		data: data,
		size: stat.Size(),
	}

	if err := r.parseHeader(opts); err != nil {
		_ = r.Close()
		return nil, fmt.Errorf("failed to parse header: %w", err)
	}

	return r, nil
}

func (r *Reader) parseHeader(opts ReaderOptions) error {
	if r.size < FixedHeaderSize {
		return fmt.Errorf("file too small: %d bytes (minimum %d bytes required)", r.size, FixedHeaderSize)
	}

	if string(r.data[0:4]) != MagicBytes {
		return ErrInvalidMagic
	}

	r.version = binary.LittleEndian.Uint32(r.data[4:8])
	if r.version != FormatVersion {
		return fmt.Errorf("%w: got %d, expected %d", ErrUnsupportedVersion, r.version, FormatVersion)
	}

	r.flags = binary.LittleEndian.Uint32(r.data[8:12])

	headerSize := binary.LittleEndian.Uint64(r.data[16:24])
	if headerSize > MaxHeaderSize {
		return ErrHeaderTooLarge
	}

	dataSize := binary.LittleEndian.Uint64(r.data[24:32])
	if dataSize > 0x7FFFFFFFFFFFFFFF {
		return fmt.Errorf("data size too large: %d", dataSize)
	}
	r.dataSize = int64(dataSize)

	copy(r.checksum[:], r.data[ChecksumOffset:ChecksumOffset+ChecksumSize])

	headerEnd := int64(FixedHeaderSize) + int64(headerSize)
	if headerEnd > r.size {
		return fmt.Errorf("header extends beyond file: header_end=%d, file_size=%d", headerEnd, r.size)
	}

	if err := json.Unmarshal(r.data[FixedHeaderSize:headerEnd], &r.header); err != nil {
		return fmt.Errorf("failed to parse header JSON: %w", err)
	}

	padding := (HeaderAlignment - (headerEnd % HeaderAlignment)) % HeaderAlignment
	r.dataOffset = headerEnd + padding

	if r.dataOffset+r.dataSize > r.size {
		return fmt.Errorf("payload extends beyond file: offset=%d, size=%d, file_size=%d",
			r.dataOffset, r.dataSize, r.size)
	}

	if err := ValidateHeader(&r.header, r.dataSize, opts.ValidationLevel); err != nil {
		return fmt.Errorf("header validation failed: %w", err)
	}

	if !opts.SkipChecksumValidation {
		computed := ComputeChecksum(r.data[r.dataOffset : r.dataOffset+r.dataSize])
		if err := ValidateChecksum(computed, r.checksum); err != nil {
			return err
		}
	}

	return nil
}

// Close unmaps and closes the file.
func (r *Reader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true

	var err error
	if r.data != nil {
		err = munmapFile(r.data)
		r.data = nil
	}

	if closeErr := r.file.Close(); closeErr != nil && err == nil {
		err = closeErr
	}

	return err
}

// Header returns the artifact header.
func (r *Reader) Header() Header {
	return r.header
}

// Root returns the serialized module graph from the header. Nil when
// the artifact carries only a flat tensor dictionary.
func (r *Reader) Root() json.RawMessage {
	return r.header.Root
}

// Version returns the format version.
func (r *Reader) Version() uint32 {
	return r.version
}

// Flags returns the flags bitfield.
func (r *Reader) Flags() uint32 {
	return r.flags
}

// Checksum returns the stored SHA-256 checksum of the payload.
func (r *Reader) Checksum() [32]byte {
	return r.checksum
}

// TensorNames returns the names of all tensors in the artifact.
func (r *Reader) TensorNames() []string {
	names := make([]string, len(r.header.Tensors))
	for i, t := range r.header.Tensors {
		names[i] = t.Name
	}
	return names
}

// TensorInfo returns metadata about a specific tensor.
func (r *Reader) TensorInfo(name string) (*TensorMeta, error) {
	for i := range r.header.Tensors {
		if r.header.Tensors[i].Name == name {
			return &r.header.Tensors[i], nil
		}
	}
	return nil, fmt.Errorf("tensor %q not found", name)
}

// TensorData returns a zero-copy slice into the mapped payload. The
// slice is read-only and valid only while the reader is open; callers
// needing a mutable or long-lived copy use ReadTensor.
func (r *Reader) TensorData(name string) ([]byte, error) {
	if r.closed {
		return nil, fmt.Errorf("reader is closed")
	}

	meta, err := r.TensorInfo(name)
	if err != nil {
		return nil, err
	}

	start := r.dataOffset + meta.Offset
	end := start + meta.Size
	if end > r.size {
		return nil, fmt.Errorf("%w: tensor %q: offset %d + size %d > file_size %d",
			ErrOutOfBounds, name, start, meta.Size, r.size)
	}

	return r.data[start:end], nil
}

// ReadTensor loads one tensor, copying its bytes out of the mapped
// region into a fresh RawTensor.
func (r *Reader) ReadTensor(name string) (*tensor.RawTensor, error) {
	if r.closed {
		return nil, fmt.Errorf("reader is closed")
	}

	meta, err := r.TensorInfo(name)
	if err != nil {
		return nil, err
	}

	dtype, ok := stringToDtype(meta.DType)
	if !ok {
		return nil, fmt.Errorf("unsupported dtype: %s", meta.DType)
	}

	shape := tensor.Shape(meta.Shape)
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape for tensor %s: %w", name, err)
	}

	raw, err := tensor.NewRaw(shape, dtype)
	if err != nil {
		return nil, fmt.Errorf("failed to create tensor: %w", err)
	}

	data, err := r.TensorData(name)
	if err != nil {
		return nil, err
	}
	copy(raw.Data(), data)

	return raw, nil
}

// ReadTensors loads every tensor in the artifact into a map.
func (r *Reader) ReadTensors() (map[string]*tensor.RawTensor, error) {
	if r.closed {
		return nil, fmt.Errorf("reader is closed")
	}

	tensors := make(map[string]*tensor.RawTensor, len(r.header.Tensors))
	for _, meta := range r.header.Tensors {
		raw, err := r.ReadTensor(meta.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to load tensor %s: %w", meta.Name, err)
		}
		tensors[meta.Name] = raw
	}

	return tensors, nil
}
