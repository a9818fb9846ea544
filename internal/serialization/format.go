package serialization

import (
	"encoding/json"
	"time"

	"github.com/relic-ml/relic/internal/tensor"
)

// Format constants.
const (
	MagicBytes      = "RLIC"
	FormatVersion   = 1
	FixedHeaderSize = 64   // fixed header size (0x40 bytes)
	HeaderAlignment = 64   // tensor payload alignment
	ChecksumSize    = 32   // SHA-256
	ChecksumOffset  = 0x20 // checksum offset in the fixed header
)

// relicVersion is stamped into every artifact this library writes.
const relicVersion = "0.3.1"

// Data type string constants for the JSON header.
const (
	DTypeFloat32 = "float32"
	DTypeFloat64 = "float64"
	DTypeInt32   = "int32"
	DTypeInt64   = "int64"
	DTypeUint8   = "uint8"
	DTypeBool    = "bool"
)

// Flags for the .relic format.
const (
	FlagHasCheckpoint uint32 = 1 << 0 // checkpoint metadata included
	FlagHasMetadata   uint32 = 1 << 1 // custom metadata included
)

// Header is the JSON header of a .relic artifact.
//
// Root holds the serialized module graph. It is kept as a raw message
// here so this package stays a pure container format: the graph's
// schema belongs to the loadable package, which encodes it before
// writing and decodes it after reading.
type Header struct {
	FormatVersion int               `json:"format_version"`
	RelicVersion  string            `json:"relic_version"`
	ArtifactID    string            `json:"artifact_id"`
	ModelType     string            `json:"model_type"`
	CreatedAt     time.Time         `json:"created_at"`
	Root          json.RawMessage   `json:"root,omitempty"`
	Tensors       []TensorMeta      `json:"tensors"`
	Metadata      map[string]string `json:"metadata"`
	Checkpoint    *CheckpointMeta   `json:"checkpoint,omitempty"`
}

// CheckpointMeta carries training progress alongside a checkpointed
// graph.
type CheckpointMeta struct {
	Epoch        int            `json:"epoch"`
	Step         int64          `json:"step"`
	Loss         float64        `json:"loss"`
	TrainingMeta map[string]any `json:"training_meta,omitempty"`
}

// TensorMeta describes one tensor in the artifact payload.
type TensorMeta struct {
	Name   string `json:"name"`   // e.g. "model.0.weight"
	DType  string `json:"dtype"`  // e.g. "float32"
	Shape  []int  `json:"shape"`  // tensor shape
	Offset int64  `json:"offset"` // bytes from the start of the payload
	Size   int64  `json:"size"`   // size in bytes
}

// dtypeToString converts tensor.DataType to its header representation.
func dtypeToString(dt tensor.DataType) string {
	switch dt {
	case tensor.Float32:
		return DTypeFloat32
	case tensor.Float64:
		return DTypeFloat64
	case tensor.Int32:
		return DTypeInt32
	case tensor.Int64:
		return DTypeInt64
	case tensor.Uint8:
		return DTypeUint8
	case tensor.Bool:
		return DTypeBool
	default:
		return "unknown"
	}
}

// stringToDtype converts a header representation back to tensor.DataType.
func stringToDtype(s string) (tensor.DataType, bool) {
	switch s {
	case DTypeFloat32:
		return tensor.Float32, true
	case DTypeFloat64:
		return tensor.Float64, true
	case DTypeInt32:
		return tensor.Int32, true
	case DTypeInt64:
		return tensor.Int64, true
	case DTypeUint8:
		return tensor.Uint8, true
	case DTypeBool:
		return tensor.Bool, true
	default:
		return 0, false
	}
}
