// Package serialization implements the .relic artifact format: a
// self-describing binary container for a serialized module graph and
// its state tensors.
//
//	Format Structure (all integers little-endian):
//	  0x00-0x03  Magic "RLIC"
//	  0x04-0x07  Format version (uint32)
//	  0x08-0x0B  Flags (uint32)
//	  0x0C-0x0F  Reserved
//	  0x10-0x17  Header size (uint64)
//	  0x18-0x1F  Data size (uint64)
//	  0x20-0x3F  SHA-256 checksum of the tensor payload
//	  0x40-...   Header: JSON metadata, includes the module graph
//	  [padding to 64-byte boundary]
//	  [Tensor payload: raw bytes, 64-byte aligned]
//
// The JSON header carries the reconstruction graph (constructor
// arguments for every node) and the metadata of each tensor in the
// payload. Tensors are stored in sorted name order, so the same graph
// always produces byte-identical artifacts.
//
// Readers are memory-mapped: opening an artifact parses and validates
// the header, and tensor data is touched on demand through the OS page
// cache.
package serialization
