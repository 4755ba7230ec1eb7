package model

import (
	"encoding/binary"
	"math"
	"unsafe"
)

// GPUVertex is the vertex format of imported meshes: position, normal and texture coordinate.
// Size: 32 bytes, tightly packed.
type GPUVertex struct {
	Position [3]float32 // offset  0
	Normal   [3]float32 // offset 12
	TexCoord [2]float32 // offset 24
}

// Size returns the size of the GPUVertex struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (g *GPUVertex) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUVertex struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 32-byte buffer ready for GPU upload.
func (g *GPUVertex) Marshal() []byte {
	buf := make([]byte, 32)
	putFloats(buf[0:12], g.Position[:])
	putFloats(buf[12:24], g.Normal[:])
	putFloats(buf[24:32], g.TexCoord[:])
	return buf
}

// GPUQuadVertex is the vertex format of the embedded screen quad: position and texture coordinate.
// Size: 20 bytes, tightly packed.
type GPUQuadVertex struct {
	Position [3]float32 // offset  0
	TexCoord [2]float32 // offset 12
}

// Size returns the size of the GPUQuadVertex struct in bytes.
func (g *GPUQuadVertex) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUQuadVertex struct into a 20-byte buffer.
func (g *GPUQuadVertex) Marshal() []byte {
	buf := make([]byte, 20)
	putFloats(buf[0:12], g.Position[:])
	putFloats(buf[12:20], g.TexCoord[:])
	return buf
}

// MarshalVertices concatenates the marshalled form of every vertex.
//
// Parameters:
//   - vertices: the vertices to serialize
//
// Returns:
//   - []byte: the vertex buffer contents
func MarshalVertices[V interface{ Marshal() []byte }](vertices []V) []byte {
	var out []byte
	for _, v := range vertices {
		out = append(out, v.Marshal()...)
	}
	return out
}

// MarshalIndices16 serializes indices as little-endian uint16 values.
func MarshalIndices16(indices []uint16) []byte {
	buf := make([]byte, 2*len(indices))
	for i, idx := range indices {
		binary.LittleEndian.PutUint16(buf[2*i:], idx)
	}
	return buf
}

// MarshalIndices32 serializes indices as little-endian uint32 values.
func MarshalIndices32(indices []uint32) []byte {
	buf := make([]byte, 4*len(indices))
	for i, idx := range indices {
		binary.LittleEndian.PutUint32(buf[4*i:], idx)
	}
	return buf
}

func putFloats(dst []byte, values []float32) {
	for i, v := range values {
		binary.LittleEndian.PutUint32(dst[4*i:], math.Float32bits(v))
	}
}
