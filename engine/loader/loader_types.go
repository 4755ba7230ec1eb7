package loader

import (
	"github.com/Carmen-Shannon/oxy-forward/common"
	"github.com/Carmen-Shannon/oxy-forward/engine/model"
	"github.com/Carmen-Shannon/oxy-forward/engine/renderer/material"
)

// ImportedModel is the CPU-side result of decoding a model file: one shared vertex/index stream split into submeshes.
type ImportedModel struct {
	Name      string
	Vertices  []model.GPUVertex
	Indices   []uint32
	Submeshes []ImportedSubmesh
	Materials []ImportedMaterial
}

// ImportedSubmesh is a range of ImportedModel's vertices and indices drawn with one material.
// Indices are relative to the submesh's first vertex.
type ImportedSubmesh struct {
	Name string

	// VertexOffset is the byte offset of the first vertex.
	VertexOffset int
	VertexCount  int

	// IndexOffset is the byte offset of the first index.
	IndexOffset int
	IndexCount  int

	// Material indexes ImportedModel.Materials.
	Material int
}

// ImportedMaterial holds the surface parameters of a material as read from the file.
// Texture paths are resolved against the model's directory; empty paths select fallbacks.
type ImportedMaterial struct {
	Name          string
	AlbedoColor   common.Color
	EmissiveColor common.Color
	Smoothness    float32

	AlbedoPath   string
	EmissivePath string
	SpecularPath string
	NormalsPath  string
	BumpPath     string
}

// LoadedModel is an imported model whose buffers and textures live on the GPU.
type LoadedModel struct {
	Name string
	Mesh *model.Mesh

	// Materials is parallel to Mesh.Submeshes.
	Materials []material.Material
}
