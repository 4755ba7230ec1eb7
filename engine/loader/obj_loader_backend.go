package loader

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/Carmen-Shannon/oxy-forward/common"
	"github.com/Carmen-Shannon/oxy-forward/engine/model"
	"github.com/g3n/engine/loader/obj"
	"github.com/go-gl/mathgl/mgl32"
)

// objLoaderBackend decodes Wavefront OBJ files with their MTL libraries.
type objLoaderBackend struct{}

var _ loaderBackend = &objLoaderBackend{}

func newOBJLoaderBackend() loaderBackend {
	return &objLoaderBackend{}
}

func (b *objLoaderBackend) Load(path string) (*ImportedModel, error) {
	dec, err := obj.Decode(path, "")
	if err != nil {
		return nil, fmt.Errorf("failed to decode obj: %w", err)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return convertOBJ(name, dec, filepath.Dir(path))
}

func (b *objLoaderBackend) LoadReader(name string, r io.Reader, materials io.Reader, dir string) (*ImportedModel, error) {
	if materials == nil {
		materials = strings.NewReader("")
	}
	dec, err := obj.DecodeReader(r, materials)
	if err != nil {
		return nil, fmt.Errorf("failed to decode obj: %w", err)
	}
	return convertOBJ(name, dec, dir)
}

// vertexKey identifies a unique position/uv/normal combination within a submesh.
type vertexKey struct {
	position, uv, normal int
}

// submeshBuilder accumulates the triangles of one object/material group.
type submeshBuilder struct {
	name     string
	material string
	vertices []model.GPUVertex
	indices  []uint32
	unique   map[vertexKey]uint32
}

// convertOBJ splits every object into one submesh per material, triangulating polygon faces as fans.
func convertOBJ(name string, dec *obj.Decoder, dir string) (*ImportedModel, error) {
	var builders []*submeshBuilder
	for _, object := range dec.Objects {
		byMaterial := make(map[string]*submeshBuilder)
		for _, face := range object.Faces {
			if len(face.Vertices) < 3 {
				continue
			}
			sb, ok := byMaterial[face.Material]
			if !ok {
				sb = &submeshBuilder{name: object.Name, material: face.Material, unique: make(map[vertexKey]uint32)}
				byMaterial[face.Material] = sb
				builders = append(builders, sb)
			}
			for i := 2; i < len(face.Vertices); i++ {
				sb.addTriangle(dec, face, 0, i-1, i)
			}
		}
	}
	if len(builders) == 0 {
		return nil, fmt.Errorf("model %q has no faces", name)
	}

	imported := &ImportedModel{Name: name}
	materialIndex := make(map[string]int)
	for _, sb := range builders {
		idx, ok := materialIndex[sb.material]
		if !ok {
			idx = len(imported.Materials)
			materialIndex[sb.material] = idx
			imported.Materials = append(imported.Materials, convertMaterial(sb.material, dec.Materials[sb.material], dir))
		}

		imported.Submeshes = append(imported.Submeshes, ImportedSubmesh{
			Name:         sb.name,
			VertexOffset: len(imported.Vertices) * model.MeshLayout.Stride,
			VertexCount:  len(sb.vertices),
			IndexOffset:  len(imported.Indices) * 4,
			IndexCount:   len(sb.indices),
			Material:     idx,
		})
		imported.Vertices = append(imported.Vertices, sb.vertices...)
		imported.Indices = append(imported.Indices, sb.indices...)
	}
	return imported, nil
}

func (sb *submeshBuilder) addTriangle(dec *obj.Decoder, face obj.Face, corners ...int) {
	var positions [3]mgl32.Vec3
	for i, c := range corners {
		positions[i] = vec3At(dec.Vertices, face.Vertices[c])
	}
	flat := positions[1].Sub(positions[0]).Cross(positions[2].Sub(positions[0]))
	if flat.Len() > 1e-12 {
		flat = flat.Normalize()
	}

	for i, c := range corners {
		key := vertexKey{position: face.Vertices[c], uv: -1, normal: -1}
		if c < len(face.Uvs) {
			key.uv = face.Uvs[c]
		}
		if c < len(face.Normals) {
			key.normal = face.Normals[c]
		}

		normal, hasNormal := lookup3(dec.Normals, key.normal)
		if !hasNormal {
			// faces without normals are shaded flat and never share vertices
			normal = flat
		} else if index, ok := sb.unique[key]; ok {
			sb.indices = append(sb.indices, index)
			continue
		}

		uv, _ := lookup2(dec.Uvs, key.uv)
		index := uint32(len(sb.vertices))
		sb.vertices = append(sb.vertices, model.GPUVertex{
			Position: positions[i],
			Normal:   normal,
			TexCoord: uv,
		})
		if hasNormal {
			sb.unique[key] = index
		}
		sb.indices = append(sb.indices, index)
	}
}

func convertMaterial(name string, m *obj.Material, dir string) ImportedMaterial {
	if name == "" {
		name = "default"
	}
	imported := ImportedMaterial{
		Name:        name,
		AlbedoColor: common.Color{R: 1, G: 1, B: 1, A: 1},
	}
	if m == nil {
		return imported
	}

	opacity := m.Opacity
	if opacity <= 0 {
		opacity = 1
	}
	imported.AlbedoColor = common.Color{R: m.Diffuse.R, G: m.Diffuse.G, B: m.Diffuse.B, A: opacity}
	imported.EmissiveColor = common.Color{R: m.Emissive.R, G: m.Emissive.G, B: m.Emissive.B, A: 1}
	imported.Smoothness = mgl32.Clamp(m.Shininess/256, 0, 1)
	if m.MapKd != "" {
		imported.AlbedoPath = resolvePath(dir, m.MapKd)
	}
	return imported
}

func resolvePath(dir, path string) string {
	path = filepath.FromSlash(strings.ReplaceAll(path, `\`, "/"))
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}

func vec3At(data []float32, index int) mgl32.Vec3 {
	v, _ := lookup3(data, index)
	return v
}

func lookup3(data []float32, index int) (mgl32.Vec3, bool) {
	if index < 0 || 3*index+2 >= len(data) {
		return mgl32.Vec3{}, false
	}
	return mgl32.Vec3{data[3*index], data[3*index+1], data[3*index+2]}, true
}

func lookup2(data []float32, index int) ([2]float32, bool) {
	if index < 0 || 2*index+1 >= len(data) {
		return [2]float32{}, false
	}
	return [2]float32{data[2*index], data[2*index+1]}, true
}
