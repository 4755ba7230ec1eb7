package shader

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/Carmen-Shannon/oxy-forward/common"
	"github.com/cogentcore/webgpu/wgpu"
)

// FloatVertexFormat returns the 32-bit float vertex format with the given component count.
//
// Parameters:
//   - components: the component count (1-4)
//
// Returns:
//   - wgpu.VertexFormat: the matching format
//   - bool: false if the count is out of range
func FloatVertexFormat(components uint32) (wgpu.VertexFormat, bool) {
	switch components {
	case 1:
		return wgpu.VertexFormatFloat32, true
	case 2:
		return wgpu.VertexFormatFloat32x2, true
	case 3:
		return wgpu.VertexFormatFloat32x3, true
	case 4:
		return wgpu.VertexFormatFloat32x4, true
	default:
		return wgpu.VertexFormatUndefined, false
	}
}

// bindGroupLayouts builds one layout entry per resource declaration, grouped by @group index. Uniform
// blocks are dynamic-offset buffers whose MinBindingSize is the block's host-shareable size; only
// texture_2d<f32> and sampler are accepted besides them.
func (m *wgslModule) bindGroupLayouts(visibility wgpu.ShaderStage) (map[int]wgpu.BindGroupLayoutDescriptor, error) {
	groups := make(map[int][]wgpu.BindGroupLayoutEntry)
	for _, match := range resourceRegex.FindAllStringSubmatch(m.source, -1) {
		group, _ := strconv.Atoi(match[1])
		binding, _ := strconv.Atoi(match[2])
		space := strings.TrimSpace(match[3])
		typeName := strings.Join(strings.Fields(match[4]), "")

		entry := wgpu.BindGroupLayoutEntry{Binding: uint32(binding), Visibility: visibility}
		switch {
		case space == "uniform":
			size, _, err := m.layout(typeName, 0)
			if err != nil {
				return nil, fmt.Errorf("@group(%d) @binding(%d): %w", group, binding, err)
			}
			entry.Buffer.Type = wgpu.BufferBindingTypeUniform
			entry.Buffer.HasDynamicOffset = true
			entry.Buffer.MinBindingSize = uint64(size)
		case space == "" && typeName == "texture_2d<f32>":
			entry.Texture.SampleType = wgpu.TextureSampleTypeFloat
			entry.Texture.ViewDimension = wgpu.TextureViewDimension2D
		case space == "" && typeName == "sampler":
			entry.Sampler.Type = wgpu.SamplerBindingTypeFiltering
		default:
			return nil, fmt.Errorf("@group(%d) @binding(%d): unsupported resource var<%s> %s", group, binding, space, typeName)
		}
		groups[group] = append(groups[group], entry)
	}

	result := make(map[int]wgpu.BindGroupLayoutDescriptor, len(groups))
	for g, entries := range groups {
		sortEntries(entries)
		result[g] = wgpu.BindGroupLayoutDescriptor{Entries: entries}
	}
	return result, nil
}

// layout returns the size and alignment of a host-shareable type: scalars, vectors, f32 matrices,
// fixed-size arrays and structs of those.
func (m *wgslModule) layout(typeName string, depth int) (size, align int, err error) {
	if depth > 16 {
		return 0, 0, fmt.Errorf("type %s nests too deeply", typeName)
	}

	switch typeName {
	case "f32", "i32", "u32":
		return 4, 4, nil
	}
	if n, _, ok := vectorType(typeName); ok {
		size, align = vectorLayout(n)
		return size, align, nil
	}
	if cols, rows, ok := matrixType(typeName); ok {
		colSize, colAlign := vectorLayout(rows)
		stride := common.Align(colSize, colAlign)
		return cols * stride, colAlign, nil
	}

	if inner, ok := strings.CutPrefix(typeName, "array<"); ok && strings.HasSuffix(inner, ">") {
		parts := splitTopLevel(strings.TrimSuffix(inner, ">"))
		if len(parts) != 2 {
			return 0, 0, fmt.Errorf("runtime-sized %s cannot be a uniform", typeName)
		}
		count, convErr := strconv.Atoi(parts[1])
		if convErr != nil || count <= 0 {
			return 0, 0, fmt.Errorf("bad array count in %s", typeName)
		}
		elemSize, elemAlign, elemErr := m.layout(parts[0], depth+1)
		if elemErr != nil {
			return 0, 0, elemErr
		}
		return count * common.Align(elemSize, elemAlign), elemAlign, nil
	}

	members, ok := m.structs[typeName]
	if !ok {
		return 0, 0, fmt.Errorf("unknown type %s", typeName)
	}
	offset, align := 0, 1
	for _, member := range members {
		memberSize, memberAlign, memberErr := m.layout(member.typeName, depth+1)
		if memberErr != nil {
			return 0, 0, fmt.Errorf("%s.%s: %w", typeName, member.name, memberErr)
		}
		offset = common.Align(offset, memberAlign) + memberSize
		align = max(align, memberAlign)
	}
	return common.Align(offset, align), align, nil
}

// vectorLayout sizes a 4-byte-element vector: vec3 is 12 bytes aligned to 16.
func vectorLayout(n int) (size, align int) {
	size = 4 * n
	align = size
	if n == 3 {
		align = 16
	}
	return size, align
}

// vectorType parses vecN<T> and the vecNf/vecNi/vecNu shorthands.
func vectorType(typeName string) (n int, elem string, ok bool) {
	if len(typeName) < 4 || !strings.HasPrefix(typeName, "vec") {
		return 0, "", false
	}
	n = int(typeName[3] - '0')
	if n < 2 || n > 4 {
		return 0, "", false
	}
	switch rest := typeName[4:]; rest {
	case "f", "<f32>":
		return n, "f32", true
	case "i", "<i32>":
		return n, "i32", true
	case "u", "<u32>":
		return n, "u32", true
	}
	return 0, "", false
}

// matrixType parses matCxR<f32> and matCxRf.
func matrixType(typeName string) (cols, rows int, ok bool) {
	if len(typeName) < 6 || !strings.HasPrefix(typeName, "mat") || typeName[4] != 'x' {
		return 0, 0, false
	}
	if rest := typeName[6:]; rest != "f" && rest != "<f32>" {
		return 0, 0, false
	}
	cols, rows = int(typeName[3]-'0'), int(typeName[5]-'0')
	if cols < 2 || cols > 4 || rows < 2 || rows > 4 {
		return 0, 0, false
	}
	return cols, rows, true
}

// MergeBindGroupLayouts merges the per-stage bind group layout descriptors of a program into one
// map. Entries that appear in both stages at the same binding get their visibility OR-ed together.
//
// Parameters:
//   - stages: the per-stage descriptor maps
//
// Returns:
//   - map[int]wgpu.BindGroupLayoutDescriptor: merged descriptors keyed by group index
func MergeBindGroupLayouts(stages ...map[int]wgpu.BindGroupLayoutDescriptor) map[int]wgpu.BindGroupLayoutDescriptor {
	merged := make(map[int]map[uint32]wgpu.BindGroupLayoutEntry)
	for _, stage := range stages {
		for g, desc := range stage {
			if merged[g] == nil {
				merged[g] = make(map[uint32]wgpu.BindGroupLayoutEntry)
			}
			for _, e := range desc.Entries {
				if existing, ok := merged[g][e.Binding]; ok {
					existing.Visibility |= e.Visibility
					merged[g][e.Binding] = existing
					continue
				}
				merged[g][e.Binding] = e
			}
		}
	}

	result := make(map[int]wgpu.BindGroupLayoutDescriptor, len(merged))
	for g, entries := range merged {
		list := make([]wgpu.BindGroupLayoutEntry, 0, len(entries))
		for _, e := range entries {
			list = append(list, e)
		}
		sortEntries(list)
		result[g] = wgpu.BindGroupLayoutDescriptor{Entries: list}
	}
	return result
}

func sortEntries(entries []wgpu.BindGroupLayoutEntry) {
	sort.Slice(entries, func(i, j int) bool { return entries[i].Binding < entries[j].Binding })
}
