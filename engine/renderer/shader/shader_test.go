package shader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const texturedWGSL = `
struct VertexInput {
    @location(0) position: vec3<f32>,
    @location(2) uv: vec2<f32>,
    @location(1) normal: vec3<f32>,
};

struct VertexOutput {
    @builtin(position) clip: vec4<f32>,
    @location(0) uv: vec2<f32>,
};

struct LocalParams {
    world: mat4x4<f32>,
    wvp: mat4x4<f32>,
};

@group(0) @binding(0) var albedo: texture_2d<f32>;
@group(0) @binding(1) var albedoSampler: sampler;
@group(2) @binding(0) var<uniform> local: LocalParams;

#ifdef VERTEX
@vertex
fn vs_main(in: VertexInput) -> VertexOutput {
    var out: VertexOutput;
    out.clip = local.wvp * vec4<f32>(in.position, 1.0);
    out.uv = in.uv;
    return out;
}
#endif

#ifdef FRAGMENT
@fragment
fn fs_main(in: VertexOutput) -> @location(0) vec4<f32> {
    return textureSample(albedo, albedoSampler, in.uv);
}
#endif
`

func TestAssemble(t *testing.T) {
	chunks := Assemble("textured", ShaderTypeVertex, "body")
	require.Len(t, chunks, 4)
	assert.Equal(t, VersionDirective, chunks[0])
	assert.Equal(t, "#define textured\n", chunks[1])
	assert.Equal(t, "#define VERTEX\n", chunks[2])
	assert.Equal(t, "body", chunks[3])

	chunks = Assemble("textured", ShaderTypeFragment, "body")
	assert.Equal(t, "#define FRAGMENT\n", chunks[2])
}

func TestPreProcessorBranches(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
		miss  []string
	}{
		{
			name:  "ifdef taken",
			input: "#define A\n#ifdef A\nyes\n#else\nno\n#endif\n",
			want:  []string{"yes"},
			miss:  []string{"no"},
		},
		{
			name:  "ifndef taken",
			input: "#ifndef A\nyes\n#else\nno\n#endif\n",
			want:  []string{"yes"},
			miss:  []string{"no"},
		},
		{
			name:  "nested inactive parent",
			input: "#ifdef A\n#ifndef B\ninner\n#endif\n#endif\nouter\n",
			want:  []string{"outer"},
			miss:  []string{"inner"},
		},
		{
			name:  "undef",
			input: "#define A\n#undef A\n#ifdef A\nyes\n#endif\n",
			miss:  []string{"yes"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := NewPreProcessor().Process(tt.input)
			require.NoError(t, err)
			for _, w := range tt.want {
				assert.Contains(t, out, w)
			}
			for _, m := range tt.miss {
				assert.NotContains(t, out, m)
			}
			assert.NotContains(t, out, "#")
		})
	}
}

func TestPreProcessorKeepsLineNumbers(t *testing.T) {
	in := "#version 430\n#define VERTEX\na\n#ifdef FRAGMENT\nb\n#endif\nc"
	out, err := NewPreProcessor().Process(in)
	require.NoError(t, err)
	assert.Equal(t, strings.Count(in, "\n"), strings.Count(out, "\n"))
	lines := strings.Split(out, "\n")
	assert.Equal(t, "a", lines[2])
	assert.Equal(t, "c", lines[6])
}

func TestPreProcessorErrors(t *testing.T) {
	tests := map[string]string{
		"stray else":      "#else\n",
		"stray endif":     "#endif\n",
		"duplicate else":  "#ifdef A\n#else\n#else\n#endif\n",
		"unterminated":    "#ifdef A\n",
		"unknown":         "#pragma once\n",
		"nameless define": "#define\n",
		"nameless ifdef":  "#ifdef\n",
	}
	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := NewPreProcessor().Process(input)
			assert.Error(t, err)
		})
	}
}

func TestPreProcessorDefined(t *testing.T) {
	p := NewPreProcessor()
	_, err := p.Process(Assemble("quad", ShaderTypeFragment, "")...)
	require.NoError(t, err)
	assert.True(t, p.Defined("quad"))
	assert.True(t, p.Defined("FRAGMENT"))
	assert.False(t, p.Defined("VERTEX"))
}

func TestNewShaderVertex(t *testing.T) {
	s, err := NewShader("textured", ShaderTypeVertex, Assemble("textured", ShaderTypeVertex, texturedWGSL)...)
	require.NoError(t, err)

	assert.Equal(t, "vs_main", s.EntryPoint())
	assert.NotContains(t, s.Source(), "fs_main")
	assert.Equal(t, []VertexInput{
		{Location: 0, ComponentCount: 3},
		{Location: 1, ComponentCount: 3},
		{Location: 2, ComponentCount: 2},
	}, s.VertexInputs())

	layouts := s.BindGroupLayoutDescriptors()
	require.Contains(t, layouts, 2)
	local := layouts[2].Entries
	require.Len(t, local, 1)
	assert.Equal(t, wgpu.BufferBindingTypeUniform, local[0].Buffer.Type)
	assert.True(t, local[0].Buffer.HasDynamicOffset)
	assert.Equal(t, uint64(128), local[0].Buffer.MinBindingSize)
	assert.Equal(t, wgpu.ShaderStageVertex, local[0].Visibility)

	require.Contains(t, layouts, 0)
	tex := layouts[0].Entries
	require.Len(t, tex, 2)
	assert.Equal(t, wgpu.TextureViewDimension2D, tex[0].Texture.ViewDimension)
	assert.Equal(t, wgpu.SamplerBindingTypeFiltering, tex[1].Sampler.Type)
}

func TestNewShaderFragment(t *testing.T) {
	s, err := NewShader("textured", ShaderTypeFragment, Assemble("textured", ShaderTypeFragment, texturedWGSL)...)
	require.NoError(t, err)
	assert.Equal(t, "fs_main", s.EntryPoint())
	assert.Nil(t, s.VertexInputs())
	assert.Equal(t, ShaderTypeFragment, s.ShaderType())
}

func TestNewShaderMissingEntryPoint(t *testing.T) {
	_, err := NewShader("broken", ShaderTypeVertex, Assemble("broken", ShaderTypeVertex, "struct A { x: f32, };")...)
	assert.Error(t, err)
}

func TestMergeBindGroupLayouts(t *testing.T) {
	vs, err := NewShader("textured", ShaderTypeVertex, Assemble("textured", ShaderTypeVertex, texturedWGSL)...)
	require.NoError(t, err)
	fs, err := NewShader("textured", ShaderTypeFragment, Assemble("textured", ShaderTypeFragment, texturedWGSL)...)
	require.NoError(t, err)

	merged := MergeBindGroupLayouts(vs.BindGroupLayoutDescriptors(), fs.BindGroupLayoutDescriptors())
	require.Len(t, merged, 2)
	for _, e := range merged[2].Entries {
		assert.Equal(t, wgpu.ShaderStageVertex|wgpu.ShaderStageFragment, e.Visibility)
	}
}

func TestFloatVertexFormat(t *testing.T) {
	f, ok := FloatVertexFormat(3)
	assert.True(t, ok)
	assert.Equal(t, wgpu.VertexFormatFloat32x3, f)
	_, ok = FloatVertexFormat(5)
	assert.False(t, ok)
}

func TestNewShaderMeshProgramFromAsset(t *testing.T) {
	src, err := os.ReadFile(filepath.Join("..", "..", "..", "assets", "shaders", "textured.wgsl"))
	require.NoError(t, err)

	vs, err := NewShader("mesh", ShaderTypeVertex, Assemble("TEXTURED_MESH", ShaderTypeVertex, string(src))...)
	require.NoError(t, err)
	assert.Equal(t, []VertexInput{
		{Location: 0, ComponentCount: 3},
		{Location: 1, ComponentCount: 3},
		{Location: 2, ComponentCount: 2},
	}, vs.VertexInputs())

	fs, err := NewShader("mesh", ShaderTypeFragment, Assemble("TEXTURED_MESH", ShaderTypeFragment, string(src))...)
	require.NoError(t, err)
	globals := fs.BindGroupLayoutDescriptors()[1].Entries
	require.Len(t, globals, 1)
	// 16 byte header plus 16 lights of 48 bytes
	assert.Equal(t, uint64(16+16*48), globals[0].Buffer.MinBindingSize)

	quad, err := NewShader("quad", ShaderTypeVertex, Assemble("TEXTURED_GEOMETRY", ShaderTypeVertex, string(src))...)
	require.NoError(t, err)
	assert.Equal(t, []VertexInput{
		{Location: 0, ComponentCount: 3},
		{Location: 1, ComponentCount: 2},
	}, quad.VertexInputs())
	assert.Empty(t, quad.BindGroupLayoutDescriptors())
}

func TestVertexInputsFromParameters(t *testing.T) {
	src := `
/* vs_main(bogus: u32) /* nested */ still comment */
@vertex
fn vs_main(@builtin(vertex_index) index: u32, @location(1) uv: vec2f, @location(0) position: vec3<f32>) -> @builtin(position) vec4f {
    return vec4f(position, 1.0); // @location(7) w: f32
}
`
	s, err := NewShader("params", ShaderTypeVertex, Assemble("params", ShaderTypeVertex, src)...)
	require.NoError(t, err)
	assert.Equal(t, "vs_main", s.EntryPoint())
	assert.Equal(t, []VertexInput{
		{Location: 0, ComponentCount: 3},
		{Location: 1, ComponentCount: 2},
	}, s.VertexInputs())
}

func TestNewShaderRejectsUnsupportedDeclarations(t *testing.T) {
	const vs = "@vertex\nfn vs_main(%s) -> @builtin(position) vec4<f32> { return vec4<f32>(); }\n"
	tests := map[string]string{
		"integer input":     fmt.Sprintf(vs, "@location(0) id: vec2<u32>"),
		"shared location":   fmt.Sprintf(vs, "@location(0) a: f32, @location(0) b: f32"),
		"storage buffer":    "@group(1) @binding(0) var<storage, read> data: array<f32>;\n" + fmt.Sprintf(vs, ""),
		"depth texture":     "@group(0) @binding(0) var shadow: texture_depth_2d;\n" + fmt.Sprintf(vs, ""),
		"runtime array":     "struct B { xs: array<f32>, };\n@group(1) @binding(0) var<uniform> b: B;\n" + fmt.Sprintf(vs, ""),
		"unknown block":     "@group(1) @binding(0) var<uniform> b: Missing;\n" + fmt.Sprintf(vs, ""),
		"self nested block": "struct R { r: R, };\n@group(1) @binding(0) var<uniform> b: R;\n" + fmt.Sprintf(vs, ""),
	}
	for name, src := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := NewShader(name, ShaderTypeVertex, src)
			assert.Error(t, err)
		})
	}
}

func TestUniformLayout(t *testing.T) {
	m := parseWGSL(`
struct Inner { a: vec3f, b: u32, };
struct Outer {
    m: mat3x3<f32>,
    v: vec2<f32>,
    items: array<Inner, 2>,
    s: f32,
};`)
	tests := []struct {
		typeName    string
		size, align int
	}{
		{"f32", 4, 4},
		{"vec3<f32>", 12, 16},
		{"vec2u", 8, 8},
		{"mat4x4<f32>", 64, 16},
		{"mat3x3f", 48, 16},
		{"mat2x2<f32>", 16, 8},
		{"Inner", 16, 16},
		{"array<Inner,2>", 32, 16},
		// m 0..48, v 48..56, items 64..96, s 96..100, rounded to 16
		{"Outer", 112, 16},
	}
	for _, tt := range tests {
		size, align, err := m.layout(tt.typeName, 0)
		require.NoError(t, err, tt.typeName)
		assert.Equal(t, tt.size, size, tt.typeName)
		assert.Equal(t, tt.align, align, tt.typeName)
	}
}
