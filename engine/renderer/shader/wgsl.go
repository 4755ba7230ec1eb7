package shader

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// wgslMember is a struct member or an entry point parameter.
type wgslMember struct {
	name     string
	typeName string
	location int // -1 without @location
	builtin  bool
}

// wgslModule is the comment-free source of one pre-processed stage plus its struct declarations.
type wgslModule struct {
	source  string
	structs map[string][]wgslMember
}

var (
	structRegex    = regexp.MustCompile(`struct\s+(\w+)\s*\{([^}]*)\}`)
	locationRegex  = regexp.MustCompile(`@location\(\s*(\d+)\s*\)`)
	attributeRegex = regexp.MustCompile(`@\w+(\([^)]*\))?`)

	// resourceRegex matches `@group(G) @binding(B) var<space> name: type;`; the address space is empty for
	// textures and samplers.
	resourceRegex = regexp.MustCompile(`@group\((\d+)\)\s*@binding\((\d+)\)\s*var(?:<([^>]*)>)?\s+\w+\s*:\s*([^;]+?)\s*;`)
)

// parseWGSL strips comments and collects struct declarations.
func parseWGSL(source string) *wgslModule {
	m := &wgslModule{
		source:  stripComments(source),
		structs: make(map[string][]wgslMember),
	}
	for _, match := range structRegex.FindAllStringSubmatch(m.source, -1) {
		m.structs[match[1]] = parseMembers(match[2])
	}
	return m
}

// parseMembers splits a struct body or a parameter list into members.
func parseMembers(list string) []wgslMember {
	var members []wgslMember
	for _, part := range splitTopLevel(list) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		m := wgslMember{location: -1}
		if loc := locationRegex.FindStringSubmatch(part); loc != nil {
			m.location, _ = strconv.Atoi(loc[1])
		}
		m.builtin = strings.Contains(part, "@builtin")

		decl := strings.TrimSpace(attributeRegex.ReplaceAllString(part, ""))
		name, typeName, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		m.name = strings.TrimSpace(name)
		m.typeName = strings.Join(strings.Fields(typeName), "")
		members = append(members, m)
	}
	return members
}

// entryPoint finds the function marked @vertex or @fragment and returns its name and parameter list.
func (m *wgslModule) entryPoint(shaderType ShaderType) (name, params string, ok bool) {
	attr := "@" + shaderType.String()
	src := m.source
	for {
		i := strings.Index(src, attr)
		if i < 0 {
			return "", "", false
		}
		src = src[i+len(attr):]
		rest := strings.TrimLeft(src, " \t\r\n")
		if !strings.HasPrefix(rest, "fn") {
			continue
		}
		rest = strings.TrimLeft(rest[2:], " \t\r\n")
		open := strings.IndexByte(rest, '(')
		if open <= 0 {
			return "", "", false
		}
		name = strings.TrimSpace(rest[:open])
		depth := 0
		for j := open; j < len(rest); j++ {
			switch rest[j] {
			case '(':
				depth++
			case ')':
				depth--
				if depth == 0 {
					return name, rest[open+1 : j], true
				}
			}
		}
		return "", "", false
	}
}

// vertexInputs resolves the @location inputs of a vertex entry point. Parameters may carry @location
// themselves or be structs whose members do.
func (m *wgslModule) vertexInputs(params string) ([]VertexInput, error) {
	var inputs []VertexInput
	seen := make(map[int]string)

	add := func(member wgslMember) error {
		if member.builtin || member.location < 0 {
			return nil
		}
		components, ok := floatComponents(member.typeName)
		if !ok {
			return fmt.Errorf("vertex input %s: unsupported type %s", member.name, member.typeName)
		}
		if other, dup := seen[member.location]; dup {
			return fmt.Errorf("vertex inputs %s and %s share location %d", other, member.name, member.location)
		}
		seen[member.location] = member.name
		inputs = append(inputs, VertexInput{Location: uint32(member.location), ComponentCount: components})
		return nil
	}

	for _, p := range parseMembers(params) {
		if fields, ok := m.structs[p.typeName]; ok && p.location < 0 {
			for _, f := range fields {
				if err := add(f); err != nil {
					return nil, err
				}
			}
			continue
		}
		if err := add(p); err != nil {
			return nil, err
		}
	}

	sort.Slice(inputs, func(i, j int) bool { return inputs[i].Location < inputs[j].Location })
	return inputs, nil
}

// floatComponents returns the component count of f32 and vecN<f32> types.
func floatComponents(typeName string) (uint32, bool) {
	if typeName == "f32" {
		return 1, true
	}
	n, elem, ok := vectorType(typeName)
	if !ok || elem != "f32" {
		return 0, false
	}
	return uint32(n), true
}

// splitTopLevel splits at commas outside angle brackets and parentheses, so array<Light, 16> and
// @location(0) stay whole.
func splitTopLevel(s string) []string {
	var parts []string
	depth, start := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<', '(':
			depth++
		case '>', ')':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, s[start:])
}

// stripComments removes line comments and nested block comments, keeping newlines.
func stripComments(source string) string {
	var sb strings.Builder
	sb.Grow(len(source))
	depth := 0
	for i := 0; i < len(source); i++ {
		c := source[i]
		var next byte
		if i+1 < len(source) {
			next = source[i+1]
		}
		switch {
		case c == '/' && next == '*':
			depth++
			i++
		case c == '*' && next == '/' && depth > 0:
			depth--
			i++
		case depth > 0:
			if c == '\n' {
				sb.WriteByte('\n')
			}
		case c == '/' && next == '/':
			for i < len(source) && source[i] != '\n' {
				i++
			}
			if i < len(source) {
				sb.WriteByte('\n')
			}
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String()
}
