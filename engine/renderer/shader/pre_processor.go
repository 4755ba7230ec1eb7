// pre_processor.go implements the conditional-compilation pass that lets a single WGSL file hold
// both stages of a program. WGSL has no pre-processor of its own, so the GLSL-style directives the
// loader prepends (#version, #define) and the guards inside the file (#ifdef, #ifndef, #else,
// #endif, #undef) are resolved here before the source reaches the WGSL compiler.
//
// Lines removed by the pass are replaced with empty lines so compiler diagnostics keep
// the line numbers of the concatenated chunks.
package shader

import (
	"fmt"
	"strings"
)

// preProcessor is the implementation of the PreProcessor interface.
type preProcessor struct {
	defines map[string]string
}

// conditionalFrame tracks one open #ifdef/#ifndef block.
type conditionalFrame struct {
	parentActive bool
	taken        bool
	seenElse     bool
	line         int
}

// PreProcessor resolves conditional-compilation directives in WGSL source.
type PreProcessor interface {
	// Process concatenates the chunks and resolves every directive line.
	//
	// Parameters:
	//   - chunks: ordered source chunks
	//
	// Returns:
	//   - string: WGSL source with all directives removed
	//   - error: error on unknown directives or unbalanced conditionals
	Process(chunks ...string) (string, error)

	// Defined reports whether name was defined at the end of the most recent Process call.
	//
	// Parameters:
	//   - name: the macro name
	//
	// Returns:
	//   - bool: true if defined
	Defined(name string) bool
}

var _ PreProcessor = &preProcessor{}

// NewPreProcessor creates a PreProcessor with no predefined names.
//
// Returns:
//   - PreProcessor: a ready-to-use pre-processor instance
func NewPreProcessor() PreProcessor {
	return &preProcessor{defines: make(map[string]string)}
}

func (p *preProcessor) Defined(name string) bool {
	_, ok := p.defines[name]
	return ok
}

func (p *preProcessor) Process(chunks ...string) (string, error) {
	clear(p.defines)

	lines := strings.Split(strings.Join(chunks, ""), "\n")
	out := make([]string, 0, len(lines))
	var stack []conditionalFrame
	active := true

	for i, line := range lines {
		lineNo := i + 1
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "#") {
			if active {
				out = append(out, line)
			} else {
				out = append(out, "")
			}
			continue
		}
		out = append(out, "")

		directive, arg, _ := strings.Cut(strings.TrimSpace(trimmed[1:]), " ")
		arg = strings.TrimSpace(arg)

		switch directive {
		case "version":
			// consumed; WGSL has no version line
		case "define":
			if !active {
				continue
			}
			name, value, _ := strings.Cut(arg, " ")
			if name == "" {
				return "", fmt.Errorf("line %d: #define without a name", lineNo)
			}
			p.defines[name] = strings.TrimSpace(value)
		case "undef":
			if active {
				delete(p.defines, arg)
			}
		case "ifdef", "ifndef":
			if arg == "" {
				return "", fmt.Errorf("line %d: #%s without a name", lineNo, directive)
			}
			_, defined := p.defines[arg]
			cond := defined == (directive == "ifdef")
			stack = append(stack, conditionalFrame{parentActive: active, taken: cond, line: lineNo})
			active = active && cond
		case "else":
			if len(stack) == 0 {
				return "", fmt.Errorf("line %d: #else without #ifdef", lineNo)
			}
			top := &stack[len(stack)-1]
			if top.seenElse {
				return "", fmt.Errorf("line %d: duplicate #else for block opened on line %d", lineNo, top.line)
			}
			top.seenElse = true
			active = top.parentActive && !top.taken
		case "endif":
			if len(stack) == 0 {
				return "", fmt.Errorf("line %d: #endif without #ifdef", lineNo)
			}
			active = stack[len(stack)-1].parentActive
			stack = stack[:len(stack)-1]
		default:
			return "", fmt.Errorf("line %d: unsupported directive #%s", lineNo, directive)
		}
	}

	if len(stack) > 0 {
		return "", fmt.Errorf("line %d: unterminated conditional block", stack[len(stack)-1].line)
	}
	return strings.Join(out, "\n"), nil
}
