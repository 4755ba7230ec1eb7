package shader

import (
	"fmt"
	"strings"
)

// VersionDirective is the fixed version line prepended to every stage.
const VersionDirective = "#version 430\n"

// stageDefines maps each render stage to the guard define that selects it inside a combined shader file.
var stageDefines = map[ShaderType]string{
	ShaderTypeVertex:   "#define VERTEX\n",
	ShaderTypeFragment: "#define FRAGMENT\n",
}

// Assemble builds the ordered source chunks for one stage of a combined shader file:
// the version directive, the program name define, the stage define, then the raw file contents.
// The chunks are kept separate so the driver receives them as distinct source strings.
//
// Parameters:
//   - name: the logical program name, emitted as "#define <name>"
//   - shaderType: the stage being compiled
//   - source: the raw shader file contents
//
// Returns:
//   - []string: exactly four chunks in build order
func Assemble(name string, shaderType ShaderType, source string) []string {
	return []string{
		VersionDirective,
		fmt.Sprintf("#define %s\n", strings.TrimSpace(name)),
		stageDefines[shaderType],
		source,
	}
}
