package scene

import "fmt"

// Mode selects what Render draws.
type Mode int

const (
	// ModeTexturedQuad draws the embedded quad with the quad texture, alpha blended.
	ModeTexturedQuad Mode = iota

	// ModeTexturedMesh draws every entity's model with its materials' albedo textures.
	ModeTexturedMesh
)

func (m Mode) String() string {
	switch m {
	case ModeTexturedQuad:
		return "textured_quad"
	case ModeTexturedMesh:
		return "textured_mesh"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// ParseMode maps a configuration string to a Mode.
//
// Parameters:
//   - name: "textured_quad" / "quad" or "textured_mesh" / "mesh"; empty means quad
//
// Returns:
//   - Mode: the mode
//   - error: error if the name is not recognized
func ParseMode(name string) (Mode, error) {
	switch name {
	case "", "textured_quad", "quad":
		return ModeTexturedQuad, nil
	case "textured_mesh", "mesh":
		return ModeTexturedMesh, nil
	default:
		return ModeTexturedQuad, fmt.Errorf("unknown render mode %q", name)
	}
}
