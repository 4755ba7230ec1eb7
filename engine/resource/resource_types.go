package resource

import (
	"math"
	"time"

	"github.com/Carmen-Shannon/oxy-forward/engine/renderer"
)

// ProgramID indexes a program in the registry. It stays valid across reloads.
type ProgramID uint32

// TextureID indexes a texture in the registry.
type TextureID uint32

// TextureNotFound is returned when a texture could not be loaded.
const TextureNotFound TextureID = math.MaxUint32

// BuiltinPrefix marks texture paths that are generated in memory rather than read from disk.
const BuiltinPrefix = "builtin:"

// Program is a shader program loaded from a combined source file.
type Program struct {
	Handle renderer.ProgramHandle
	Path   string
	Name   string

	// LastWrite is the source file's modification time at the last (re)compile.
	LastWrite time.Time

	// VertexInputs are the active attributes of the linked program, ordered by location.
	VertexInputs []renderer.VertexInput

	// Generation is incremented on every reload.
	Generation uint32
}

// Texture is a GPU texture registered under a unique path.
type Texture struct {
	Handle renderer.TextureHandle
	Path   string
}

// Fallbacks are the 1x1 textures substituted for absent or broken material textures.
type Fallbacks struct {
	White  TextureID
	Black  TextureID
	Normal TextureID
	Error  TextureID
}

// InfoLog receives user-visible diagnostics.
type InfoLog interface {
	Info(format string, args ...any)
}
