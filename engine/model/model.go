package model

import "github.com/Carmen-Shannon/oxy-forward/engine/renderer/material"

// Model pairs a mesh with one material per submesh.
type Model struct {
	Name string
	Mesh MeshID

	// Materials is parallel to the mesh's submeshes.
	Materials []material.MaterialID
}
