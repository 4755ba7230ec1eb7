package model

import (
	"fmt"
	"log"

	"github.com/Carmen-Shannon/oxy-forward/engine/renderer"
	"github.com/Carmen-Shannon/oxy-forward/engine/resource"
)

// GetVAO returns the vertex binding that feeds a program's inputs from a submesh, creating it on first use.
// Bindings are cached on the submesh per program id and rebuilt when the program's generation changes.
// The stale binding is deleted. A failed creation caches nothing and returns 0, so the next call retries.
//
// Every program input must have a submesh attribute at the same location; a missing match panics.
//
// Parameters:
//   - backend: the renderer backend
//   - mesh: the mesh owning the submesh
//   - submeshIndex: index into mesh.Submeshes
//   - programID: the registry id of the program
//   - program: the registry record of the program
//
// Returns:
//   - renderer.VertexBindingHandle: the binding to draw the submesh with
func GetVAO(backend renderer.RendererBackend, mesh *Mesh, submeshIndex int, programID resource.ProgramID, program *resource.Program) renderer.VertexBindingHandle {
	sub := &mesh.Submeshes[submeshIndex]

	stale := -1
	for i, vao := range sub.vaos {
		if vao.Program != programID {
			continue
		}
		if vao.Generation == program.Generation {
			return vao.Binding
		}
		stale = i
		break
	}

	desc := renderer.VertexBindingDescriptor{
		Label:        fmt.Sprintf("%s/%d/%s", mesh.Name, submeshIndex, program.Name),
		Program:      program.Handle,
		VertexBuffer: mesh.VertexBuffer,
		IndexBuffer:  mesh.IndexBuffer,
		IndexFormat:  mesh.IndexFormat,
		Stride:       sub.Layout.Stride,
	}
	for _, input := range program.VertexInputs {
		attr, ok := sub.Layout.Attribute(input.Location)
		if !ok {
			panic(fmt.Sprintf("program %q input at location %d has no attribute in mesh %q submesh %d",
				program.Name, input.Location, mesh.Name, submeshIndex))
		}
		desc.Attributes = append(desc.Attributes, renderer.AttributeBinding{
			Location:       input.Location,
			ComponentCount: attr.ComponentCount,
			Offset:         attr.Offset + sub.VertexOffset,
		})
	}

	binding, err := backend.CreateVertexBinding(desc)
	if err != nil {
		log.Printf("[Model] failed to create vertex binding %s: %v", desc.Label, err)
		return 0
	}

	entry := VAO{Program: programID, Generation: program.Generation, Binding: binding}
	if stale >= 0 {
		backend.DeleteVertexBinding(sub.vaos[stale].Binding)
		sub.vaos[stale] = entry
	} else {
		sub.vaos = append(sub.vaos, entry)
	}
	return binding
}
