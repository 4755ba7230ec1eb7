package loader

import "io"

// loaderBackend decodes one model file format into an ImportedModel.
type loaderBackend interface {
	// Load decodes a model file and its material library.
	//
	// Parameters:
	//   - path: the model file
	//
	// Returns:
	//   - *ImportedModel: the decoded model
	//   - error: error if the file cannot be read or parsed
	Load(path string) (*ImportedModel, error)

	// LoadReader decodes a model from readers. Texture paths are resolved against dir.
	//
	// Parameters:
	//   - name: the model name
	//   - r: the model data
	//   - materials: the material library, may be nil
	//   - dir: the directory texture paths are relative to
	//
	// Returns:
	//   - *ImportedModel: the decoded model
	//   - error: error if the data cannot be parsed
	LoadReader(name string, r io.Reader, materials io.Reader, dir string) (*ImportedModel, error)
}
