package resource

// RegistryBuilderOption is a functional option for configuring a registry.
type RegistryBuilderOption func(*registry)

// WithInfoLog attaches the info log that receives load diagnostics, usually the debug overlay.
//
// Parameters:
//   - infoLog: the destination for diagnostics
//
// Returns:
//   - RegistryBuilderOption: a function that applies the info log option
func WithInfoLog(infoLog InfoLog) RegistryBuilderOption {
	return func(r *registry) {
		r.infoLog = infoLog
	}
}

// WithDecodeWorkers sets the maximum number of goroutines LoadTextures decodes on.
//
// Parameters:
//   - n: the worker count, values below 1 are treated as 1
//
// Returns:
//   - RegistryBuilderOption: a function that applies the worker count
func WithDecodeWorkers(n int) RegistryBuilderOption {
	return func(r *registry) {
		r.decodeWorkers = max(n, 1)
	}
}

// WithFlipY controls whether decoded images are flipped so the first row is the bottom of the image.
// Defaults to true.
func WithFlipY(flip bool) RegistryBuilderOption {
	return func(r *registry) {
		r.flipY = flip
	}
}
