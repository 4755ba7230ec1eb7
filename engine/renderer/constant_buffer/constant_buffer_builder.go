package constant_buffer

// ConstantBufferBuilderOption is a functional option applied during NewConstantBuffer.
type ConstantBufferBuilderOption func(*constantBuffer)

// WithCapacity overrides the buffer size in bytes.
//
// Parameters:
//   - capacity: the size in bytes
//
// Returns:
//   - ConstantBufferBuilderOption: a function that applies the capacity option
func WithCapacity(capacity int) ConstantBufferBuilderOption {
	return func(c *constantBuffer) {
		c.capacity = capacity
	}
}

// WithAlignment overrides the uniform offset alignment reported by the device.
//
// Parameters:
//   - alignment: the alignment in bytes
//
// Returns:
//   - ConstantBufferBuilderOption: a function that applies the alignment option
func WithAlignment(alignment int) ConstantBufferBuilderOption {
	return func(c *constantBuffer) {
		c.alignment = max(alignment, 1)
	}
}
