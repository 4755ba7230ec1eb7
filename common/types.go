// package common contains plain data types and helpers shared by the engine packages. They are not interface-wrapped structs,
// just plain structs that express commonly used data-types.
package common

// TextureStagingData holds decoded 8-bit pixel data pending GPU upload.
type TextureStagingData struct {
	// Pixels is the tightly packed, row-major pixel data. Row 0 is the bottom row of the image when the data
	// was produced by DecodeImage with flipping enabled.
	Pixels []byte
	// Width is the width of the texture in pixels.
	Width uint32
	// Height is the height of the texture in pixels.
	Height uint32
	// Channels is the number of 8-bit components per pixel (3 for RGB, 4 for RGBA).
	Channels uint32
}

// RowBytes returns the byte length of one row of pixels.
func (t TextureStagingData) RowBytes() uint32 {
	return t.Width * t.Channels
}

// Color is a linear RGBA color used for clear values and solid textures.
type Color struct {
	R, G, B, A float32
}

// Viewport is a pixel rectangle on the render target.
type Viewport struct {
	X, Y          int
	Width, Height int
}

// Aspect returns width/height, or 1 when the viewport has no height.
func (v Viewport) Aspect() float32 {
	if v.Height == 0 {
		return 1
	}
	return float32(v.Width) / float32(v.Height)
}
