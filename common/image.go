package common

import (
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrUnsupportedChannels is returned when pixel data is not RGB or RGBA.
var ErrUnsupportedChannels = errors.New("unsupported channel count")

// DecodeImage loads an image file from disk and converts it to tightly packed 8-bit pixels.
// Opaque images are returned as RGB (3 channels), everything else as RGBA (4 channels).
// PNG, JPEG, BMP, TIFF and WebP are supported.
//
// Parameters:
//   - path: the image file path
//   - flipY: if true, rows are reversed so that row 0 is the bottom of the image (GL texture convention)
//
// Returns:
//   - TextureStagingData: the decoded pixels
//   - error: error if the file cannot be opened or decoded
func DecodeImage(path string, flipY bool) (TextureStagingData, error) {
	file, err := os.Open(path)
	if err != nil {
		return TextureStagingData{}, fmt.Errorf("failed to open image %s: %w", path, err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return TextureStagingData{}, fmt.Errorf("failed to decode image %s: %w", path, err)
	}
	return FromImage(img, flipY), nil
}

// FromImage converts an in-memory image to staging data.
//
// Parameters:
//   - img: the source image
//   - flipY: if true, rows are reversed
//
// Returns:
//   - TextureStagingData: RGB for opaque images, RGBA otherwise
func FromImage(img image.Image, flipY bool) TextureStagingData {
	bounds := img.Bounds()
	rgba := image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)

	data := TextureStagingData{
		Pixels:   rgba.Pix,
		Width:    uint32(bounds.Dx()),
		Height:   uint32(bounds.Dy()),
		Channels: 4,
	}
	if rgba.Opaque() {
		data = StripAlpha(data)
	}
	if flipY {
		FlipVertical(data)
	}
	return data
}

// SolidColor builds a 1x1 RGBA texture of the given color.
func SolidColor(r, g, b, a uint8) TextureStagingData {
	return TextureStagingData{
		Pixels:   []byte{r, g, b, a},
		Width:    1,
		Height:   1,
		Channels: 4,
	}
}

// FlipVertical reverses the row order of the pixel data in place.
func FlipVertical(t TextureStagingData) {
	row := int(t.RowBytes())
	if row == 0 {
		return
	}
	tmp := make([]byte, row)
	for top, bottom := 0, int(t.Height)-1; top < bottom; top, bottom = top+1, bottom-1 {
		a := t.Pixels[top*row : (top+1)*row]
		b := t.Pixels[bottom*row : (bottom+1)*row]
		copy(tmp, a)
		copy(a, b)
		copy(b, tmp)
	}
}

// StripAlpha converts RGBA pixel data to RGB. RGB input is returned unchanged.
func StripAlpha(t TextureStagingData) TextureStagingData {
	if t.Channels != 4 {
		return t
	}
	count := int(t.Width * t.Height)
	out := make([]byte, 0, count*3)
	for i := 0; i < count; i++ {
		out = append(out, t.Pixels[i*4:i*4+3]...)
	}
	t.Pixels = out
	t.Channels = 3
	return t
}

// ExpandToRGBA converts RGB pixel data to RGBA with an opaque alpha channel.
//
// Returns:
//   - TextureStagingData: 4-channel pixel data
//   - error: ErrUnsupportedChannels for anything other than 3 or 4 channels
func ExpandToRGBA(t TextureStagingData) (TextureStagingData, error) {
	switch t.Channels {
	case 4:
		return t, nil
	case 3:
		count := int(t.Width * t.Height)
		out := make([]byte, 0, count*4)
		for i := 0; i < count; i++ {
			out = append(out, t.Pixels[i*3], t.Pixels[i*3+1], t.Pixels[i*3+2], 0xFF)
		}
		t.Pixels = out
		t.Channels = 4
		return t, nil
	default:
		return t, fmt.Errorf("%w: %d", ErrUnsupportedChannels, t.Channels)
	}
}

// MipChain returns the full mip chain of RGBA pixel data, from the input down to 1x1, using bilinear
// downsampling. Input with other channel counts yields only the base level.
//
// Parameters:
//   - t: the base level
//
// Returns:
//   - []TextureStagingData: level 0 first
func MipChain(t TextureStagingData) []TextureStagingData {
	levels := []TextureStagingData{t}
	if t.Channels != 4 {
		return levels
	}

	cur := t
	for cur.Width > 1 || cur.Height > 1 {
		w, h := max(cur.Width/2, 1), max(cur.Height/2, 1)
		src := &image.NRGBA{
			Pix:    cur.Pixels,
			Stride: int(cur.RowBytes()),
			Rect:   image.Rect(0, 0, int(cur.Width), int(cur.Height)),
		}
		dst := image.NewNRGBA(image.Rect(0, 0, int(w), int(h)))
		draw.BiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)

		cur = TextureStagingData{Pixels: dst.Pix, Width: w, Height: h, Channels: 4}
		levels = append(levels, cur)
	}
	return levels
}
