package common

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePNG(t *testing.T, img image.Image) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "img.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
	return path
}

func TestDecodeImageOpaqueIsRGBAndFlipped(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 1, 2))
	img.Set(0, 0, color.NRGBA{R: 255, A: 255})
	img.Set(0, 1, color.NRGBA{B: 255, A: 255})

	data, err := DecodeImage(writePNG(t, img), true)
	require.NoError(t, err)
	assert.Equal(t, uint32(3), data.Channels)
	assert.Equal(t, uint32(1), data.Width)
	assert.Equal(t, uint32(2), data.Height)
	// bottom row (blue) first after the flip
	assert.Equal(t, []byte{0, 0, 255, 255, 0, 0}, data.Pixels)
}

func TestDecodeImageKeepsAlpha(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	img.Set(0, 0, color.NRGBA{R: 200, G: 100, B: 50, A: 128})

	data, err := DecodeImage(writePNG(t, img), false)
	require.NoError(t, err)
	assert.Equal(t, uint32(4), data.Channels)
	assert.Equal(t, []byte{200, 100, 50, 128}, data.Pixels)
}

func TestDecodeImageMissingFile(t *testing.T) {
	_, err := DecodeImage(filepath.Join(t.TempDir(), "missing.png"), true)
	assert.Error(t, err)
}

func TestExpandToRGBA(t *testing.T) {
	rgb := TextureStagingData{Pixels: []byte{1, 2, 3, 4, 5, 6}, Width: 2, Height: 1, Channels: 3}
	out, err := ExpandToRGBA(rgb)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3, 255, 4, 5, 6, 255}, out.Pixels)

	_, err = ExpandToRGBA(TextureStagingData{Channels: 2})
	assert.ErrorIs(t, err, ErrUnsupportedChannels)
}

func TestMipChain(t *testing.T) {
	base := TextureStagingData{Pixels: make([]byte, 4*2*4), Width: 4, Height: 2, Channels: 4}
	levels := MipChain(base)
	require.Len(t, levels, 3)
	assert.Equal(t, uint32(2), levels[1].Width)
	assert.Equal(t, uint32(1), levels[1].Height)
	assert.Equal(t, uint32(1), levels[2].Width)
	assert.Len(t, levels[2].Pixels, 4)

	assert.Len(t, MipChain(SolidColor(1, 2, 3, 4)), 1)
}

func TestAlignRoundsUp(t *testing.T) {
	assert.Equal(t, 0, Align(0, 256))
	assert.Equal(t, 256, Align(1, 256))
	assert.Equal(t, 256, Align(256, 256))
	assert.Equal(t, 48, Align(33, 16))
	assert.Equal(t, 7, Align(7, 0))
}
