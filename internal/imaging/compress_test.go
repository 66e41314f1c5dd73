package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// noisyPNG builds an image that does not compress well, so the size
// ceiling is actually exercised.
func noisyPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	rng := rand.New(rand.NewSource(42))
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{uint8(rng.Intn(256)), uint8(rng.Intn(256)), uint8(rng.Intn(256)), 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestCompressUnderCeilingPassesThrough(t *testing.T) {
	data := noisyPNG(t, 50, 50)
	opts := Options{MaxWidth: 1600, MaxHeight: 1600, Quality: 85, MaxSizeKB: 1024}

	out, err := Compress(data, opts)
	require.NoError(t, err)
	assert.Equal(t, data, out)
}

func TestCompressMeetsSizeCeiling(t *testing.T) {
	data := noisyPNG(t, 800, 600)
	require.Greater(t, len(data), 100*1024)

	opts := Options{MaxWidth: 640, MaxHeight: 640, Quality: 85, MaxSizeKB: 100}
	out, err := Compress(data, opts)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(out), 100*1024)

	// Output stays a decodable image with aspect ratio preserved.
	img, format, err := image.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	b := img.Bounds()
	assert.Equal(t, 640, b.Dx())
	assert.Equal(t, 480, b.Dy())
}

func TestCompressRejectsGarbage(t *testing.T) {
	// No ceiling, so the decode path always runs.
	_, err := Compress([]byte("not an image at all"), Options{MaxSizeKB: 0})
	assert.Error(t, err)
}

func TestCompressGarbageUnderCeilingPassesThrough(t *testing.T) {
	// Anything already under the ceiling is returned as-is, without even
	// being decoded.
	data := []byte("not an image at all")
	out, err := Compress(data, Options{MaxSizeKB: 1})
	require.NoError(t, err)
	assert.Equal(t, data, out)
}
