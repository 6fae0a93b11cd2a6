package imaging

import (
	"bytes"
	"image"
	"image/color"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngOf(t *testing.T, w, h int) []byte {
	t.Helper()
	img := imaging.New(w, h, color.NRGBA{R: 200, G: 120, B: 40, A: 255})
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, img, imaging.PNG))
	return buf.Bytes()
}

func decode(t *testing.T, data []byte) image.Image {
	t.Helper()
	img, err := imaging.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	return img
}

func TestProcessor_Downscale(t *testing.T) {
	p := NewProcessor(400, 0)

	t.Run("wide images are resized keeping aspect ratio", func(t *testing.T) {
		out, ct, err := p.Downscale(pngOf(t, 1600, 800))
		require.NoError(t, err)
		assert.Equal(t, "image/jpeg", ct)

		b := decode(t, out).Bounds()
		assert.Equal(t, 400, b.Dx())
		assert.Equal(t, 200, b.Dy())
	})

	t.Run("small images keep their size", func(t *testing.T) {
		out, _, err := p.Downscale(pngOf(t, 120, 90))
		require.NoError(t, err)
		b := decode(t, out).Bounds()
		assert.Equal(t, 120, b.Dx())
		assert.Equal(t, 90, b.Dy())
	})

	t.Run("rejects non images", func(t *testing.T) {
		_, _, err := p.Downscale([]byte("definitely not a photo"))
		assert.ErrorIs(t, err, ErrNotAnImage)
	})
}

func TestNewProcessor_Defaults(t *testing.T) {
	p := NewProcessor(0, 200)
	assert.Equal(t, 1024, p.MaxWidth)
	assert.Equal(t, 80, p.Quality)
}
