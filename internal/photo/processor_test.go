package photo

import (
	"bytes"
	"image"
	"image/color"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodeJPEG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(90)))
	return buf.Bytes()
}

func solid(w, h int, c color.NRGBA) image.Image {
	return imaging.New(w, h, c)
}

func TestCropSize(t *testing.T) {
	cases := []struct {
		name         string
		w, h         int
		wantW, wantH int
	}{
		{"wider than 3:4 loses width", 2000, 1000, 750, 1000},
		{"taller than 3:4 loses height", 600, 2000, 600, 800},
		{"exact 3:4 untouched", 900, 1200, 900, 1200},
		{"square counts as wide", 1000, 1000, 750, 1000},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gotW, gotH := CropSize(tc.w, tc.h, TargetWidth, TargetHeight)
			assert.Equal(t, tc.wantW, gotW)
			assert.Equal(t, tc.wantH, gotH)
		})
	}
}

func TestProcess(t *testing.T) {
	t.Run("output is always 900x1200 JPEG", func(t *testing.T) {
		for _, dims := range [][2]int{{3000, 1000}, {500, 3000}, {901, 1199}, {90, 120}} {
			src := encodeJPEG(t, solid(dims[0], dims[1], color.NRGBA{40, 90, 160, 255}))
			out, err := Process(bytes.NewReader(src))
			require.NoError(t, err, "input %dx%d", dims[0], dims[1])

			img, err := imaging.Decode(bytes.NewReader(out))
			require.NoError(t, err)
			assert.Equal(t, TargetWidth, img.Bounds().Dx())
			assert.Equal(t, TargetHeight, img.Bounds().Dy())
		}
	})

	t.Run("already-sized input survives a round trip unchanged", func(t *testing.T) {
		want := color.NRGBA{200, 50, 50, 255}
		src := encodeJPEG(t, solid(TargetWidth, TargetHeight, want))

		out, err := Process(bytes.NewReader(src))
		require.NoError(t, err)

		img, err := imaging.Decode(bytes.NewReader(out))
		require.NoError(t, err)
		assert.Equal(t, TargetWidth, img.Bounds().Dx())
		assert.Equal(t, TargetHeight, img.Bounds().Dy())

		r, g, b, _ := img.At(450, 600).RGBA()
		assert.InDelta(t, uint32(want.R), uint8(r>>8), 3)
		assert.InDelta(t, uint32(want.G), uint8(g>>8), 3)
		assert.InDelta(t, uint32(want.B), uint8(b>>8), 3)
	})

	t.Run("crop keeps the centre", func(t *testing.T) {
		// Left half green, right half red, twice as wide as 3:4: the
		// crop straddles the middle so both colours survive.
		img := imaging.New(2400, 1200, color.NRGBA{0, 200, 0, 255})
		for y := 0; y < 1200; y++ {
			for x := 1200; x < 2400; x++ {
				img.Set(x, y, color.NRGBA{200, 0, 0, 255})
			}
		}
		out, err := Process(bytes.NewReader(encodeJPEG(t, img)))
		require.NoError(t, err)

		decoded, err := imaging.Decode(bytes.NewReader(out))
		require.NoError(t, err)

		r, g, _, _ := decoded.At(10, 600).RGBA()
		assert.Greater(t, g, r, "left edge of crop should still be green")
		r, g, _, _ = decoded.At(TargetWidth-10, 600).RGBA()
		assert.Greater(t, r, g, "right edge of crop should be red")
	})

	t.Run("garbage input fails without output", func(t *testing.T) {
		out, err := Process(bytes.NewReader([]byte("definitely not an image")))
		assert.Error(t, err)
		assert.Nil(t, out)
	})
}
