package photo

import (
	"bytes"
	"fmt"
	"io"

	"github.com/disintegration/imaging"
)

// Stage screen portrait: 3:4 at a resolution that holds up on the big
// display.
const (
	TargetWidth  = 900
	TargetHeight = 1200
)

// CropSize returns the largest centre region of a w x h image that
// matches the target aspect ratio. A relatively wide image loses width,
// a relatively tall one loses height.
func CropSize(w, h, targetW, targetH int) (int, int) {
	if w*targetH > h*targetW {
		return h * targetW / targetH, h
	}
	return w, w * targetH / targetW
}

// Process centre-crops the image to 3:4, resizes it to 900x1200 with
// Lanczos resampling, and re-encodes as JPEG quality 90. Any decode or
// encode problem surfaces as an error; callers keep whatever photo was
// stored before.
func Process(r io.Reader) ([]byte, error) {
	img, err := imaging.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode photo: %w", err)
	}

	bounds := img.Bounds()
	cw, ch := CropSize(bounds.Dx(), bounds.Dy(), TargetWidth, TargetHeight)
	img = imaging.CropCenter(img, cw, ch)
	img = imaging.Resize(img, TargetWidth, TargetHeight, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(90)); err != nil {
		return nil, fmt.Errorf("encode photo: %w", err)
	}
	return buf.Bytes(), nil
}
