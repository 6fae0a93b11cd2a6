// Package imaging compresses uploaded breakage photos before they are stored.
package imaging

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/disintegration/imaging"
)

// ErrNotAnImage is returned when the upload cannot be decoded
var ErrNotAnImage = errors.New("file is not a supported image")

// Processor downscales photos to at most MaxWidth pixels wide and
// re-encodes them as JPEG.
type Processor struct {
	MaxWidth int
	Quality  int
}

// NewProcessor creates a Processor. Non-positive values fall back to
// 1024 px and quality 80.
func NewProcessor(maxWidth, quality int) *Processor {
	if maxWidth <= 0 {
		maxWidth = 1024
	}
	if quality <= 0 || quality > 100 {
		quality = 80
	}
	return &Processor{MaxWidth: maxWidth, Quality: quality}
}

// Downscale returns the JPEG encoding of data, resized so its width does not
// exceed MaxWidth. Aspect ratio and EXIF orientation are preserved.
func (p *Processor) Downscale(data []byte) ([]byte, string, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrNotAnImage, err)
	}

	if img.Bounds().Dx() > p.MaxWidth {
		img = imaging.Resize(img, p.MaxWidth, 0, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(p.Quality)); err != nil {
		return nil, "", fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), "image/jpeg", nil
}
