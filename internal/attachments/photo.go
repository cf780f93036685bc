package attachments

import (
	"bytes"
	"fmt"

	"github.com/disintegration/imaging"
)

const DefaultPhotoMaxDimension = 1600

// PreparePhoto decodes an uploaded image, applies its EXIF orientation,
// shrinks it to fit maxDim and re-encodes it as JPEG.
func PreparePhoto(data []byte, maxDim int) ([]byte, error) {
	if maxDim <= 0 {
		maxDim = DefaultPhotoMaxDimension
	}
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode photo: %w", err)
	}
	bounds := img.Bounds()
	if bounds.Dx() > maxDim || bounds.Dy() > maxDim {
		img = imaging.Fit(img, maxDim, maxDim, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(82)); err != nil {
		return nil, fmt.Errorf("encode photo: %w", err)
	}
	return buf.Bytes(), nil
}
