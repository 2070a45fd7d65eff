package artwork

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png" // register PNG decoding for downloaded covers

	"github.com/nfnt/resize"
)

// maxDimension is the largest edge length kept when embedding. Archive
// scans routinely exceed 3000px, which bloats files for no visual gain
// on players.
const maxDimension = 1200

const jpegQuality = 90

// Prepare downscales an image to the embedding size limit. Images within
// the limit pass through untouched; larger ones are resized and
// re-encoded as JPEG.
func Prepare(data []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	if bounds.Dx() <= maxDimension && bounds.Dy() <= maxDimension {
		return data, nil
	}

	var resized image.Image
	if bounds.Dx() >= bounds.Dy() {
		resized = resize.Resize(maxDimension, 0, img, resize.Lanczos3)
	} else {
		resized = resize.Resize(0, maxDimension, img, resize.Lanczos3)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, resized, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}
	return buf.Bytes(), nil
}
