package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"net/http"

	"golang.org/x/image/draw"
)

// FullWidth is the maximum width of the stored full-size variant.
const FullWidth = 2000

// ThumbWidth is the width of the thumbnail variant.
const ThumbWidth = 100

// JPEGQuality is the compression quality for re-encoded output.
const JPEGQuality = 80

// AllowedMIME lists the accepted input MIME types.
var AllowedMIME = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
}

// Variants holds the normalized outputs for one uploaded image.
type Variants struct {
	Full  []byte
	Thumb []byte
}

// Normalize validates the format by sniffing bytes (client headers are not
// trusted), decodes, and produces the full-size and thumbnail JPEG variants.
func Normalize(data []byte) (*Variants, error) {
	detected := http.DetectContentType(data)
	if !AllowedMIME[detected] {
		return nil, fmt.Errorf("unsupported image format: %s (only JPEG and PNG accepted)", detected)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}

	full, err := encodeJPEG(scaleToWidth(img, FullWidth))
	if err != nil {
		return nil, err
	}
	thumb, err := encodeJPEG(scaleToWidth(img, ThumbWidth))
	if err != nil {
		return nil, err
	}
	return &Variants{Full: full, Thumb: thumb}, nil
}

func encodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return nil, fmt.Errorf("encoding JPEG: %w", err)
	}
	return buf.Bytes(), nil
}

// scaleToWidth downscales the image to the given width, preserving aspect
// ratio, using Catmull-Rom interpolation. Images already narrower are
// returned unchanged.
func scaleToWidth(img image.Image, width int) image.Image {
	bounds := img.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()

	if w <= width {
		return img
	}

	newH := int(float64(h) * float64(width) / float64(w))
	if newH < 1 {
		newH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}

func init() {
	image.RegisterFormat("jpeg", "\xff\xd8", jpeg.Decode, jpeg.DecodeConfig)
	image.RegisterFormat("png", "\x89PNG", png.Decode, png.DecodeConfig)
}
