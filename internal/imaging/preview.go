package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"

	apperrors "github.com/ironsheep/image-analysis-mcp/internal/errors"
)

// Preview limits.
const (
	DefaultPreviewMaxDimension = 1920
	DefaultPreviewFormat       = "JPEG"
	DefaultPreviewQuality      = 85
	MaxPreviewDimension        = 10000
)

// PreviewDimensions is the size of an encoded preview.
type PreviewDimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// PreviewResult contains a downscaled copy of an image encoded for transport.
type PreviewResult struct {
	// Base64 is the encoded image bytes, standard base64.
	Base64 string `json:"base64"`

	// Format is JPEG, PNG or WEBP.
	Format string `json:"format"`

	Dimensions PreviewDimensions `json:"dimensions"`

	// SizeBytes is the length of the encoded image before base64.
	SizeBytes int `json:"size_bytes"`

	// DataURI is "data:<mime>;base64,<Base64>", ready for embedding.
	DataURI string `json:"data_uri"`
}

// Preview encodes a downscaled copy of buf.
//
// If the longer side exceeds maxDimension the image is resampled with a
// Lanczos filter so that side equals maxDimension and the other side keeps
// the aspect ratio (truncated). Quality applies to JPEG and WEBP.
//
// # Errors
//
// INVALID_PARAMETER when maxDimension is outside 1..10000, quality is outside
// 1..100 or format is not one of JPEG, PNG or WEBP (case-insensitive).
func Preview(buf *PixelBuffer, maxDimension int, format string, quality int) (*PreviewResult, error) {
	if maxDimension < 1 || maxDimension > MaxPreviewDimension {
		return nil, apperrors.NewInvalidParameter(
			fmt.Sprintf("preview_max_dimension must be between 1 and %d, got %d", MaxPreviewDimension, maxDimension))
	}
	if quality < 1 || quality > 100 {
		return nil, apperrors.NewInvalidParameter(
			fmt.Sprintf("preview_quality must be between 1 and 100, got %d", quality))
	}
	format = strings.ToUpper(format)
	var mime string
	switch format {
	case "JPEG":
		mime = "image/jpeg"
	case "PNG":
		mime = "image/png"
	case "WEBP":
		mime = "image/webp"
	default:
		return nil, apperrors.NewInvalidParameter(
			fmt.Sprintf("preview_format must be one of JPEG, PNG, WEBP, got %q", format))
	}

	var img image.Image = buf.Image()
	w, h := buf.Width(), buf.Height()
	if w > maxDimension || h > maxDimension {
		var newW, newH int
		if w > h {
			newW = maxDimension
			newH = int(float64(h) * (float64(maxDimension) / float64(w)))
		} else {
			newH = maxDimension
			newW = int(float64(w) * (float64(maxDimension) / float64(h)))
		}
		img = imaging.Resize(img, max(newW, 1), max(newH, 1), imaging.Lanczos)
	}

	var out bytes.Buffer
	var err error
	switch format {
	case "PNG":
		err = imaging.Encode(&out, img, imaging.PNG, imaging.PNGCompressionLevel(png.BestCompression))
	case "WEBP":
		err = webp.Encode(&out, img, &webp.Options{Quality: float32(quality)})
	default:
		err = imaging.Encode(&out, img, imaging.JPEG, imaging.JPEGQuality(quality))
	}
	if err != nil {
		return nil, apperrors.NewInternal("failed to encode preview", fmt.Errorf("failed to encode %s preview: %w", format, err))
	}

	encoded := base64.StdEncoding.EncodeToString(out.Bytes())
	bounds := img.Bounds()
	return &PreviewResult{
		Base64:     encoded,
		Format:     format,
		Dimensions: PreviewDimensions{Width: bounds.Dx(), Height: bounds.Dy()},
		SizeBytes:  out.Len(),
		DataURI:    "data:" + mime + ";base64," + encoded,
	}, nil
}
