package metadata

import (
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Color modes, named as image libraries conventionally report them.
const (
	ModeRGB     = "RGB"
	ModeRGBA    = "RGBA"
	ModeGray    = "L"
	ModeGrayA   = "LA"
	ModeGray16  = "I;16"
	ModeBilevel = "1"
	ModePalette = "P"
	ModeCMYK    = "CMYK"
	ModeBayer   = "Bayer"
	ModeUnknown = "Unknown"
)

// Color spaces.
const (
	SpaceICC          = "ICC Profile"
	SpaceSRGB         = "sRGB"
	SpaceAdobeRGB     = "Adobe RGB"
	SpaceUncalibrated = "Uncalibrated"
	SpaceRaw          = "Raw"
	SpaceUnknown      = "Unknown"
)

const rawBitDepth = 14

// imageInfo is what format inspection reports about the stored image.
type imageInfo struct {
	width, height int
	mode          string
	bitDepth      int
	hasICC        bool
}

// inspectRaster reads the image header for dimensions and the container for
// mode details and embedded profiles.
func inspectRaster(path string) (*imageInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read image header: %w", err)
	}

	info := &imageInfo{width: cfg.Width, height: cfg.Height, mode: modeFromModel(cfg.ColorModel)}

	// The container scan only refines the result.
	if c, _ := scanContainer(path); c != nil {
		info.hasICC = c.hasICC
		switch {
		case c.pngHeader != nil:
			info.mode = modeFromPNG(c.pngHeader)
		case c.mime == "image/webp":
			info.mode = ModeRGB
			if c.webpAlpha {
				info.mode = ModeRGBA
			}
		}
	}
	info.bitDepth = bitDepthForMode(info.mode)
	return info, nil
}

func modeFromModel(m color.Model) string {
	if _, ok := m.(color.Palette); ok {
		return ModePalette
	}
	switch m {
	case color.YCbCrModel, color.RGBAModel, color.RGBA64Model:
		return ModeRGB
	case color.NRGBAModel, color.NRGBA64Model, color.NYCbCrAModel:
		return ModeRGBA
	case color.GrayModel:
		return ModeGray
	case color.Gray16Model:
		return ModeGray16
	case color.CMYKModel:
		return ModeCMYK
	}
	return ModeUnknown
}

// modeFromPNG maps an IHDR colour type and bit depth to a mode.
func modeFromPNG(h *pngHeader) string {
	switch h.colorType {
	case 0:
		switch h.bitDepth {
		case 1:
			return ModeBilevel
		case 16:
			return ModeGray16
		}
		return ModeGray
	case 2:
		return ModeRGB
	case 3:
		return ModePalette
	case 4:
		return ModeGrayA
	case 6:
		return ModeRGBA
	}
	return ModeUnknown
}

func bitDepthForMode(mode string) int {
	if mode == ModeGray16 {
		return 16
	}
	return 8
}

// colorSpace resolves the color space: an embedded profile first, then the
// EXIF ColorSpace tag, then sRGB for RGB images.
func colorSpace(hasICC bool, exifColorSpace, mode string) string {
	if hasICC {
		return SpaceICC
	}
	switch exifColorSpace {
	case "1":
		return SpaceSRGB
	case "2":
		return SpaceAdobeRGB
	case "65535":
		return SpaceUncalibrated
	}
	if mode == ModeRGB {
		return SpaceSRGB
	}
	return SpaceUnknown
}
