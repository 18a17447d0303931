package metadata

import (
	"image"
	"image/color"
	"image/color/palette"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModeFromModel(t *testing.T) {
	tests := []struct {
		name  string
		model color.Model
		want  string
	}{
		{"ycbcr", color.YCbCrModel, ModeRGB},
		{"rgba", color.RGBAModel, ModeRGB},
		{"rgba64", color.RGBA64Model, ModeRGB},
		{"nrgba", color.NRGBAModel, ModeRGBA},
		{"nycbcra", color.NYCbCrAModel, ModeRGBA},
		{"gray", color.GrayModel, ModeGray},
		{"gray16", color.Gray16Model, ModeGray16},
		{"cmyk", color.CMYKModel, ModeCMYK},
		{"palette", color.Palette(palette.Plan9), ModePalette},
		{"alpha", color.AlphaModel, ModeUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, modeFromModel(tt.model))
		})
	}
}

func TestModeFromPNG(t *testing.T) {
	tests := []struct {
		colorType, bitDepth uint8
		want                string
	}{
		{0, 1, ModeBilevel},
		{0, 8, ModeGray},
		{0, 16, ModeGray16},
		{2, 8, ModeRGB},
		{2, 16, ModeRGB},
		{3, 8, ModePalette},
		{4, 8, ModeGrayA},
		{6, 8, ModeRGBA},
		{7, 8, ModeUnknown},
	}
	for _, tt := range tests {
		got := modeFromPNG(&pngHeader{colorType: tt.colorType, bitDepth: tt.bitDepth})
		assert.Equal(t, tt.want, got, "type %d depth %d", tt.colorType, tt.bitDepth)
	}
}

func TestBitDepthForMode(t *testing.T) {
	assert.Equal(t, 16, bitDepthForMode(ModeGray16))
	assert.Equal(t, 8, bitDepthForMode(ModeRGB))
	assert.Equal(t, 8, bitDepthForMode(ModeBilevel))
}

func TestColorSpace(t *testing.T) {
	tests := []struct {
		name    string
		hasICC  bool
		exifTag string
		mode    string
		want    string
	}{
		{"profile wins", true, "1", ModeRGB, SpaceICC},
		{"exif srgb", false, "1", ModeGray, SpaceSRGB},
		{"exif adobe", false, "2", ModeRGB, SpaceAdobeRGB},
		{"exif uncalibrated", false, "65535", ModeRGB, SpaceUncalibrated},
		{"rgb default", false, "", ModeRGB, SpaceSRGB},
		{"unknown tag value falls through", false, "7", ModeRGB, SpaceSRGB},
		{"rgba unknown", false, "", ModeRGBA, SpaceUnknown},
		{"gray unknown", false, "", ModeGray, SpaceUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, colorSpace(tt.hasICC, tt.exifTag, tt.mode))
		})
	}
}

func TestInspectRaster(t *testing.T) {
	tests := []struct {
		name      string
		file      string
		data      func(t *testing.T) []byte
		wantMode  string
		wantDepth int
	}{
		{
			name:      "opaque png",
			file:      "rgb.png",
			data:      func(t *testing.T) []byte { return encodePNG(t, createTestImage(6, 3)) },
			wantMode:  ModeRGB,
			wantDepth: 8,
		},
		{
			name: "translucent png",
			file: "rgba.png",
			data: func(t *testing.T) []byte {
				img := image.NewNRGBA(image.Rect(0, 0, 6, 3))
				img.Set(0, 0, color.NRGBA{R: 1, A: 10})
				return encodePNG(t, img)
			},
			wantMode:  ModeRGBA,
			wantDepth: 8,
		},
		{
			name:      "gray16 png",
			file:      "gray16.png",
			data:      func(t *testing.T) []byte { return encodePNG(t, image.NewGray16(image.Rect(0, 0, 6, 3))) },
			wantMode:  ModeGray16,
			wantDepth: 16,
		},
		{
			name:      "jpeg",
			file:      "photo.jpg",
			data:      func(t *testing.T) []byte { return encodeJPEG(t, createTestImage(6, 3)) },
			wantMode:  ModeRGB,
			wantDepth: 8,
		},
		{
			name:      "gray jpeg",
			file:      "gray.jpg",
			data:      func(t *testing.T) []byte { return encodeJPEG(t, image.NewGray(image.Rect(0, 0, 6, 3))) },
			wantMode:  ModeGray,
			wantDepth: 8,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, err := inspectRaster(writeFile(t, tt.file, tt.data(t)))
			require.NoError(t, err)
			assert.Equal(t, 6, info.width)
			assert.Equal(t, 3, info.height)
			assert.Equal(t, tt.wantMode, info.mode)
			assert.Equal(t, tt.wantDepth, info.bitDepth)
		})
	}
}

func TestInspectRaster_Unreadable(t *testing.T) {
	_, err := inspectRaster(writeFile(t, "broken.png", []byte("\x89PNG\r\n\x1a\nnope")))
	assert.Error(t, err)
}
