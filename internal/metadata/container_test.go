package metadata

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createTestImage returns an opaque RGBA gradient.
func createTestImage(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 10), G: uint8(y * 10), B: 100, A: 255})
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func encodeJPEG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}))
	return buf.Bytes()
}

// withPNGChunk inserts a chunk right after IHDR.
func withPNGChunk(data []byte, kind string, payload []byte) []byte {
	const afterIHDR = 8 + 4 + 4 + 13 + 4
	var chunk bytes.Buffer
	binary.Write(&chunk, binary.BigEndian, uint32(len(payload)))
	chunk.WriteString(kind)
	chunk.Write(payload)
	binary.Write(&chunk, binary.BigEndian, crc32.ChecksumIEEE(append([]byte(kind), payload...)))

	out := append([]byte{}, data[:afterIHDR]...)
	out = append(out, chunk.Bytes()...)
	return append(out, data[afterIHDR:]...)
}

// withJPEGSegment inserts an APPn segment right after SOI.
func withJPEGSegment(data []byte, marker byte, payload []byte) []byte {
	seg := []byte{0xFF, marker, 0, 0}
	binary.BigEndian.PutUint16(seg[2:], uint16(len(payload)+2))
	seg = append(seg, payload...)

	out := append([]byte{}, data[:2]...)
	out = append(out, seg...)
	return append(out, data[2:]...)
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func TestScanContainer_PNG(t *testing.T) {
	data := withPNGChunk(encodePNG(t, createTestImage(8, 4)), "eXIf", sampleEXIF())
	path := writeFile(t, "test.png", data)

	c, err := scanContainer(path)
	require.NoError(t, err)
	assert.Equal(t, "image/png", c.mime)
	require.NotNil(t, c.pngHeader)
	assert.Equal(t, uint8(2), c.pngHeader.colorType)
	assert.Equal(t, uint8(8), c.pngHeader.bitDepth)
	assert.Equal(t, sampleEXIF(), c.exif)
	assert.False(t, c.hasICC)
}

func TestScanContainer_PNGProfile(t *testing.T) {
	data := withPNGChunk(encodePNG(t, createTestImage(4, 4)), "iCCP", []byte("icc\x00\x00profile"))
	c, err := scanContainer(writeFile(t, "icc.png", data))
	require.NoError(t, err)
	assert.True(t, c.hasICC)
	assert.Nil(t, c.exif)
}

func TestScanContainer_JPEG(t *testing.T) {
	data := encodeJPEG(t, createTestImage(8, 8))
	data = withJPEGSegment(data, 0xE2, append([]byte("ICC_PROFILE\x00\x01\x01"), make([]byte, 32)...))
	data = withJPEGSegment(data, 0xE1, append([]byte("Exif\x00\x00"), sampleEXIF()...))

	c, err := scanContainer(writeFile(t, "test.jpg", data))
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", c.mime)
	assert.True(t, c.hasICC)
	assert.Equal(t, append([]byte("Exif\x00\x00"), sampleEXIF()...), c.exif)
}

func TestScanContainer_TIFFLike(t *testing.T) {
	c, err := scanContainer(writeFile(t, "raw.nef", sampleEXIF()))
	require.NoError(t, err)
	assert.True(t, c.tiffLike)
}

func TestScanContainer_Unknown(t *testing.T) {
	c, err := scanContainer(writeFile(t, "junk.png", []byte("definitely not an image")))
	require.NoError(t, err)
	assert.False(t, c.tiffLike)
	assert.Nil(t, c.exif)
	assert.Nil(t, c.pngHeader)
}

func TestScanContainer_Missing(t *testing.T) {
	_, err := scanContainer(filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)
}

// riffChunk encodes one RIFF chunk with padding.
func riffChunk(kind string, payload []byte) []byte {
	out := []byte(kind)
	size := make([]byte, 4)
	binary.LittleEndian.PutUint32(size, uint32(len(payload)))
	out = append(out, size...)
	out = append(out, payload...)
	if len(payload)%2 == 1 {
		out = append(out, 0)
	}
	return out
}

func TestScanWebP(t *testing.T) {
	vp8x := make([]byte, 10)
	vp8x[0] = webpFlagICC | webpFlagAlpha
	exifPayload := append([]byte("Exif\x00\x00"), sampleEXIF()...)

	var body []byte
	body = append(body, "WEBP"...)
	body = append(body, riffChunk("VP8X", vp8x)...)
	body = append(body, riffChunk("VP8 ", []byte{1, 2, 3})...)
	body = append(body, riffChunk("EXIF", exifPayload)...)

	size := make([]byte, 4)
	binary.LittleEndian.PutUint32(size, uint32(len(body)))
	data := append(append([]byte("RIFF"), size...), body...)

	c := &container{}
	require.NoError(t, scanWebP(bytes.NewReader(data), c))
	assert.True(t, c.hasICC)
	assert.True(t, c.webpAlpha)
	assert.Equal(t, exifPayload, c.exif)
}

func TestScanWebP_LosslessAlpha(t *testing.T) {
	// Signature, then width-1 and height-1 (14 bits each) and the alpha bit.
	vp8l := []byte{vp8lSignature, 0, 0, 0, 0x10, 0}

	body := append([]byte("WEBP"), riffChunk("VP8L", vp8l)...)
	size := make([]byte, 4)
	binary.LittleEndian.PutUint32(size, uint32(len(body)))
	data := append(append([]byte("RIFF"), size...), body...)

	c := &container{}
	require.NoError(t, scanWebP(bytes.NewReader(data), c))
	assert.True(t, c.webpAlpha)
	assert.False(t, c.hasICC)
}

func TestScanWebP_BadHeader(t *testing.T) {
	c := &container{}
	assert.Error(t, scanWebP(bytes.NewReader([]byte("RIFF\x00\x00\x00\x00WAVE")), c))
}
