package metadata

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rwcarlsen/goexif/tiff"
)

const (
	tagICCProfile   = 0x8773
	maxEXIFSegment  = 1 << 20
	webpFlagICC     = 0x20
	webpFlagAlpha   = 0x10
	vp8lSignature   = 0x2f
	pngHeaderLength = 8
)

var (
	pngSignature   = []byte("\x89PNG\r\n\x1a\n")
	jpegEXIFPrefix = []byte("Exif\x00\x00")
	jpegICCPrefix  = []byte("ICC_PROFILE\x00")
	tiffLE         = []byte("II*\x00")
	tiffBE         = []byte("MM\x00*")
)

// container holds what the file's container structure says about the
// image, independent of its pixel data.
type container struct {
	mime      string
	tiffLike  bool
	hasICC    bool
	exif      []byte
	pngHeader *pngHeader
	webpAlpha bool
}

type pngHeader struct {
	bitDepth  uint8
	colorType uint8
}

// scanContainer sniffs the file type and walks the container's segment or
// chunk list for embedded profiles and EXIF blocks. Pixel data is skipped.
func scanContainer(path string) (*container, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	mtype, err := mimetype.DetectReader(f)
	if err != nil {
		return nil, fmt.Errorf("failed to sniff file type: %w", err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	c := &container{mime: mtype.String()}
	head := make([]byte, 4)
	if _, err := io.ReadFull(f, head); err != nil {
		return nil, fmt.Errorf("failed to read file header: %w", err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	switch {
	case bytes.Equal(head, tiffLE) || bytes.Equal(head, tiffBE):
		c.tiffLike = true
		if mtype.Is("image/tiff") {
			err = scanTIFF(f, c)
		}
	case mtype.Is("image/jpeg"):
		err = scanJPEG(f, c)
	case mtype.Is("image/png"):
		err = scanPNG(f, c)
	case mtype.Is("image/webp"):
		err = scanWebP(f, c)
	}
	return c, err
}

// scanJPEG reads marker segments up to the start of scan.
func scanJPEG(r io.ReadSeeker, c *container) error {
	soi := make([]byte, 2)
	if _, err := io.ReadFull(r, soi); err != nil {
		return err
	}
	if soi[0] != 0xFF || soi[1] != 0xD8 {
		return errors.New("jpeg: missing SOI marker")
	}

	marker := make([]byte, 2)
	for {
		if _, err := io.ReadFull(r, marker[:1]); err != nil {
			return nil
		}
		if marker[0] != 0xFF {
			return errors.New("jpeg: expected marker")
		}
		// Skip fill bytes.
		for marker[0] == 0xFF {
			if _, err := io.ReadFull(r, marker[:1]); err != nil {
				return nil
			}
		}
		code := marker[0]
		switch {
		case code == 0xDA || code == 0xD9:
			return nil
		case code == 0x01 || (code >= 0xD0 && code <= 0xD7):
			continue
		}

		if _, err := io.ReadFull(r, marker); err != nil {
			return nil
		}
		length := int(binary.BigEndian.Uint16(marker)) - 2
		if length < 0 {
			return errors.New("jpeg: bad segment length")
		}

		switch code {
		case 0xE1, 0xE2:
			if length > maxEXIFSegment && code == 0xE1 {
				break
			}
			payload := make([]byte, length)
			if _, err := io.ReadFull(r, payload); err != nil {
				return nil
			}
			if code == 0xE1 && c.exif == nil && bytes.HasPrefix(payload, jpegEXIFPrefix) {
				c.exif = payload
			}
			if code == 0xE2 && bytes.HasPrefix(payload, jpegICCPrefix) {
				c.hasICC = true
			}
			continue
		}
		if _, err := r.Seek(int64(length), io.SeekCurrent); err != nil {
			return err
		}
	}
}

// scanPNG reads chunk headers up to IEND.
func scanPNG(r io.ReadSeeker, c *container) error {
	sig := make([]byte, pngHeaderLength)
	if _, err := io.ReadFull(r, sig); err != nil {
		return err
	}
	if !bytes.Equal(sig, pngSignature) {
		return errors.New("png: bad signature")
	}

	hdr := make([]byte, 8)
	for {
		if _, err := io.ReadFull(r, hdr); err != nil {
			return nil
		}
		length := int64(binary.BigEndian.Uint32(hdr[:4]))
		kind := string(hdr[4:])

		switch kind {
		case "IHDR":
			data := make([]byte, length)
			if _, err := io.ReadFull(r, data); err != nil || len(data) < 10 {
				return errors.New("png: short IHDR chunk")
			}
			c.pngHeader = &pngHeader{bitDepth: data[8], colorType: data[9]}
			length = 0
		case "iCCP":
			c.hasICC = true
		case "eXIf":
			if length <= maxEXIFSegment {
				data := make([]byte, length)
				if _, err := io.ReadFull(r, data); err != nil {
					return nil
				}
				c.exif = data
				length = 0
			}
		case "IEND":
			return nil
		}

		// Remaining payload plus the CRC.
		if _, err := r.Seek(length+4, io.SeekCurrent); err != nil {
			return err
		}
	}
}

// scanWebP reads RIFF chunk headers.
func scanWebP(r io.ReadSeeker, c *container) error {
	riff := make([]byte, 12)
	if _, err := io.ReadFull(r, riff); err != nil {
		return err
	}
	if string(riff[:4]) != "RIFF" || string(riff[8:]) != "WEBP" {
		return errors.New("webp: bad RIFF header")
	}

	hdr := make([]byte, 8)
	for {
		if _, err := io.ReadFull(r, hdr); err != nil {
			return nil
		}
		kind := string(hdr[:4])
		length := int64(binary.LittleEndian.Uint32(hdr[4:]))
		padded := length + length%2

		switch kind {
		case "VP8X", "VP8L":
			data := make([]byte, min(length, 10))
			if _, err := io.ReadFull(r, data); err != nil {
				return nil
			}
			if kind == "VP8X" && len(data) > 0 {
				c.hasICC = c.hasICC || data[0]&webpFlagICC != 0
				c.webpAlpha = c.webpAlpha || data[0]&webpFlagAlpha != 0
			}
			// VP8L: 14 bits width-1, 14 bits height-1, then the alpha hint.
			if kind == "VP8L" && len(data) >= 5 && data[0] == vp8lSignature {
				c.webpAlpha = c.webpAlpha || (data[4]>>4)&1 == 1
			}
			padded -= int64(len(data))
		case "ICCP":
			c.hasICC = true
		case "ALPH":
			c.webpAlpha = true
		case "EXIF":
			if length <= maxEXIFSegment {
				data := make([]byte, length)
				if _, err := io.ReadFull(r, data); err != nil {
					return nil
				}
				c.exif = data
				padded -= length
			}
		}

		if _, err := r.Seek(padded, io.SeekCurrent); err != nil {
			return err
		}
	}
}

// scanTIFF looks for an embedded profile in IFD0.
func scanTIFF(r io.Reader, c *container) error {
	t, err := tiff.Decode(r)
	if err != nil {
		return err
	}
	if len(t.Dirs) == 0 {
		return nil
	}
	for _, tag := range t.Dirs[0].Tags {
		if tag.Id == tagICCProfile {
			c.hasICC = true
		}
	}
	return nil
}
