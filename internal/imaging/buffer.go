package imaging

import (
	"fmt"
	"image"

	"github.com/anthonynsimon/bild/clone"
	"github.com/anthonynsimon/bild/parallel"
)

// PixelBuffer is an immutable 8-bit RGB raster stored row-major as
// interleaved R, G, B bytes.
//
// A PixelBuffer is never mutated after construction, so it may be shared by
// any number of goroutines. Callers of Pix must treat the returned slice as
// read-only.
type PixelBuffer struct {
	width  int
	height int
	pix    []uint8
}

// NewPixelBuffer copies interleaved RGB bytes into a new buffer.
//
// Returns an error when either dimension is not positive or when pix does not
// hold exactly width*height*3 bytes.
func NewPixelBuffer(width, height int, pix []uint8) (*PixelBuffer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid buffer dimensions %dx%d", width, height)
	}
	if len(pix) != width*height*3 {
		return nil, fmt.Errorf("pixel data has %d bytes, want %d", len(pix), width*height*3)
	}
	data := make([]uint8, len(pix))
	copy(data, pix)
	return &PixelBuffer{width: width, height: height, pix: data}, nil
}

// FromImage converts any decoded image to a PixelBuffer.
//
// Alpha is dropped without compositing: straight-alpha sources keep their
// stored channel values and premultiplied sources are un-premultiplied.
// Grayscale sources are replicated into R=G=B.
func FromImage(img image.Image) (*PixelBuffer, error) {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid image dimensions %dx%d", width, height)
	}

	pb := &PixelBuffer{width: width, height: height, pix: make([]uint8, width*height*3)}

	switch src := img.(type) {
	case *image.NRGBA:
		parallel.Line(height, func(start, end int) {
			for y := start; y < end; y++ {
				off := src.PixOffset(bounds.Min.X, bounds.Min.Y+y)
				row := src.Pix[off : off+width*4]
				out := pb.pix[y*width*3 : (y+1)*width*3]
				for x := 0; x < width; x++ {
					out[x*3] = row[x*4]
					out[x*3+1] = row[x*4+1]
					out[x*3+2] = row[x*4+2]
				}
			}
		})
	case *image.NRGBA64:
		parallel.Line(height, func(start, end int) {
			for y := start; y < end; y++ {
				for x := 0; x < width; x++ {
					c := src.NRGBA64At(bounds.Min.X+x, bounds.Min.Y+y)
					i := (y*width + x) * 3
					pb.pix[i] = uint8(c.R >> 8)
					pb.pix[i+1] = uint8(c.G >> 8)
					pb.pix[i+2] = uint8(c.B >> 8)
				}
			}
		})
	default:
		rgba := clone.AsRGBA(img)
		parallel.Line(height, func(start, end int) {
			for y := start; y < end; y++ {
				off := rgba.PixOffset(bounds.Min.X, bounds.Min.Y+y)
				row := rgba.Pix[off : off+width*4]
				out := pb.pix[y*width*3 : (y+1)*width*3]
				for x := 0; x < width; x++ {
					r, g, b, a := row[x*4], row[x*4+1], row[x*4+2], row[x*4+3]
					if a != 0 && a != 255 {
						r, g, b = unpremultiply(r, a), unpremultiply(g, a), unpremultiply(b, a)
					}
					out[x*3] = r
					out[x*3+1] = g
					out[x*3+2] = b
				}
			}
		})
	}

	return pb, nil
}

func unpremultiply(c, a uint8) uint8 {
	v := (uint32(c)*255 + uint32(a)/2) / uint32(a)
	if v > 255 {
		v = 255
	}
	return uint8(v)
}

// Width returns the buffer width in pixels.
func (pb *PixelBuffer) Width() int { return pb.width }

// Height returns the buffer height in pixels.
func (pb *PixelBuffer) Height() int { return pb.height }

// Len returns the number of pixels.
func (pb *PixelBuffer) Len() int { return pb.width * pb.height }

// Pix returns the interleaved RGB bytes. The slice must not be modified.
func (pb *PixelBuffer) Pix() []uint8 { return pb.pix }

// At returns the RGB triple at (x, y).
func (pb *PixelBuffer) At(x, y int) (r, g, b uint8) {
	i := (y*pb.width + x) * 3
	return pb.pix[i], pb.pix[i+1], pb.pix[i+2]
}

// Image returns an opaque *image.RGBA copy of the buffer for use with
// libraries that operate on image.Image.
func (pb *PixelBuffer) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, pb.width, pb.height))
	parallel.Line(pb.height, func(start, end int) {
		for y := start; y < end; y++ {
			in := pb.pix[y*pb.width*3 : (y+1)*pb.width*3]
			out := img.Pix[y*img.Stride : y*img.Stride+pb.width*4]
			for x := 0; x < pb.width; x++ {
				out[x*4] = in[x*3]
				out[x*4+1] = in[x*3+1]
				out[x*4+2] = in[x*3+2]
				out[x*4+3] = 255
			}
		}
	})
	return img
}

// Gray projects the buffer to 8-bit luma with rounded ITU-R BT.601 weights
// in 14-bit fixed point, the same projection OpenCV uses for RGB2GRAY.
func (pb *PixelBuffer) Gray() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, pb.width, pb.height))
	parallel.Line(pb.height, func(start, end int) {
		for y := start; y < end; y++ {
			in := pb.pix[y*pb.width*3 : (y+1)*pb.width*3]
			out := img.Pix[y*img.Stride : y*img.Stride+pb.width]
			for x := range out {
				out[x] = RoundedLuma(in[x*3], in[x*3+1], in[x*3+2])
			}
		}
	})
	return img
}

// RoundedLuma returns round(0.299R + 0.587G + 0.114B) computed in fixed point.
func RoundedLuma(r, g, b uint8) uint8 {
	return uint8((uint32(r)*4899 + uint32(g)*9617 + uint32(b)*1868 + 8192) >> 14)
}

// GrayPlane returns a copy of a gray image's pixels without row padding.
func GrayPlane(img *image.Gray) []uint8 {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	if img.Stride == w {
		out := make([]uint8, w*h)
		copy(out, img.Pix[:w*h])
		return out
	}
	out := make([]uint8, w*h)
	for y := 0; y < h; y++ {
		copy(out[y*w:(y+1)*w], img.Pix[y*img.Stride:y*img.Stride+w])
	}
	return out
}
