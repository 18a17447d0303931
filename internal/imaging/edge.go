package imaging

import (
	"image"

	"github.com/anthonynsimon/bild/parallel"
)

// Canny runs Canny edge detection on an 8-bit grayscale image and returns an
// edge mask in row-major order.
//
// Parameters:
//   - gray: Source luma plane.
//   - thresholdLow: Gradient magnitude a pixel must exceed to be a candidate
//     edge (0-1020 scale of the L1 Sobel magnitude).
//   - thresholdHigh: Gradient magnitude above which a candidate is a strong
//     edge.
//
// # Algorithm
//
//  1. Gradient computation: 3x3 Sobel operators on the raw plane with
//     replicated borders. magnitude = |Gx| + |Gy|
//
//  2. Non-maximum suppression: the gradient direction is quantized to one of
//     four sectors (0°, 45°, 90°, 135°) and a pixel is kept only if it is a
//     local maximum along that direction. Ties are broken towards the
//     leading neighbour so flat ridges stay one pixel wide.
//
//  3. Hysteresis: strong pixels seed an 8-connected flood fill through the
//     remaining candidates.
//
// No smoothing is applied before the gradient step.
func Canny(gray *image.Gray, thresholdLow, thresholdHigh float64) []bool {
	width := gray.Rect.Dx()
	height := gray.Rect.Dy()
	plane := GrayPlane(gray)

	magnitude := make([]float64, width*height)
	gradX := make([]float64, width*height)
	gradY := make([]float64, width*height)

	sobelX := [3][3]float64{
		{-1, 0, 1},
		{-2, 0, 2},
		{-1, 0, 1},
	}
	sobelY := [3][3]float64{
		{-1, -2, -1},
		{0, 0, 0},
		{1, 2, 1},
	}

	parallel.Line(height, func(start, end int) {
		for y := start; y < end; y++ {
			for x := 0; x < width; x++ {
				var gx, gy float64
				for ky := -1; ky <= 1; ky++ {
					for kx := -1; kx <= 1; kx++ {
						py := clamp(y+ky, 0, height-1)
						px := clamp(x+kx, 0, width-1)
						v := float64(plane[py*width+px])
						gx += v * sobelX[ky+1][kx+1]
						gy += v * sobelY[ky+1][kx+1]
					}
				}
				i := y*width + x
				gradX[i] = gx
				gradY[i] = gy
				magnitude[i] = abs(gx) + abs(gy)
			}
		}
	})

	magAt := func(x, y int) float64 {
		if x < 0 || y < 0 || x >= width || y >= height {
			return 0
		}
		return magnitude[y*width+x]
	}

	// tan(22.5°) and tan(67.5°)
	const tan22 = 0.41421356237309503
	const tan67 = 2.414213562373095

	// 0: suppressed, 1: weak candidate, 2: strong
	class := make([]uint8, width*height)
	parallel.Line(height, func(start, end int) {
		for y := start; y < end; y++ {
			for x := 0; x < width; x++ {
				i := y*width + x
				mag := magnitude[i]
				if mag <= thresholdLow {
					continue
				}

				ax, ay := abs(gradX[i]), abs(gradY[i])
				var prev, next float64
				switch {
				case ay <= ax*tan22:
					prev, next = magAt(x-1, y), magAt(x+1, y)
				case ay >= ax*tan67:
					prev, next = magAt(x, y-1), magAt(x, y+1)
				case (gradX[i] < 0) != (gradY[i] < 0):
					prev, next = magAt(x+1, y-1), magAt(x-1, y+1)
				default:
					prev, next = magAt(x-1, y-1), magAt(x+1, y+1)
				}

				if mag > prev && mag >= next {
					if mag > thresholdHigh {
						class[i] = 2
					} else {
						class[i] = 1
					}
				}
			}
		}
	})

	edges := make([]bool, width*height)
	stack := make([]int, 0, 1024)
	for i, c := range class {
		if c == 2 && !edges[i] {
			edges[i] = true
			stack = append(stack, i)
		}
		for len(stack) > 0 {
			p := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			px, py := p%width, p/width
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					nx, ny := px+dx, py+dy
					if nx < 0 || ny < 0 || nx >= width || ny >= height {
						continue
					}
					n := ny*width + nx
					if class[n] != 0 && !edges[n] {
						edges[n] = true
						stack = append(stack, n)
					}
				}
			}
		}
	}

	return edges
}

// EdgeDensity returns the percentage of true entries in an edge mask.
func EdgeDensity(edges []bool) float64 {
	if len(edges) == 0 {
		return 0
	}
	count := 0
	for _, e := range edges {
		if e {
			count++
		}
	}
	return float64(count) / float64(len(edges)) * 100
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// clamp constrains an integer value to the range [min, max].
// Used for boundary handling in convolution operations.
func clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
