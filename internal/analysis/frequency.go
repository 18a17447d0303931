package analysis

import (
	"math"
	"math/cmplx"

	"github.com/anthonynsimon/bild/parallel"
	"gonum.org/v1/gonum/dsp/fourier"

	apperrors "github.com/ironsheep/image-analysis-mcp/internal/errors"
	pximaging "github.com/ironsheep/image-analysis-mcp/internal/imaging"
)

const (
	maxSpectrumSide = 2048
	lowRadiusFrac   = 0.1
	highRadiusFrac  = 0.5
	dcHalfWidth     = 5
)

// FrequencyReport describes how spectral energy is split between coarse and
// fine detail.
type FrequencyReport struct {
	HighFreqEnergy    float64 `json:"high_freq_energy"`
	LowFreqEnergy     float64 `json:"low_freq_energy"`
	FrequencyRatio    float64 `json:"frequency_ratio"`
	DominantFrequency float64 `json:"dominant_frequency"`
	DetailLevel       string  `json:"detail_level"`
}

// AnalyzeFrequency computes the centred 2-D magnitude spectrum of the luma
// plane and compares energy in a low-frequency disk (radius 10% of the
// shorter side) with the surrounding annulus out to 50%.
//
// Planes with a side over 2048 are area-downsampled so the longer side is
// 2048 before the transform.
func AnalyzeFrequency(buf *pximaging.PixelBuffer) (*FrequencyReport, error) {
	if buf == nil || buf.Len() == 0 {
		return nil, apperrors.NewInvalidParameter("empty pixel buffer")
	}

	w, h := buf.Width(), buf.Height()
	plane := grayToFloat(pximaging.GrayPlane(buf.Gray()))
	if longest := max(w, h); longest > maxSpectrumSide {
		scale := float64(maxSpectrumSide) / float64(longest)
		dw := max(int(float64(w)*scale), 1)
		dh := max(int(float64(h)*scale), 1)
		plane = areaResize(plane, w, h, dw, dh)
		w, h = dw, dh
	}

	magnitude := shiftedMagnitude(plane, w, h)

	cy, cx := h/2, w/2
	minSide := float64(min(w, h))
	lowR := float64(int(minSide * lowRadiusFrac))
	highR := float64(int(minSide * highRadiusFrac))

	var lowEnergy, highEnergy float64
	for y := 0; y < h; y++ {
		dy := float64(y - cy)
		for x := 0; x < w; x++ {
			dx := float64(x - cx)
			d := math.Sqrt(dx*dx + dy*dy)
			switch {
			case d <= lowR:
				lowEnergy += magnitude[y*w+x]
			case d <= highR:
				highEnergy += magnitude[y*w+x]
			}
		}
	}
	lowEnergy = math.Max(lowEnergy, 1)
	ratio := highEnergy / lowEnergy

	for y := max(cy-dcHalfWidth, 0); y < min(cy+dcHalfWidth, h); y++ {
		for x := max(cx-dcHalfWidth, 0); x < min(cx+dcHalfWidth, w); x++ {
			magnitude[y*w+x] = 0
		}
	}
	peak := 0
	for i, m := range magnitude {
		if m > magnitude[peak] {
			peak = i
		}
	}
	py, px := peak/w, peak%w
	dominant := math.Hypot(float64(px-cx), float64(py-cy))

	return &FrequencyReport{
		HighFreqEnergy:    round(highEnergy, 2),
		LowFreqEnergy:     round(lowEnergy, 2),
		FrequencyRatio:    round(ratio, 3),
		DominantFrequency: round(dominant, 2),
		DetailLevel:       ClassifyDetail(ratio),
	}, nil
}

// ClassifyDetail maps a high/low energy ratio to a detail level.
func ClassifyDetail(ratio float64) string {
	switch {
	case ratio > 0.5:
		return "high"
	case ratio > 0.2:
		return "moderate"
	default:
		return "low"
	}
}

func grayToFloat(plane []uint8) []float64 {
	out := make([]float64, len(plane))
	for i, v := range plane {
		out[i] = float64(v)
	}
	return out
}

// areaTap is one source sample contributing to an area-resampled output.
type areaTap struct {
	index  int
	weight float64
}

// areaTaps maps each of dst output samples to the src samples it covers,
// weighted by the covered fraction so each output's weights sum to 1.
func areaTaps(src, dst int) [][]areaTap {
	scale := float64(src) / float64(dst)
	taps := make([][]areaTap, dst)
	for i := range taps {
		start, end := float64(i)*scale, float64(i+1)*scale
		for j := int(start); j < src && float64(j) < end; j++ {
			overlap := math.Min(end, float64(j+1)) - math.Max(start, float64(j))
			if overlap > 0 {
				taps[i] = append(taps[i], areaTap{index: j, weight: overlap / scale})
			}
		}
	}
	return taps
}

// areaResize downsamples a w x h plane to dw x dh by averaging each output
// pixel's footprint, keeping fractional levels.
func areaResize(plane []float64, w, h, dw, dh int) []float64 {
	xTaps, yTaps := areaTaps(w, dw), areaTaps(h, dh)

	rows := make([]float64, dw*h)
	parallel.Line(h, func(start, end int) {
		for y := start; y < end; y++ {
			src := plane[y*w : (y+1)*w]
			for x, taps := range xTaps {
				var sum float64
				for _, t := range taps {
					sum += src[t.index] * t.weight
				}
				rows[y*dw+x] = sum
			}
		}
	})

	out := make([]float64, dw*dh)
	parallel.Line(dh, func(start, end int) {
		for y := start; y < end; y++ {
			for _, t := range yTaps[y] {
				row := rows[t.index*dw : (t.index+1)*dw]
				for x, v := range row {
					out[y*dw+x] += v * t.weight
				}
			}
		}
	})
	return out
}

// shiftedMagnitude returns |FFT2(plane)| with the zero-frequency term moved
// to (h/2, w/2). Rows are transformed first, then columns, each in parallel
// with one FFT plan per worker.
func shiftedMagnitude(plane []float64, w, h int) []float64 {
	data := make([]complex128, w*h)
	for i, v := range plane {
		data[i] = complex(v, 0)
	}

	parallel.Line(h, func(start, end int) {
		fft := fourier.NewCmplxFFT(w)
		for y := start; y < end; y++ {
			row := data[y*w : (y+1)*w]
			fft.Coefficients(row, row)
		}
	})

	parallel.Line(w, func(start, end int) {
		fft := fourier.NewCmplxFFT(h)
		col := make([]complex128, h)
		for x := start; x < end; x++ {
			for y := 0; y < h; y++ {
				col[y] = data[y*w+x]
			}
			fft.Coefficients(col, col)
			for y := 0; y < h; y++ {
				data[y*w+x] = col[y]
			}
		}
	})

	magnitude := make([]float64, w*h)
	for y := 0; y < h; y++ {
		sy := (y + h - h/2) % h
		for x := 0; x < w; x++ {
			sx := (x + w - w/2) % w
			magnitude[y*w+x] = cmplx.Abs(data[sy*w+sx])
		}
	}
	return magnitude
}
