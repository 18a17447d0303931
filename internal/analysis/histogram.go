package analysis

import (
	"github.com/anthonynsimon/bild/histogram"
	"github.com/anthonynsimon/bild/parallel"
	"gonum.org/v1/gonum/stat"

	apperrors "github.com/ironsheep/image-analysis-mcp/internal/errors"
	"github.com/ironsheep/image-analysis-mcp/internal/imaging"
)

// Histogram holds 256-bin counts per channel. Each channel sums to the
// pixel count.
type Histogram struct {
	Red       []int `json:"red"`
	Green     []int `json:"green"`
	Blue      []int `json:"blue"`
	Luminance []int `json:"luminance"`
}

// ChannelStatistics summarizes one channel's value distribution.
type ChannelStatistics struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Std    float64 `json:"std"`
}

// Statistics holds per-channel summaries.
type Statistics struct {
	Red       ChannelStatistics `json:"red"`
	Green     ChannelStatistics `json:"green"`
	Blue      ChannelStatistics `json:"blue"`
	Luminance ChannelStatistics `json:"luminance"`
}

// HistogramResult is the output of CalculateHistogram.
type HistogramResult struct {
	Histogram  Histogram  `json:"histogram"`
	Statistics Statistics `json:"statistics"`
}

// levels holds the bin values 0..255 used as weighted samples.
var levels = func() []float64 {
	l := make([]float64, 256)
	for i := range l {
		l[i] = float64(i)
	}
	return l
}()

// Luminance returns the truncated BT.601 luma of an RGB triple.
func Luminance(r, g, b uint8) uint8 {
	// Each product is rounded to float64 before summing so the result does
	// not depend on fused multiply-add.
	return uint8(float64(0.299*float64(r)) + float64(0.587*float64(g)) + float64(0.114*float64(b)))
}

// LuminancePlane returns the truncated luma of every pixel in row-major order.
func LuminancePlane(buf *imaging.PixelBuffer) []uint8 {
	pix := buf.Pix()
	w, h := buf.Width(), buf.Height()
	plane := make([]uint8, w*h)
	parallel.Line(h, func(start, end int) {
		for i := start * w; i < end*w; i++ {
			plane[i] = Luminance(pix[i*3], pix[i*3+1], pix[i*3+2])
		}
	})
	return plane
}

// CalculateHistogram computes 256-bin histograms and summary statistics for
// the red, green, blue and luminance channels.
func CalculateHistogram(buf *imaging.PixelBuffer) (*HistogramResult, error) {
	if buf == nil || buf.Len() == 0 {
		return nil, apperrors.NewInvalidParameter("empty pixel buffer")
	}

	rgb := histogram.NewRGBAHistogram(buf.Image())
	lum := countLevels(LuminancePlane(buf))

	h := Histogram{
		Red:       append([]int(nil), rgb.R.Bins...),
		Green:     append([]int(nil), rgb.G.Bins...),
		Blue:      append([]int(nil), rgb.B.Bins...),
		Luminance: lum,
	}

	return &HistogramResult{
		Histogram: h,
		Statistics: Statistics{
			Red:       binStatistics(h.Red),
			Green:     binStatistics(h.Green),
			Blue:      binStatistics(h.Blue),
			Luminance: binStatistics(h.Luminance),
		},
	}, nil
}

// countLevels returns a 256-bin count of values.
func countLevels(values []uint8) []int {
	bins := make([]int, 256)
	for _, v := range values {
		bins[v]++
	}
	return bins
}

// binStatistics derives mean, median and population standard deviation from
// a 256-bin histogram.
func binStatistics(bins []int) ChannelStatistics {
	weights := make([]float64, len(bins))
	total := 0
	for i, c := range bins {
		weights[i] = float64(c)
		total += c
	}
	if total == 0 {
		return ChannelStatistics{}
	}
	mean, std := stat.PopMeanStdDev(levels[:len(bins)], weights)
	return ChannelStatistics{Mean: mean, Median: binMedian(bins, total), Std: std}
}

// binMedian returns the median of the population described by bins. An
// even population averages the two middle values.
func binMedian(bins []int, total int) float64 {
	lo := binValueAt(bins, (total-1)/2)
	hi := binValueAt(bins, total/2)
	return (float64(lo) + float64(hi)) / 2
}

// binValueAt returns the k-th smallest value (0-based) of the population
// described by bins.
func binValueAt(bins []int, k int) int {
	cum := 0
	for v, c := range bins {
		cum += c
		if cum > k {
			return v
		}
	}
	return len(bins) - 1
}
