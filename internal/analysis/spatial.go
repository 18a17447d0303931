package analysis

import (
	"image"
	"math"
	"sort"

	"github.com/anthonynsimon/bild/effect"
	"gonum.org/v1/gonum/stat"

	apperrors "github.com/ironsheep/image-analysis-mcp/internal/errors"
	"github.com/ironsheep/image-analysis-mcp/internal/imaging"
)

const (
	blurThreshold    = 150.0
	noiseBlockSize   = 32
	flatBlockVar     = 100.0
	cannyLow         = 100.0
	cannyHigh        = 200.0
	entropyMaxPixels = 1_000_000
)

// BlurDetection is the blur decision derived from the sharpness score.
type BlurDetection struct {
	IsBlurry   bool    `json:"is_blurry"`
	Confidence float64 `json:"confidence"`
}

// SpatialReport describes sharpness, noise and texture of the luma plane.
type SpatialReport struct {
	SharpnessScore  float64       `json:"sharpness_score"`
	SharpnessRating string        `json:"sharpness_rating"`
	NoiseLevel      float64       `json:"noise_level"`
	NoiseRating     string        `json:"noise_rating"`
	EdgeDensityPct  float64       `json:"edge_density_pct"`
	TextureEntropy  float64       `json:"texture_entropy"`
	BlurDetection   BlurDetection `json:"blur_detection"`
}

// AnalyzeSpatial measures sharpness (Laplacian variance), noise (median
// deviation of flat 32x32 blocks), Canny edge density, texture entropy and
// blur on the rounded luma projection of buf.
func AnalyzeSpatial(buf *imaging.PixelBuffer) (*SpatialReport, error) {
	if buf == nil || buf.Len() == 0 {
		return nil, apperrors.NewInvalidParameter("empty pixel buffer")
	}

	gray := buf.Gray()
	plane := imaging.GrayPlane(gray)
	w, h := buf.Width(), buf.Height()

	sharpness := laplacianVariance(plane, w, h)
	noise := estimateNoise(gray, plane, w, h)
	edges := imaging.Canny(gray, cannyLow, cannyHigh)
	entropy := textureEntropy(plane, w, h)

	return &SpatialReport{
		SharpnessScore:  round(sharpness, 2),
		SharpnessRating: ClassifySharpness(sharpness),
		NoiseLevel:      round(noise, 2),
		NoiseRating:     ClassifyNoise(noise),
		EdgeDensityPct:  round(imaging.EdgeDensity(edges), 2),
		TextureEntropy:  round(entropy, 2),
		BlurDetection:   DetectBlur(sharpness),
	}, nil
}

// ClassifySharpness maps a Laplacian variance to a rating. Lower bounds are
// inclusive.
func ClassifySharpness(score float64) string {
	switch {
	case score >= 1000:
		return "very_sharp"
	case score >= 500:
		return "sharp"
	case score >= 150:
		return "moderate"
	case score >= 50:
		return "soft"
	default:
		return "very_soft"
	}
}

// ClassifyNoise maps a noise level to a rating. Lower bounds are inclusive.
func ClassifyNoise(level float64) string {
	switch {
	case level >= 50:
		return "very_high"
	case level >= 30:
		return "high"
	case level >= 15:
		return "moderate"
	case level >= 5:
		return "low"
	default:
		return "very_low"
	}
}

// DetectBlur thresholds the sharpness score at 150. Confidence grows with
// the distance from the threshold, capped at 1.
func DetectBlur(sharpness float64) BlurDetection {
	return BlurDetection{
		IsBlurry:   sharpness < blurThreshold,
		Confidence: round(math.Min(1, math.Abs(blurThreshold-sharpness)/blurThreshold), 2),
	}
}

// reflect101 mirrors an out-of-range index without repeating the edge
// sample: -1 maps to 1 and n maps to n-2.
func reflect101(i, n int) int {
	if n == 1 {
		return 0
	}
	for i < 0 || i >= n {
		if i < 0 {
			i = -i
		}
		if i >= n {
			i = 2*n - 2 - i
		}
	}
	return i
}

// laplacianVariance is the population variance of the 4-neighbour Laplacian
// response with reflected borders.
func laplacianVariance(plane []uint8, w, h int) float64 {
	var sum, sumSq int64
	for y := 0; y < h; y++ {
		up := reflect101(y-1, h) * w
		down := reflect101(y+1, h) * w
		row := y * w
		for x := 0; x < w; x++ {
			left := reflect101(x-1, w)
			right := reflect101(x+1, w)
			v := int64(plane[up+x]) + int64(plane[down+x]) + int64(plane[row+left]) + int64(plane[row+right]) - 4*int64(plane[row+x])
			sum += v
			sumSq += v * v
		}
	}
	n := float64(w * h)
	mean := float64(sum) / n
	return math.Max(float64(sumSq)/n-mean*mean, 0)
}

// estimateNoise returns the median standard deviation of flat 32x32 blocks.
// Without any flat block it falls back to the standard deviation of the
// residual after a 5x5 median filter.
func estimateNoise(gray *image.Gray, plane []uint8, w, h int) float64 {
	var deviations []float64
	block := make([]float64, noiseBlockSize*noiseBlockSize)
	for by := 0; by < h-noiseBlockSize; by += noiseBlockSize {
		for bx := 0; bx < w-noiseBlockSize; bx += noiseBlockSize {
			k := 0
			for y := by; y < by+noiseBlockSize; y++ {
				for x := bx; x < bx+noiseBlockSize; x++ {
					block[k] = float64(plane[y*w+x])
					k++
				}
			}
			_, variance := stat.PopMeanVariance(block, nil)
			if variance < flatBlockVar {
				deviations = append(deviations, math.Sqrt(variance))
			}
		}
	}
	if len(deviations) > 0 {
		return median(deviations)
	}

	filtered := effect.Median(gray, 2)
	residual := make([]float64, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			f := filtered.Pix[y*filtered.Stride+x*4]
			residual[y*w+x] = float64(plane[y*w+x]) - float64(f)
		}
	}
	_, std := stat.PopMeanStdDev(residual, nil)
	return std
}

// textureEntropy is the Shannon entropy in bits of the luma histogram. Planes
// over one million pixels are subsampled by an integer stride first.
func textureEntropy(plane []uint8, w, h int) float64 {
	stride := 1
	if w*h > entropyMaxPixels {
		stride = int(math.Sqrt(float64(w*h) / entropyMaxPixels))
	}
	bins := make([]int, 256)
	total := 0
	for y := 0; y < h; y += stride {
		for x := 0; x < w; x += stride {
			bins[plane[y*w+x]]++
			total++
		}
	}
	entropy := 0.0
	for _, c := range bins {
		if c == 0 {
			continue
		}
		p := float64(c) / float64(total)
		entropy -= p * math.Log2(p)
	}
	return entropy
}

func median(values []float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
