package analysis

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/lucasb-eyer/go-colorful"

	apperrors "github.com/ironsheep/image-analysis-mcp/internal/errors"
	"github.com/ironsheep/image-analysis-mcp/internal/imaging"
)

// Clustering methods reported by DominantColorsResult.
const (
	MethodKMeans   = "kmeans"
	MethodFallback = "fallback"
)

// Color cast directions.
const (
	CastNone    = "none"
	CastRed     = "red"
	CastCyan    = "cyan"
	CastGreen   = "green"
	CastMagenta = "magenta"
	CastBlue    = "blue"
	CastYellow  = "yellow"
)

// castThreshold is the smallest channel deviation reported as a cast.
const castThreshold = 0.05

// DominantColor is one cluster of the dominant-color partition.
type DominantColor struct {
	RGB        [3]int  `json:"rgb"`
	Hex        string  `json:"hex"`
	Percentage float64 `json:"percentage"`
	Name       string  `json:"name"`
}

// DominantColorsResult is either a k-means partition (Method "kmeans") with
// exactly the requested number of colors, or the single mean color at 100%
// (Method "fallback") when the sample has fewer distinct colors than
// requested clusters.
type DominantColorsResult struct {
	Method string          `json:"method"`
	Colors []DominantColor `json:"colors"`
}

// WhiteBalanceRatios are channel means relative to green.
type WhiteBalanceRatios struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
}

// ColorCast describes a systematic channel imbalance.
type ColorCast struct {
	Detected  bool    `json:"detected"`
	Direction string  `json:"direction"`
	Severity  float64 `json:"severity"`
}

// ColorReport is the output of AnalyzeColor.
type ColorReport struct {
	DominantColors        []DominantColor    `json:"dominant_colors"`
	ClusteringMethod      string             `json:"clustering_method"`
	ColorTemperature      string             `json:"color_temperature"`
	TemperatureKelvin     int                `json:"temperature_kelvin"`
	SaturationMean        float64            `json:"saturation_mean"`
	SaturationMedian      float64            `json:"saturation_median"`
	SaturationStd         float64            `json:"saturation_std"`
	WhiteBalanceRGBRatios WhiteBalanceRatios `json:"white_balance_rgb_ratios"`
	ColorCast             ColorCast          `json:"color_cast"`
}

// AnalyzeColor extracts dominant colors, saturation statistics, a color
// temperature estimate, white-balance ratios and color cast.
func AnalyzeColor(buf *imaging.PixelBuffer, nColors int, seed int64) (*ColorReport, error) {
	if buf == nil || buf.Len() == 0 {
		return nil, apperrors.NewInvalidParameter("empty pixel buffer")
	}
	dominant, err := ExtractDominantColors(buf, nColors, seed)
	if err != nil {
		return nil, err
	}

	avgR, avgG, avgB := channelMeans(buf)
	temperature, kelvin := EstimateColorTemperature(avgR, avgB)
	satMean, satMedian, satStd := SaturationStatistics(buf)

	return &ColorReport{
		DominantColors:        dominant.Colors,
		ClusteringMethod:      dominant.Method,
		ColorTemperature:      temperature,
		TemperatureKelvin:     kelvin,
		SaturationMean:        round(satMean, 3),
		SaturationMedian:      round(satMedian, 3),
		SaturationStd:         round(satStd, 3),
		WhiteBalanceRGBRatios: WhiteBalance(avgR, avgG, avgB),
		ColorCast:             DetectColorCast(avgR, avgG, avgB),
	}, nil
}

// ExtractDominantColors partitions a random sample of at most 10,000 pixels
// into nColors clusters. The sample and the cluster initializations are
// drawn from a generator seeded with seed, so identical inputs give
// identical results.
//
// Cluster centers are truncated to integers and percentages are the share of
// sampled pixels in each cluster, rounded to two decimals, sorted descending.
func ExtractDominantColors(buf *imaging.PixelBuffer, nColors int, seed int64) (*DominantColorsResult, error) {
	if nColors <= 0 {
		return nil, apperrors.NewInvalidParameter(fmt.Sprintf("n_colors must be >= 1, got %d", nColors))
	}
	if buf == nil || buf.Len() == 0 {
		return nil, apperrors.NewInvalidParameter("empty pixel buffer")
	}

	rng := rand.New(rand.NewSource(seed))
	pix := buf.Pix()
	indices := samplePixels(buf.Len(), rng)

	points := make([]point, len(indices))
	distinct := make(map[[3]uint8]struct{}, nColors)
	for i, idx := range indices {
		r, g, b := pix[idx*3], pix[idx*3+1], pix[idx*3+2]
		points[i] = point{float64(r), float64(g), float64(b)}
		if len(distinct) < nColors {
			distinct[[3]uint8{r, g, b}] = struct{}{}
		}
	}

	if len(distinct) < nColors {
		return meanColorFallback(points), nil
	}

	result := kmeans(points, nColors, rng)
	counts := make([]int, nColors)
	for _, l := range result.labels {
		counts[l]++
	}

	colors := make([]DominantColor, 0, nColors)
	for j, c := range result.centers {
		colors = append(colors, newDominantColor(
			uint8(c[0]), uint8(c[1]), uint8(c[2]),
			round(float64(counts[j])/float64(len(points))*100, 2),
		))
	}
	sort.SliceStable(colors, func(a, b int) bool {
		return colors[a].Percentage > colors[b].Percentage
	})

	return &DominantColorsResult{Method: MethodKMeans, Colors: colors}, nil
}

func meanColorFallback(points []point) *DominantColorsResult {
	var sum point
	for _, p := range points {
		sum[0] += p[0]
		sum[1] += p[1]
		sum[2] += p[2]
	}
	n := float64(len(points))
	return &DominantColorsResult{
		Method: MethodFallback,
		Colors: []DominantColor{newDominantColor(uint8(sum[0]/n), uint8(sum[1]/n), uint8(sum[2]/n), 100.0)},
	}
}

func newDominantColor(r, g, b uint8, pct float64) DominantColor {
	return DominantColor{
		RGB:        [3]int{int(r), int(g), int(b)},
		Hex:        HexString(r, g, b),
		Percentage: pct,
		Name:       NearestColorName(r, g, b),
	}
}

func channelMeans(buf *imaging.PixelBuffer) (r, g, b float64) {
	var sr, sg, sb uint64
	pix := buf.Pix()
	for i := 0; i < len(pix); i += 3 {
		sr += uint64(pix[i])
		sg += uint64(pix[i+1])
		sb += uint64(pix[i+2])
	}
	n := float64(buf.Len())
	return float64(sr) / n, float64(sg) / n, float64(sb) / n
}

// EstimateColorTemperature classifies the red/blue balance of channel means
// as warm, neutral or cool and interpolates an approximate Kelvin value.
func EstimateColorTemperature(avgR, avgB float64) (string, int) {
	ratio := avgR / math.Max(avgB, 1)
	switch {
	case ratio > 1.3:
		return "warm", int(clampFloat(2500+(2.0-ratio)/0.7*1500, 2000, 4000))
	case ratio < 0.85:
		return "cool", int(clampFloat(7000+(0.85-ratio)/0.25*3000, 7000, 10000))
	default:
		return "neutral", int(clampFloat(5000+(1.0-ratio)/0.45*1500, 5000, 6500))
	}
}

// WhiteBalance returns R/G and B/G of the channel means, with the green mean
// floored at 1.
func WhiteBalance(avgR, avgG, avgB float64) WhiteBalanceRatios {
	g := math.Max(avgG, 1)
	return WhiteBalanceRatios{R: round(avgR/g, 3), G: 1.0, B: round(avgB/g, 3)}
}

// DetectColorCast compares each channel mean with the grand mean. The
// channel with the largest absolute deviation decides the direction when
// that deviation reaches 5%. Equal channel means never show a cast.
func DetectColorCast(avgR, avgG, avgB float64) ColorCast {
	if avgR == avgG && avgG == avgB {
		return ColorCast{Detected: false, Direction: CastNone, Severity: 0}
	}
	avg := math.Max((avgR+avgG+avgB)/3, 1)
	dr := (avgR - avg) / avg
	dg := (avgG - avg) / avg
	db := (avgB - avg) / avg

	maxDev := math.Max(math.Abs(dr), math.Max(math.Abs(dg), math.Abs(db)))
	if maxDev < castThreshold {
		return ColorCast{Detected: false, Direction: CastNone, Severity: 0}
	}

	var dev float64
	var direction string
	switch {
	case math.Abs(dr) > math.Abs(dg) && math.Abs(dr) > math.Abs(db):
		dev, direction = dr, CastRed
		if dr < 0 {
			direction = CastCyan
		}
	case math.Abs(dg) > math.Abs(db):
		dev, direction = dg, CastGreen
		if dg < 0 {
			direction = CastMagenta
		}
	default:
		dev, direction = db, CastBlue
		if db < 0 {
			direction = CastYellow
		}
	}

	return ColorCast{
		Detected:  true,
		Direction: direction,
		Severity:  round(math.Min(math.Abs(dev), 1), 3),
	}
}

// SaturationStatistics returns the mean, median and standard deviation of
// HSV saturation in [0,1]. Saturation is quantized to 8 bits before the
// statistics are taken.
func SaturationStatistics(buf *imaging.PixelBuffer) (mean, median, std float64) {
	bins := make([]int, 256)
	pix := buf.Pix()
	for i := 0; i < len(pix); i += 3 {
		c := colorful.Color{
			R: float64(pix[i]) / 255,
			G: float64(pix[i+1]) / 255,
			B: float64(pix[i+2]) / 255,
		}
		_, s, _ := c.Hsv()
		bins[int(math.Round(s*255))]++
	}
	st := binStatistics(bins)
	return st.Mean / 255, st.Median / 255, st.Std / 255
}

func clampFloat(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(v, hi))
}
