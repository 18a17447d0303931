package analysis

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	apperrors "github.com/ironsheep/image-analysis-mcp/internal/errors"
	"github.com/ironsheep/image-analysis-mcp/internal/imaging"
)

// Tonal band limits on the luminance scale.
const (
	shadowMax    = 64
	highlightMin = 193
	darkLevel    = 32
	maxStops     = 20
)

// TonalDistribution is the share of pixels per tonal band, in percent.
type TonalDistribution struct {
	ShadowsPct    float64 `json:"shadows_pct"`
	MidtonesPct   float64 `json:"midtones_pct"`
	HighlightsPct float64 `json:"highlights_pct"`
}

// TonalReport describes exposure and tonal spread.
type TonalReport struct {
	ShadowsPixels        int               `json:"shadows_pixels"`
	MidtonesPixels       int               `json:"midtones_pixels"`
	HighlightsPixels     int               `json:"highlights_pixels"`
	ClippedShadowsPct    float64           `json:"clipped_shadows_pct"`
	ClippedHighlightsPct float64           `json:"clipped_highlights_pct"`
	DynamicRangeStops    float64           `json:"dynamic_range_stops"`
	MeanLuminance        float64           `json:"mean_luminance"`
	MedianLuminance      float64           `json:"median_luminance"`
	ContrastRatio        float64           `json:"contrast_ratio"`
	TonalDistribution    TonalDistribution `json:"tonal_distribution"`
}

// AnalyzeTonal classifies the luminance plane into shadows (<= 64),
// midtones and highlights (>= 193), measures clipping from the supplied
// luminance histogram and estimates dynamic range in stops.
//
// Dynamic range is log2 of the usable range (p98 - p2, at least 1) over the
// noise floor, clamped to [0, 20]. The noise floor is the standard deviation
// of pixels darker than 32 when more than 100 exist, and never below 1.
func AnalyzeTonal(buf *imaging.PixelBuffer, lumHistogram []int) (*TonalReport, error) {
	if buf == nil || buf.Len() == 0 {
		return nil, apperrors.NewInvalidParameter("empty pixel buffer")
	}
	if len(lumHistogram) != 256 {
		return nil, apperrors.NewInvalidParameter(
			fmt.Sprintf("luminance histogram must have 256 bins, got %d", len(lumHistogram)))
	}

	live := countLevels(LuminancePlane(buf))
	total := buf.Len()
	n := float64(total)

	var shadows, midtones, highlights int
	for v, c := range live {
		switch {
		case v <= shadowMax:
			shadows += c
		case v >= highlightMin:
			highlights += c
		default:
			midtones += c
		}
	}

	stats := binStatistics(live)

	minLum, maxLum := 0, 255
	for v := 0; v < 256; v++ {
		if live[v] > 0 {
			minLum = v
			break
		}
	}
	for v := 255; v >= 0; v-- {
		if live[v] > 0 {
			maxLum = v
			break
		}
	}

	low, high := minLum, maxLum
	p2 := int(n * 0.02)
	p98 := int(n * 0.98)
	if p98 < total {
		low = binValueAt(live, p2)
		high = binValueAt(live, p98)
	}

	noiseFloor := 1.0
	darkCount := 0
	for v := 0; v < darkLevel; v++ {
		darkCount += live[v]
	}
	if darkCount > 100 {
		weights := make([]float64, darkLevel)
		for v := range weights {
			weights[v] = float64(live[v])
		}
		_, std := stat.PopMeanStdDev(levels[:darkLevel], weights)
		noiseFloor = math.Max(std, 1)
	}

	usable := math.Max(float64(high-low), 1)
	stops := math.Log2(usable / noiseFloor)
	stops = math.Max(0, math.Min(stops, maxStops))

	contrast := 0.0
	if stats.Mean > 0 {
		contrast = float64(maxLum-minLum) / stats.Mean
	}

	return &TonalReport{
		ShadowsPixels:        shadows,
		MidtonesPixels:       midtones,
		HighlightsPixels:     highlights,
		ClippedShadowsPct:    round(float64(lumHistogram[0])/n*100, 2),
		ClippedHighlightsPct: round(float64(lumHistogram[255])/n*100, 2),
		DynamicRangeStops:    round(stops, 2),
		MeanLuminance:        round(stats.Mean, 2),
		MedianLuminance:      round(stats.Median, 2),
		ContrastRatio:        round(contrast, 2),
		TonalDistribution: TonalDistribution{
			ShadowsPct:    round(float64(shadows)/n*100, 2),
			MidtonesPct:   round(float64(midtones)/n*100, 2),
			HighlightsPct: round(float64(highlights)/n*100, 2),
		},
	}, nil
}
