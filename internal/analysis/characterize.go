package analysis

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/image-analysis-mcp/internal/imaging"
)

// DefaultColors and DefaultSeed are the dominant-color defaults.
const (
	DefaultColors = 5
	DefaultSeed   = 42
)

// Options selects optional work and the clustering parameters.
type Options struct {
	NColors          int
	Seed             int64
	IncludeFrequency bool
}

// Report bundles the output of every pixel-domain engine. Frequency is nil
// unless requested.
type Report struct {
	Histogram *HistogramResult `json:"histogram"`
	Tonal     *TonalReport     `json:"tonal_analysis"`
	Color     *ColorReport     `json:"color_analysis"`
	Spatial   *SpatialReport   `json:"spatial_properties"`
	Frequency *FrequencyReport `json:"frequency_analysis"`
}

// Characterize runs every engine over buf. Histogram and tonal analysis run
// in sequence; color, spatial and frequency analysis run concurrently on the
// shared read-only buffer.
//
// The engines cannot be interrupted. If ctx is cancelled, Characterize
// returns ctx.Err() once the running engines finish and discards their
// output.
func Characterize(ctx context.Context, buf *imaging.PixelBuffer, opts Options) (*Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report := &Report{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		hist, err := CalculateHistogram(buf)
		if err != nil {
			return err
		}
		tonal, err := AnalyzeTonal(buf, hist.Histogram.Luminance)
		if err != nil {
			return err
		}
		report.Histogram, report.Tonal = hist, tonal
		return nil
	})
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		color, err := AnalyzeColor(buf, opts.NColors, opts.Seed)
		if err != nil {
			return err
		}
		report.Color = color
		return nil
	})
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		spatial, err := AnalyzeSpatial(buf)
		if err != nil {
			return err
		}
		report.Spatial = spatial
		return nil
	})
	if opts.IncludeFrequency {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			freq, err := AnalyzeFrequency(buf)
			if err != nil {
				return err
			}
			report.Frequency = freq
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return report, nil
}
