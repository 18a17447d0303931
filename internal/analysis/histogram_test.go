package analysis

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/image-analysis-mcp/internal/imaging"
)

// createUniformBuffer creates a buffer filled with one color.
func createUniformBuffer(t *testing.T, width, height int, r, g, b uint8) *imaging.PixelBuffer {
	t.Helper()
	pix := make([]uint8, width*height*3)
	for i := 0; i < len(pix); i += 3 {
		pix[i], pix[i+1], pix[i+2] = r, g, b
	}
	buf, err := imaging.NewPixelBuffer(width, height, pix)
	require.NoError(t, err)
	return buf
}

// createNoiseBuffer creates a buffer of uniformly random pixels.
func createNoiseBuffer(t *testing.T, width, height int, seed int64) *imaging.PixelBuffer {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	pix := make([]uint8, width*height*3)
	for i := range pix {
		pix[i] = uint8(rng.Intn(256))
	}
	buf, err := imaging.NewPixelBuffer(width, height, pix)
	require.NoError(t, err)
	return buf
}

// createPatternBuffer creates a buffer from a per-pixel color function.
func createPatternBuffer(t *testing.T, width, height int, fn func(x, y int) (uint8, uint8, uint8)) *imaging.PixelBuffer {
	t.Helper()
	pix := make([]uint8, width*height*3)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			i := (y*width + x) * 3
			pix[i], pix[i+1], pix[i+2] = fn(x, y)
		}
	}
	buf, err := imaging.NewPixelBuffer(width, height, pix)
	require.NoError(t, err)
	return buf
}

func sum(values []int) int {
	total := 0
	for _, v := range values {
		total += v
	}
	return total
}

func TestCalculateHistogram_SumsToPixelCount(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
	}{
		{"single pixel", 1, 1},
		{"wide", 37, 5},
		{"square", 64, 64},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := createNoiseBuffer(t, tt.width, tt.height, 7)
			result, err := CalculateHistogram(buf)
			require.NoError(t, err)

			want := tt.width * tt.height
			for name, bins := range map[string][]int{
				"red":       result.Histogram.Red,
				"green":     result.Histogram.Green,
				"blue":      result.Histogram.Blue,
				"luminance": result.Histogram.Luminance,
			} {
				assert.Len(t, bins, 256, name)
				assert.Equal(t, want, sum(bins), name)
			}
		})
	}
}

func TestCalculateHistogram_Uniform(t *testing.T) {
	buf := createUniformBuffer(t, 10, 10, 200, 100, 50)
	result, err := CalculateHistogram(buf)
	require.NoError(t, err)

	assert.Equal(t, 100, result.Histogram.Red[200])
	assert.Equal(t, 100, result.Histogram.Green[100])
	assert.Equal(t, 100, result.Histogram.Blue[50])
	assert.Equal(t, ChannelStatistics{Mean: 200, Median: 200, Std: 0}, result.Statistics.Red)
	assert.Equal(t, ChannelStatistics{Mean: 50, Median: 50, Std: 0}, result.Statistics.Blue)
}

func TestCalculateHistogram_Statistics(t *testing.T) {
	// Two columns: 0 and 100.
	buf := createPatternBuffer(t, 2, 1, func(x, _ int) (uint8, uint8, uint8) {
		v := uint8(x * 100)
		return v, v, v
	})
	result, err := CalculateHistogram(buf)
	require.NoError(t, err)

	assert.InDelta(t, 50.0, result.Statistics.Red.Mean, 1e-9)
	assert.InDelta(t, 50.0, result.Statistics.Red.Median, 1e-9)
	assert.InDelta(t, 50.0, result.Statistics.Red.Std, 1e-9)
}

func TestLuminance_Truncates(t *testing.T) {
	tests := []struct {
		r, g, b uint8
		want    uint8
	}{
		{0, 0, 0, 0},
		{255, 255, 255, 255},
		{128, 128, 128, 127},
		{255, 0, 0, 76},
		{0, 255, 0, 149},
		{0, 0, 255, 29},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Luminance(tt.r, tt.g, tt.b), "luminance(%d,%d,%d)", tt.r, tt.g, tt.b)
	}
}

func TestBinMedian(t *testing.T) {
	bins := make([]int, 256)
	bins[10] = 1
	bins[20] = 1
	bins[30] = 2
	assert.Equal(t, 25.0, binMedian(bins, 4))

	bins[40] = 1
	assert.Equal(t, 30.0, binMedian(bins, 5))
}

func TestCalculateHistogram_Nil(t *testing.T) {
	_, err := CalculateHistogram(nil)
	assert.Error(t, err)
}
