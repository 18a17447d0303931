package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNearestColorName(t *testing.T) {
	tests := []struct {
		name    string
		r, g, b uint8
		want    string
	}{
		{"black", 0, 0, 0, "black"},
		{"white", 255, 255, 255, "white"},
		{"near red", 250, 10, 5, "red"},
		{"mid gray", 128, 128, 128, "gray"},
		{"dark gray", 100, 100, 100, "gray"},
		{"orange", 250, 160, 10, "orange"},
		{"beige", 240, 240, 215, "beige"},
		{"navy", 0, 0, 120, "navy"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NearestColorName(tt.r, tt.g, tt.b))
		})
	}
}

func TestNearestColorName_TieGoesToFirst(t *testing.T) {
	// (0, 0, 64) is equidistant from black and navy; black comes first.
	assert.Equal(t, "black", NearestColorName(0, 0, 64))
}

func TestPalette(t *testing.T) {
	assert.Len(t, Palette, 24)
	seen := map[string]bool{}
	for _, c := range Palette {
		assert.False(t, seen[c.Name], "duplicate %s", c.Name)
		seen[c.Name] = true
	}
}

func TestHexString(t *testing.T) {
	assert.Equal(t, "#000000", HexString(0, 0, 0))
	assert.Equal(t, "#ffffff", HexString(255, 255, 255))
	assert.Equal(t, "#ff8001", HexString(255, 128, 1))
	assert.Equal(t, "#0a0b0c", HexString(10, 11, 12))
}

func TestColorDistance(t *testing.T) {
	assert.Equal(t, 0.0, ColorDistance(5, 5, 5, 5, 5, 5))
	assert.Equal(t, 5.0, ColorDistance(0, 0, 0, 3, 4, 0))
	assert.Equal(t, ColorDistance(1, 2, 3, 9, 8, 7), ColorDistance(9, 8, 7, 1, 2, 3))
}

func TestRound(t *testing.T) {
	assert.Equal(t, 1.23, round(1.234, 2))
	assert.Equal(t, 1.235, round(1.2346, 3))
	assert.Equal(t, 41.889722, round(41.8897222222, 6))
}
