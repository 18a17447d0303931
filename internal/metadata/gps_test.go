package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/ironsheep/image-analysis-mcp/internal/errors"
)

func TestDMSToDecimal(t *testing.T) {
	tests := []struct {
		name  string
		parts []string
		ref   string
		want  float64
	}{
		{"north", []string{"41", "53", "23"}, "N", 41.889722},
		{"south negates", []string{"41", "53", "23"}, "S", -41.889722},
		{"east", []string{"12", "29", "30"}, "E", 12.491667},
		{"west negates", []string{"12", "29", "30"}, "W", -12.491667},
		{"fractional parts", []string{"41/1", "53/1", "2300/100"}, "N", 41.889722},
		{"empty ref", []string{"10", "30", "0"}, "", 10.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DMSToDecimal(tt.parts, tt.ref)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestDMSToDecimal_Errors(t *testing.T) {
	_, err := DMSToDecimal([]string{"41", "53"}, "N")
	require.Error(t, err)
	assert.Equal(t, apperrors.KindInvalidCoordinateFormat, apperrors.KindOf(err))

	_, err = DMSToDecimal([]string{"41", "53", "1/0"}, "N")
	require.Error(t, err)
	assert.Equal(t, apperrors.KindMalformedFraction, apperrors.KindOf(err))
}

func TestParseGPSCoordinate(t *testing.T) {
	got, err := ParseGPSCoordinate("[41, 53, 23]", "N")
	require.NoError(t, err)
	assert.InDelta(t, 41.889722, got, 1e-9)

	got, err = ParseGPSCoordinate("41, 53, 23", "S")
	require.NoError(t, err)
	assert.InDelta(t, -41.889722, got, 1e-9)

	for _, raw := range []string{"", "[]", "[41, 53]", "[1, 2, 3, 4]"} {
		_, err := ParseGPSCoordinate(raw, "N")
		require.Error(t, err, raw)
		assert.Equal(t, apperrors.KindInvalidCoordinateFormat, apperrors.KindOf(err), raw)
	}
}
