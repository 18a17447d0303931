package metadata

import (
	"math"
	"strconv"
	"strings"

	apperrors "github.com/ironsheep/image-analysis-mcp/internal/errors"
)

// ParseFraction parses an EXIF numeric token. The token is either a ratio
// "a/b" or a decimal literal. A zero denominator or a non-numeric part is
// a MALFORMED_FRACTION error.
func ParseFraction(value string) (float64, error) {
	value = strings.TrimSpace(value)
	num, den, isRatio := strings.Cut(value, "/")
	if !isRatio {
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return 0, apperrors.NewMalformedFraction(value, err)
		}
		return f, nil
	}

	n, err := strconv.ParseFloat(strings.TrimSpace(num), 64)
	if err != nil {
		return 0, apperrors.NewMalformedFraction(value, err)
	}
	d, err := strconv.ParseFloat(strings.TrimSpace(den), 64)
	if err != nil {
		return 0, apperrors.NewMalformedFraction(value, err)
	}
	if d == 0 {
		return 0, apperrors.NewMalformedFraction(value, nil)
	}
	return n / d, nil
}

func round(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}
