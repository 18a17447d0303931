package metadata

import (
	"strings"

	apperrors "github.com/ironsheep/image-analysis-mcp/internal/errors"
)

// GPS is a decoded position. Latitude and longitude are signed decimal
// degrees rounded to 6 places.
type GPS struct {
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Altitude  *float64 `json:"altitude"`
}

// DMSToDecimal converts a degrees/minutes/seconds triple to decimal degrees.
// Each part may be a ratio. References "S" and "W" negate the result.
func DMSToDecimal(parts []string, ref string) (float64, error) {
	if len(parts) != 3 {
		return 0, apperrors.NewInvalidCoordinate(strings.Join(parts, ", "))
	}

	var dms [3]float64
	for i, p := range parts {
		v, err := ParseFraction(p)
		if err != nil {
			return 0, err
		}
		dms[i] = v
	}

	decimal := dms[0] + dms[1]/60 + dms[2]/3600
	switch strings.TrimSpace(ref) {
	case "S", "W":
		decimal = -decimal
	}
	return round(decimal, 6), nil
}

// ParseGPSCoordinate parses a coordinate in tag-string form, such as
// "[41, 53, 23]" or "[41/1, 53/1, 2300/100]".
func ParseGPSCoordinate(raw, ref string) (float64, error) {
	trimmed := strings.Trim(strings.TrimSpace(raw), "[]")
	if trimmed == "" {
		return 0, apperrors.NewInvalidCoordinate(raw)
	}
	parts := strings.Split(trimmed, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	if len(parts) != 3 {
		return 0, apperrors.NewInvalidCoordinate(raw)
	}
	return DMSToDecimal(parts, ref)
}
