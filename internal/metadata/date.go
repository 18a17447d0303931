package metadata

import (
	"strings"
	"time"
)

const (
	exifDateLayout = "2006:01:02 15:04:05"
	isoDateLayout  = "2006-01-02T15:04:05"
)

// NormalizeDate converts an EXIF timestamp ("YYYY:MM:DD HH:MM:SS") to
// ISO-8601. Values that do not parse are returned unchanged.
func NormalizeDate(raw string) string {
	t, err := time.Parse(exifDateLayout, strings.TrimSpace(raw))
	if err != nil {
		return raw
	}
	return t.Format(isoDateLayout)
}
