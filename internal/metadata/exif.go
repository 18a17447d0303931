package metadata

import (
	"bytes"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"
)

// rawErrorKey holds the reason EXIF decoding failed, if it did.
const rawErrorKey = "_error"

// maxUndefinedBytes caps how many bytes of an undefined-type tag are listed.
const maxUndefinedBytes = 16

// TagReader reads the EXIF tags of a file as tag-name to string value.
// A file without EXIF data yields an empty map and no error.
type TagReader interface {
	ReadTags(path string) (map[string]string, error)
}

// ExifReader is the goexif-backed TagReader. It understands EXIF in JPEG
// APP1 segments, PNG eXIf chunks, WebP EXIF chunks and TIFF-structured
// files, including TIFF-based RAW formats.
type ExifReader struct{}

// NewExifReader creates an ExifReader.
func NewExifReader() *ExifReader {
	return &ExifReader{}
}

// ReadTags implements TagReader. When decoding or the container scan fails
// part way through, the tags read so far are returned along with the error.
func (r *ExifReader) ReadTags(path string) (map[string]string, error) {
	c, scanErr := scanContainer(path)
	if c == nil {
		return map[string]string{}, scanErr
	}

	var (
		x   *exif.Exif
		err error
	)
	switch {
	case len(c.exif) > 0:
		x, err = exif.Decode(bytes.NewReader(c.exif))
	case c.tiffLike:
		f, openErr := os.Open(path)
		if openErr != nil {
			return map[string]string{}, openErr
		}
		defer f.Close()
		x, err = exif.Decode(f)
	default:
		if scanErr != nil {
			return map[string]string{}, fmt.Errorf("failed to scan for EXIF: %w", scanErr)
		}
		return map[string]string{}, nil
	}

	tags := map[string]string{}
	if x != nil {
		if walkErr := x.Walk(tagCollector(tags)); walkErr != nil && err == nil {
			err = walkErr
		}
	}
	if err != nil {
		return tags, fmt.Errorf("failed to decode EXIF: %w", err)
	}
	if scanErr != nil {
		return tags, fmt.Errorf("failed to scan for EXIF: %w", scanErr)
	}
	return tags, nil
}

// tagCollector is an exif.Walker that formats every tag into a map.
type tagCollector map[string]string

func (t tagCollector) Walk(name exif.FieldName, tag *tiff.Tag) error {
	key := string(name)
	if strings.HasPrefix(key, "Thumb") || name == exif.MakerNote {
		return nil
	}
	t[key] = formatTag(tag)
	return nil
}

// formatTag renders a tag value the way EXIF tools print it: trimmed text,
// reduced ratios ("1/250", "23"), and "[a, b, c]" for multi-valued tags.
func formatTag(tag *tiff.Tag) string {
	switch tag.Format() {
	case tiff.StringVal:
		s, err := tag.StringVal()
		if err != nil {
			return ""
		}
		return strings.TrimSpace(s)
	case tiff.UndefVal:
		return formatUndefined(tag.Val)
	}

	values := make([]string, 0, tag.Count)
	for i := 0; i < int(tag.Count); i++ {
		switch tag.Format() {
		case tiff.RatVal:
			num, den, err := tag.Rat2(i)
			if err != nil {
				return tag.String()
			}
			values = append(values, formatRatio(num, den))
		case tiff.IntVal:
			v, err := tag.Int64(i)
			if err != nil {
				return tag.String()
			}
			values = append(values, strconv.FormatInt(v, 10))
		case tiff.FloatVal:
			v, err := tag.Float(i)
			if err != nil {
				return tag.String()
			}
			values = append(values, strconv.FormatFloat(v, 'f', -1, 64))
		default:
			return tag.String()
		}
	}
	if len(values) == 1 {
		return values[0]
	}
	return "[" + strings.Join(values, ", ") + "]"
}

func formatRatio(num, den int64) string {
	if den == 0 {
		return fmt.Sprintf("%d/0", num)
	}
	if g := gcd(abs64(num), abs64(den)); g > 1 {
		num, den = num/g, den/g
	}
	if den < 0 {
		num, den = -num, -den
	}
	if den == 1 {
		return strconv.FormatInt(num, 10)
	}
	return fmt.Sprintf("%d/%d", num, den)
}

func formatUndefined(val []byte) string {
	trimmed := bytes.TrimRight(val, "\x00")
	printable := len(trimmed) > 0
	for _, b := range trimmed {
		if b < 0x20 || b > 0x7e {
			printable = false
			break
		}
	}
	if printable {
		return strings.TrimSpace(string(trimmed))
	}
	if len(val) > maxUndefinedBytes {
		return fmt.Sprintf("[%d bytes]", len(val))
	}
	parts := make([]string, len(val))
	for i, b := range val {
		parts[i] = strconv.Itoa(int(b))
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func gcd(a, b int64) int64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

// ExifRecord holds the normalized capture fields. Fields are nil when the
// tag is absent or malformed. Raw carries every tag as read.
type ExifRecord struct {
	Camera       *string           `json:"camera"`
	Lens         *string           `json:"lens"`
	ISO          *int              `json:"iso"`
	Aperture     *float64          `json:"aperture"`
	ShutterSpeed *string           `json:"shutter_speed"`
	FocalLength  *int              `json:"focal_length"`
	DateTaken    *string           `json:"date_taken"`
	GPS          *GPS              `json:"gps"`
	Raw          map[string]string `json:"raw"`
}

// NormalizeEXIF derives an ExifRecord from a raw tag table. A malformed tag
// leaves its field nil and never affects the others.
func NormalizeEXIF(raw map[string]string) ExifRecord {
	if raw == nil {
		raw = map[string]string{}
	}
	rec := ExifRecord{Raw: raw}
	get := func(name exif.FieldName) string {
		return strings.TrimSpace(raw[string(name)])
	}

	cameraMake, model := get(exif.Make), get(exif.Model)
	switch {
	case cameraMake != "" && model != "":
		rec.Camera = ptr(cameraMake + " " + model)
	case model != "":
		rec.Camera = ptr(model)
	}

	if lens := get(exif.LensModel); lens != "" {
		rec.Lens = ptr(lens)
	}

	if iso, err := strconv.Atoi(get(exif.ISOSpeedRatings)); err == nil {
		rec.ISO = ptr(iso)
	}

	if v := get(exif.FNumber); v != "" {
		if f, err := ParseFraction(v); err == nil {
			rec.Aperture = ptr(round(f, 1))
		}
	}

	if v := get(exif.ExposureTime); v != "" {
		rec.ShutterSpeed = ptr(v)
	}

	if v := get(exif.FocalLength); v != "" {
		if f, err := ParseFraction(v); err == nil {
			rec.FocalLength = ptr(int(f))
		}
	}

	date := get(exif.DateTimeOriginal)
	if date == "" {
		date = get(exif.DateTime)
	}
	if date != "" {
		rec.DateTaken = ptr(NormalizeDate(date))
	}

	rec.GPS = normalizeGPS(get)
	return rec
}

func normalizeGPS(get func(exif.FieldName) string) *GPS {
	lat, lon := get(exif.GPSLatitude), get(exif.GPSLongitude)
	if lat == "" || lon == "" {
		return nil
	}
	latRef, lonRef := get(exif.GPSLatitudeRef), get(exif.GPSLongitudeRef)
	if latRef == "" {
		latRef = "N"
	}
	if lonRef == "" {
		lonRef = "E"
	}

	latitude, err := ParseGPSCoordinate(lat, latRef)
	if err != nil {
		return nil
	}
	longitude, err := ParseGPSCoordinate(lon, lonRef)
	if err != nil {
		return nil
	}

	gps := &GPS{Latitude: latitude, Longitude: longitude}
	if alt := get(exif.GPSAltitude); alt != "" {
		if f, err := ParseFraction(alt); err == nil {
			gps.Altitude = ptr(round(f, 2))
		}
	}
	return gps
}

func ptr[T any](v T) *T {
	return &v
}
