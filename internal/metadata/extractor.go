package metadata

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/sirupsen/logrus"

	apperrors "github.com/ironsheep/image-analysis-mcp/internal/errors"
	"github.com/ironsheep/image-analysis-mcp/internal/imaging"
	"github.com/ironsheep/image-analysis-mcp/internal/logger"
)

const bytesPerMB = 1024 * 1024

// SensorSizer reports the native sensor size of a RAW file.
type SensorSizer interface {
	SensorSize(ctx context.Context, path string) (width, height int, err error)
}

// Dimensions is the stored pixel size.
type Dimensions struct {
	Width      int     `json:"width"`
	Height     int     `json:"height"`
	Megapixels float64 `json:"megapixels"`
}

// Metadata describes an image file without decoding its pixels.
type Metadata struct {
	Dimensions Dimensions `json:"dimensions"`
	ColorMode  string     `json:"color_mode"`
	BitDepth   int        `json:"bit_depth"`
	FileFormat string     `json:"file_format"`
	FileSizeMB float64    `json:"file_size_mb"`
	ColorSpace string     `json:"color_space"`
	EXIF       ExifRecord `json:"exif"`
}

// Extractor gathers file metadata and EXIF.
type Extractor struct {
	tags TagReader
	raw  SensorSizer
}

// NewExtractor creates an Extractor. A nil tags reader selects the goexif
// reader. A nil raw sizer makes RAW inputs unreadable.
func NewExtractor(tags TagReader, raw SensorSizer) *Extractor {
	if tags == nil {
		tags = NewExifReader()
	}
	return &Extractor{tags: tags, raw: raw}
}

// Extract inspects path for dimensions, color mode, bit depth and color
// space, and reads its EXIF. A file whose dimensions cannot be read is an
// UNREADABLE_FILE error; EXIF problems are recorded in the raw tag map
// under "_error" and never fail the call.
func (e *Extractor) Extract(ctx context.Context, path string) (*Metadata, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return nil, apperrors.NewUnreadableFile(path, err)
	}

	record := e.readEXIF(path)

	var info *imageInfo
	if imaging.IsRaw(path) {
		info, err = e.inspectRaw(ctx, path)
	} else {
		info, err = inspectRaster(path)
	}
	if err != nil {
		return nil, apperrors.NewUnreadableFile(path, err)
	}

	space := SpaceRaw
	if !imaging.IsRaw(path) {
		space = colorSpace(info.hasICC, record.Raw[string(exif.ColorSpace)], info.mode)
	}

	return &Metadata{
		Dimensions: Dimensions{
			Width:      info.width,
			Height:     info.height,
			Megapixels: round(float64(info.width*info.height)/1_000_000, 2),
		},
		ColorMode:  info.mode,
		BitDepth:   info.bitDepth,
		FileFormat: strings.ToUpper(strings.TrimPrefix(filepath.Ext(path), ".")),
		FileSizeMB: round(float64(stat.Size())/bytesPerMB, 2),
		ColorSpace: space,
		EXIF:       record,
	}, nil
}

func (e *Extractor) readEXIF(path string) ExifRecord {
	raw, err := e.tags.ReadTags(path)
	if raw == nil {
		raw = map[string]string{}
	}
	if err != nil {
		logger.WithFields(logrus.Fields{
			"filepath": path,
			"error":    err.Error(),
		}).Debug("EXIF read incomplete")
		raw[rawErrorKey] = err.Error()
	}
	return NormalizeEXIF(raw)
}

func (e *Extractor) inspectRaw(ctx context.Context, path string) (*imageInfo, error) {
	if e.raw == nil {
		return nil, apperrors.NewRawProcessingFailed(path, nil)
	}
	w, h, err := e.raw.SensorSize(ctx, path)
	if err != nil {
		return nil, err
	}
	return &imageInfo{width: w, height: h, mode: ModeBayer, bitDepth: rawBitDepth}, nil
}
