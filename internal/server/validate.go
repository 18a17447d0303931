package server

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	apperrors "github.com/ironsheep/image-analysis-mcp/internal/errors"
	"github.com/ironsheep/image-analysis-mcp/internal/imaging"
)

var previewFormats = map[string]bool{"JPEG": true, "PNG": true, "WEBP": true}

// validateFilepath resolves raw to an absolute, symlink-free path and checks
// that it names a readable file of a supported format.
func validateFilepath(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", apperrors.NewInvalidParameter("Filepath cannot be empty")
	}

	path, err := filepath.Abs(raw)
	if err != nil {
		return "", apperrors.NewInvalidParameter("Invalid filepath: " + raw)
	}
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		path = resolved
	}

	info, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return "", apperrors.NewFileNotFound(path)
	case errors.Is(err, fs.ErrPermission):
		return "", apperrors.NewPermissionDenied(path, err)
	case err != nil:
		return "", apperrors.NewUnreadableFile(path, err)
	}
	if !info.Mode().IsRegular() {
		return "", apperrors.NewInvalidParameter("Path is not a file: " + path).WithDetail("filepath", path)
	}

	f, err := os.Open(path)
	if err != nil {
		return "", apperrors.NewPermissionDenied(path, err)
	}
	f.Close()

	if !imaging.IsSupported(path) {
		return "", apperrors.NewUnsupportedFormat(path, imaging.Ext(path))
	}
	return path, nil
}

// previewOptions are the resolved preview arguments of analyze_image.
type previewOptions struct {
	maxDimension int
	format       string
	quality      int
}

func validatePreviewOptions(maxDimension *int, format *string, quality *int) (previewOptions, error) {
	opts := previewOptions{
		maxDimension: imaging.DefaultPreviewMaxDimension,
		format:       imaging.DefaultPreviewFormat,
		quality:      imaging.DefaultPreviewQuality,
	}
	if maxDimension != nil {
		opts.maxDimension = *maxDimension
	}
	if format != nil {
		opts.format = strings.ToUpper(strings.TrimSpace(*format))
	}
	if quality != nil {
		opts.quality = *quality
	}

	if opts.maxDimension < 1 || opts.maxDimension > imaging.MaxPreviewDimension {
		return opts, apperrors.NewInvalidParameter("preview_max_dimension must be between 1 and 10000").
			WithDetail("provided_value", opts.maxDimension)
	}
	if opts.quality < 1 || opts.quality > 100 {
		return opts, apperrors.NewInvalidParameter("preview_quality must be between 1 and 100").
			WithDetail("provided_value", opts.quality)
	}
	if !previewFormats[opts.format] {
		return opts, apperrors.NewInvalidParameter("preview_format must be 'JPEG', 'PNG', or 'WEBP'").
			WithDetail("provided_value", opts.format)
	}
	return opts, nil
}

func validateColorCount(n *int, def int) (int, error) {
	if n == nil {
		return def, nil
	}
	if *n < 1 {
		return 0, apperrors.NewInvalidParameter("n_colors must be at least 1").WithDetail("provided_value", *n)
	}
	return *n, nil
}
