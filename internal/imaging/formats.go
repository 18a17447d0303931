package imaging

import (
	"path/filepath"
	"strings"
)

var rasterExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true,
	".tif": true, ".tiff": true, ".webp": true,
}

var rawExtensions = map[string]bool{
	".cr2": true, ".cr3": true, ".nef": true, ".arw": true,
	".dng": true, ".raf": true, ".orf": true,
}

// Ext returns the lower-cased extension of path including the dot.
func Ext(path string) string {
	return strings.ToLower(filepath.Ext(path))
}

// IsRaw reports whether path names a camera RAW file.
func IsRaw(path string) bool {
	return rawExtensions[Ext(path)]
}

// IsSupported reports whether path names a raster or RAW file the decoder
// accepts.
func IsSupported(path string) bool {
	ext := Ext(path)
	return rasterExtensions[ext] || rawExtensions[ext]
}
