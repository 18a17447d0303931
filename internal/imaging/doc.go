// Package imaging turns image files into pixel buffers for analysis.
//
// It decodes JPEG, PNG, TIFF and WEBP in-process and develops camera RAW
// files (CR2, CR3, NEF, ARW, DNG, RAF, ORF) through an external dcraw-style
// converter. Every decoded image becomes a PixelBuffer: 8-bit RGB, row-major,
// with any alpha channel discarded. Buffers are read-only once built and can
// be shared across goroutines.
//
// # Caching
//
// Decoder keeps recently decoded buffers in an LRU ImageCache keyed by path,
// RAW mode and file stamp (size and modification time), so an edited file is
// always decoded afresh.
//
// # Derived Outputs
//
// Canny and EdgeDensity compute the edge map used for sharpness scoring.
// Preview produces a downscaled JPEG, PNG or WEBP copy encoded as base64 and
// as a data URI.
//
// # Error Handling
//
// Failures are *errors.AppError values: UNREADABLE_FILE, DECODE_ERROR,
// RAW_PROCESSING_FAILED and, for preview options, INVALID_PARAMETER.
package imaging
