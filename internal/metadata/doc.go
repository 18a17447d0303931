// Package metadata describes image files without decoding their pixels:
// stored dimensions, color mode, bit depth, color space, file size, and
// normalized EXIF capture fields.
//
// EXIF is read with goexif from JPEG APP1 segments, PNG eXIf chunks, WebP
// EXIF chunks and TIFF-structured files. A missing or malformed tag leaves
// the matching ExifRecord field nil; a failed decode is recorded under the
// "_error" key of the raw tag map and never fails extraction.
//
// RAW files are sized through a SensorSizer, normally the configured RAW
// converter, and always report mode "Bayer", 14-bit depth and color space
// "Raw".
package metadata
