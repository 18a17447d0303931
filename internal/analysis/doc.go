// Package analysis implements the pixel-domain characterization engines.
//
// Each engine is a pure function of an immutable imaging.PixelBuffer and
// returns a plain record ready for JSON serialization:
//
//   - CalculateHistogram: 256-bin R, G, B and luminance counts with
//     mean/median/std per channel
//   - AnalyzeTonal: shadow/midtone/highlight bands, clipping and dynamic range
//   - AnalyzeColor: k-means dominant colors, saturation, temperature,
//     white balance and color cast
//   - AnalyzeSpatial: sharpness, noise, edge density, entropy and blur
//   - AnalyzeFrequency: 2-D spectral energy split and dominant frequency
//
// Characterize runs them all for one buffer.
//
// # Luminance
//
// Two luma projections are used. The histogram and tonal engines truncate
// 0.299R + 0.587G + 0.114B toward zero so that bins 0 and 255 count exactly
// the clipped pixels. The spatial and frequency engines use the rounded
// fixed-point projection from imaging.PixelBuffer.Gray.
//
// # Determinism
//
// Dominant-color sampling and cluster initialization draw from a generator
// seeded by the caller. Identical buffers and seeds give identical reports.
package analysis
