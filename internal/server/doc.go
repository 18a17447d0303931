// Package server implements the MCP (Model Context Protocol) server for image analysis.
//
// This package provides a JSON-RPC 2.0 server that exposes photographic image
// characterization through the MCP protocol, so that a client can reason about
// an image's exposure, color and sharpness from structured numbers.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
//   - get_metadata: Dimensions, color mode, bit depth, color space and EXIF
//   - get_histogram: RGB and luminance histograms with statistics
//   - analyze_image: Metadata, histograms, tonal, color, spatial and optional
//     frequency analysis, plus an optional base64 preview
//
// Every tool takes a "filepath" argument. Paths are resolved to absolute,
// symlink-free form before use and the resolved path is echoed in the result.
//
// # Image Caching
//
// Decoded pixel buffers are cached by path and file modification time, so
// get_histogram followed by analyze_image on the same file decodes it once.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: "Tool execution failed"
//   - data: {code, message, details, retryable} where code is one of the
//     error kinds defined in package errors
//
// Every tool call runs under the configured analysis timeout; exceeding it
// yields a TIMEOUT error.
//
// # Usage
//
// The server is typically started by an MCP client:
//
//	srv := server.New(cfg)
//	if err := srv.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
package server
