package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/image-analysis-mcp/internal/analysis"
	apperrors "github.com/ironsheep/image-analysis-mcp/internal/errors"
	"github.com/ironsheep/image-analysis-mcp/internal/imaging"
	"github.com/ironsheep/image-analysis-mcp/internal/logger"
	"github.com/ironsheep/image-analysis-mcp/internal/metadata"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "get_metadata", "analyze_image").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// errorData is the data payload of a failed tool call.
type errorData struct {
	Code      apperrors.Kind `json:"code"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details,omitempty"`
	Retryable bool           `json:"retryable"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000
// whose data carries the error code, message, details and retryable flag.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	log := logger.WithField("tool", params.Name)
	start := time.Now()
	log.Debug("Tool call started")

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		appErr := apperrors.As(err)
		log.WithFields(logrus.Fields{
			"code":     appErr.Kind,
			"duration": time.Since(start).String(),
		}).WithError(err).Warn("Tool call failed")
		return s.errorResponse(req.ID, -32000, "Tool execution failed", errorData{
			Code:      appErr.Kind,
			Message:   appErr.Message,
			Details:   appErr.Details,
			Retryable: apperrors.Retryable(appErr.Kind),
		})
	}
	log.WithField("duration", time.Since(start).String()).Debug("Tool call finished")

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function
// under the configured analysis timeout.
//
// Each tool handler:
//  1. Unmarshals arguments from JSON
//  2. Validates the filepath and applies defaults for optional parameters
//  3. Runs the metadata, decoding and analysis steps it needs
//  4. Returns the result or an *AppError
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.AnalysisTimeout)
	defer cancel()

	var (
		result interface{}
		err    error
	)
	switch name {
	case "get_metadata":
		result, err = s.handleGetMetadata(ctx, args)
	case "get_histogram":
		result, err = s.handleGetHistogram(ctx, args)
	case "analyze_image":
		result, err = s.handleAnalyzeImage(ctx, args)
	default:
		return nil, apperrors.NewInvalidParameter(fmt.Sprintf("Unknown tool: %s", name)).WithDetail("tool", name)
	}

	if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return nil, apperrors.NewTimeout(
			fmt.Sprintf("%s exceeded the %s analysis timeout", name, s.cfg.AnalysisTimeout), err)
	}
	return result, err
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message string, data interface{}) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// decodeArgs unmarshals tool arguments, rejecting unknown fields.
func decodeArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}
	dec := json.NewDecoder(bytes.NewReader(args))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return apperrors.NewInvalidParameter(fmt.Sprintf("Invalid arguments: %v", err))
	}
	return nil
}

// === get_metadata ===

type getMetadataArgs struct {
	Filepath string `json:"filepath"`
}

type metadataResult struct {
	Success  bool               `json:"success"`
	Filepath string             `json:"filepath"`
	Metadata *metadata.Metadata `json:"metadata"`
}

func (s *Server) handleGetMetadata(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a getMetadataArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	path, err := validateFilepath(a.Filepath)
	if err != nil {
		return nil, err
	}

	md, err := s.extractor.Extract(ctx, path)
	if err != nil {
		return nil, err
	}
	return &metadataResult{Success: true, Filepath: path, Metadata: md}, nil
}

// === get_histogram ===

type getHistogramArgs struct {
	Filepath   string `json:"filepath"`
	ProcessRaw *bool  `json:"process_raw"`
}

type histogramResult struct {
	Success    bool                `json:"success"`
	Filepath   string              `json:"filepath"`
	Histogram  analysis.Histogram  `json:"histogram"`
	Statistics analysis.Statistics `json:"statistics"`
}

func (s *Server) handleGetHistogram(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a getHistogramArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	path, err := validateFilepath(a.Filepath)
	if err != nil {
		return nil, err
	}

	buf, err := s.decoder.Decode(ctx, path, boolOrDefault(a.ProcessRaw, true))
	if err != nil {
		return nil, err
	}
	hist, err := analysis.CalculateHistogram(buf)
	if err != nil {
		return nil, err
	}
	return &histogramResult{
		Success:    true,
		Filepath:   path,
		Histogram:  hist.Histogram,
		Statistics: hist.Statistics,
	}, nil
}

// === analyze_image ===

type analyzeImageArgs struct {
	Filepath            string  `json:"filepath"`
	IncludeFrequency    bool    `json:"include_frequency"`
	IncludePreview      bool    `json:"include_preview"`
	PreviewMaxDimension *int    `json:"preview_max_dimension"`
	PreviewFormat       *string `json:"preview_format"`
	PreviewQuality      *int    `json:"preview_quality"`
	ProcessRaw          *bool   `json:"process_raw"`
	NColors             *int    `json:"n_colors"`
}

type analyzeResult struct {
	Success   bool                      `json:"success"`
	Filepath  string                    `json:"filepath"`
	Metadata  *metadata.Metadata        `json:"metadata"`
	Histogram analysis.Histogram        `json:"histogram"`
	Tonal     *analysis.TonalReport     `json:"tonal_analysis"`
	Color     *analysis.ColorReport     `json:"color_analysis"`
	Spatial   *analysis.SpatialReport   `json:"spatial_properties"`
	Frequency *analysis.FrequencyReport `json:"frequency_analysis"`
	Preview   *imaging.PreviewResult    `json:"preview"`
}

func (s *Server) handleAnalyzeImage(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a analyzeImageArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	path, err := validateFilepath(a.Filepath)
	if err != nil {
		return nil, err
	}
	preview, err := validatePreviewOptions(a.PreviewMaxDimension, a.PreviewFormat, a.PreviewQuality)
	if err != nil {
		return nil, err
	}
	nColors, err := validateColorCount(a.NColors, s.cfg.DominantColors)
	if err != nil {
		return nil, err
	}

	// Metadata only reads headers, so it runs alongside pixel decoding.
	var (
		md  *metadata.Metadata
		buf *imaging.PixelBuffer
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		md, err = s.extractor.Extract(gctx, path)
		return err
	})
	g.Go(func() error {
		var err error
		buf, err = s.decoder.Decode(gctx, path, boolOrDefault(a.ProcessRaw, true))
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report, err := analysis.Characterize(ctx, buf, analysis.Options{
		NColors:          nColors,
		Seed:             s.cfg.Seed,
		IncludeFrequency: a.IncludeFrequency,
	})
	if err != nil {
		return nil, err
	}

	result := &analyzeResult{
		Success:   true,
		Filepath:  path,
		Metadata:  md,
		Histogram: report.Histogram.Histogram,
		Tonal:     report.Tonal,
		Color:     report.Color,
		Spatial:   report.Spatial,
		Frequency: report.Frequency,
	}

	if a.IncludePreview {
		p, err := imaging.Preview(buf, preview.maxDimension, preview.format, preview.quality)
		if err != nil {
			logger.WithFields(logrus.Fields{
				"filepath": path,
				"format":   preview.format,
			}).WithError(err).Warn("Preview generation failed")
		} else {
			result.Preview = p
		}
	}
	return result, nil
}

func boolOrDefault(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}
