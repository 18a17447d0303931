package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func filepathProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Path to the image file (JPEG, PNG, TIFF, WEBP or camera RAW)",
	}
}

func processRawProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "boolean",
		"description": "Develop RAW files through the external converter (default: true)",
		"default":     true,
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		{
			Name: "get_metadata",
			Description: "Read image metadata without decoding pixels: dimensions, color mode, bit depth, " +
				"file format and size, color space, and normalized EXIF (camera, lens, exposure, date, GPS).",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"filepath": filepathProperty(),
				},
				"required": []string{"filepath"},
			},
		},
		{
			Name:        "get_histogram",
			Description: "Compute 256-bin red, green, blue and luminance histograms with per-channel mean, median and standard deviation.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"filepath":    filepathProperty(),
					"process_raw": processRawProperty(),
				},
				"required": []string{"filepath"},
			},
		},
		{
			Name: "analyze_image",
			Description: "Full image characterization: metadata, histograms, tonal zones and exposure, dominant colors " +
				"and temperature, sharpness, noise and contrast, optional frequency analysis and an optional base64 preview.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"filepath": filepathProperty(),
					"include_frequency": map[string]interface{}{
						"type":        "boolean",
						"description": "Include FFT-based frequency analysis (default: false)",
						"default":     false,
					},
					"include_preview": map[string]interface{}{
						"type":        "boolean",
						"description": "Include a downscaled base64-encoded preview (default: false)",
						"default":     false,
					},
					"preview_max_dimension": map[string]interface{}{
						"type":        "integer",
						"description": "Longest side of the preview in pixels, 1-10000 (default: 1920)",
						"default":     1920,
						"minimum":     1,
						"maximum":     10000,
					},
					"preview_format": map[string]interface{}{
						"type":        "string",
						"description": "Preview encoding (default: JPEG)",
						"enum":        []string{"JPEG", "PNG", "WEBP"},
						"default":     "JPEG",
					},
					"preview_quality": map[string]interface{}{
						"type":        "integer",
						"description": "JPEG/WEBP quality, 1-100 (default: 85)",
						"default":     85,
						"minimum":     1,
						"maximum":     100,
					},
					"process_raw": processRawProperty(),
					"n_colors": map[string]interface{}{
						"type":        "integer",
						"description": "Number of dominant colors to extract (default: 5)",
						"default":     5,
						"minimum":     1,
					},
				},
				"required": []string{"filepath"},
			},
		},
	}
}
