package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func findTool(t *testing.T, name string) Tool {
	t.Helper()
	for _, tool := range GetToolDefinitions() {
		if tool.Name == name {
			return tool
		}
	}
	t.Fatalf("tool %q not defined", name)
	return Tool{}
}

func TestGetToolDefinitions(t *testing.T) {
	var names []string
	for _, tool := range GetToolDefinitions() {
		names = append(names, tool.Name)
		assert.NotEmpty(t, tool.Description, tool.Name)
		assert.Equal(t, "object", tool.InputSchema["type"], tool.Name)
		assert.Equal(t, []string{"filepath"}, tool.InputSchema["required"], tool.Name)

		props, ok := tool.InputSchema["properties"].(map[string]interface{})
		require.True(t, ok, tool.Name)
		assert.Contains(t, props, "filepath", tool.Name)
	}
	assert.Equal(t, []string{"get_metadata", "get_histogram", "analyze_image"}, names)
}

func TestToolDefinitions_AnalyzeImageDefaults(t *testing.T) {
	props := findTool(t, "analyze_image").InputSchema["properties"].(map[string]interface{})

	tests := []struct {
		param string
		want  interface{}
	}{
		{"include_frequency", false},
		{"include_preview", false},
		{"preview_max_dimension", 1920},
		{"preview_format", "JPEG"},
		{"preview_quality", 85},
		{"process_raw", true},
		{"n_colors", 5},
	}

	for _, tt := range tests {
		t.Run(tt.param, func(t *testing.T) {
			prop, ok := props[tt.param].(map[string]interface{})
			require.True(t, ok)
			assert.Equal(t, tt.want, prop["default"])
		})
	}

	format := props["preview_format"].(map[string]interface{})
	assert.Equal(t, []string{"JPEG", "PNG", "WEBP"}, format["enum"])
}

func TestToolDefinitions_HistogramProcessRaw(t *testing.T) {
	props := findTool(t, "get_histogram").InputSchema["properties"].(map[string]interface{})
	prop, ok := props["process_raw"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "boolean", prop["type"])
	assert.Equal(t, true, prop["default"])
}
