package server

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/ironsheep/image-analysis-mcp/internal/errors"
)

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

func TestValidateFilepath_Relative(t *testing.T) {
	imgPath := createTestImageFile(t, 4, 4, color.White)
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(filepath.Dir(imgPath)))
	t.Cleanup(func() { os.Chdir(wd) })

	got, err := validateFilepath(filepath.Base(imgPath))
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(got))
	assert.Equal(t, resolved(t, imgPath), got)
}

func TestValidateFilepath_CaseInsensitiveExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "PHOTO.JPG")
	require.NoError(t, os.WriteFile(path, []byte{0xFF, 0xD8}, 0o644))

	_, err := validateFilepath(path)
	assert.NoError(t, err)
}

func TestValidateFilepath_PermissionDenied(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("file permissions are not enforced for root")
	}
	imgPath := createTestImageFile(t, 4, 4, color.White)
	require.NoError(t, os.Chmod(imgPath, 0o000))
	t.Cleanup(func() { os.Chmod(imgPath, 0o644) })

	_, err := validateFilepath(imgPath)
	assert.True(t, apperrors.Is(err, apperrors.KindPermissionDenied), "got %v", err)
}

func TestValidatePreviewOptions(t *testing.T) {
	tests := []struct {
		name    string
		maxDim  *int
		format  *string
		quality *int
		want    previewOptions
		wantErr bool
	}{
		{"defaults", nil, nil, nil, previewOptions{1920, "JPEG", 85}, false},
		{"lower-case format", nil, strPtr(" webp "), nil, previewOptions{1920, "WEBP", 85}, false},
		{"bounds", intPtr(10000), strPtr("PNG"), intPtr(1), previewOptions{10000, "PNG", 1}, false},
		{"dimension zero", intPtr(0), nil, nil, previewOptions{}, true},
		{"dimension negative", intPtr(-5), nil, nil, previewOptions{}, true},
		{"quality zero", nil, nil, intPtr(0), previewOptions{}, true},
		{"quality too high", nil, nil, intPtr(101), previewOptions{}, true},
		{"bad format", nil, strPtr("BMP"), nil, previewOptions{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := validatePreviewOptions(tt.maxDim, tt.format, tt.quality)
			if tt.wantErr {
				assert.True(t, apperrors.Is(err, apperrors.KindInvalidParameter), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidateColorCount(t *testing.T) {
	n, err := validateColorCount(nil, 7)
	require.NoError(t, err)
	assert.Equal(t, 7, n)

	n, err = validateColorCount(intPtr(1), 7)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = validateColorCount(intPtr(0), 7)
	assert.True(t, apperrors.Is(err, apperrors.KindInvalidParameter))
}
