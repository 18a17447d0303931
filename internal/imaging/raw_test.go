package imaging

import (
	"bytes"
	"context"
	"errors"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/tiff"

	apperrors "github.com/ironsheep/image-analysis-mcp/internal/errors"
)

// fakeExecutor records invocations and replays canned output.
type fakeExecutor struct {
	output   []byte
	combined []byte
	err      error
	calls    [][]string
}

func (f *fakeExecutor) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	f.calls = append(f.calls, append([]string{name}, args...))
	if f.err != nil {
		return nil, f.err
	}
	if f.output == nil {
		return nil, errors.New("exec: \"dcraw\": executable file not found in $PATH")
	}
	return f.output, nil
}

func (f *fakeExecutor) RunCombined(_ context.Context, name string, args ...string) ([]byte, error) {
	f.calls = append(f.calls, append([]string{name}, args...))
	if f.err != nil {
		return f.combined, f.err
	}
	return f.combined, nil
}

func TestRawConverter_Decode(t *testing.T) {
	var tiffBytes bytes.Buffer
	require.NoError(t, tiff.Encode(&tiffBytes, createInMemoryImage(6, 4, color.RGBA{30, 60, 90, 255}), nil))

	exec := &fakeExecutor{output: tiffBytes.Bytes()}
	c := NewRawConverter("dcraw", exec)

	buf, err := c.Decode(context.Background(), "/photos/shot.cr2")
	require.NoError(t, err)
	assert.Equal(t, 6, buf.Width())
	assert.Equal(t, 4, buf.Height())
	r, g, b := buf.At(0, 0)
	assert.Equal(t, [3]uint8{30, 60, 90}, [3]uint8{r, g, b})

	require.Len(t, exec.calls, 1)
	assert.Equal(t, []string{"dcraw", "-c", "-w", "-W", "-q", "3", "-T", "/photos/shot.cr2"}, exec.calls[0])
}

func TestRawConverter_DecodeFailures(t *testing.T) {
	tests := []struct {
		name string
		exec *fakeExecutor
	}{
		{"exec error", &fakeExecutor{err: errors.New("exit status 1")}},
		{"empty output", &fakeExecutor{output: []byte{}}},
		{"garbage output", &fakeExecutor{output: []byte("definitely not a tiff")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRawConverter("dcraw", tt.exec).Decode(context.Background(), "x.nef")
			require.Error(t, err)
			assert.Equal(t, apperrors.KindRawProcessingFailed, apperrors.KindOf(err))
		})
	}
}

func TestRawConverter_SensorSize(t *testing.T) {
	out := "\nFilename: x.nef\nCamera: Nikon D850\nISO speed: 64\nImage size:  8288 x 5520\nOutput size: 8256 x 5504\n"
	exec := &fakeExecutor{combined: []byte(out)}

	w, h, err := NewRawConverter("dcraw", exec).SensorSize(context.Background(), "x.nef")
	require.NoError(t, err)
	assert.Equal(t, 8288, w)
	assert.Equal(t, 5520, h)
	assert.Equal(t, []string{"dcraw", "-i", "-v", "x.nef"}, exec.calls[0])
}

func TestParseSensorSize(t *testing.T) {
	tests := []struct {
		name    string
		output  string
		w, h    int
		wantErr bool
	}{
		{"standard", "Image size:  6000 x 4000\n", 6000, 4000, false},
		{"missing", "Camera: Canon\n", 0, 0, true},
		{"malformed", "Image size: big\n", 0, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h, err := parseSensorSize(tt.output)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.w, w)
			assert.Equal(t, tt.h, h)
		})
	}
}
