package imaging

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"golang.org/x/image/tiff"

	apperrors "github.com/ironsheep/image-analysis-mcp/internal/errors"
)

// CommandExecutor runs external commands. Tests substitute a fake so RAW
// handling can be exercised without a converter installed.
type CommandExecutor interface {
	// Run executes a command and returns its standard output.
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
	// RunCombined executes a command and returns its combined standard output
	// and standard error.
	RunCombined(ctx context.Context, name string, args ...string) ([]byte, error)
}

type defaultExecutor struct{}

func (executor *defaultExecutor) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

func (executor *defaultExecutor) RunCombined(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// RawConverter develops camera RAW files through a dcraw-compatible binary.
//
// Development uses the camera's as-shot white balance, AHD demosaicing and no
// automatic brightening, and produces an 8-bit sRGB TIFF on stdout:
//
//	dcraw -c -w -W -q 3 -T <file>
type RawConverter struct {
	binary   string
	executor CommandExecutor
}

// NewRawConverter creates a converter that invokes binary. A nil executor
// selects os/exec.
func NewRawConverter(binary string, executor CommandExecutor) *RawConverter {
	if executor == nil {
		executor = &defaultExecutor{}
	}
	return &RawConverter{binary: binary, executor: executor}
}

// Decode develops the RAW file at path into a PixelBuffer.
//
// Every failure, including a missing binary, is reported as
// RAW_PROCESSING_FAILED.
func (c *RawConverter) Decode(ctx context.Context, path string) (*PixelBuffer, error) {
	out, err := c.executor.Run(ctx, c.binary, "-c", "-w", "-W", "-q", "3", "-T", path)
	if err != nil {
		return nil, apperrors.NewRawProcessingFailed(path, fmt.Errorf("%s execution failed: %w", c.binary, err))
	}
	if len(out) == 0 {
		return nil, apperrors.NewRawProcessingFailed(path, errors.New("converter produced no output"))
	}

	img, err := tiff.Decode(bytes.NewReader(out))
	if err != nil {
		return nil, apperrors.NewRawProcessingFailed(path, fmt.Errorf("failed to decode converter output: %w", err))
	}

	buf, err := FromImage(img)
	if err != nil {
		return nil, apperrors.NewRawProcessingFailed(path, err)
	}
	return buf, nil
}

// SensorSize reports the native sensor dimensions of a RAW file without
// developing it.
func (c *RawConverter) SensorSize(ctx context.Context, path string) (width, height int, err error) {
	out, err := c.executor.RunCombined(ctx, c.binary, "-i", "-v", path)
	if err != nil {
		return 0, 0, fmt.Errorf("%s identify failed: %w. Output: %s", c.binary, err, strings.TrimSpace(string(out)))
	}
	return parseSensorSize(string(out))
}

// parseSensorSize scans dcraw's verbose identify output for
// "Image size:  6000 x 4000".
func parseSensorSize(output string) (int, int, error) {
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "Image size:") {
			continue
		}
		fields := strings.Fields(strings.TrimPrefix(line, "Image size:"))
		if len(fields) == 3 && fields[1] == "x" {
			w, errW := strconv.Atoi(fields[0])
			h, errH := strconv.Atoi(fields[2])
			if errW == nil && errH == nil && w > 0 && h > 0 {
				return w, h, nil
			}
		}
	}
	return 0, 0, errors.New("could not parse 'Image size:' line from identify output")
}
