// Package probe inspects local audio files with ffprobe.
package probe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mgesteban/boardbreeze-splitter/internal/types"
)

// FFProbe inspects audio files by shelling out to the ffprobe binary
type FFProbe struct {
	binary string
}

// NewFFProbe creates a prober. An empty binary defaults to "ffprobe" on PATH.
func NewFFProbe(binary string) *FFProbe {
	if binary == "" {
		binary = "ffprobe"
	}
	return &FFProbe{binary: binary}
}

// Probe returns duration, size, and container format for the file at path.
// Returns an UnreadableMedia error when ffprobe cannot parse the file.
func (p *FFProbe) Probe(ctx context.Context, path string) (types.AudioInfo, error) {
	cmd := exec.CommandContext(ctx, p.binary,
		"-v", "error",
		"-show_entries", "format=duration,size,format_name",
		"-of", "json",
		path,
	)

	output, err := cmd.Output()
	if err != nil {
		if ctx.Err() != nil {
			return types.AudioInfo{}, ctx.Err()
		}
		return types.AudioInfo{}, probeError(path, err)
	}

	return parseProbeOutput(output)
}

// probeError wraps an ffprobe invocation failure, keeping the tool's stderr
// diagnostic when the process ran and exited non-zero.
func probeError(path string, err error) error {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
		return fmt.Errorf("%w: ffprobe failed for %s: %v: %s",
			types.ErrUnreadableMedia, path, err, strings.TrimSpace(string(exitErr.Stderr)))
	}
	return fmt.Errorf("%w: ffprobe failed for %s: %v", types.ErrUnreadableMedia, path, err)
}

// probeOutput matches ffprobe's JSON format section. Duration and size are
// strings in ffprobe output.
type probeOutput struct {
	Format struct {
		Duration   string `json:"duration"`
		Size       string `json:"size"`
		FormatName string `json:"format_name"`
	} `json:"format"`
}

func parseProbeOutput(data []byte) (types.AudioInfo, error) {
	var out probeOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return types.AudioInfo{}, fmt.Errorf("%w: failed to parse ffprobe output: %v", types.ErrUnreadableMedia, err)
	}

	if out.Format.Duration == "" {
		return types.AudioInfo{}, fmt.Errorf("%w: container reports no duration", types.ErrUnreadableMedia)
	}

	duration, err := strconv.ParseFloat(out.Format.Duration, 64)
	if err != nil {
		return types.AudioInfo{}, fmt.Errorf("%w: bad duration %q: %v", types.ErrUnreadableMedia, out.Format.Duration, err)
	}
	if duration <= 0 {
		return types.AudioInfo{}, fmt.Errorf("%w: non-positive duration %.3fs", types.ErrUnreadableMedia, duration)
	}

	var size int64
	if out.Format.Size != "" {
		size, err = strconv.ParseInt(out.Format.Size, 10, 64)
		if err != nil {
			return types.AudioInfo{}, fmt.Errorf("%w: bad size %q: %v", types.ErrUnreadableMedia, out.Format.Size, err)
		}
	}

	// ffprobe reports demuxer aliases like "mov,mp4,m4a,3gp,3g2,mj2"
	format := out.Format.FormatName
	if i := strings.IndexByte(format, ','); i >= 0 {
		format = format[:i]
	}

	return types.AudioInfo{
		DurationSeconds: duration,
		SizeBytes:       size,
		Format:          format,
	}, nil
}

// ValidFormat checks whether the file extension is a supported audio format
func ValidFormat(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	supportedFormats := []string{".mp3", ".wav", ".m4a", ".ogg", ".flac", ".webm", ".aac", ".wma", ".mp4"}

	for _, format := range supportedFormats {
		if ext == format {
			return true
		}
	}
	return false
}
