// Package transcode extracts time-bounded segments from an audio file with
// ffmpeg, re-encoded to a fixed target codec.
package transcode

import (
	"context"
	"fmt"
	"os/exec"

	"github.com/mgesteban/boardbreeze-splitter/internal/types"
)

// codec name -> ffmpeg encoder
var encoders = map[string]string{
	"mp3":  "libmp3lame",
	"wav":  "pcm_s16le",
	"flac": "flac",
	"ogg":  "libvorbis",
}

// codec name -> file extension
var extensions = map[string]string{
	"mp3":  ".mp3",
	"wav":  ".wav",
	"flac": ".flac",
	"ogg":  ".ogg",
}

// FFmpeg extracts segment windows by shelling out to the ffmpeg binary
type FFmpeg struct {
	binary string
	codec  string
}

// NewFFmpeg creates a transcoder targeting the given codec. An empty binary
// defaults to "ffmpeg" on PATH.
func NewFFmpeg(binary, codec string) (*FFmpeg, error) {
	if binary == "" {
		binary = "ffmpeg"
	}
	if _, ok := encoders[codec]; !ok {
		return nil, fmt.Errorf("%w: unsupported target codec '%s'", types.ErrInvalidConfiguration, codec)
	}
	return &FFmpeg{binary: binary, codec: codec}, nil
}

// Extension returns the file extension for the target codec, with the dot
func (f *FFmpeg) Extension() string {
	return extensions[f.codec]
}

// Extract re-encodes exactly [start, start+length) of the source into
// destPath. Failures wrap as a TranscodeError carrying the window index;
// extraction is never retried because a missing segment would leave a silent
// gap in the final transcript.
func (f *FFmpeg) Extract(ctx context.Context, sourcePath string, window types.SegmentWindow, destPath string) error {
	cmd := exec.CommandContext(ctx, f.binary, buildArgs(sourcePath, window, f.codec, destPath)...)

	output, err := cmd.CombinedOutput()
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &types.TranscodeError{
			Index: window.Index,
			Cause: fmt.Errorf("ffmpeg failed: %v\nOutput: %s", err, string(output)),
		}
	}

	return nil
}

// buildArgs assembles the ffmpeg argument list for one window. Seeking with
// -ss before -i is fast but keyframe-inexact; since the stream is re-encoded
// anyway, seek accuracy is sample-level here because decode starts at the
// seek point.
func buildArgs(sourcePath string, window types.SegmentWindow, codec, destPath string) []string {
	return []string{
		"-ss", fmt.Sprintf("%.3f", window.StartSeconds),
		"-t", fmt.Sprintf("%.3f", window.LengthSeconds),
		"-i", sourcePath,
		"-c:a", encoders[codec],
		"-vn", // drop any cover-art video stream
		"-y",  // overwrite output
		destPath,
	}
}
