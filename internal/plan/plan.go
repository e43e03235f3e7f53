// Package plan computes segment windows for a recording that exceeds the
// transcription service's duration ceiling. Planning is pure: no I/O, no state.
package plan

import (
	"fmt"
	"math"

	"github.com/mgesteban/boardbreeze-splitter/internal/types"
)

// Windows partitions totalDuration into contiguous, non-overlapping windows of
// at most maxSegmentLength seconds each. The last window absorbs the remainder
// and may be shorter. Indices are dense starting at 0 and the window lengths
// sum exactly to totalDuration.
func Windows(totalDuration, maxSegmentLength float64) ([]types.SegmentWindow, error) {
	if totalDuration <= 0 {
		return nil, fmt.Errorf("%w: total duration must be positive, got %.3fs", types.ErrInvalidDuration, totalDuration)
	}
	if maxSegmentLength <= 0 {
		return nil, fmt.Errorf("%w: segment length must be positive, got %.3fs", types.ErrInvalidConfiguration, maxSegmentLength)
	}

	numSegments := int(math.Ceil(totalDuration / maxSegmentLength))
	windows := make([]types.SegmentWindow, 0, numSegments)

	for i := 0; i < numSegments; i++ {
		start := float64(i) * maxSegmentLength
		remaining := totalDuration - start
		if remaining <= 0 {
			// Ceil can land one past an exact multiple when the division
			// rounds a hair above the integer. Such a window would be empty.
			break
		}
		length := maxSegmentLength
		if remaining < length {
			length = remaining
		}
		windows = append(windows, types.SegmentWindow{
			Index:         i,
			StartSeconds:  start,
			LengthSeconds: length,
		})
	}

	return windows, nil
}
