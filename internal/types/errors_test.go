package types

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantKind  string
		wantIndex int
	}{
		{
			name:      "transcode error carries segment index",
			err:       &TranscodeError{Index: 3, Cause: errors.New("ffmpeg exit 1")},
			wantKind:  KindTranscodeFailure,
			wantIndex: 3,
		},
		{
			name:      "publish error carries segment index",
			err:       &PublishError{Index: 1, Cause: errors.New("put: access denied")},
			wantKind:  KindPublishFailure,
			wantIndex: 1,
		},
		{
			name:      "wrapped transcode error still classifies",
			err:       fmt.Errorf("segmenting: %w", &TranscodeError{Index: 0, Cause: errors.New("boom")}),
			wantKind:  KindTranscodeFailure,
			wantIndex: 0,
		},
		{
			name:      "unreadable media",
			err:       fmt.Errorf("%w: no duration in container", ErrUnreadableMedia),
			wantKind:  KindUnreadableMedia,
			wantIndex: -1,
		},
		{
			name:      "invalid duration",
			err:       fmt.Errorf("%w: -3.000s", ErrInvalidDuration),
			wantKind:  KindInvalidDuration,
			wantIndex: -1,
		},
		{
			name:      "invalid configuration",
			err:       fmt.Errorf("%w: segment length 0s", ErrInvalidConfiguration),
			wantKind:  KindInvalidConfiguration,
			wantIndex: -1,
		},
		{
			name:      "context deadline maps to timeout",
			err:       fmt.Errorf("download: %w", context.DeadlineExceeded),
			wantKind:  KindTimeout,
			wantIndex: -1,
		},
		{
			name:      "unknown error is internal",
			err:       errors.New("something else"),
			wantKind:  KindInternal,
			wantIndex: -1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, index := Classify(tt.err)
			if kind != tt.wantKind {
				t.Errorf("Classify() kind = %q, want %q", kind, tt.wantKind)
			}
			if index != tt.wantIndex {
				t.Errorf("Classify() index = %d, want %d", index, tt.wantIndex)
			}
		})
	}
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := &PublishError{Index: 2, Cause: cause}

	if !errors.Is(err, cause) {
		t.Error("PublishError should unwrap to its cause")
	}

	var pe *PublishError
	if !errors.As(fmt.Errorf("outer: %w", err), &pe) {
		t.Fatal("errors.As should find PublishError through wrapping")
	}
	if pe.Index != 2 {
		t.Errorf("Index = %d, want 2", pe.Index)
	}
}
