package types

import (
	"context"
	"errors"
	"fmt"
)

// Failure kind constants, carried on a FAILED PipelineResult
const (
	KindUnreadableMedia      = "UNREADABLE_MEDIA"
	KindInvalidDuration      = "INVALID_DURATION"
	KindInvalidConfiguration = "INVALID_CONFIGURATION"
	KindTranscodeFailure     = "TRANSCODE_FAILURE"
	KindPublishFailure       = "PUBLISH_FAILURE"
	KindTimeout              = "TIMEOUT"
	KindInternal             = "INTERNAL"
)

// Sentinel errors for failures that carry no segment index
var (
	ErrUnreadableMedia      = errors.New("unreadable media")
	ErrInvalidDuration      = errors.New("invalid duration")
	ErrInvalidConfiguration = errors.New("invalid configuration")
	ErrTimeout              = errors.New("pipeline timed out")
)

// TranscodeError reports a failed segment extraction. It is fatal to the whole
// pipeline: a missing segment would leave a silent gap in the transcript.
type TranscodeError struct {
	Index int
	Cause error
}

func (e *TranscodeError) Error() string {
	return fmt.Sprintf("transcode failed for segment %d: %v", e.Index, e.Cause)
}

func (e *TranscodeError) Unwrap() error { return e.Cause }

// PublishError reports a failed segment upload. Fatal for the same reason as
// TranscodeError; earlier segments already in storage are not rolled back.
type PublishError struct {
	Index int
	Cause error
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("publish failed for segment %d: %v", e.Index, e.Cause)
}

func (e *PublishError) Unwrap() error { return e.Cause }

// DispatchError reports a failed transcription submission for one segment.
// Unlike the other errors it is recovered locally: it is recorded on that
// segment's TranscriptionJob and never aborts the other submissions.
type DispatchError struct {
	Index   int
	JobName string
	Cause   error
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("dispatch failed for segment %d (job %s): %v", e.Index, e.JobName, e.Cause)
}

func (e *DispatchError) Unwrap() error { return e.Cause }

// Classify maps an error to its failure kind and, when applicable, the index
// of the failing segment. Index is -1 when no single segment is at fault.
func Classify(err error) (kind string, segmentIndex int) {
	var te *TranscodeError
	var pe *PublishError

	switch {
	case errors.As(err, &te):
		return KindTranscodeFailure, te.Index
	case errors.As(err, &pe):
		return KindPublishFailure, pe.Index
	case errors.Is(err, ErrUnreadableMedia):
		return KindUnreadableMedia, -1
	case errors.Is(err, ErrInvalidDuration):
		return KindInvalidDuration, -1
	case errors.Is(err, ErrInvalidConfiguration):
		return KindInvalidConfiguration, -1
	case errors.Is(err, ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return KindTimeout, -1
	default:
		return KindInternal, -1
	}
}
