package types

// Pipeline result status constants
const (
	StatusNoSplitNeeded = "NO_SPLIT_NEEDED"
	StatusSplitComplete = "SPLIT_COMPLETE"
	StatusFailed        = "FAILED"
)

// Transcription job status constants
const (
	JobSubmitted    = "SUBMITTED"
	JobSubmitFailed = "SUBMIT_FAILED"
)

// SourceFile identifies the recording to process. The object is owned by the
// caller and is never modified.
type SourceFile struct {
	Bucket string `json:"bucket"`
	Key    string `json:"key"`
}

// AudioInfo is what the prober learns about a recording
type AudioInfo struct {
	DurationSeconds float64 `json:"duration_seconds"`
	SizeBytes       int64   `json:"size_bytes"`
	Format          string  `json:"format"`
}

// SegmentWindow is one contiguous time range of the source audio.
// Windows in a plan are contiguous, non-overlapping, and dense from index 0.
type SegmentWindow struct {
	Index         int     `json:"index"`
	StartSeconds  float64 `json:"start_seconds"`
	LengthSeconds float64 `json:"length_seconds"`
}

// PublishedSegment describes a segment that has been durably written back to
// the object store. Never mutated after creation.
type PublishedSegment struct {
	Index         int     `json:"index"`
	Bucket        string  `json:"bucket"`
	Key           string  `json:"key"`
	URI           string  `json:"uri"`
	StartSeconds  float64 `json:"start_seconds"`
	LengthSeconds float64 `json:"length_seconds"`
}

// TranscriptionJob records one submission to the transcription service.
// The service is submit-only; completion tracking happens elsewhere.
type TranscriptionJob struct {
	JobName      string `json:"job_name"`
	SegmentIndex int    `json:"segment_index"`
	Status       string `json:"status"`
	Error        string `json:"error,omitempty"`
}

// PipelineResult is the single structured outcome of one invocation.
// Exactly one of the three statuses applies; the caller never sees a raw panic.
type PipelineResult struct {
	Status          string  `json:"status"`
	OriginalKey     string  `json:"original_key"`
	DurationSeconds float64 `json:"duration_seconds,omitempty"`

	// Populated for SPLIT_COMPLETE
	Segments []PublishedSegment `json:"segments,omitempty"`
	Jobs     []TranscriptionJob `json:"jobs,omitempty"`

	// Populated for FAILED. SegmentIndex is nil when no segment is at
	// fault, so a failure at segment 0 still carries its index.
	FailureKind  string `json:"failure_kind,omitempty"`
	SegmentIndex *int   `json:"failed_segment_index,omitempty"`
	Cause        string `json:"cause,omitempty"`
}
