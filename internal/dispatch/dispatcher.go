// Package dispatch submits published segments to the batch transcription
// service as independent asynchronous jobs. It only submits; completion
// tracking belongs to a downstream collaborator.
package dispatch

import (
	"context"
	"fmt"
	"log"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mgesteban/boardbreeze-splitter/internal/types"
)

// StartJobInput carries everything one transcription submission needs
type StartJobInput struct {
	JobName      string
	MediaURI     string
	MediaFormat  string
	LanguageCode string
	OutputBucket string
	OutputKey    string
}

// TranscriptionService is the submit-only interface to the batch service
type TranscriptionService interface {
	StartJob(ctx context.Context, in StartJobInput) error
}

// NameFunc builds a globally unique job name for one segment submission.
// Injected so tests can make names deterministic.
type NameFunc func(sourceKey string, index int) string

// DefaultNameFunc derives a job name from the source key, a timestamp, the
// segment index, and a short random suffix to survive same-second reruns.
func DefaultNameFunc(sourceKey string, index int) string {
	base := sanitizeJobName(strings.TrimSuffix(path.Base(sourceKey), path.Ext(sourceKey)))
	stamp := time.Now().UTC().Format("20060102T150405")
	suffix := uuid.New().String()[:8]
	return fmt.Sprintf("%s_%s_seg%d_%s", base, stamp, index, suffix)
}

// Dispatcher fans segment submissions out to the transcription service
type Dispatcher struct {
	svc          TranscriptionService
	outputBucket string
	languageCode string
	mediaFormat  string
	nameFor      NameFunc
}

// NewDispatcher creates a dispatcher. outputBucket may be empty, in which
// case transcripts land in each segment's own bucket. nameFor may be nil,
// selecting DefaultNameFunc.
func NewDispatcher(svc TranscriptionService, outputBucket, languageCode, mediaFormat string, nameFor NameFunc) *Dispatcher {
	if nameFor == nil {
		nameFor = DefaultNameFunc
	}
	return &Dispatcher{
		svc:          svc,
		outputBucket: outputBucket,
		languageCode: languageCode,
		mediaFormat:  mediaFormat,
		nameFor:      nameFor,
	}
}

// Dispatch submits every segment concurrently and joins on all of them. A
// failed submission is recorded on that segment's job with SubmitFailed and
// never aborts the others; the returned slice is ordered by segment index and
// includes the failures so the caller can see what needs manual resubmission.
func (d *Dispatcher) Dispatch(ctx context.Context, segments []types.PublishedSegment) []types.TranscriptionJob {
	jobs := make([]types.TranscriptionJob, len(segments))

	var wg sync.WaitGroup
	for i, seg := range segments {
		wg.Add(1)
		go func(i int, seg types.PublishedSegment) {
			defer wg.Done()
			jobs[i] = d.submit(ctx, seg)
		}(i, seg)
	}
	wg.Wait()

	return jobs
}

func (d *Dispatcher) submit(ctx context.Context, seg types.PublishedSegment) types.TranscriptionJob {
	jobName := d.nameFor(seg.Key, seg.Index)

	outputBucket := d.outputBucket
	if outputBucket == "" {
		outputBucket = seg.Bucket
	}

	err := d.svc.StartJob(ctx, StartJobInput{
		JobName:      jobName,
		MediaURI:     seg.URI,
		MediaFormat:  d.mediaFormat,
		LanguageCode: d.languageCode,
		OutputBucket: outputBucket,
		OutputKey:    fmt.Sprintf("transcriptions/%s.json", jobName),
	})
	if err != nil {
		derr := &types.DispatchError{Index: seg.Index, JobName: jobName, Cause: err}
		log.Printf("Transcription submission failed for segment %d: %v", seg.Index, derr)
		return types.TranscriptionJob{
			JobName:      jobName,
			SegmentIndex: seg.Index,
			Status:       types.JobSubmitFailed,
			Error:        err.Error(),
		}
	}

	log.Printf("Transcription job %s submitted for segment %d (%s)", jobName, seg.Index, seg.URI)
	return types.TranscriptionJob{
		JobName:      jobName,
		SegmentIndex: seg.Index,
		Status:       types.JobSubmitted,
	}
}

// sanitizeJobName keeps only the characters the transcription service accepts
// in job names
func sanitizeJobName(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "recording"
	}
	s := b.String()
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}
