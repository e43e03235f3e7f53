// Package pipeline sequences probe, plan, transcode, publish, and dispatch
// for one recording. Each invocation is independent and stateless.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path"
	"path/filepath"
	"sync"
	"time"

	"github.com/mgesteban/boardbreeze-splitter/internal/metrics"
	"github.com/mgesteban/boardbreeze-splitter/internal/plan"
	"github.com/mgesteban/boardbreeze-splitter/internal/storage"
	"github.com/mgesteban/boardbreeze-splitter/internal/types"
)

// Prober inspects a local audio file
type Prober interface {
	Probe(ctx context.Context, path string) (types.AudioInfo, error)
}

// Transcoder extracts one re-encoded segment window into destPath
type Transcoder interface {
	Extract(ctx context.Context, sourcePath string, window types.SegmentWindow, destPath string) error
	Extension() string
}

// Publisher uploads one segment file back to the object store
type Publisher interface {
	Publish(ctx context.Context, segmentPath string, source types.SourceFile, window types.SegmentWindow) (types.PublishedSegment, error)
}

// Dispatcher submits published segments for transcription
type Dispatcher interface {
	Dispatch(ctx context.Context, segments []types.PublishedSegment) []types.TranscriptionJob
}

// Config contains the orchestration parameters
type Config struct {
	MaxFileDurationSeconds float64
	SegmentDurationSeconds float64
	WorkerCount            int
	TempDir                string
}

// Pipeline orchestrates one split invocation end to end
type Pipeline struct {
	store      storage.ObjectStore
	prober     Prober
	transcoder Transcoder
	publisher  Publisher
	dispatcher Dispatcher // nil disables the dispatch stage
	metrics    *metrics.Metrics
	config     Config
}

// New creates a pipeline. dispatcher may be nil when automatic dispatch is
// disabled; metrics may be nil in tests.
func New(
	store storage.ObjectStore,
	prober Prober,
	transcoder Transcoder,
	publisher Publisher,
	dispatcher Dispatcher,
	m *metrics.Metrics,
	config Config,
) *Pipeline {
	if config.WorkerCount < 1 {
		config.WorkerCount = 1
	}
	return &Pipeline{
		store:      store,
		prober:     prober,
		transcoder: transcoder,
		publisher:  publisher,
		dispatcher: dispatcher,
		metrics:    m,
		config:     config,
	}
}

// Run processes one source recording and always returns a structured result,
// never an error: failures are folded into a FAILED result carrying the
// failure kind, the failing segment index when one segment is at fault, and
// the underlying cause.
func (p *Pipeline) Run(ctx context.Context, source types.SourceFile) types.PipelineResult {
	started := time.Now()
	if p.metrics != nil {
		p.metrics.PipelinesStarted.Inc()
	}

	result, err := p.run(ctx, source)
	if err != nil {
		kind, index := types.Classify(err)
		log.Printf("Pipeline failed for %s/%s: [%s] %v", source.Bucket, source.Key, kind, err)
		result = types.PipelineResult{
			Status:      types.StatusFailed,
			OriginalKey: source.Key,
			FailureKind: kind,
			Cause:       err.Error(),
		}
		if index >= 0 {
			result.SegmentIndex = &index
		}
	}

	if p.metrics != nil {
		p.metrics.RecordResult(result.Status, result.FailureKind, time.Since(started).Seconds())
	}
	return result
}

func (p *Pipeline) run(ctx context.Context, source types.SourceFile) (types.PipelineResult, error) {
	// Per-invocation scratch dir, removed on every exit path so repeated
	// invocations never accumulate local storage.
	scratch, err := os.MkdirTemp(p.config.TempDir, "split_")
	if err != nil {
		return types.PipelineResult{}, fmt.Errorf("failed to create scratch directory: %w", err)
	}
	defer os.RemoveAll(scratch)

	sourcePath, err := p.download(ctx, scratch, source)
	if err != nil {
		return types.PipelineResult{}, err
	}

	info, err := p.prober.Probe(ctx, sourcePath)
	if err != nil {
		return types.PipelineResult{}, err
	}
	log.Printf("Probed %s/%s: %.1fs, %d bytes, format %s",
		source.Bucket, source.Key, info.DurationSeconds, info.SizeBytes, info.Format)
	if p.metrics != nil {
		p.metrics.RecordSourceDuration(info.DurationSeconds)
	}

	// Inclusive gate: a recording exactly at the ceiling still fits in one
	// transcription job.
	if info.DurationSeconds <= p.config.MaxFileDurationSeconds {
		log.Printf("No split needed for %s/%s (%.1fs <= %.1fs ceiling)",
			source.Bucket, source.Key, info.DurationSeconds, p.config.MaxFileDurationSeconds)
		return types.PipelineResult{
			Status:          types.StatusNoSplitNeeded,
			OriginalKey:     source.Key,
			DurationSeconds: info.DurationSeconds,
		}, nil
	}

	windows, err := plan.Windows(info.DurationSeconds, p.config.SegmentDurationSeconds)
	if err != nil {
		return types.PipelineResult{}, err
	}
	log.Printf("Planned %d segments of up to %.1fs for %s/%s",
		len(windows), p.config.SegmentDurationSeconds, source.Bucket, source.Key)

	segments, err := p.splitAll(ctx, scratch, sourcePath, source, windows)
	if err != nil {
		return types.PipelineResult{}, err
	}

	var jobs []types.TranscriptionJob
	if p.dispatcher != nil {
		jobs = p.dispatcher.Dispatch(ctx, segments)
		if p.metrics != nil {
			for _, job := range jobs {
				p.metrics.RecordDispatch(job.Status)
			}
		}
	}

	log.Printf("Split complete for %s/%s: %d segments, %d jobs submitted",
		source.Bucket, source.Key, len(segments), countSubmitted(jobs))
	return types.PipelineResult{
		Status:          types.StatusSplitComplete,
		OriginalKey:     source.Key,
		DurationSeconds: info.DurationSeconds,
		Segments:        segments,
		Jobs:            jobs,
	}, nil
}

// download copies the source object into the scratch dir and returns its path
func (p *Pipeline) download(ctx context.Context, scratch string, source types.SourceFile) (string, error) {
	body, err := p.store.Get(ctx, source.Bucket, source.Key)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("failed to fetch source object: %w", err)
	}
	defer body.Close()

	sourcePath := filepath.Join(scratch, "source"+path.Ext(source.Key))
	f, err := os.Create(sourcePath)
	if err != nil {
		return "", fmt.Errorf("failed to create scratch file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, body); err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("failed to download source object: %w", err)
	}
	return sourcePath, nil
}

// splitAll transcodes and publishes every window through a bounded worker
// pool. Windows are independent once planned, so they run concurrently; the
// result slice is assembled by window index so output order stays
// deterministic. The first fatal error cancels the remaining work.
func (p *Pipeline) splitAll(ctx context.Context, scratch, sourcePath string, source types.SourceFile, windows []types.SegmentWindow) ([]types.PublishedSegment, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	segments := make([]types.PublishedSegment, len(windows))
	work := make(chan types.SegmentWindow)

	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	for i := 0; i < p.config.WorkerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for window := range work {
				if ctx.Err() != nil {
					continue
				}
				segment, err := p.splitOne(ctx, scratch, sourcePath, source, window)
				if err != nil {
					mu.Lock()
					if firstErr == nil {
						firstErr = err
						cancel()
					}
					mu.Unlock()
					continue
				}
				segments[window.Index] = segment
			}
		}()
	}

	for _, window := range windows {
		work <- window
	}
	close(work)
	wg.Wait()

	if firstErr != nil {
		if errors.Is(firstErr, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %v", types.ErrTimeout, firstErr)
		}
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return segments, nil
}

// splitOne extracts and publishes a single window. The transcoded scratch
// file is removed before returning on both success and failure paths.
func (p *Pipeline) splitOne(ctx context.Context, scratch, sourcePath string, source types.SourceFile, window types.SegmentWindow) (types.PublishedSegment, error) {
	destPath := filepath.Join(scratch, fmt.Sprintf("segment_%d%s", window.Index, p.transcoder.Extension()))
	defer os.Remove(destPath)

	if err := p.transcoder.Extract(ctx, sourcePath, window, destPath); err != nil {
		return types.PublishedSegment{}, err
	}

	segment, err := p.publisher.Publish(ctx, destPath, source, window)
	if err != nil {
		return types.PublishedSegment{}, err
	}

	if p.metrics != nil {
		p.metrics.RecordSegmentPublished()
	}
	log.Printf("Published segment %d (%.1fs at %.1fs) as %s",
		window.Index, window.LengthSeconds, window.StartSeconds, segment.URI)
	return segment, nil
}

func countSubmitted(jobs []types.TranscriptionJob) int {
	n := 0
	for _, job := range jobs {
		if job.Status == types.JobSubmitted {
			n++
		}
	}
	return n
}
