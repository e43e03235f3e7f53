// Package publish writes transcoded segments back to the object store under
// deterministic derived keys.
package publish

import (
	"context"
	"fmt"
	"os"
	"path"
	"strconv"

	"github.com/mgesteban/boardbreeze-splitter/internal/storage"
	"github.com/mgesteban/boardbreeze-splitter/internal/types"
)

// Publisher uploads segment files and records where they landed
type Publisher struct {
	store     storage.ObjectStore
	bucket    string // empty = publish into the source's own bucket
	extension string // target codec extension, with the dot
}

// NewPublisher creates a publisher. bucket may be empty, in which case each
// segment is written back into its source's bucket. extension is the target
// codec's file extension including the leading dot.
func NewPublisher(store storage.ObjectStore, bucket, extension string) *Publisher {
	return &Publisher{
		store:     store,
		bucket:    bucket,
		extension: extension,
	}
}

// DeriveKey builds the destination key for a segment: the source key with its
// final extension stripped, a _segment_{index} suffix, and the target
// extension. The same source and index always derive the same key, so a rerun
// overwrites rather than accumulates.
func DeriveKey(sourceKey string, index int, extension string) string {
	base := sourceKey[:len(sourceKey)-len(path.Ext(sourceKey))]
	return fmt.Sprintf("%s_segment_%d%s", base, index, extension)
}

// Publish uploads one segment file and returns its PublishedSegment record.
// Storage failures wrap as a PublishError and are fatal to the pipeline: a
// gap in the published set is never silently tolerated.
func (p *Publisher) Publish(ctx context.Context, segmentPath string, source types.SourceFile, window types.SegmentWindow) (types.PublishedSegment, error) {
	f, err := os.Open(segmentPath)
	if err != nil {
		return types.PublishedSegment{}, &types.PublishError{
			Index: window.Index,
			Cause: fmt.Errorf("failed to open segment file: %w", err),
		}
	}
	defer f.Close()

	bucket := p.bucket
	if bucket == "" {
		bucket = source.Bucket
	}
	key := DeriveKey(source.Key, window.Index, p.extension)
	metadata := map[string]string{
		"original-key":   source.Key,
		"segment-index":  strconv.Itoa(window.Index),
		"start-seconds":  fmt.Sprintf("%.3f", window.StartSeconds),
		"length-seconds": fmt.Sprintf("%.3f", window.LengthSeconds),
	}

	uri, err := p.store.Put(ctx, bucket, key, f, metadata)
	if err != nil {
		return types.PublishedSegment{}, &types.PublishError{Index: window.Index, Cause: err}
	}

	return types.PublishedSegment{
		Index:         window.Index,
		Bucket:        bucket,
		Key:           key,
		URI:           uri,
		StartSeconds:  window.StartSeconds,
		LengthSeconds: window.LengthSeconds,
	}, nil
}
