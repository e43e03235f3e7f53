package dispatch

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/transcribe"
	transcribetypes "github.com/aws/aws-sdk-go-v2/service/transcribe/types"
)

// TranscribeService implements TranscriptionService against Amazon Transcribe
type TranscribeService struct {
	client *transcribe.Client
}

// NewTranscribeService creates a Transcribe-backed service using the default
// credential chain
func NewTranscribeService(ctx context.Context, region string) (*TranscribeService, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return &TranscribeService{client: transcribe.NewFromConfig(cfg)}, nil
}

// StartJob starts one batch transcription job. Submit-only: the job runs
// asynchronously and results land under the output key when it finishes.
func (s *TranscribeService) StartJob(ctx context.Context, in StartJobInput) error {
	_, err := s.client.StartTranscriptionJob(ctx, &transcribe.StartTranscriptionJobInput{
		TranscriptionJobName: aws.String(in.JobName),
		Media: &transcribetypes.Media{
			MediaFileUri: aws.String(in.MediaURI),
		},
		MediaFormat:      transcribetypes.MediaFormat(in.MediaFormat),
		LanguageCode:     transcribetypes.LanguageCode(in.LanguageCode),
		OutputBucketName: aws.String(in.OutputBucket),
		OutputKey:        aws.String(in.OutputKey),
	})
	if err != nil {
		return fmt.Errorf("failed to start transcription job %s: %w", in.JobName, err)
	}
	return nil
}
