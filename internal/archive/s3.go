// Package archive writes finished classification records to object storage
// for audit retention. Archiving is best-effort: a failed upload never fails
// the event that produced the record.
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/procurisk/triage/internal/models"
)

// S3Archiver writes pipeline results to S3 paths like:
//
//	s3://<bucket>/<prefix>/classifications/YYYY/MM/DD/<resultID>.json
type S3Archiver struct {
	bucket   string
	prefix   string
	uploader *manager.Uploader
}

// NewS3Archiver creates an S3Archiver. Region and credentials are picked up
// from the environment (AWS_REGION, AWS_PROFILE, access keys). The prefix may
// be empty.
func NewS3Archiver(ctx context.Context, bucket, prefix string) (*S3Archiver, error) {
	if bucket == "" {
		return nil, fmt.Errorf("bucket required")
	}
	cfg, err := awsConfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(cfg)
	return &S3Archiver{
		bucket:   bucket,
		prefix:   prefix,
		uploader: manager.NewUploader(client),
	}, nil
}

// ArchiveResult uploads one result as JSON under a date-partitioned key.
func (a *S3Archiver) ArchiveResult(ctx context.Context, res *models.PipelineResult) error {
	if res == nil {
		return fmt.Errorf("nil result")
	}
	payload, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}

	ts := res.Classification.DetectionTime
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	key := path.Join(a.prefix, "classifications",
		fmt.Sprintf("%04d/%02d/%02d", ts.Year(), ts.Month(), ts.Day()),
		res.ID.String()+".json")

	_, err = a.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(payload),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("upload result %s: %w", res.ID, err)
	}
	return nil
}
