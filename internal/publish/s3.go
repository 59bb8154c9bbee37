// Package publish copies finished job artifacts to remote storage.
package publish

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/aws/aws-sdk-go/service/s3/s3manager/s3manageriface"

	"github.com/nguyentantai21042004/scribe-flow/internal/config"
	"github.com/nguyentantai21042004/scribe-flow/internal/logger"
)

var contentTypes = map[string]string{
	".json": "application/json",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".wav":  "audio/wav",
}

// S3 uploads artifacts to Bucket under Prefix/<job directory>/<file>.
type S3 struct {
	Uploader s3manageriface.UploaderAPI
	Bucket   string
	Prefix   string
	logger   logger.Logger
}

// NewS3 builds an S3 publisher from cfg using the default credential chain.
// It returns nil when no bucket is configured.
func NewS3(cfg config.S3Config, log logger.Logger) (*S3, error) {
	if cfg.Bucket == "" {
		return nil, nil
	}

	awsCfg := &aws.Config{}
	if cfg.Region != "" {
		awsCfg.Region = aws.String(cfg.Region)
	}
	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("create aws session: %w", err)
	}

	return &S3{
		Uploader: s3manager.NewUploader(sess),
		Bucket:   cfg.Bucket,
		Prefix:   cfg.Prefix,
		logger:   log,
	}, nil
}

// Key returns the object key for file produced in dir.
func (s *S3) Key(dir, file string) string {
	return path.Join(s.Prefix, filepath.Base(dir), filepath.Base(file))
}

// Publish uploads every file. A failed upload does not stop the others.
func (s *S3) Publish(ctx context.Context, dir string, files []string) error {
	log := s.logger
	if log == nil {
		log = logger.Nop()
	}

	failed := 0
	for _, f := range files {
		key := s.Key(dir, f)
		if err := s.upload(ctx, f, key); err != nil {
			log.Error(ctx, "Failed to upload %s: %v", f, err)
			failed++
			continue
		}
		log.Info(ctx, "Uploaded s3://%s/%s", s.Bucket, key)
	}

	if failed > 0 {
		return fmt.Errorf("upload to s3://%s: %d of %d files failed", s.Bucket, failed, len(files))
	}
	return nil
}

func (s *S3) upload(ctx context.Context, file, key string) error {
	fh, err := os.Open(file)
	if err != nil {
		return fmt.Errorf("open: %w", err)
	}
	defer fh.Close()

	input := &s3manager.UploadInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(key),
		Body:   fh,
	}
	if ct, ok := contentTypes[filepath.Ext(file)]; ok {
		input.ContentType = aws.String(ct)
	}

	if _, err := s.Uploader.UploadWithContext(ctx, input); err != nil {
		return fmt.Errorf("upload: %w", err)
	}
	return nil
}
