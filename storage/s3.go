package storage

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"cogforge/config"
	"cogforge/logger"
)

// S3Store is the S3-backed ObjectStore. A custom endpoint switches the client
// to path-style addressing so MinIO and other S3-compatible stores work.
type S3Store struct {
	client     *s3.Client
	uploader   *manager.Uploader
	downloader *manager.Downloader
	bucket     string
	region     string
	endpoint   string
	retry      RetryPolicy
}

// NewS3Store builds an S3 client from the config. Static credentials are used
// when provided; otherwise the SDK falls back to its default chain.
func NewS3Store(cfg config.Config) *S3Store {
	opts := s3.Options{Region: cfg.Region}
	if cfg.AccessKey != "" {
		opts.Credentials = credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
		opts.UsePathStyle = true
	}
	client := s3.New(opts)

	retry := DefaultRetryPolicy
	if cfg.StorageAttempts > 0 {
		retry.Attempts = cfg.StorageAttempts
	}
	if cfg.StorageTimeout > 0 {
		retry.Timeout = cfg.StorageTimeout
	}

	return &S3Store{
		client:     client,
		uploader:   manager.NewUploader(client),
		downloader: manager.NewDownloader(client),
		bucket:     cfg.Bucket,
		region:     cfg.Region,
		endpoint:   cfg.Endpoint,
		retry:      retry,
	}
}

// Exists reports whether key is present in the working bucket.
func (s *S3Store) Exists(ctx context.Context, key string) (bool, error) {
	err := s.retry.Do(ctx, "head "+key, func(ctx context.Context) error {
		_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(key),
		})
		return err
	})
	if err != nil {
		if IsNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check existence of %s: %w", key, err)
	}
	return true, nil
}

// Copy server-side copies srcBucket/key into the working bucket, then heads
// the destination so the object is confirmed visible before anything reads it.
func (s *S3Store) Copy(ctx context.Context, srcBucket, key string) error {
	err := s.retry.Do(ctx, "copy "+key, func(ctx context.Context) error {
		_, err := s.client.CopyObject(ctx, &s3.CopyObjectInput{
			Bucket:     aws.String(s.bucket),
			Key:        aws.String(key),
			CopySource: aws.String(srcBucket + "/" + key),
		})
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to copy %s from bucket %s: %w", key, srcBucket, err)
	}

	err = s.retry.Do(ctx, "verify copy "+key, func(ctx context.Context) error {
		_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(key),
		})
		return err
	})
	if err != nil {
		return fmt.Errorf("copied object %s is not visible: %w", key, err)
	}

	logger.Infof("Replicated '%s' from bucket '%s' into '%s'", key, srcBucket, s.bucket)
	return nil
}

// Download fetches key into localPath using the parallel download manager.
func (s *S3Store) Download(ctx context.Context, key, localPath string) error {
	return s.retry.Do(ctx, "download "+key, func(ctx context.Context) error {
		f, err := os.Create(localPath)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", localPath, err)
		}
		defer f.Close()

		if _, err := s.downloader.Download(ctx, f, &s3.GetObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(key),
		}); err != nil {
			return fmt.Errorf("failed to download %s: %w", key, err)
		}
		return nil
	})
}

// Upload stores the file at localPath under key.
func (s *S3Store) Upload(ctx context.Context, key, localPath string) error {
	err := s.retry.Do(ctx, "upload "+key, func(ctx context.Context) error {
		f, err := os.Open(localPath)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", localPath, err)
		}
		defer f.Close()

		_, err = s.uploader.Upload(ctx, &s3.PutObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(key),
			Body:   f,
		})
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s to bucket %s: %w", key, s.bucket, err)
	}
	logger.Infof("Successfully uploaded object '%s' to bucket '%s'", key, s.bucket)
	return nil
}

// PublicURL returns the HTTP URL the engine can range-read the object from.
func (s *S3Store) PublicURL(key string) string {
	if s.endpoint != "" {
		return fmt.Sprintf("%s/%s/%s", strings.TrimSuffix(s.endpoint, "/"), s.bucket, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}

// SetPublicReadPolicy attaches a bucket policy granting anonymous read on
// every object, which streaming acquisition needs.
func (s *S3Store) SetPublicReadPolicy(ctx context.Context) error {
	policy := fmt.Sprintf(`{
		"Version": "2012-10-17",
		"Statement": [{
			"Sid": "PublicRead",
			"Effect": "Allow",
			"Principal": "*",
			"Action": ["s3:GetObject"],
			"Resource": ["arn:aws:s3:::%s/*"]
		}]
	}`, s.bucket)

	err := s.retry.Do(ctx, "put bucket policy", func(ctx context.Context) error {
		_, err := s.client.PutBucketPolicy(ctx, &s3.PutBucketPolicyInput{
			Bucket: aws.String(s.bucket),
			Policy: aws.String(policy),
		})
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to set public read policy on bucket %s: %w", s.bucket, err)
	}
	logger.Infof("Bucket '%s' is now publicly readable", s.bucket)
	return nil
}
