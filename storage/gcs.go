package storage

import (
	"context"
	"fmt"
	"io"
	"os"

	"cloud.google.com/go/iam"
	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"cogforge/config"
	"cogforge/logger"
)

// GCSStore is the Google Cloud Storage ObjectStore backend.
type GCSStore struct {
	client *gcs.Client
	bucket string
	retry  RetryPolicy
}

// NewGCSStore builds a GCS client, using a service account key file when one
// is configured and application default credentials otherwise.
func NewGCSStore(ctx context.Context, cfg config.Config) (*GCSStore, error) {
	var opts []option.ClientOption
	if cfg.GCSCredentials != "" {
		credentialsJSON, err := os.ReadFile(cfg.GCSCredentials)
		if err != nil {
			return nil, fmt.Errorf("failed to read GCS credentials: %w", err)
		}
		opts = append(opts, option.WithCredentialsJSON(credentialsJSON))
	}
	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("storage.NewClient: %w", err)
	}

	retry := DefaultRetryPolicy
	if cfg.StorageAttempts > 0 {
		retry.Attempts = cfg.StorageAttempts
	}
	if cfg.StorageTimeout > 0 {
		retry.Timeout = cfg.StorageTimeout
	}

	return &GCSStore{client: client, bucket: cfg.Bucket, retry: retry}, nil
}

// Close releases the underlying client.
func (g *GCSStore) Close() error { return g.client.Close() }

// Exists reports whether key is present in the working bucket.
func (g *GCSStore) Exists(ctx context.Context, key string) (bool, error) {
	err := g.retry.Do(ctx, "attrs "+key, func(ctx context.Context) error {
		_, err := g.client.Bucket(g.bucket).Object(key).Attrs(ctx)
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

// Copy server-side copies srcBucket/key into the working bucket.
func (g *GCSStore) Copy(ctx context.Context, srcBucket, key string) error {
	err := g.retry.Do(ctx, "copy "+key, func(ctx context.Context) error {
		src := g.client.Bucket(srcBucket).Object(key)
		dst := g.client.Bucket(g.bucket).Object(key)
		_, err := dst.CopierFrom(src).Run(ctx)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to copy %s from bucket %s: %w", key, srcBucket, err)
	}
	logger.Infof("Replicated '%s' from bucket '%s' into '%s'", key, srcBucket, g.bucket)
	return nil
}

// Download fetches key into localPath.
func (g *GCSStore) Download(ctx context.Context, key, localPath string) error {
	return g.retry.Do(ctx, "download "+key, func(ctx context.Context) error {
		r, err := g.client.Bucket(g.bucket).Object(key).NewReader(ctx)
		if err != nil {
			return fmt.Errorf("failed to open reader for %s: %w", key, err)
		}
		defer r.Close()

		f, err := os.Create(localPath)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", localPath, err)
		}
		defer f.Close()

		if _, err := io.Copy(f, r); err != nil {
			return fmt.Errorf("failed to download %s: %w", key, err)
		}
		return nil
	})
}

// Upload stores the file at localPath under key.
func (g *GCSStore) Upload(ctx context.Context, key, localPath string) error {
	err := g.retry.Do(ctx, "upload "+key, func(ctx context.Context) error {
		f, err := os.Open(localPath)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", localPath, err)
		}
		defer f.Close()

		w := g.client.Bucket(g.bucket).Object(key).NewWriter(ctx)
		if _, err := io.Copy(w, f); err != nil {
			w.Close()
			return fmt.Errorf("io.Copy: %w", err)
		}
		// Close completes the upload; errors here mean the object did
		// not land.
		if err := w.Close(); err != nil {
			return fmt.Errorf("Writer.Close: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s to bucket %s: %w", key, g.bucket, err)
	}
	logger.Infof("Successfully uploaded object '%s' to bucket '%s'", key, g.bucket)
	return nil
}

// PublicURL returns the HTTP URL the engine can range-read the object from.
func (g *GCSStore) PublicURL(key string) string {
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", g.bucket, key)
}

// SetPublicReadPolicy grants allUsers object read on the working bucket.
func (g *GCSStore) SetPublicReadPolicy(ctx context.Context) error {
	err := g.retry.Do(ctx, "set bucket iam policy", func(ctx context.Context) error {
		handle := g.client.Bucket(g.bucket).IAM()
		policy, err := handle.Policy(ctx)
		if err != nil {
			return fmt.Errorf("failed to read bucket policy: %w", err)
		}
		policy.Add(iam.AllUsers, "roles/storage.objectViewer")
		return handle.SetPolicy(ctx, policy)
	})
	if err != nil {
		return fmt.Errorf("failed to set public read policy on bucket %s: %w", g.bucket, err)
	}
	logger.Infof("Bucket '%s' is now publicly readable", g.bucket)
	return nil
}
