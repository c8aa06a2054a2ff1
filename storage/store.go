// Package storage provides the object store the pipeline reads from and
// writes to. Two backends implement the same contract: S3 (and anything
// S3-compatible) and Google Cloud Storage.
package storage

import "context"

// ObjectStore is the store contract the pipeline depends on. All methods
// operate on the configured working bucket; Copy pulls an object in from a
// different bucket on the same backend.
type ObjectStore interface {
	// Exists reports whether key is present in the working bucket.
	Exists(ctx context.Context, key string) (bool, error)

	// Copy server-side copies srcBucket/key into the working bucket under
	// the same key and confirms the copy is visible before returning.
	Copy(ctx context.Context, srcBucket, key string) error

	// Download fetches key into localPath.
	Download(ctx context.Context, key, localPath string) error

	// Upload stores the file at localPath under key.
	Upload(ctx context.Context, key, localPath string) error

	// PublicURL returns the HTTP URL of key for remote range reads.
	PublicURL(key string) string

	// SetPublicReadPolicy makes every object in the working bucket
	// publicly readable.
	SetPublicReadPolicy(ctx context.Context) error
}
