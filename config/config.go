package config

import (
	"os"
	"path/filepath"
	"time"
)

// Config carries every tunable the pipeline needs. It is assembled once at
// startup (environment first, CLI flags layered on top by main) and passed
// into the pipeline; no stage reads the environment on its own.
type Config struct {
	// Object storage
	Backend        string // "s3" or "gcs"
	Bucket         string // working bucket holding sources and outputs
	CopyFromBucket string // optional distinct source bucket to replicate from
	Region         string
	Endpoint       string // optional custom S3 endpoint (MinIO etc.)
	AccessKey      string
	SecretKey      string
	GCSCredentials string // path to a service account JSON key

	// Local resources
	ScratchDir    string // base directory for per-job scratch storage
	OutcomeDBPath string // pebble store recording per-job outcomes

	// Batch manifest verification
	ManifestSecret string

	// Engine tuning
	Threads int // 0 means all CPUs

	// Storage I/O policy
	StorageTimeout  time.Duration // per-operation deadline
	StorageAttempts int           // bounded retry budget for transient failures
}

// Load builds a Config from the environment with built-in defaults.
func Load() Config {
	return Config{
		Backend:         getenv("COGFORGE_BACKEND", "s3"),
		Bucket:          os.Getenv("COGFORGE_BUCKET"),
		Region:          getenv("COGFORGE_REGION", "us-east-1"),
		Endpoint:        os.Getenv("COGFORGE_ENDPOINT"),
		AccessKey:       os.Getenv("COGFORGE_ACCESS_KEY"),
		SecretKey:       os.Getenv("COGFORGE_SECRET_KEY"),
		GCSCredentials:  os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),
		ScratchDir:      GetScratchDir(),
		OutcomeDBPath:   GetOutcomeDBPath(),
		ManifestSecret:  os.Getenv("COGFORGE_MANIFEST_SECRET"),
		StorageTimeout:  10 * time.Minute,
		StorageAttempts: 3,
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// GetScratchDir returns the base directory for per-job scratch storage.
// In a Kubernetes setup, point COGFORGE_SCRATCH_DIR at an emptyDir volume.
// Defaults to the OS temp directory.
func GetScratchDir() string {
	if dir := os.Getenv("COGFORGE_SCRATCH_DIR"); dir != "" {
		return dir
	}
	return os.TempDir()
}

// GetDataDir returns the directory where cogforge keeps its local state.
// Priority: COGFORGE_DATA_DIR environment variable > "./data" default.
func GetDataDir() string {
	if dir := os.Getenv("COGFORGE_DATA_DIR"); dir != "" {
		return dir
	}
	return "./data"
}

// GetOutcomeDBPath returns the full path to the job outcome database.
// Path: {DATA_DIR}/outcomes.db
func GetOutcomeDBPath() string {
	return filepath.Join(GetDataDir(), "outcomes.db")
}
