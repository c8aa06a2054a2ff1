package job

import (
	"context"

	"cogforge/models"
	"cogforge/outcome"
	"cogforge/profile"
	"cogforge/scratch"
	"cogforge/storage"
)

// Engine is what the pipeline needs from the external transcode engine.
type Engine interface {
	// Open inspects a raster (local path or remote URL) and returns its
	// uniform handle.
	Open(ctx context.Context, ref string) (models.DatasetHandle, error)
	// Translate produces a cloud-optimized artifact at dstPath.
	Translate(ctx context.Context, ds models.DatasetHandle, dstPath string, p profile.Profile) error
	// Validate structurally checks a produced artifact.
	Validate(ctx context.Context, path string) error
}

// Pipeline sequences the per-job stages: idempotency gate, replication,
// acquisition, profile selection, transcode, validation, upload. It owns no
// job state between calls; every job is independent.
type Pipeline struct {
	Store   storage.ObjectStore
	Engine  Engine
	Scratch *scratch.Manager

	// Outcomes is optional; when set, each job's terminal state is
	// recorded there.
	Outcomes *outcome.Store

	// Preload selects full-download acquisition instead of remote
	// streaming. Explicit, never auto-chosen by size.
	Preload bool

	// CopyFromBucket, when non-empty, enables the replication step: each
	// source object is server-side copied into the working bucket before
	// acquisition.
	CopyFromBucket string
}

// Result is one job's terminal state.
type Result struct {
	SourceKey string
	DestKey   string
	Profile   profile.ID
	Status    outcome.Status
	Err       error
}
