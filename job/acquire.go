package job

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"cogforge/logger"
	"cogforge/models"
	"cogforge/scratch"
)

// validateSource rejects malformed source references before any scratch
// resource is allocated for the job.
func validateSource(j models.Job) error {
	switch j.Source.Kind {
	case models.SourceRemote:
		if j.SourceKey == "" {
			return newError(KindInvalidInput, j.SourceKey, fmt.Errorf("remote source has no key"))
		}
	case models.SourceLocalPath:
		info, err := os.Stat(j.Source.LocalPath)
		if err != nil {
			return newError(KindInvalidInput, j.SourceKey,
				fmt.Errorf("local source %s is not readable: %w", j.Source.LocalPath, err))
		}
		if info.IsDir() {
			return newError(KindInvalidInput, j.SourceKey,
				fmt.Errorf("local source %s is a directory", j.Source.LocalPath))
		}
	case models.SourceBytes:
		if len(j.Source.Data) == 0 {
			return newError(KindInvalidInput, j.SourceKey, fmt.Errorf("in-memory source is empty"))
		}
	default:
		return newError(KindInvalidInput, j.SourceKey,
			fmt.Errorf("unknown source kind %d", j.Source.Kind))
	}
	return nil
}

// acquire resolves the job's source into a uniform dataset handle. Preloaded
// and spilled inputs land inside the job's scratch directory; streamed inputs
// are opened directly against the object's URL and range-read by the engine.
func (p *Pipeline) acquire(ctx context.Context, j models.Job, scr *scratch.Resource) (models.DatasetHandle, error) {
	switch j.Source.Kind {
	case models.SourceLocalPath:
		ds, err := p.Engine.Open(ctx, j.Source.LocalPath)
		if err != nil {
			return models.DatasetHandle{}, newError(KindInvalidInput, j.SourceKey, err)
		}
		return ds, nil

	case models.SourceBytes:
		local := filepath.Join(scr.Path(), "source.tif")
		logger.Debugf("Spilling %d in-memory bytes to %s", len(j.Source.Data), local)
		if err := os.WriteFile(local, j.Source.Data, 0644); err != nil {
			return models.DatasetHandle{}, newError(KindStorageIO, j.SourceKey, err)
		}
		ds, err := p.Engine.Open(ctx, local)
		if err != nil {
			return models.DatasetHandle{}, newError(KindInvalidInput, j.SourceKey, err)
		}
		return ds, nil

	case models.SourceRemote:
		if p.Preload {
			return p.acquirePreload(ctx, j, scr)
		}
		return p.acquireStream(ctx, j)

	default:
		return models.DatasetHandle{}, newError(KindInvalidInput, j.SourceKey,
			fmt.Errorf("unknown source kind %d", j.Source.Kind))
	}
}

// acquirePreload downloads the whole object into scratch and opens it
// locally. Preferred when local random access matters or the raster is of
// modest size (roughly under 4-8 GB).
func (p *Pipeline) acquirePreload(ctx context.Context, j models.Job, scr *scratch.Resource) (models.DatasetHandle, error) {
	local := filepath.Join(scr.Path(), filepath.Base(j.SourceKey))
	logger.Debugf("Preloading '%s' to %s", j.SourceKey, local)
	if err := p.Store.Download(ctx, j.SourceKey, local); err != nil {
		return models.DatasetHandle{}, classifyStorage(j.SourceKey, err)
	}
	ds, err := p.Engine.Open(ctx, local)
	if err != nil {
		return models.DatasetHandle{}, newError(KindInvalidInput, j.SourceKey,
			fmt.Errorf("downloaded object is not a readable raster: %w", err))
	}
	return ds, nil
}

// acquireStream opens the dataset against the object's URL; the engine issues
// partial range reads as it works, so very large rasters never hit local
// disk. The object must be reachable by the caller (public or credentialed
// URL).
func (p *Pipeline) acquireStream(ctx context.Context, j models.Job) (models.DatasetHandle, error) {
	url := "/vsicurl/" + p.Store.PublicURL(j.SourceKey)
	logger.Debugf("Streaming '%s' via %s", j.SourceKey, url)
	ds, err := p.Engine.Open(ctx, url)
	if err != nil {
		return models.DatasetHandle{}, newError(KindAccessDenied, j.SourceKey,
			fmt.Errorf("remote dataset is not reachable: %w", err))
	}
	return ds, nil
}
