package job

import (
	"context"

	"cogforge/logger"
)

// replicate server-side copies the source object from the configured source
// bucket into the working bucket, so every later stage reads from one
// canonical store. The store confirms visibility before returning; a failed
// or partial copy is fatal for the job and is not retried beyond the store's
// own bounded retry.
func (p *Pipeline) replicate(ctx context.Context, key string) error {
	if p.CopyFromBucket == "" {
		return nil
	}
	logger.Debugf("Replicating '%s' from bucket '%s'", key, p.CopyFromBucket)
	if err := p.Store.Copy(ctx, p.CopyFromBucket, key); err != nil {
		return classifyStorage(key, err)
	}
	return nil
}
