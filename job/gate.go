package job

import (
	"context"
)

// gate is the idempotency check: with overwrite off, a job whose destination
// already exists is skipped before any later stage runs. A storage-query
// failure here fails this job only.
func (p *Pipeline) gate(ctx context.Context, destKey string, overwrite bool) (bool, error) {
	if overwrite {
		return true, nil
	}
	exists, err := p.Store.Exists(ctx, destKey)
	if err != nil {
		return false, newError(KindStorageIO, destKey, err)
	}
	return !exists, nil
}
