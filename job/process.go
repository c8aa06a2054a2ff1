package job

import (
	"context"
	"fmt"
	"path/filepath"

	"cogforge/logger"
	"cogforge/models"
	"cogforge/outcome"
	"cogforge/profile"
)

// Process runs one job through every stage and returns its terminal state.
// The job's scratch resource is released exactly once on every exit path,
// including failures raised at any stage.
func (p *Pipeline) Process(ctx context.Context, j models.Job) Result {
	id := profile.IDFor(j)
	res := Result{
		SourceKey: j.SourceKey,
		DestKey:   DestinationKey(j.SourceKey, id),
		Profile:   id,
	}

	res.Status, res.Err = p.run(ctx, j, res.DestKey)
	p.record(res)
	return res
}

func (p *Pipeline) run(ctx context.Context, j models.Job, destKey string) (outcome.Status, error) {
	proceed, err := p.gate(ctx, destKey, j.Overwrite)
	if err != nil {
		return outcome.StatusFailed, err
	}
	if !proceed {
		logger.Infof("Skipping '%s': destination '%s' already exists", j.SourceKey, destKey)
		return outcome.StatusSkipped, nil
	}

	if err := validateSource(j); err != nil {
		return outcome.StatusFailed, err
	}

	if j.Source.Kind == models.SourceRemote {
		if err := p.replicate(ctx, j.SourceKey); err != nil {
			return outcome.StatusFailed, err
		}
	}

	scr, err := p.Scratch.Create("job")
	if err != nil {
		return outcome.StatusFailed, newError(KindStorageIO, j.SourceKey, err)
	}
	defer func() {
		if err := scr.Release(); err != nil {
			logger.Errorf("Failed to release scratch for '%s': %v", j.SourceKey, err)
		}
	}()
	scr.MarkInUse()

	ds, err := p.acquire(ctx, j, scr)
	if err != nil {
		return outcome.StatusFailed, err
	}

	prof := profile.Select(j, ds)
	logger.Infof("Converting '%s' -> '%s' (profile %s, %d bands)",
		j.SourceKey, destKey, prof.ID, ds.BandCount)

	artifact := filepath.Join(scr.Path(), filepath.Base(destKey))
	if err := p.Engine.Translate(ctx, ds, artifact, prof); err != nil {
		return outcome.StatusFailed, newError(KindTranscodeFailure, j.SourceKey, err)
	}
	if err := p.Engine.Validate(ctx, artifact); err != nil {
		return outcome.StatusFailed, newError(KindTranscodeFailure, j.SourceKey,
			fmt.Errorf("artifact failed structural validation: %w", err))
	}

	// Re-check the gate right before upload to narrow the check-then-act
	// window: a sibling run may have produced the output meanwhile.
	proceed, err = p.gate(ctx, destKey, j.Overwrite)
	if err != nil {
		return outcome.StatusFailed, err
	}
	if !proceed {
		logger.Infof("Skipping upload for '%s': destination '%s' appeared during processing",
			j.SourceKey, destKey)
		return outcome.StatusSkipped, nil
	}

	if err := p.Store.Upload(ctx, destKey, artifact); err != nil {
		return outcome.StatusFailed, classifyStorage(destKey, err)
	}
	return outcome.StatusSucceeded, nil
}

// record persists the job's terminal state. Outcome-store errors never fail
// the job.
func (p *Pipeline) record(res Result) {
	if p.Outcomes == nil {
		return
	}
	rec := outcome.Record{
		DestKey:   res.DestKey,
		SourceKey: res.SourceKey,
		Status:    res.Status,
		Profile:   string(res.Profile),
	}
	if res.Err != nil {
		rec.Error = res.Err.Error()
	}
	if err := p.Outcomes.Record(rec); err != nil {
		logger.Errorf("Failed to record outcome for '%s': %v", res.DestKey, err)
	}
}
