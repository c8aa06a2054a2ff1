package job

import (
	"context"

	"cogforge/logger"
	"cogforge/models"
	"cogforge/outcome"
)

// Summary aggregates a batch's terminal states.
type Summary struct {
	Succeeded int
	Skipped   int
	Failed    int
	Results   []Result
}

// Run processes jobs sequentially. Each job's failure is isolated: it is
// logged, counted, and recorded, and the remaining jobs still run.
func (p *Pipeline) Run(ctx context.Context, jobs []models.Job) Summary {
	var sum Summary
	for _, j := range jobs {
		res := p.Process(ctx, j)
		sum.Results = append(sum.Results, res)

		switch res.Status {
		case outcome.StatusSucceeded:
			sum.Succeeded++
			logger.Infof("Job succeeded: '%s' -> '%s'", res.SourceKey, res.DestKey)
		case outcome.StatusSkipped:
			sum.Skipped++
		case outcome.StatusFailed:
			sum.Failed++
			logger.Errorf("Job failed for '%s': %v", res.SourceKey, res.Err)
		}
	}

	logger.Infof("Batch complete: succeeded=%d skipped=%d failed=%d",
		sum.Succeeded, sum.Skipped, sum.Failed)
	return sum
}

// BuildJobs creates one remote-sourced job per key, each with its own copy of
// the template's classification flags.
func BuildJobs(keys []string, template models.Job) []models.Job {
	jobs := make([]models.Job, 0, len(keys))
	for _, key := range keys {
		j := template
		j.SourceKey = key
		j.Source = models.SourceSpecifier{Kind: models.SourceRemote}
		jobs = append(jobs, j)
	}
	return jobs
}

// JobsFromManifest expands a verified batch manifest into jobs.
func JobsFromManifest(m *models.BatchManifest) []models.Job {
	return BuildJobs(m.Keys, models.Job{
		IsDEM:        m.IsDEM,
		Compress:     m.Compress,
		SmoothDEM:    m.SmoothDEM,
		WebOptimized: m.WebOptimized,
		Overwrite:    m.Overwrite,
	})
}
