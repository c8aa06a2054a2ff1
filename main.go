package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"cogforge/config"
	"cogforge/gdal"
	"cogforge/job"
	"cogforge/logger"
	"cogforge/manifest"
	"cogforge/models"
	"cogforge/outcome"
	"cogforge/scratch"
	"cogforge/storage"
)

func main() {
	cfg := config.Load()

	var (
		bucket       = flag.String("bucket", cfg.Bucket, "working bucket holding sources and outputs")
		copyFrom     = flag.String("copy-from", cfg.CopyFromBucket, "replicate sources from this bucket before processing")
		backend      = flag.String("backend", cfg.Backend, "object store backend: s3 or gcs")
		manifestTok  = flag.String("manifest", "", "signed batch manifest token instead of positional keys")
		preload      = flag.Bool("preload", false, "download each source fully instead of streaming range reads")
		overwrite    = flag.Bool("overwrite", false, "reprocess even when the destination already exists")
		compress     = flag.Bool("compress", false, "use the lossy profile")
		dem          = flag.Bool("dem", false, "treat sources as digital elevation models")
		smoothDEM    = flag.Bool("smooth-dem", false, "use cubic resampling for DEM overviews")
		webOptimized = flag.Bool("web-optimized", false, "align output tiles to the web mercator tiling scheme")
		threads      = flag.Int("threads", 0, "engine worker threads (0 = all CPUs)")
		scratchDir   = flag.String("scratch-dir", cfg.ScratchDir, "base directory for per-job scratch storage")
		logFile      = flag.String("log-file", "", "also write logs to this file")
		listOutcomes = flag.Bool("outcomes", false, "list recorded job outcomes and exit")
		public       = flag.Bool("public", false, "make the working bucket publicly readable after the batch")
	)
	flag.Parse()

	if err := logger.Init(*logFile, true); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Close()

	cfg.Bucket = *bucket
	cfg.CopyFromBucket = *copyFrom
	cfg.Backend = *backend
	cfg.ScratchDir = *scratchDir
	cfg.Threads = *threads

	logger.Info("Starting cogforge batch run")

	outcomes, err := outcome.Open(cfg.OutcomeDBPath)
	if err != nil {
		logger.Fatalf("Failed to open outcome store: %v", err)
	}
	defer outcomes.Close()

	if *listOutcomes {
		printOutcomes(outcomes)
		return
	}

	jobs, err := buildJobs(&cfg, *manifestTok, flag.Args(), models.Job{
		IsDEM:        *dem,
		Compress:     *compress,
		SmoothDEM:    *smoothDEM,
		WebOptimized: *webOptimized,
		Overwrite:    *overwrite,
	})
	if err != nil {
		logger.Fatalf("%v", err)
	}
	if len(jobs) == 0 {
		logger.Fatal("No source keys given; pass keys as arguments or use -manifest")
	}
	if cfg.Bucket == "" {
		logger.Fatal("No working bucket configured; use -bucket or COGFORGE_BUCKET")
	}

	ctx := context.Background()
	store, err := buildStore(ctx, cfg)
	if err != nil {
		logger.Fatalf("Failed to build object store: %v", err)
	}

	engine, err := gdal.NewEngine(gdal.EngineConfig{
		NumThreads:   cfg.Threads,
		InternalMask: true,
	})
	if err != nil {
		logger.Fatalf("Failed to initialize transcode engine: %v", err)
	}

	scratchMgr, err := scratch.NewManager(cfg.ScratchDir)
	if err != nil {
		logger.Fatalf("Failed to initialize scratch manager: %v", err)
	}

	pipeline := &job.Pipeline{
		Store:          store,
		Engine:         engine,
		Scratch:        scratchMgr,
		Outcomes:       outcomes,
		Preload:        *preload,
		CopyFromBucket: cfg.CopyFromBucket,
	}

	summary := pipeline.Run(ctx, jobs)

	if *public {
		if err := store.SetPublicReadPolicy(ctx); err != nil {
			logger.Errorf("Failed to set public read policy: %v", err)
		}
	}

	logger.Info("Finished cogforge batch run")
	if summary.Failed > 0 {
		os.Exit(1)
	}
}

// buildJobs assembles the job list from a signed manifest or positional
// keys. A manifest may also override the working and replicate-from buckets.
func buildJobs(cfg *config.Config, manifestTok string, keys []string, template models.Job) ([]models.Job, error) {
	if manifestTok == "" {
		return job.BuildJobs(keys, template), nil
	}
	if len(keys) > 0 {
		return nil, fmt.Errorf("pass either positional keys or -manifest, not both")
	}
	claims, err := manifest.Verify(manifestTok, manifest.VerifyConfig{
		Secret: []byte(cfg.ManifestSecret),
	})
	if err != nil {
		return nil, fmt.Errorf("manifest rejected: %w", err)
	}
	if claims.Bucket != "" {
		cfg.Bucket = claims.Bucket
	}
	if claims.CopyFromBucket != "" {
		cfg.CopyFromBucket = claims.CopyFromBucket
	}
	return job.JobsFromManifest(claims), nil
}

// buildStore constructs the configured object store backend.
func buildStore(ctx context.Context, cfg config.Config) (storage.ObjectStore, error) {
	switch cfg.Backend {
	case "s3":
		return storage.NewS3Store(cfg), nil
	case "gcs":
		return storage.NewGCSStore(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown backend %q (want s3 or gcs)", cfg.Backend)
	}
}

func printOutcomes(store *outcome.Store) {
	records, err := store.List()
	if err != nil {
		logger.Fatalf("Failed to list outcomes: %v", err)
	}
	if len(records) == 0 {
		logger.Info("No recorded outcomes")
		return
	}
	for _, rec := range records {
		line := fmt.Sprintf("%s  %-9s  profile=%s  source=%s",
			rec.Timestamp.Format("2006-01-02 15:04:05"), rec.Status, rec.Profile, rec.SourceKey)
		if rec.Error != "" {
			line += "  error=" + rec.Error
		}
		logger.Info(line)
	}
}
