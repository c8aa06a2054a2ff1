// Package gdal drives the external GDAL tool suite. The engine shells out to
// gdalinfo and gdal_translate the same way the rest of the toolchain would:
// no cgo bindings, just the commands on PATH.
package gdal

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"sort"
	"strconv"

	"cogforge/logger"
	"cogforge/models"
	"cogforge/profile"
)

// EngineConfig carries the engine tuning knobs that are independent of any
// single profile.
type EngineConfig struct {
	NumThreads        int  // 0 means ALL_CPUS
	InternalMask      bool // store masks inside the TIFF instead of .msk sidecars
	OverviewBlockSize int  // 0 means engine default (128)
}

// Engine invokes the GDAL command line tools.
type Engine struct {
	translateBin string
	infoBin      string
	cfg          EngineConfig
}

// NewEngine locates the GDAL binaries on PATH and returns a ready engine.
func NewEngine(cfg EngineConfig) (*Engine, error) {
	translateBin, err := exec.LookPath("gdal_translate")
	if err != nil {
		return nil, fmt.Errorf("gdal_translate not found in PATH: %w", err)
	}
	infoBin, err := exec.LookPath("gdalinfo")
	if err != nil {
		return nil, fmt.Errorf("gdalinfo not found in PATH: %w", err)
	}
	logger.Debugf("gdal engine ready (translate: %s, info: %s)", translateBin, infoBin)
	return &Engine{translateBin: translateBin, infoBin: infoBin, cfg: cfg}, nil
}

// Open inspects the raster at ref (local path or /vsicurl/ URL) and returns
// its uniform handle.
func (e *Engine) Open(ctx context.Context, ref string) (models.DatasetHandle, error) {
	report, err := e.info(ctx, ref)
	if err != nil {
		return models.DatasetHandle{}, err
	}
	handle := models.DatasetHandle{
		Ref:       ref,
		BandCount: len(report.Bands),
	}
	for _, b := range report.Bands {
		handle.SampleTypes = append(handle.SampleTypes, b.Type)
	}
	if handle.BandCount == 0 {
		return models.DatasetHandle{}, fmt.Errorf("dataset %s has no raster bands", ref)
	}
	return handle, nil
}

// Translate produces a COG at dstPath honoring the profile's options.
func (e *Engine) Translate(ctx context.Context, ds models.DatasetHandle, dstPath string, p profile.Profile) error {
	args := e.translateArgs(ds.Ref, dstPath, p)
	logger.Debugf("gdal_translate %v", args)

	cmd := exec.CommandContext(ctx, e.translateBin, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("gdal_translate failed: %w: %s", err, stderr.String())
	}
	return nil
}

// translateArgs builds the gdal_translate argument list for a profile.
// Profile options are emitted in sorted key order so invocations are
// reproducible.
func (e *Engine) translateArgs(srcRef, dstPath string, p profile.Profile) []string {
	args := []string{"-q", "-of", "COG"}

	keys := make([]string, 0, len(p.Options))
	for k := range p.Options {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		args = append(args, "-co", k+"="+p.Options[k])
	}

	// Baseline creation options shared by every profile.
	args = append(args,
		"-co", "BLOCKSIZE=256",
		"-co", "BIGTIFF=IF_NEEDED",
	)
	if e.cfg.NumThreads > 0 {
		args = append(args, "-co", "NUM_THREADS="+strconv.Itoa(e.cfg.NumThreads))
	} else {
		args = append(args, "-co", "NUM_THREADS=ALL_CPUS")
	}
	if e.cfg.InternalMask {
		args = append(args, "--config", "GDAL_TIFF_INTERNAL_MASK", "YES")
	}
	ovrBlock := e.cfg.OverviewBlockSize
	if ovrBlock == 0 {
		ovrBlock = 128
	}
	args = append(args, "--config", "GDAL_TIFF_OVR_BLOCKSIZE", strconv.Itoa(ovrBlock))

	return append(args, srcRef, dstPath)
}
