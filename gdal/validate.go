package gdal

import (
	"context"
	"fmt"
)

// Validate runs a structural check on a produced artifact: tiled layout,
// correctly ordered overviews, and a readable internal directory structure.
// An artifact that fails here must never be uploaded.
func (e *Engine) Validate(ctx context.Context, path string) error {
	report, err := e.info(ctx, path)
	if err != nil {
		return fmt.Errorf("artifact is not a readable raster: %w", err)
	}
	return checkStructure(report)
}

// checkStructure verifies the report describes a cloud-optimized layout.
func checkStructure(report infoReport) error {
	if report.DriverShortName != "GTiff" && report.DriverShortName != "COG" {
		return fmt.Errorf("artifact driver is %q, expected a GeoTIFF", report.DriverShortName)
	}
	if len(report.Bands) == 0 {
		return fmt.Errorf("artifact has no raster bands")
	}

	// The COG driver records its layout in IMAGE_STRUCTURE.
	if img, ok := report.Metadata["IMAGE_STRUCTURE"]; ok {
		if layout, ok := img["LAYOUT"]; ok && layout != "COG" {
			return fmt.Errorf("artifact layout is %q, expected COG", layout)
		}
	}

	for _, band := range report.Bands {
		if len(band.Block) != 2 {
			return fmt.Errorf("band %d has no block geometry", band.Band)
		}
		// Strips report a block height of 1 (or a full-width sliver);
		// internal tiles are square.
		if band.Block[0] != band.Block[1] {
			return fmt.Errorf("band %d is striped (%dx%d blocks), not tiled",
				band.Band, band.Block[0], band.Block[1])
		}

		// Overviews must shrink monotonically from full resolution.
		prevW, prevH := maxInt, maxInt
		if len(report.Size) == 2 {
			prevW, prevH = report.Size[0], report.Size[1]
		}
		for i, ovr := range band.Overviews {
			if len(ovr.Size) != 2 {
				return fmt.Errorf("band %d overview %d has no size", band.Band, i)
			}
			w, h := ovr.Size[0], ovr.Size[1]
			if w >= prevW || h >= prevH {
				return fmt.Errorf("band %d overview %d (%dx%d) is not smaller than its predecessor",
					band.Band, i, w, h)
			}
			prevW, prevH = w, h
		}
	}
	return nil
}

const maxInt = int(^uint(0) >> 1)
