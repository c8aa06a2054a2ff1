// Package profile maps a job's classification flags and the opened dataset
// to a COG encoding profile. Selection is a pure function: no I/O, and every
// call returns a freshly allocated option map so no two jobs ever alias the
// same options.
package profile

import (
	"strings"

	"cogforge/models"
)

// ID names a registered encoding profile.
type ID string

const (
	// Deflate is the baseline lossless profile.
	Deflate ID = "deflate"
	// JPEG is the lossy profile used when compression is requested.
	JPEG ID = "jpeg"
	// WebP only supports 3-4 band images and is known to hang on inputs
	// with alpha/mask bands, so the selector never picks it. It stays in
	// the registry for explicit use once that is resolved.
	WebP ID = "webp"
	// Raw disables compression entirely.
	Raw ID = "raw"
)

// Profile is an immutable profile choice plus its creation options. Callers
// own the Options map exclusively; it is never shared between jobs.
type Profile struct {
	ID      ID
	Options map[string]string
}

// registry holds the option template for each profile. Templates are copied
// on every lookup, never handed out directly.
var registry = map[ID]map[string]string{
	Deflate: {"COMPRESS": "DEFLATE", "LEVEL": "9"},
	JPEG:    {"COMPRESS": "JPEG", "QUALITY": "85"},
	WebP:    {"COMPRESS": "WEBP", "QUALITY": "85"},
	Raw:     {"COMPRESS": "NONE"},
}

// New returns a fresh Profile for id with a copy of its option template.
// Unknown ids fall back to the baseline lossless profile.
func New(id ID) Profile {
	tmpl, ok := registry[id]
	if !ok {
		id = Deflate
		tmpl = registry[Deflate]
	}
	opts := make(map[string]string, len(tmpl)+3)
	for k, v := range tmpl {
		opts[k] = v
	}
	return Profile{ID: id, Options: opts}
}

// IDFor returns the profile identifier a job will encode with. It depends
// only on the classification flags, so callers can derive the destination
// key before any data is acquired.
//
// DEM handling takes precedence over compression: lossy codecs destroy
// elevation data, so a job flagged both is encoded lossless.
func IDFor(job models.Job) ID {
	switch {
	case job.IsDEM:
		return Deflate
	case job.Compress:
		return JPEG
	default:
		return Deflate
	}
}

// Select maps the job and the opened dataset to a full encoding profile.
//
// For DEMs the predictor depends on the sample type: horizontal differencing
// (predictor 2) is unsafe for floating-point elevation data, so all-float
// bands get the floating-point variant (predictor 3). Overview resampling is
// cubic when smoothing is requested, bilinear otherwise; nearest neighbor is
// never used because it produces herringbone artifacts in DEM overviews.
func Select(job models.Job, ds models.DatasetHandle) Profile {
	p := New(IDFor(job))

	if job.IsDEM {
		if allFloat(ds.SampleTypes) {
			p.Options["PREDICTOR"] = "3"
		} else {
			p.Options["PREDICTOR"] = "2"
		}
		if job.SmoothDEM {
			p.Options["RESAMPLING"] = "CUBIC"
		} else {
			p.Options["RESAMPLING"] = "BILINEAR"
		}
	}

	if job.WebOptimized {
		p.Options["TILING_SCHEME"] = "GoogleMapsCompatible"
	}

	return p
}

// allFloat reports whether every band's sample type is floating point.
// GDAL type tags: Float32, Float64, CFloat32, CFloat64.
func allFloat(sampleTypes []string) bool {
	if len(sampleTypes) == 0 {
		return false
	}
	for _, t := range sampleTypes {
		if !strings.Contains(t, "Float") {
			return false
		}
	}
	return true
}
