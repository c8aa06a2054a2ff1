package profile

import (
	"testing"

	"cogforge/models"
)

func TestSelectDEMPredictor(t *testing.T) {
	cases := []struct {
		name        string
		sampleTypes []string
		want        string
	}{
		{"float32", []string{"Float32"}, "3"},
		{"float64", []string{"Float64"}, "3"},
		{"all float bands", []string{"Float32", "Float32", "Float64"}, "3"},
		{"int16", []string{"Int16"}, "2"},
		{"mixed", []string{"Float32", "Int16"}, "2"},
		{"byte", []string{"Byte"}, "2"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			job := models.Job{IsDEM: true}
			ds := models.DatasetHandle{BandCount: len(tc.sampleTypes), SampleTypes: tc.sampleTypes}
			p := Select(job, ds)

			if p.ID != Deflate {
				t.Errorf("DEM job selected profile %s, want %s", p.ID, Deflate)
			}
			if got := p.Options["PREDICTOR"]; got != tc.want {
				t.Errorf("predictor = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestSelectDEMResampling(t *testing.T) {
	ds := models.DatasetHandle{BandCount: 1, SampleTypes: []string{"Float32"}}

	smooth := Select(models.Job{IsDEM: true, SmoothDEM: true}, ds)
	if got := smooth.Options["RESAMPLING"]; got != "CUBIC" {
		t.Errorf("smooth DEM resampling = %s, want CUBIC", got)
	}

	plain := Select(models.Job{IsDEM: true}, ds)
	if got := plain.Options["RESAMPLING"]; got != "BILINEAR" {
		t.Errorf("DEM resampling = %s, want BILINEAR", got)
	}
}

func TestSelectCompress(t *testing.T) {
	ds := models.DatasetHandle{BandCount: 3, SampleTypes: []string{"Byte", "Byte", "Byte"}}
	p := Select(models.Job{Compress: true}, ds)

	if p.ID != JPEG {
		t.Errorf("compress job selected profile %s, want %s", p.ID, JPEG)
	}
	if got := p.Options["QUALITY"]; got != "85" {
		t.Errorf("quality = %s, want 85", got)
	}
}

// WebP auto-selection by band count is known to hang on alpha/mask bands, so
// the selector must never pick it on its own.
func TestSelectNeverPicksWebP(t *testing.T) {
	for bands := 1; bands <= 5; bands++ {
		types := make([]string, bands)
		for i := range types {
			types[i] = "Byte"
		}
		ds := models.DatasetHandle{BandCount: bands, SampleTypes: types}
		p := Select(models.Job{Compress: true}, ds)
		if p.ID == WebP {
			t.Errorf("selector picked webp for %d bands", bands)
		}
	}
}

func TestSelectBaseline(t *testing.T) {
	ds := models.DatasetHandle{BandCount: 1, SampleTypes: []string{"Byte"}}
	p := Select(models.Job{}, ds)

	if p.ID != Deflate {
		t.Errorf("baseline profile = %s, want %s", p.ID, Deflate)
	}
	if got := p.Options["COMPRESS"]; got != "DEFLATE" {
		t.Errorf("compression = %s, want DEFLATE", got)
	}
	if got := p.Options["LEVEL"]; got != "9" {
		t.Errorf("level = %s, want 9", got)
	}
	if _, ok := p.Options["PREDICTOR"]; ok {
		t.Error("baseline profile should not set a predictor")
	}
}

// DEM handling takes precedence when both flags are set: lossy codecs must
// never touch elevation data.
func TestSelectDEMBeatsCompress(t *testing.T) {
	ds := models.DatasetHandle{BandCount: 1, SampleTypes: []string{"Float32"}}
	p := Select(models.Job{IsDEM: true, Compress: true}, ds)
	if p.ID != Deflate {
		t.Errorf("DEM+compress selected %s, want %s", p.ID, Deflate)
	}
}

func TestSelectWebOptimized(t *testing.T) {
	ds := models.DatasetHandle{BandCount: 3, SampleTypes: []string{"Byte", "Byte", "Byte"}}
	p := Select(models.Job{Compress: true, WebOptimized: true}, ds)
	if got := p.Options["TILING_SCHEME"]; got != "GoogleMapsCompatible" {
		t.Errorf("tiling scheme = %s, want GoogleMapsCompatible", got)
	}
}

// Each call must return its own option map; mutating one job's options must
// never leak into another job.
func TestSelectReturnsFreshOptions(t *testing.T) {
	ds := models.DatasetHandle{BandCount: 1, SampleTypes: []string{"Byte"}}

	a := Select(models.Job{}, ds)
	a.Options["COMPRESS"] = "MUTATED"

	b := Select(models.Job{}, ds)
	if b.Options["COMPRESS"] != "DEFLATE" {
		t.Error("option mutation leaked into a later selection")
	}

	c := New(Deflate)
	if c.Options["COMPRESS"] != "DEFLATE" {
		t.Error("option mutation leaked into the registry template")
	}
}

func TestIDForMatchesSelect(t *testing.T) {
	ds := models.DatasetHandle{BandCount: 1, SampleTypes: []string{"Float32"}}
	jobs := []models.Job{
		{},
		{Compress: true},
		{IsDEM: true},
		{IsDEM: true, Compress: true},
		{IsDEM: true, SmoothDEM: true},
	}
	for _, j := range jobs {
		if got, want := IDFor(j), Select(j, ds).ID; got != want {
			t.Errorf("IDFor = %s but Select picked %s for %+v", got, want, j)
		}
	}
}
