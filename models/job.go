package models

// Job is one raster conversion task. A job is created at enumeration time,
// owned by exactly one batch pass, and terminates after skip, success, or
// reported failure.
type Job struct {
	SourceKey string // object key of the source raster
	Source    SourceSpecifier

	// Classification flags driving profile selection
	IsDEM        bool
	Compress     bool
	SmoothDEM    bool
	WebOptimized bool

	Overwrite bool
}

// SourceKind tags the three legal ways a job may reference its input.
type SourceKind int

const (
	// SourceRemote reads the object from the working bucket (default for
	// batch jobs built from key lists).
	SourceRemote SourceKind = iota
	// SourceLocalPath reads an existing file on local disk.
	SourceLocalPath
	// SourceBytes spills an in-memory raster to scratch before opening it.
	SourceBytes
)

func (k SourceKind) String() string {
	switch k {
	case SourceRemote:
		return "remote"
	case SourceLocalPath:
		return "local"
	case SourceBytes:
		return "bytes"
	default:
		return "unknown"
	}
}

// SourceSpecifier is a tagged variant: exactly the field matching Kind is
// meaningful. Each case is handled explicitly at acquisition time.
type SourceSpecifier struct {
	Kind      SourceKind
	LocalPath string // SourceLocalPath
	Data      []byte // SourceBytes
}

// DatasetHandle is the uniform view of an opened raster that downstream
// stages consume. Ref is whatever the engine can reopen: a local path for
// preloaded inputs, a /vsicurl/ URL for streamed ones.
type DatasetHandle struct {
	Ref         string
	BandCount   int
	SampleTypes []string // per-band sample type tags, band order
}
