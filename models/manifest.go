package models

// BatchManifest is the claims payload of a signed batch manifest token.
// Operators can hand cogforge a pre-signed job list instead of passing keys
// on the command line; the signature is verified before enumeration.
type BatchManifest struct {
	Issuer    string `json:"iss"` // optional
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`

	Keys           []string `json:"keys"`                     // source object keys
	Bucket         string   `json:"bucket,omitempty"`         // working bucket override
	CopyFromBucket string   `json:"copyFromBucket,omitempty"` // replicate-from bucket

	// Classification flags applied to every key in the manifest
	IsDEM        bool `json:"isDem,omitempty"`
	Compress     bool `json:"compress,omitempty"`
	SmoothDEM    bool `json:"smoothDem,omitempty"`
	WebOptimized bool `json:"webOptimized,omitempty"`
	Overwrite    bool `json:"overwrite,omitempty"`
}
