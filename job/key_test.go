package job

import (
	"testing"

	"cogforge/profile"
)

func TestDestinationKey(t *testing.T) {
	cases := []struct {
		sourceKey string
		id        profile.ID
		want      string
	}{
		{"a/b.tif", profile.JPEG, "a/b_COG_jpeg.tif"},
		{"a/b.tif", profile.Deflate, "a/b_COG_deflate.tif"},
		{"wsl/uav/findelen_dsm_0.1m.tif", profile.Deflate, "wsl/uav/findelen_dsm_0.1m_COG_deflate.tif"},
		{"plain.tiff", profile.JPEG, "plain_COG_jpeg.tiff"},
		{"noext", profile.Deflate, "noext_COG_deflate"},
	}

	for _, tc := range cases {
		if got := DestinationKey(tc.sourceKey, tc.id); got != tc.want {
			t.Errorf("DestinationKey(%q, %q) = %q, want %q", tc.sourceKey, tc.id, got, tc.want)
		}
	}
}
